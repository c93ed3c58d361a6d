package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Elmalamb/vdm/internal/domain/service"
	"github.com/Elmalamb/vdm/pkg/logger"
)

// NatsNotifier publishes seller notifications for a mailer (or any other
// consumer) subscribed to subject.
type NatsNotifier struct {
	nc      *nats.Conn
	subject string
}

var _ service.SellerNotifier = (*NatsNotifier)(nil)

func NewNatsNotifier(url, subject string) (*NatsNotifier, error) {
	nc, err := nats.Connect(url,
		nats.Name("vdm-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(500*time.Millisecond),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(3*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats: connect: %w", err)
	}
	return &NatsNotifier{nc: nc, subject: subject}, nil
}

func (n *NatsNotifier) NotifySeller(ctx context.Context, notice *service.VisitorNotice) error {
	data, err := json.Marshal(notice)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(n.subject)
	msg.Data = data
	msg.Header.Set("Ad-Id", notice.AdID)

	if err := n.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}
	return n.nc.FlushWithContext(ctx)
}

func (n *NatsNotifier) Close() error {
	return n.nc.Drain()
}
