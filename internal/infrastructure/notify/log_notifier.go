package notify

import (
	"context"

	"github.com/Elmalamb/vdm/internal/domain/service"
	"github.com/Elmalamb/vdm/pkg/logger"
)

// LogNotifier records what would be sent to the seller. Used when no
// NATS server is configured.
type LogNotifier struct{}

var _ service.SellerNotifier = LogNotifier{}

func (LogNotifier) NotifySeller(_ context.Context, notice *service.VisitorNotice) error {
	logger.With("ad_id", notice.AdID, "seller", notice.SellerEmail).
		Infof("New message from %s for ad %q: %s", notice.VisitorEmail, notice.AdTitle, notice.Message)
	return nil
}
