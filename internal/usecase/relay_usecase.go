package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/internal/domain/inbox"
	"github.com/Elmalamb/vdm/internal/domain/repository"
	"github.com/Elmalamb/vdm/internal/domain/service"
	"github.com/Elmalamb/vdm/pkg/errors"
	"github.com/Elmalamb/vdm/pkg/logger"
)

// RelayUseCase forwards messages from signed-out visitors to sellers once
// they pass the spam classifier.
type RelayUseCase struct {
	convRepo   repository.ConversationRepository
	classifier service.SpamClassifier
	notifier   service.SellerNotifier
	now        func() time.Time
}

func NewRelayUseCase(convRepo repository.ConversationRepository, classifier service.SpamClassifier, notifier service.SellerNotifier) *RelayUseCase {
	return &RelayUseCase{
		convRepo:   convRepo,
		classifier: classifier,
		notifier:   notifier,
		now:        time.Now,
	}
}

type VisitorMessageInput struct {
	VisitorEmail string `json:"visitorEmail" validate:"required,email"`
	AdID         string `json:"adId" validate:"required"`
	AdTitle      string `json:"adTitle" validate:"required"`
	SellerEmail  string `json:"sellerEmail" validate:"required,email"`
	Message      string `json:"message" validate:"required"`
}

type RelayResult struct {
	Success bool `json:"success"`
}

// SendVisitorMessage reports success for every valid input. Rejected
// messages and delivery failures are only logged so the sender learns
// nothing about the classification.
func (uc *RelayUseCase) SendVisitorMessage(ctx context.Context, input VisitorMessageInput) (*RelayResult, error) {
	input.VisitorEmail = strings.TrimSpace(input.VisitorEmail)
	input.SellerEmail = strings.TrimSpace(input.SellerEmail)
	input.Message = strings.TrimSpace(input.Message)
	input.AdID = strings.TrimSpace(input.AdID)
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	notice := &service.VisitorNotice{
		ConversationID: inbox.VisitorKey(input.VisitorEmail, input.AdID),
		AdID:           input.AdID,
		AdTitle:        input.AdTitle,
		SellerEmail:    input.SellerEmail,
		VisitorEmail:   input.VisitorEmail,
		Message:        input.Message,
		SentAt:         uc.now(),
	}
	log := logger.With("visitor", input.VisitorEmail, "ad_id", input.AdID)

	appropriate, err := uc.classifier.IsAppropriate(ctx, notice)
	if err != nil {
		log.Warnf("Visitor message classification failed, dropping: %v", err)
		return &RelayResult{Success: true}, nil
	}
	if !appropriate {
		log.Warnf("Visitor message judged inappropriate, no action taken")
		return &RelayResult{Success: true}, nil
	}

	if err := uc.record(ctx, notice); err != nil {
		log.Errorf("Failed to store visitor message: %v", err)
		return &RelayResult{Success: true}, nil
	}
	if err := uc.notifier.NotifySeller(ctx, notice); err != nil {
		log.Errorf("Failed to notify seller %s: %v", input.SellerEmail, err)
	}

	log.Infof("Visitor message forwarded to %s", input.SellerEmail)
	return &RelayResult{Success: true}, nil
}

func (uc *RelayUseCase) record(ctx context.Context, notice *service.VisitorNotice) error {
	visitor := "visitor:" + notice.VisitorEmail
	text := fmt.Sprintf("Message de %s au sujet de \"%s\" (vendeur : %s) :\n%s",
		notice.VisitorEmail, notice.AdTitle, notice.SellerEmail, notice.Message)

	_, err := uc.convRepo.Append(ctx, entity.SurfaceSupport, notice.ConversationID, func(current *entity.Conversation) (*entity.Conversation, *entity.Message, error) {
		conv := current
		if conv == nil {
			conv = &entity.Conversation{
				ID:           notice.ConversationID,
				Surface:      entity.SurfaceSupport,
				Participants: []string{visitor},
				Labels: map[string]string{
					entity.SideUser:      notice.VisitorEmail,
					entity.SideModerator: supportLabel,
				},
				AdID:    notice.AdID,
				AdTitle: notice.AdTitle,
			}
		}
		if !conv.HasParticipant(visitor) {
			return nil, nil, errors.Conflict("Support conversation belongs to another participant")
		}
		return conv, &entity.Message{
			Text:       text,
			SenderID:   visitor,
			SenderSide: entity.SideUser,
		}, nil
	})
	return err
}
