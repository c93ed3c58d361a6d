package service

import (
	"context"
	"time"
)

// SpamClassifier judges whether a visitor message may reach a seller.
type SpamClassifier interface {
	IsAppropriate(ctx context.Context, msg *VisitorNotice) (bool, error)
}

// VisitorNotice is published to the seller when a visitor message passes
// classification.
type VisitorNotice struct {
	ConversationID string    `json:"conversation_id"`
	AdID           string    `json:"ad_id"`
	AdTitle        string    `json:"ad_title"`
	SellerEmail    string    `json:"seller_email"`
	VisitorEmail   string    `json:"visitor_email"`
	Message        string    `json:"message"`
	SentAt         time.Time `json:"sent_at"`
}

type SellerNotifier interface {
	NotifySeller(ctx context.Context, notice *VisitorNotice) error
}
