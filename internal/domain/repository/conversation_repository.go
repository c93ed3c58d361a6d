package repository

import (
	"context"

	"github.com/Elmalamb/vdm/internal/domain/entity"
)

// AppendFunc decides the write of one send. It receives the stored
// conversation, or nil when none exists yet, and returns the conversation
// fields to upsert with the message to append. Returning an error aborts
// the write.
type AppendFunc func(current *entity.Conversation) (*entity.Conversation, *entity.Message, error)

// AssignFunc returns the moderator that should hold current after the
// update; the empty string releases it.
type AssignFunc func(current *entity.Conversation) (string, error)

type ConversationRepository interface {
	GetByID(ctx context.Context, surface entity.Surface, id string) (*entity.Conversation, error)
	ListByParticipant(ctx context.Context, surface entity.Surface, uid string) ([]*entity.Conversation, error)
	ListBySurface(ctx context.Context, surface entity.Surface) ([]*entity.Conversation, error)

	// Append atomically writes the message and the conversation summary.
	// Both carry the same server timestamp and the sender side's watermark
	// advances to it.
	Append(ctx context.Context, surface entity.Surface, id string, fn AppendFunc) (*entity.Message, error)
	// MarkRead sets lastRead[side] to server time, creating the document
	// when needed.
	MarkRead(ctx context.Context, surface entity.Surface, id, side string) error
	UpdateAssignment(ctx context.Context, surface entity.Surface, id string, fn AssignFunc) error

	ListMessages(ctx context.Context, surface entity.Surface, id string) ([]*entity.Message, error)
	// WatchMessages calls fn with the full ascending log on every change
	// until ctx is done or fn returns an error.
	WatchMessages(ctx context.Context, surface entity.Surface, id string, fn func([]*entity.Message) error) error
}
