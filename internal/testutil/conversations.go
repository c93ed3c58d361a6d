package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/internal/domain/repository"
	"github.com/Elmalamb/vdm/pkg/errors"
)

// ConversationRepository mirrors the Firestore layout in memory. Every
// write takes its timestamp from Clock.
type ConversationRepository struct {
	mu       sync.Mutex
	Clock    *Clock
	convs    map[string]*entity.Conversation
	messages map[string][]*entity.Message
	next     int

	// AppendErr, when set, fails the next Append without writing.
	AppendErr error
	// MarkReadCalls counts MarkRead invocations per "surface/id/side".
	MarkReadCalls map[string]int
}

var _ repository.ConversationRepository = (*ConversationRepository)(nil)

func NewConversationRepository(clock *Clock) *ConversationRepository {
	return &ConversationRepository{
		Clock:         clock,
		convs:         make(map[string]*entity.Conversation),
		messages:      make(map[string][]*entity.Message),
		MarkReadCalls: make(map[string]int),
	}
}

func key(surface entity.Surface, id string) string {
	return string(surface) + "/" + id
}

func copyConv(c *entity.Conversation) *entity.Conversation {
	cp := *c
	cp.Participants = append([]string(nil), c.Participants...)
	if c.Labels != nil {
		cp.Labels = make(map[string]string, len(c.Labels))
		for k, v := range c.Labels {
			cp.Labels[k] = v
		}
	}
	cp.LastRead = make(map[string]time.Time, len(c.LastRead))
	for k, v := range c.LastRead {
		cp.LastRead[k] = v
	}
	if c.AssignedAt != nil {
		at := *c.AssignedAt
		cp.AssignedAt = &at
	}
	return &cp
}

// Put stores conv as is, for seeding tests.
func (r *ConversationRepository) Put(conv *entity.Conversation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.convs[key(conv.Surface, conv.ID)] = copyConv(conv)
}

// PutMessage appends msg to the log without touching the summary, which
// simulates a summary that lags the log.
func (r *ConversationRepository) PutMessage(surface entity.Surface, id string, msg *entity.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *msg
	cp.ConversationID = id
	r.messages[key(surface, id)] = append(r.messages[key(surface, id)], &cp)
}

func (r *ConversationRepository) GetByID(ctx context.Context, surface entity.Surface, id string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[key(surface, id)]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return copyConv(c), nil
}

func (r *ConversationRepository) ListByParticipant(ctx context.Context, surface entity.Surface, uid string) ([]*entity.Conversation, error) {
	return r.list(surface, func(c *entity.Conversation) bool { return c.HasParticipant(uid) }), nil
}

func (r *ConversationRepository) ListBySurface(ctx context.Context, surface entity.Surface) ([]*entity.Conversation, error) {
	return r.list(surface, func(*entity.Conversation) bool { return true }), nil
}

func (r *ConversationRepository) list(surface entity.Surface, keep func(*entity.Conversation) bool) []*entity.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Conversation
	for _, c := range r.convs {
		if c.Surface == surface && keep(c) {
			out = append(out, copyConv(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessageTimestamp.After(out[j].LastMessageTimestamp)
	})
	return out
}

func (r *ConversationRepository) Append(ctx context.Context, surface entity.Surface, id string, fn repository.AppendFunc) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.AppendErr != nil {
		err := r.AppendErr
		r.AppendErr = nil
		return nil, err
	}

	k := key(surface, id)
	var current *entity.Conversation
	if c, ok := r.convs[k]; ok {
		current = copyConv(c)
	}

	conv, msg, err := fn(current)
	if err != nil {
		return nil, err
	}

	ts := r.Clock.Now()
	stored := current
	if stored == nil {
		stored = &entity.Conversation{
			ID:           id,
			Surface:      surface,
			Participants: append([]string(nil), conv.Participants...),
			CreatedAt:    ts,
		}
	}
	if stored.LastRead == nil {
		stored.LastRead = make(map[string]time.Time)
	}
	if len(conv.Labels) > 0 {
		stored.Labels = conv.Labels
	}
	if conv.AdID != "" {
		stored.AdID = conv.AdID
	}
	if conv.AdTitle != "" {
		stored.AdTitle = conv.AdTitle
	}
	if conv.AssignedModerator != "" && conv.AssignedModerator != stored.AssignedModerator {
		stored.AssignedModerator = conv.AssignedModerator
		at := ts
		stored.AssignedAt = &at
	}
	stored.LastMessage = msg.Text
	stored.LastMessageTimestamp = ts
	stored.LastRead[msg.SenderSide] = ts
	r.convs[k] = stored

	r.next++
	sent := &entity.Message{
		ID:             fmt.Sprintf("msg-%d", r.next),
		ConversationID: id,
		Text:           msg.Text,
		SenderID:       msg.SenderID,
		SenderSide:     msg.SenderSide,
		Timestamp:      ts,
	}
	r.messages[k] = append(r.messages[k], sent)

	cp := *sent
	return &cp, nil
}

func (r *ConversationRepository) MarkRead(ctx context.Context, surface entity.Surface, id, side string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(surface, id)
	r.MarkReadCalls[k+"/"+side]++

	c, ok := r.convs[k]
	if !ok {
		c = &entity.Conversation{ID: id, Surface: surface}
		r.convs[k] = c
	}
	if c.LastRead == nil {
		c.LastRead = make(map[string]time.Time)
	}
	c.LastRead[side] = r.Clock.Now()
	return nil
}

func (r *ConversationRepository) UpdateAssignment(ctx context.Context, surface entity.Surface, id string, fn repository.AssignFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.convs[key(surface, id)]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	moderator, err := fn(copyConv(c))
	if err != nil {
		return err
	}
	if moderator == c.AssignedModerator {
		return nil
	}
	c.AssignedModerator = moderator
	if moderator == "" {
		c.AssignedAt = nil
	} else {
		at := r.Clock.Now()
		c.AssignedAt = &at
	}
	return nil
}

func (r *ConversationRepository) ListMessages(ctx context.Context, surface entity.Surface, id string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedMessages(key(surface, id)), nil
}

func (r *ConversationRepository) sortedMessages(k string) []*entity.Message {
	out := make([]*entity.Message, 0, len(r.messages[k]))
	for _, m := range r.messages[k] {
		cp := *m
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// WatchMessages delivers the current log once, then waits for ctx.
func (r *ConversationRepository) WatchMessages(ctx context.Context, surface entity.Surface, id string, fn func([]*entity.Message) error) error {
	r.mu.Lock()
	msgs := r.sortedMessages(key(surface, id))
	r.mu.Unlock()

	if err := fn(msgs); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// Raw returns the stored conversation without the not-found error, for
// assertions.
func (r *ConversationRepository) Raw(surface entity.Surface, id string) *entity.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.convs[key(surface, id)]; ok {
		return copyConv(c)
	}
	return nil
}

func (r *ConversationRepository) Messages(surface entity.Surface, id string) []*entity.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedMessages(key(surface, id))
}
