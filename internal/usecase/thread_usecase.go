package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/internal/domain/inbox"
	"github.com/Elmalamb/vdm/internal/domain/repository"
	"github.com/Elmalamb/vdm/pkg/errors"
	"github.com/Elmalamb/vdm/pkg/logger"
)

const (
	moderationLabel = "Modération"
	supportLabel    = "Support"
)

// Limiter throttles an action per key.
type Limiter interface {
	Allow(key string) (bool, time.Duration)
}

// ThreadUseCase runs the three chat surfaces: ad owner with moderators,
// buyer with seller, and the support desk.
type ThreadUseCase struct {
	convRepo repository.ConversationRepository
	adRepo   repository.AdRepository
	policy   inbox.AssignmentPolicy
	limiter  Limiter
	now      func() time.Time
}

func NewThreadUseCase(convRepo repository.ConversationRepository, adRepo repository.AdRepository, policy inbox.AssignmentPolicy, limiter Limiter) *ThreadUseCase {
	return &ThreadUseCase{
		convRepo: convRepo,
		adRepo:   adRepo,
		policy:   policy,
		limiter:  limiter,
		now:      time.Now,
	}
}

// ConversationView is a conversation as seen from one side.
type ConversationView struct {
	*entity.Conversation
	Side      string `json:"side"`
	Unread    bool   `json:"unread"`
	AdMissing bool   `json:"ad_missing,omitempty"`
}

type ThreadView struct {
	Conversation *ConversationView `json:"conversation"`
	Messages     []*entity.Message `json:"messages"`
}

type SendInput struct {
	Surface entity.Surface
	ID      string
	Text    string
}

// Open returns a conversation with its log and marks it read for the
// caller. Unread reflects the state before opening. A conversation the
// caller is entitled to start but that has no message yet is returned
// empty.
func (uc *ThreadUseCase) Open(ctx context.Context, session *entity.Session, surface entity.Surface, id string) (*ThreadView, error) {
	conv, exists, err := uc.resolve(ctx, session, surface, id)
	if err != nil {
		return nil, err
	}
	side, err := inbox.SideOf(session, conv)
	if err != nil {
		return nil, err
	}

	view := &ThreadView{
		Conversation: &ConversationView{Conversation: conv, Side: side},
		Messages:     []*entity.Message{},
	}
	if !exists {
		return view, nil
	}

	msgs, err := uc.convRepo.ListMessages(ctx, surface, id)
	if err != nil {
		return nil, err
	}
	view.Messages = msgs
	view.Conversation.Unread = inbox.ComputeUnread(conv, msgs, side, uc.now())

	if err := uc.markRead(ctx, conv, side, view.Conversation.Unread); err != nil {
		logger.Warn("Failed to mark %s/%s read for %s: %v", surface, id, side, err)
	}
	return view, nil
}

// markRead advances the watermark only when something is unread, so
// repeated calls leave it where the first one put it.
func (uc *ThreadUseCase) markRead(ctx context.Context, conv *entity.Conversation, side string, unread bool) error {
	if !unread && !conv.Watermark(side).IsZero() {
		return nil
	}
	return uc.convRepo.MarkRead(ctx, conv.Surface, conv.ID, side)
}

func (uc *ThreadUseCase) ListMessages(ctx context.Context, session *entity.Session, surface entity.Surface, id string) ([]*entity.Message, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	conv, err := uc.convRepo.GetByID(ctx, surface, id)
	if err != nil {
		return nil, err
	}
	if _, err := inbox.SideOf(session, conv); err != nil {
		return nil, err
	}
	return uc.convRepo.ListMessages(ctx, surface, id)
}

// MarkRead clears the caller's unread state. A conversation the caller may
// start but that has no message yet has nothing to read and is left
// unwritten: the first send creates it with the sender's watermark.
func (uc *ThreadUseCase) MarkRead(ctx context.Context, session *entity.Session, surface entity.Surface, id string) error {
	conv, exists, err := uc.resolve(ctx, session, surface, id)
	if err != nil {
		return err
	}
	side, err := inbox.SideOf(session, conv)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	msgs, err := uc.convRepo.ListMessages(ctx, surface, id)
	if err != nil {
		return err
	}
	return uc.markRead(ctx, conv, side, inbox.ComputeUnread(conv, msgs, side, uc.now()))
}

// Send appends one message. The write happens once: a failure is returned
// to the caller and never retried.
func (uc *ThreadUseCase) Send(ctx context.Context, session *entity.Session, input SendInput) (*entity.Message, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, errors.Validation("message must not be empty")
	}
	if err := uc.throttle(session); err != nil {
		return nil, err
	}

	seed, seedErr := uc.seed(ctx, session, input.Surface, input.ID)
	return uc.append(ctx, session, input.Surface, input.ID, text, func() (*entity.Conversation, error) {
		return seed, seedErr
	})
}

// StartConversation sends a buyer's message to the seller of an approved
// ad, creating the buyer/seller conversation on first use.
func (uc *ThreadUseCase) StartConversation(ctx context.Context, session *entity.Session, adID, text string) (*entity.Message, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Validation("message must not be empty")
	}

	ad, err := uc.adRepo.GetByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	switch kind := entity.ResolveViewer(session, ad); {
	case kind == entity.ViewerOwner:
		return nil, errors.BadRequest("You cannot message yourself about your own ad", nil)
	case !entity.PermissionsFor(kind, ad).CanMessageSeller:
		if !ad.IsApproved() {
			return nil, errors.NotFound("Ad", nil)
		}
		return nil, errors.Forbidden("Moderators cannot message sellers", nil)
	}
	if err := uc.throttle(session); err != nil {
		return nil, err
	}

	id := inbox.ConversationKey(ad.ID, session.UID)
	seed := &entity.Conversation{
		ID:           id,
		Surface:      entity.SurfaceConversation,
		Participants: []string{session.UID, ad.UserID},
		Labels: map[string]string{
			session.UID: session.Email,
			ad.UserID:   ad.UserEmail,
		},
		AdID:    ad.ID,
		AdTitle: ad.Title,
	}
	return uc.append(ctx, session, entity.SurfaceConversation, id, text, func() (*entity.Conversation, error) {
		return seed, nil
	})
}

func (uc *ThreadUseCase) append(ctx context.Context, session *entity.Session, surface entity.Surface, id, text string, seed func() (*entity.Conversation, error)) (*entity.Message, error) {
	return uc.convRepo.Append(ctx, surface, id, func(current *entity.Conversation) (*entity.Conversation, *entity.Message, error) {
		conv := current
		if conv == nil {
			var err error
			if conv, err = seed(); err != nil {
				return nil, nil, err
			}
		}

		side, err := inbox.SideOf(session, conv)
		if err != nil {
			return nil, nil, err
		}

		if surface == entity.SurfaceSupport && side == entity.SideModerator {
			next, _, err := inbox.StateOf(conv).OnModeratorSend(session.UID)
			if err != nil {
				return nil, nil, err
			}
			conv.AssignedModerator = next.Moderator
		}

		return conv, &entity.Message{
			Text:       text,
			SenderID:   session.UID,
			SenderSide: side,
		}, nil
	})
}

func (uc *ThreadUseCase) throttle(session *entity.Session) error {
	if uc.limiter == nil {
		return nil
	}
	if ok, wait := uc.limiter.Allow(session.UID); !ok {
		logger.Warn("Send rate limit hit by %s, retry in %v", session.UID, wait)
		return errors.TooManyRequests("Too many messages, please slow down")
	}
	return nil
}

// ListInbox returns the caller's conversations on surface with their
// unread flags. Moderators see every ad chat and every support chat.
func (uc *ThreadUseCase) ListInbox(ctx context.Context, session *entity.Session, surface entity.Surface) ([]*ConversationView, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	var convs []*entity.Conversation
	var err error
	if session.IsModerator() && surface != entity.SurfaceConversation {
		convs, err = uc.convRepo.ListBySurface(ctx, surface)
	} else {
		convs, err = uc.convRepo.ListByParticipant(ctx, surface, session.UID)
	}
	if err != nil {
		return nil, err
	}

	now := uc.now()
	missing := make(map[string]bool)
	views := make([]*ConversationView, 0, len(convs))
	for _, conv := range convs {
		side, err := inbox.SideOf(session, conv)
		if err != nil {
			continue
		}

		msgs, err := uc.convRepo.ListMessages(ctx, surface, conv.ID)
		if err != nil {
			logger.Warn("Failed to read log of %s/%s: %v", surface, conv.ID, err)
			msgs = nil
		}

		views = append(views, &ConversationView{
			Conversation: conv,
			Side:         side,
			Unread:       inbox.ComputeUnread(conv, msgs, side, now),
			AdMissing:    uc.adMissing(ctx, conv.AdID, missing),
		})
	}
	return views, nil
}

// adMissing reports whether the ad a conversation points to has been
// deleted. Lookups are memoized in seen for one listing.
func (uc *ThreadUseCase) adMissing(ctx context.Context, adID string, seen map[string]bool) bool {
	if adID == "" {
		return false
	}
	if v, ok := seen[adID]; ok {
		return v
	}
	_, err := uc.adRepo.GetByID(ctx, adID)
	missing := errors.Is(err, errors.CodeNotFound)
	if err != nil && !missing {
		logger.Warn("Failed to look up ad %s: %v", adID, err)
	}
	seen[adID] = missing
	return missing
}

// ReleaseAssignment hands a support conversation back to the pool. Only
// the holding moderator can do it, and only under the releasable policy.
func (uc *ThreadUseCase) ReleaseAssignment(ctx context.Context, session *entity.Session, id string) error {
	if err := requireModerator(session); err != nil {
		return err
	}
	err := uc.convRepo.UpdateAssignment(ctx, entity.SurfaceSupport, id, func(current *entity.Conversation) (string, error) {
		next, err := inbox.StateOf(current).Release(session.UID, uc.policy)
		if err != nil {
			return "", err
		}
		return next.Moderator, nil
	})
	if err != nil {
		return err
	}
	logger.Info("Support conversation %s released by %s", id, session.UID)
	return nil
}

// Authorize checks that session may read the conversation, started or not.
func (uc *ThreadUseCase) Authorize(ctx context.Context, session *entity.Session, surface entity.Surface, id string) error {
	conv, _, err := uc.resolve(ctx, session, surface, id)
	if err != nil {
		return err
	}
	_, err = inbox.SideOf(session, conv)
	return err
}

// Watch streams the log of a conversation to fn until ctx is done.
func (uc *ThreadUseCase) Watch(ctx context.Context, session *entity.Session, surface entity.Surface, id string, fn func(*ThreadView) error) error {
	conv, _, err := uc.resolve(ctx, session, surface, id)
	if err != nil {
		return err
	}
	side, err := inbox.SideOf(session, conv)
	if err != nil {
		return err
	}

	return uc.convRepo.WatchMessages(ctx, surface, id, func(msgs []*entity.Message) error {
		if latest, err := uc.convRepo.GetByID(ctx, surface, id); err == nil {
			conv = latest
		}
		return fn(&ThreadView{
			Conversation: &ConversationView{
				Conversation: conv,
				Side:         side,
				Unread:       inbox.ComputeUnread(conv, msgs, side, uc.now()),
			},
			Messages: msgs,
		})
	})
}

// resolve loads a conversation, or the empty one the caller may start.
func (uc *ThreadUseCase) resolve(ctx context.Context, session *entity.Session, surface entity.Surface, id string) (*entity.Conversation, bool, error) {
	if err := requireSession(session); err != nil {
		return nil, false, err
	}

	conv, err := uc.convRepo.GetByID(ctx, surface, id)
	if err == nil {
		return conv, true, nil
	}
	if !errors.Is(err, errors.CodeNotFound) {
		return nil, false, err
	}

	seed, seedErr := uc.seed(ctx, session, surface, id)
	if seedErr != nil {
		return nil, false, seedErr
	}
	return seed, false, nil
}

// seed builds the conversation session would create by sending the first
// message to surface/id.
func (uc *ThreadUseCase) seed(ctx context.Context, session *entity.Session, surface entity.Surface, id string) (*entity.Conversation, error) {
	switch surface {
	case entity.SurfaceAdChat:
		ad, err := uc.adRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if ad.UserID != session.UID && !session.IsModerator() {
			return nil, errors.Forbidden("You are not a participant of this conversation", nil)
		}
		return &entity.Conversation{
			ID:           id,
			Surface:      surface,
			Participants: []string{ad.UserID},
			Labels: map[string]string{
				entity.SideOwner:     ad.UserEmail,
				entity.SideModerator: moderationLabel,
			},
			AdID:    ad.ID,
			AdTitle: ad.Title,
		}, nil

	case entity.SurfaceSupport:
		if session.IsModerator() || id != session.UID {
			return nil, errors.NotFound("Conversation", nil)
		}
		return &entity.Conversation{
			ID:           id,
			Surface:      surface,
			Participants: []string{session.UID},
			Labels: map[string]string{
				entity.SideUser:      session.Email,
				entity.SideModerator: supportLabel,
			},
		}, nil
	}

	return nil, errors.NotFound("Conversation", nil)
}
