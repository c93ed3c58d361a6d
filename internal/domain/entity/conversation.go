package entity

import (
	"fmt"
	"time"
)

// Surface identifies one of the three chat systems. Each surface lives in
// its own collection with a "messages" sub-collection per conversation.
type Surface string

const (
	SurfaceAdChat       Surface = "ad"           // ad owner <-> moderators
	SurfaceConversation Surface = "conversation" // buyer <-> seller
	SurfaceSupport      Surface = "support"      // user or visitor <-> moderators
)

// Sides used as watermark keys. On the buyer/seller surface the side is the
// participant's uid.
const (
	SideOwner     = "owner"
	SideModerator = "moderator"
	SideUser      = "user"
)

func ParseSurface(s string) (Surface, error) {
	switch Surface(s) {
	case SurfaceAdChat, SurfaceConversation, SurfaceSupport:
		return Surface(s), nil
	}
	return "", fmt.Errorf("unknown chat surface %q", s)
}

func (s Surface) Collection() string {
	switch s {
	case SurfaceAdChat:
		return "chats"
	case SurfaceConversation:
		return "conversations"
	case SurfaceSupport:
		return "supportChats"
	}
	return ""
}

type Conversation struct {
	ID           string            `json:"id" firestore:"-"`
	Surface      Surface           `json:"surface" firestore:"surface"`
	Participants []string          `json:"participants" firestore:"participants"`
	Labels       map[string]string `json:"labels,omitempty" firestore:"labels,omitempty"`
	AdID         string            `json:"ad_id,omitempty" firestore:"adId,omitempty"`
	AdTitle      string            `json:"ad_title,omitempty" firestore:"adTitle,omitempty"`

	LastMessage          string               `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageTimestamp time.Time            `json:"last_message_timestamp" firestore:"lastMessageTimestamp"`
	LastRead             map[string]time.Time `json:"last_read" firestore:"lastRead"`

	AssignedModerator string     `json:"assigned_moderator,omitempty" firestore:"assignedModerator,omitempty"`
	AssignedAt        *time.Time `json:"assigned_at,omitempty" firestore:"assignedAt,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

// Watermark returns the last-read time of side, or the zero time.
func (c *Conversation) Watermark(side string) time.Time {
	if c == nil || c.LastRead == nil {
		return time.Time{}
	}
	return c.LastRead[side]
}

func (c *Conversation) HasParticipant(uid string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.Participants {
		if p == uid {
			return true
		}
	}
	return false
}

// Counterpart returns the first participant that is not uid.
func (c *Conversation) Counterpart(uid string) string {
	for _, p := range c.Participants {
		if p != uid {
			return p
		}
	}
	return ""
}

// Validate checks a decoded conversation document at the read boundary.
func (c *Conversation) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("conversation: missing id")
	}
	if _, err := ParseSurface(string(c.Surface)); err != nil {
		return fmt.Errorf("conversation %s: %w", c.ID, err)
	}
	switch c.Surface {
	case SurfaceConversation:
		if len(c.Participants) != 2 || c.Participants[0] == c.Participants[1] {
			return fmt.Errorf("conversation %s: expected two distinct participants, got %v", c.ID, c.Participants)
		}
	default:
		if len(c.Participants) != 1 {
			return fmt.Errorf("conversation %s: expected one participant, got %v", c.ID, c.Participants)
		}
	}
	return nil
}
