package entity

// ViewerKind is the closed set of relations a caller can have to an ad.
type ViewerKind int

const (
	ViewerVisitor ViewerKind = iota
	ViewerOwner
	ViewerModerator
	ViewerCounterpartyBuyer
)

func (k ViewerKind) String() string {
	switch k {
	case ViewerOwner:
		return "owner"
	case ViewerModerator:
		return "moderator"
	case ViewerCounterpartyBuyer:
		return "buyer"
	default:
		return "visitor"
	}
}

func (k ViewerKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type Permissions struct {
	CanView             bool `json:"can_view"`
	CanEdit             bool `json:"can_edit"`
	CanModerate         bool `json:"can_moderate"`
	CanDelete           bool `json:"can_delete"`
	CanChatModeration   bool `json:"can_chat_moderation"`
	CanMessageSeller    bool `json:"can_message_seller"`
	CanContactAsVisitor bool `json:"can_contact_as_visitor"`
}

// ResolveViewer classifies session against ad. A nil or unverified session
// is a visitor.
func ResolveViewer(session *Session, ad *Ad) ViewerKind {
	switch {
	case !session.Authenticated():
		return ViewerVisitor
	case session.IsModerator():
		return ViewerModerator
	case ad != nil && ad.UserID == session.UID:
		return ViewerOwner
	default:
		return ViewerCounterpartyBuyer
	}
}

// PermissionsFor is the single permission dispatch for ad views.
func PermissionsFor(kind ViewerKind, ad *Ad) Permissions {
	approved := ad != nil && ad.IsApproved()

	switch kind {
	case ViewerModerator:
		return Permissions{
			CanView:           true,
			CanModerate:       true,
			CanDelete:         true,
			CanChatModeration: true,
		}
	case ViewerOwner:
		return Permissions{
			CanView:           true,
			CanEdit:           true,
			CanChatModeration: true,
		}
	case ViewerCounterpartyBuyer:
		return Permissions{
			CanView:          approved,
			CanMessageSeller: approved,
		}
	default:
		return Permissions{
			CanView:             approved,
			CanContactAsVisitor: approved,
		}
	}
}
