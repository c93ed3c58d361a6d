package inbox

import (
	"regexp"
	"strings"

	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/pkg/errors"
)

// SideOf returns the side session acts as on conv. Access is denied when
// the session is neither a participant nor a moderator allowed on the
// surface.
func SideOf(session *entity.Session, conv *entity.Conversation) (string, error) {
	if session == nil || session.UID == "" {
		return "", errors.Unauthorized("Authentication required", nil)
	}

	switch conv.Surface {
	case entity.SurfaceAdChat:
		if session.IsModerator() {
			return entity.SideModerator, nil
		}
		if conv.HasParticipant(session.UID) {
			return entity.SideOwner, nil
		}
	case entity.SurfaceSupport:
		if session.IsModerator() {
			return entity.SideModerator, nil
		}
		if conv.HasParticipant(session.UID) {
			return entity.SideUser, nil
		}
	case entity.SurfaceConversation:
		if conv.HasParticipant(session.UID) {
			return session.UID, nil
		}
	}
	return "", errors.Forbidden("You are not a participant of this conversation", nil)
}

// ConversationKey derives the buyer/seller conversation id for an ad.
func ConversationKey(adID, buyerUID string) string {
	return adID + "_" + buyerUID
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

// VisitorKey derives the support conversation id of a signed-out visitor
// writing about an ad: "a@b.com" and "AD1" give "a_b_com_AD1".
func VisitorKey(visitorEmail, adID string) string {
	email := unsafeKeyChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(visitorEmail)), "_")
	return strings.Trim(email, "_") + "_" + unsafeKeyChars.ReplaceAllString(adID, "_")
}
