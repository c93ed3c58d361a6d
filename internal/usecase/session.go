package usecase

import (
	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/pkg/errors"
)

func requireSession(session *entity.Session) error {
	if session == nil || session.UID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}
	if !session.EmailVerified {
		return errors.Unverified("Please verify your email address")
	}
	return nil
}

func requireModerator(session *entity.Session) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if !session.IsModerator() {
		return errors.Forbidden("Moderator privileges required", nil)
	}
	return nil
}
