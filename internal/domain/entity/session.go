package entity

// Session is the identity of the caller, resolved once per request from the
// ID token and passed explicitly to every use case.
type Session struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Role          string `json:"role"`
}

func (s *Session) IsModerator() bool {
	return s != nil && s.Role == RoleModerator
}

// Authenticated reports whether the session may perform gated actions.
// Accounts with an unverified email are treated as signed out.
func (s *Session) Authenticated() bool {
	return s != nil && s.UID != "" && s.EmailVerified
}
