package entity

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderateur"
)

type User struct {
	ID    string `json:"id" firestore:"id"`
	Email string `json:"email" firestore:"email"`
	Role  string `json:"role" firestore:"role"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (u *User) IsModerator() bool {
	return u != nil && u.Role == RoleModerator
}
