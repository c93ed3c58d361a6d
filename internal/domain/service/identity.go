package service

import (
	"context"
	"errors"
)

var (
	ErrEmailExists        = errors.New("identity: email already in use")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrInvalidToken       = errors.New("identity: invalid token")
)

// TokenInfo is what a verified ID token tells about its holder.
type TokenInfo struct {
	UID           string
	Email         string
	EmailVerified bool
	Claims        map[string]interface{}
}

type SignInResult struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	IDToken       string `json:"id_token"`
	RefreshToken  string `json:"refresh_token"`
	ExpiresIn     string `json:"expires_in"`
	EmailVerified bool   `json:"email_verified"`
}

type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password string) (string, error)
	EmailVerificationLink(ctx context.Context, email string) (string, error)
	SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error)
	VerifyIDToken(ctx context.Context, idToken string) (*TokenInfo, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// RoleCache memoizes resolved roles by uid.
type RoleCache interface {
	Get(ctx context.Context, uid string) (string, bool, error)
	Set(ctx context.Context, uid, role string) error
}
