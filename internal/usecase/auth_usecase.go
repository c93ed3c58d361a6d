package usecase

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/internal/domain/repository"
	"github.com/Elmalamb/vdm/internal/domain/service"
	"github.com/Elmalamb/vdm/pkg/errors"
	"github.com/Elmalamb/vdm/pkg/logger"
)

const minPasswordLength = 6

var validate = validator.New()

type AuthUseCase struct {
	userRepo repository.UserRepository
	identity service.IdentityProvider
	roles    service.RoleCache
}

func NewAuthUseCase(userRepo repository.UserRepository, identity service.IdentityProvider, roles service.RoleCache) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		identity: identity,
		roles:    roles,
	}
}

type SignUpInput struct {
	Email    string
	Password string
}

// SignUp creates the identity account and its users document. The account
// stays unusable until the email is verified.
func (uc *AuthUseCase) SignUp(ctx context.Context, input SignUpInput) (*entity.User, error) {
	email := strings.TrimSpace(input.Email)
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, errors.Validation("email must be a valid email address")
	}
	if len(input.Password) < minPasswordLength {
		return nil, errors.Validation("password must be at least 6 characters")
	}

	uid, err := uc.identity.CreateUser(ctx, email, input.Password)
	if err != nil {
		if stderrors.Is(err, service.ErrEmailExists) {
			return nil, errors.Conflict("Email already in use")
		}
		return nil, errors.Unavailable("Failed to create user in authentication provider", err)
	}

	now := time.Now()
	user := &entity.User{
		ID:        uid,
		Email:     email,
		Role:      entity.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	link, err := uc.identity.EmailVerificationLink(ctx, email)
	if err != nil {
		logger.Warn("Failed to generate verification link for %s: %v", uid, err)
	} else {
		logger.Info("Verification link for %s: %s", email, link)
	}

	return user, nil
}

func (uc *AuthUseCase) SignIn(ctx context.Context, email, password string) (*service.SignInResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errors.Validation("email and password are required")
	}

	result, err := uc.identity.SignInWithPassword(ctx, strings.TrimSpace(email), password)
	if err != nil {
		if stderrors.Is(err, service.ErrInvalidCredentials) {
			return nil, errors.Unauthorized("Invalid credentials", err)
		}
		logger.Error("Sign-in failed: %v", err)
		return nil, errors.Unavailable("Authentication service unavailable", err)
	}

	if !result.EmailVerified {
		return nil, errors.Unverified("Please verify your email address before signing in")
	}
	return result, nil
}

func (uc *AuthUseCase) SignOut(ctx context.Context, session *entity.Session) error {
	if session == nil || session.UID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}
	if err := uc.identity.RevokeRefreshTokens(ctx, session.UID); err != nil {
		return errors.Unavailable("Failed to sign out", err)
	}
	return nil
}

// ResolveSession verifies idToken and resolves the caller's role once for
// the whole request.
func (uc *AuthUseCase) ResolveSession(ctx context.Context, idToken string) (*entity.Session, error) {
	info, err := uc.identity.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}

	role, err := uc.resolveRole(ctx, info)
	if err != nil {
		return nil, err
	}

	return &entity.Session{
		UID:           info.UID,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		Role:          role,
	}, nil
}

func (uc *AuthUseCase) resolveRole(ctx context.Context, info *service.TokenInfo) (string, error) {
	if moderator, ok := info.Claims["moderator"].(bool); ok && moderator {
		return entity.RoleModerator, nil
	}

	if role, ok, err := uc.roles.Get(ctx, info.UID); err != nil {
		logger.Warn("Role cache lookup failed for %s: %v", info.UID, err)
	} else if ok {
		return role, nil
	}

	role := entity.RoleUser
	user, err := uc.userRepo.GetByID(ctx, info.UID)
	switch {
	case err == nil:
		if user.Role != "" {
			role = user.Role
		}
	case errors.Is(err, errors.CodeNotFound):
	default:
		return "", err
	}

	if err := uc.roles.Set(ctx, info.UID, role); err != nil {
		logger.Warn("Role cache update failed for %s: %v", info.UID, err)
	}
	return role, nil
}
