package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/internal/testutil"
	"github.com/Elmalamb/vdm/pkg/errors"
)

func newAuthFixture(accounts ...*testutil.Account) (*AuthUseCase, *testutil.UserRepository, *testutil.Identity, *testutil.RoleCache) {
	users := testutil.NewUserRepository()
	identity := testutil.NewIdentity(accounts...)
	roles := testutil.NewRoleCache()
	return NewAuthUseCase(users, identity, roles), users, identity, roles
}

func TestSignUp(t *testing.T) {
	uc, users, _, _ := newAuthFixture()

	user, err := uc.SignUp(context.Background(), SignUpInput{Email: " new@x.fr ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "new@x.fr", user.Email)
	assert.Equal(t, entity.RoleUser, user.Role)

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, stored.Role)

	_, err = uc.SignUp(context.Background(), SignUpInput{Email: "new@x.fr", Password: "secret1"})
	assert.True(t, errors.Is(err, errors.CodeConflict))
}

func TestSignUp_Validation(t *testing.T) {
	uc, _, _, _ := newAuthFixture()

	_, err := uc.SignUp(context.Background(), SignUpInput{Email: "not-an-email", Password: "secret1"})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = uc.SignUp(context.Background(), SignUpInput{Email: "a@b.fr", Password: "12345"})
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestSignIn(t *testing.T) {
	uc, _, _, _ := newAuthFixture(
		&testutil.Account{UID: "U1", Email: "ok@x.fr", Password: "secret1", EmailVerified: true},
		&testutil.Account{UID: "U2", Email: "new@x.fr", Password: "secret1"},
	)
	ctx := context.Background()

	res, err := uc.SignIn(ctx, "ok@x.fr", "secret1")
	require.NoError(t, err)
	assert.Equal(t, testutil.Token("U1"), res.IDToken)

	_, err = uc.SignIn(ctx, "ok@x.fr", "wrong")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	_, err = uc.SignIn(ctx, "new@x.fr", "secret1")
	assert.True(t, errors.Is(err, errors.CodeUnverified))
}

func TestSignOut(t *testing.T) {
	uc, _, identity, _ := newAuthFixture()

	require.NoError(t, uc.SignOut(context.Background(), seller))
	assert.Equal(t, []string{"U1"}, identity.Revoked)

	assert.True(t, errors.Is(uc.SignOut(context.Background(), nil), errors.CodeUnauthorized))
}

func TestResolveSession_RoleFromClaim(t *testing.T) {
	uc, _, _, roles := newAuthFixture(&testutil.Account{
		UID: "M1", Email: "m@x.fr", EmailVerified: true,
		Claims: map[string]interface{}{"moderator": true},
	})

	s, err := uc.ResolveSession(context.Background(), testutil.Token("M1"))
	require.NoError(t, err)
	assert.True(t, s.IsModerator())
	assert.True(t, s.EmailVerified)
	assert.Empty(t, roles.Roles)
}

func TestResolveSession_RoleFromUserDocumentIsCached(t *testing.T) {
	uc, users, _, roles := newAuthFixture(&testutil.Account{UID: "M2", Email: "m2@x.fr", EmailVerified: true})
	users.Users["M2"] = &entity.User{ID: "M2", Email: "m2@x.fr", Role: entity.RoleModerator}
	ctx := context.Background()

	s, err := uc.ResolveSession(ctx, testutil.Token("M2"))
	require.NoError(t, err)
	assert.True(t, s.IsModerator())
	assert.Equal(t, entity.RoleModerator, roles.Roles["M2"])

	users.Users["M2"].Role = entity.RoleUser
	s, err = uc.ResolveSession(ctx, testutil.Token("M2"))
	require.NoError(t, err)
	assert.True(t, s.IsModerator(), "served from cache")
	assert.Equal(t, 1, roles.Hits)
}

func TestResolveSession_MissingUserDocumentIsPlainUser(t *testing.T) {
	uc, _, _, _ := newAuthFixture(&testutil.Account{UID: "U7", Email: "u7@x.fr"})

	s, err := uc.ResolveSession(context.Background(), testutil.Token("U7"))
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, s.Role)
	assert.False(t, s.Authenticated(), "unverified email")
}

func TestResolveSession_InvalidToken(t *testing.T) {
	uc, _, _, _ := newAuthFixture()

	_, err := uc.ResolveSession(context.Background(), "garbage")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}
