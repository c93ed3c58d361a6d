package firebase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"

	"github.com/Elmalamb/vdm/internal/domain/service"
)

type FirebaseAuthClient struct {
	client     *auth.Client
	apiKey     string
	httpClient *http.Client
	signInURL  string
}

func NewFirebaseAuthClient(client *auth.Client, apiKey string) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client:     client,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		signInURL:  identityToolkitURL,
	}
}

var _ service.IdentityProvider = (*FirebaseAuthClient)(nil)

func (f *FirebaseAuthClient) CreateUser(ctx context.Context, email, password string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		EmailVerified(false)

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", service.ErrEmailExists
		}
		return "", err
	}

	return user.UID, nil
}

func (f *FirebaseAuthClient) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	return f.client.EmailVerificationLink(ctx, email)
}

func (f *FirebaseAuthClient) VerifyIDToken(ctx context.Context, idToken string) (*service.TokenInfo, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidToken, err)
	}

	info := &service.TokenInfo{
		UID:    token.UID,
		Claims: token.Claims,
	}
	if email, ok := token.Claims["email"].(string); ok {
		info.Email = email
	}
	if verified, ok := token.Claims["email_verified"].(bool); ok {
		info.EmailVerified = verified
	}

	return info, nil
}

func (f *FirebaseAuthClient) RevokeRefreshTokens(ctx context.Context, uid string) error {
	return f.client.RevokeRefreshTokens(ctx, uid)
}

// TestConnection performs a cheap admin call to check credentials.
func (f *FirebaseAuthClient) TestConnection(ctx context.Context) error {
	iter := f.client.Users(ctx, "")
	_, err := iter.Next()
	if err != nil && err != iterator.Done {
		return err
	}
	return nil
}
