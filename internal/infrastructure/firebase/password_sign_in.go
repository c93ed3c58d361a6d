package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Elmalamb/vdm/internal/domain/service"
)

const identityToolkitURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignInWithPassword exchanges credentials for an ID token. The Admin SDK
// has no password sign-in, so this goes through the public REST endpoint.
func (f *FirebaseAuthClient) SignInWithPassword(ctx context.Context, email, password string) (*service.SignInResult, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("firebase api key is not configured")
	}

	body, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.signInURL+"?key="+f.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode sign-in response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || out.Error != nil {
		reason := ""
		if out.Error != nil {
			reason = out.Error.Message
		}
		if isCredentialError(reason) {
			return nil, service.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("sign-in failed with status %d: %s", resp.StatusCode, reason)
	}

	user, err := f.client.GetUser(ctx, out.LocalID)
	if err != nil {
		return nil, err
	}

	return &service.SignInResult{
		UID:           out.LocalID,
		Email:         out.Email,
		IDToken:       out.IDToken,
		RefreshToken:  out.RefreshToken,
		ExpiresIn:     out.ExpiresIn,
		EmailVerified: user.EmailVerified,
	}, nil
}

func isCredentialError(reason string) bool {
	for _, code := range []string{"EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED", "INVALID_EMAIL"} {
		if strings.HasPrefix(reason, code) {
			return true
		}
	}
	return false
}
