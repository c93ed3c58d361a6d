package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Elmalamb/vdm/internal/adapter/api"
	"github.com/Elmalamb/vdm/internal/adapter/api/middleware"
	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/internal/domain/inbox"
	"github.com/Elmalamb/vdm/internal/infrastructure/ratelimit"
	"github.com/Elmalamb/vdm/internal/testutil"
	"github.com/Elmalamb/vdm/internal/usecase"
	"github.com/Elmalamb/vdm/pkg/response"
)

type fixture struct {
	e          *echo.Echo
	ads        *testutil.AdRepository
	media      *testutil.MediaRepository
	blobs      *testutil.BlobStore
	convs      *testutil.ConversationRepository
	identity   *testutil.Identity
	classifier *testutil.Classifier
	notifier   *testutil.Notifier
}

func approvedAd() *entity.Ad {
	return &entity.Ad{
		ID:         "AD1",
		Title:      "Vélo de course",
		Price:      250,
		PostalCode: "75011",
		ImageURL:   "https://storage.googleapis.com/test-bucket/ads/U1/img.jpg",
		VideoURL:   "https://storage.googleapis.com/test-bucket/ads/U1/vid.mp4",
		Status:     entity.AdStatusApproved,
		UserID:     "U1",
		UserEmail:  "seller@x.fr",
		CreatedAt:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ads:   testutil.NewAdRepository(approvedAd()),
		media: testutil.NewMediaRepository(),
		blobs: testutil.NewBlobStore(),
		convs: testutil.NewConversationRepository(testutil.NewClock()),
		identity: testutil.NewIdentity(
			&testutil.Account{UID: "U1", Email: "seller@x.fr", Password: "secret1", EmailVerified: true},
			&testutil.Account{UID: "U2", Email: "buyer@x.fr", Password: "secret1", EmailVerified: true},
			&testutil.Account{UID: "M1", Email: "m1@x.fr", Password: "secret1", EmailVerified: true},
		),
		classifier: &testutil.Classifier{Appropriate: true},
		notifier:   &testutil.Notifier{},
	}
	f.blobs.Seed(approvedAd().ImageURL)
	f.blobs.Seed(approvedAd().VideoURL)

	users := testutil.NewUserRepository(&entity.User{ID: "M1", Email: "m1@x.fr", Role: entity.RoleModerator})
	authUseCase := usecase.NewAuthUseCase(users, f.identity, testutil.NewRoleCache())
	adUseCase := usecase.NewAdUseCase(f.ads, f.media, f.blobs, 1<<20)
	threadUseCase := usecase.NewThreadUseCase(f.convs, f.ads, inbox.PolicySticky, ratelimit.NewRateLimiter(100))
	relayUseCase := usecase.NewRelayUseCase(f.convs, f.classifier, f.notifier)

	auth := middleware.NewAuthMiddleware(authUseCase)
	authHandler := NewAuthHandler(authUseCase)
	adHandler := NewAdHandler(adUseCase)
	moderationHandler := NewModerationHandler(adUseCase)
	threadHandler := NewThreadHandler(threadUseCase)
	functionHandler := NewFunctionHandler(adUseCase, relayUseCase)

	e := echo.New()
	e.Validator = api.NewValidator()

	e.POST("/v1/auth/signup", authHandler.SignUp)
	e.POST("/v1/auth/signin", authHandler.SignIn)
	e.POST("/v1/auth/signout", authHandler.SignOut, auth.Authenticate)
	e.GET("/v1/auth/me", authHandler.Me, auth.Authenticate)

	e.GET("/v1/ads", adHandler.ListAds)
	e.GET("/v1/ads/:id", adHandler.GetAd, auth.OptionalAuth)
	e.GET("/v1/my-ads", adHandler.ListMyAds, auth.Authenticate)
	e.POST("/v1/my-ads", adHandler.SubmitAd, auth.Authenticate)
	e.PUT("/v1/my-ads/:id", adHandler.UpdateAd, auth.Authenticate)
	e.POST("/v1/ads/:id/conversations", threadHandler.StartConversation, auth.Authenticate)

	e.GET("/v1/moderation/ads", moderationHandler.ListAds, auth.Authenticate, middleware.ModeratorOnly)
	e.PUT("/v1/moderation/ads/:id/status", moderationHandler.SetStatus, auth.Authenticate, middleware.ModeratorOnly)

	threads := e.Group("/v1/threads", auth.Authenticate)
	threads.GET("/:surface", threadHandler.ListInbox)
	threads.GET("/:surface/:id", threadHandler.Open)
	threads.GET("/:surface/:id/messages", threadHandler.ListMessages)
	threads.POST("/:surface/:id/messages", threadHandler.Send)
	threads.POST("/:surface/:id/read", threadHandler.MarkRead)
	threads.POST("/support/:id/release", threadHandler.Release)

	e.POST("/v1/functions/deleteAd", functionHandler.DeleteAd, auth.OptionalAuth)
	e.POST("/v1/functions/sendVisitorMessage", functionHandler.SendVisitorMessage)

	f.e = e
	return f
}

func (f *fixture) do(t *testing.T, method, path, uid string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return f.send(req, uid)
}

func (f *fixture) send(req *http.Request, uid string) *httptest.ResponseRecorder {
	if uid != "" {
		req.Header.Set("Authorization", "Bearer "+testutil.Token(uid))
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

// envelope decodes a response.Response with its data into v.
func envelope(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) response.Response {
	t.Helper()

	var raw struct {
		response.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw), rec.Body.String())
	if v != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, v))
	}
	return raw.Response
}

func callable(t *testing.T, rec *httptest.ResponseRecorder) response.FunctionResponse {
	t.Helper()

	var res response.FunctionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return res
}

func contains(body *bytes.Buffer, s string) bool {
	return strings.Contains(body.String(), s)
}
