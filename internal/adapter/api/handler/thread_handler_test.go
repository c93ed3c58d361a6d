package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elmalamb/vdm/internal/domain/entity"
)

type inboxEntry struct {
	ID        string `json:"id"`
	Side      string `json:"side"`
	Unread    bool   `json:"unread"`
	AdMissing bool   `json:"ad_missing"`
}

func (f *fixture) inbox(t *testing.T, uid, surface string) []inboxEntry {
	t.Helper()
	rec := f.do(t, http.MethodGet, "/v1/threads/"+surface, uid, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var entries []inboxEntry
	envelope(t, rec, &entries)
	return entries
}

func TestBuyerSellerConversation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/ads/AD1/conversations", "U2", map[string]string{"text": "Toujours dispo ?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	entries := f.inbox(t, "U1", "conversation")
	require.Len(t, entries, 1)
	assert.Equal(t, "AD1_U2", entries[0].ID)
	assert.Equal(t, "U1", entries[0].Side)
	assert.True(t, entries[0].Unread)

	rec = f.do(t, http.MethodGet, "/v1/threads/conversation/AD1_U2", "U1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Conversation inboxEntry        `json:"conversation"`
		Messages     []*entity.Message `json:"messages"`
	}
	envelope(t, rec, &view)
	assert.True(t, view.Conversation.Unread)
	require.Len(t, view.Messages, 1)
	assert.Equal(t, "Toujours dispo ?", view.Messages[0].Text)

	assert.False(t, f.inbox(t, "U1", "conversation")[0].Unread)
	assert.False(t, f.inbox(t, "U2", "conversation")[0].Unread)

	rec = f.do(t, http.MethodPost, "/v1/threads/conversation/AD1_U2/messages", "U1", map[string]string{"text": "Oui"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, f.inbox(t, "U2", "conversation")[0].Unread)

	rec = f.do(t, http.MethodPost, "/v1/threads/conversation/AD1_U2/read", "U2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, f.inbox(t, "U2", "conversation")[0].Unread)

	rec = f.do(t, http.MethodGet, "/v1/threads/conversation/AD1_U2/messages", "U2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []*entity.Message
	envelope(t, rec, &msgs)
	assert.Len(t, msgs, 2)
}

func TestThreadAccess(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/ads/AD1/conversations", "U1", map[string]string{"text": "moi-même"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/ads/AD1/conversations", "U2", map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/ads/AD1/conversations", "U2", map[string]string{"text": "Bonjour"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/threads/conversation/AD1_U2", "M1", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/threads/conversation/AD1_U2", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/threads/gossip", "U1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdChatWithModerators(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/threads/ad/AD1/messages", "U1", map[string]string{"text": "Pourquoi refusé ?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	entries := f.inbox(t, "M1", "ad")
	require.Len(t, entries, 1)
	assert.Equal(t, entity.SideModerator, entries[0].Side)
	assert.True(t, entries[0].Unread)

	rec = f.do(t, http.MethodPost, "/v1/threads/ad/AD1/messages", "U2", map[string]string{"text": "intrus"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSupportAssignment(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/threads/support/U2/messages", "U2", map[string]string{"text": "Aide"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/v1/threads/support/U2/messages", "M1", map[string]string{"text": "Je regarde"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "M1", f.convs.Raw(entity.SurfaceSupport, "U2").AssignedModerator)

	// Sticky policy: the holder cannot hand the conversation back.
	rec = f.do(t, http.MethodPost, "/v1/threads/support/U2/release", "M1", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
