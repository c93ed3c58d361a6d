package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Elmalamb/vdm/internal/domain/service"
)

type BlobStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
	next    int

	UploadErr error
	DeleteErr error
}

var _ service.BlobStore = (*BlobStore)(nil)

func NewBlobStore() *BlobStore {
	return &BlobStore{Objects: make(map[string][]byte)}
}

func (b *BlobStore) Upload(ctx context.Context, file io.Reader, contentType, folder string) (*service.StoredBlob, error) {
	if b.UploadErr != nil {
		return nil, b.UploadErr
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, file)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	name := fmt.Sprintf("%s/blob-%d", folder, b.next)
	url := "https://storage.googleapis.com/test-bucket/" + name
	b.Objects[url] = buf.Bytes()
	return &service.StoredBlob{URL: url, ObjectName: name, Size: n}, nil
}

func (b *BlobStore) DeleteByURL(ctx context.Context, fileURL string) error {
	if b.DeleteErr != nil {
		return b.DeleteErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Objects, fileURL)
	b.Deleted = append(b.Deleted, fileURL)
	return nil
}

// Seed registers an existing object.
func (b *BlobStore) Seed(url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Objects[url] = []byte("seed")
}

func (b *BlobStore) Has(url string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.Objects[url]
	return ok
}

func (b *BlobStore) Close() error { return nil }

// Identity is an in-memory identity provider. Tokens are "token-{uid}".
type Identity struct {
	mu        sync.Mutex
	Accounts  map[string]*Account
	Revoked   []string
	VerifyErr error
}

type Account struct {
	UID           string
	Email         string
	Password      string
	EmailVerified bool
	Claims        map[string]interface{}
}

var _ service.IdentityProvider = (*Identity)(nil)

func NewIdentity(accounts ...*Account) *Identity {
	id := &Identity{Accounts: make(map[string]*Account)}
	for _, a := range accounts {
		id.Accounts[a.UID] = a
	}
	return id
}

func Token(uid string) string { return "token-" + uid }

func (i *Identity) CreateUser(ctx context.Context, email, password string) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, a := range i.Accounts {
		if a.Email == email {
			return "", service.ErrEmailExists
		}
	}
	uid := fmt.Sprintf("uid-%d", len(i.Accounts)+1)
	i.Accounts[uid] = &Account{UID: uid, Email: email, Password: password}
	return uid, nil
}

func (i *Identity) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	return "https://example.test/verify?email=" + email, nil
}

func (i *Identity) SignInWithPassword(ctx context.Context, email, password string) (*service.SignInResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, a := range i.Accounts {
		if a.Email == email && a.Password == password {
			return &service.SignInResult{
				UID:           a.UID,
				Email:         a.Email,
				IDToken:       Token(a.UID),
				RefreshToken:  "refresh-" + a.UID,
				ExpiresIn:     "3600",
				EmailVerified: a.EmailVerified,
			}, nil
		}
	}
	return nil, service.ErrInvalidCredentials
}

func (i *Identity) VerifyIDToken(ctx context.Context, idToken string) (*service.TokenInfo, error) {
	if i.VerifyErr != nil {
		return nil, i.VerifyErr
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, a := range i.Accounts {
		if Token(a.UID) == idToken {
			return &service.TokenInfo{UID: a.UID, Email: a.Email, EmailVerified: a.EmailVerified, Claims: a.Claims}, nil
		}
	}
	return nil, service.ErrInvalidToken
}

func (i *Identity) RevokeRefreshTokens(ctx context.Context, uid string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Revoked = append(i.Revoked, uid)
	return nil
}

type RoleCache struct {
	mu    sync.Mutex
	Roles map[string]string
	Hits  int
}

var _ service.RoleCache = (*RoleCache)(nil)

func NewRoleCache() *RoleCache {
	return &RoleCache{Roles: make(map[string]string)}
}

func (c *RoleCache) Get(ctx context.Context, uid string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	role, ok := c.Roles[uid]
	if ok {
		c.Hits++
	}
	return role, ok, nil
}

func (c *RoleCache) Set(ctx context.Context, uid, role string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Roles[uid] = role
	return nil
}

type Classifier struct {
	Appropriate bool
	Err         error
	Calls       int
}

var _ service.SpamClassifier = (*Classifier)(nil)

func (c *Classifier) IsAppropriate(ctx context.Context, msg *service.VisitorNotice) (bool, error) {
	c.Calls++
	return c.Appropriate, c.Err
}

type Notifier struct {
	mu      sync.Mutex
	Notices []*service.VisitorNotice
	Err     error
}

var _ service.SellerNotifier = (*Notifier)(nil)

func (n *Notifier) NotifySeller(ctx context.Context, notice *service.VisitorNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Notices = append(n.Notices, notice)
	return nil
}
