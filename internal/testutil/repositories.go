// Package testutil provides in-memory implementations of the repository
// and service interfaces for use case and handler tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/internal/domain/repository"
	"github.com/Elmalamb/vdm/pkg/errors"
)

type UserRepository struct {
	mu    sync.Mutex
	Users map[string]*entity.User
	Err   error
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(users ...*entity.User) *UserRepository {
	r := &UserRepository{Users: make(map[string]*entity.User)}
	for _, u := range users {
		r.Users[u.ID] = u
	}
	return r
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	cp := *user
	r.Users[user.ID] = &cp
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.Users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

type AdRepository struct {
	mu      sync.Mutex
	Ads     map[string]*entity.Ad
	nextID  int
	Err     error
	Deleted []string

	// DeleteErr fails Delete only.
	DeleteErr error
}

var _ repository.AdRepository = (*AdRepository)(nil)

func NewAdRepository(ads ...*entity.Ad) *AdRepository {
	r := &AdRepository{Ads: make(map[string]*entity.Ad)}
	for _, a := range ads {
		r.Ads[a.ID] = a
	}
	return r
}

func (r *AdRepository) Create(ctx context.Context, ad *entity.Ad) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if ad.ID == "" {
		r.nextID++
		ad.ID = fmt.Sprintf("ad-%d", r.nextID)
	}
	if ad.CreatedAt.IsZero() {
		ad.CreatedAt = time.Now()
	}
	ad.UpdatedAt = ad.CreatedAt
	cp := *ad
	r.Ads[ad.ID] = &cp
	return nil
}

func (r *AdRepository) GetByID(ctx context.Context, id string) (*entity.Ad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	a, ok := r.Ads[id]
	if !ok {
		return nil, errors.NotFound("Ad", nil)
	}
	cp := *a
	return &cp, nil
}

func (r *AdRepository) List(ctx context.Context, filter repository.AdFilter) ([]*entity.Ad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []*entity.Ad
	for _, a := range r.Ads {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		if filter.PostalCode != "" && a.PostalCode != filter.PostalCode {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *AdRepository) Update(ctx context.Context, ad *entity.Ad) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.Ads[ad.ID]; !ok {
		return errors.NotFound("Ad", nil)
	}
	cp := *ad
	r.Ads[ad.ID] = &cp
	return nil
}

func (r *AdRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	delete(r.Ads, id)
	r.Deleted = append(r.Deleted, id)
	return nil
}

func (r *AdRepository) IncrementViews(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.Ads[id]
	if !ok {
		return errors.NotFound("Ad", nil)
	}
	a.Views++
	return nil
}

func (r *AdRepository) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.Ads[id]
	return ok
}

type MediaRepository struct {
	mu    sync.Mutex
	Items map[string]*entity.Media
	next  int
}

var _ repository.MediaRepository = (*MediaRepository)(nil)

func NewMediaRepository() *MediaRepository {
	return &MediaRepository{Items: make(map[string]*entity.Media)}
}

func (r *MediaRepository) Create(ctx context.Context, media *entity.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if media.ID == "" {
		r.next++
		media.ID = fmt.Sprintf("media-%d", r.next)
	}
	cp := *media
	r.Items[media.ID] = &cp
	return nil
}

func (r *MediaRepository) ListByAd(ctx context.Context, adID string) ([]*entity.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Media
	for _, m := range r.Items {
		if m.AdID == adID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Items, id)
	return nil
}

func (r *MediaRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Items)
}
