package repository

import (
	"context"

	"github.com/Elmalamb/vdm/internal/domain/entity"
)

// AdFilter narrows ad listings. Empty fields are not applied.
type AdFilter struct {
	Status     string
	UserID     string
	PostalCode string
}

type AdRepository interface {
	Create(ctx context.Context, ad *entity.Ad) error
	GetByID(ctx context.Context, id string) (*entity.Ad, error)
	List(ctx context.Context, filter AdFilter) ([]*entity.Ad, error)
	Update(ctx context.Context, ad *entity.Ad) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}
