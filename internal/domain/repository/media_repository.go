package repository

import (
	"context"

	"github.com/Elmalamb/vdm/internal/domain/entity"
)

type MediaRepository interface {
	Create(ctx context.Context, media *entity.Media) error
	ListByAd(ctx context.Context, adID string) ([]*entity.Media, error)
	Delete(ctx context.Context, id string) error
}
