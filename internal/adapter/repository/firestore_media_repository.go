package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/internal/domain/repository"
	"github.com/Elmalamb/vdm/pkg/errors"
)

type firestoreMediaRepository struct {
	client *firestore.Client
}

func NewFirestoreMediaRepository(client *firestore.Client) repository.MediaRepository {
	return &firestoreMediaRepository{
		client: client,
	}
}

func (r *firestoreMediaRepository) Create(ctx context.Context, media *entity.Media) error {
	if media.ID == "" {
		media.ID = r.client.Collection("media").NewDoc().ID
	}
	if media.CreatedAt.IsZero() {
		media.CreatedAt = time.Now()
	}

	_, err := r.client.Collection("media").Doc(media.ID).Set(ctx, media)
	return storeError("Failed to record media", err)
}

func (r *firestoreMediaRepository) ListByAd(ctx context.Context, adID string) ([]*entity.Media, error) {
	iter := r.client.Collection("media").Where("adId", "==", adID).Documents(ctx)
	defer iter.Stop()

	var items []*entity.Media
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError("Failed to list media", err)
		}

		var media entity.Media
		if err := doc.DataTo(&media); err != nil {
			return nil, errors.Internal("Failed to parse media data", err)
		}
		if media.ID == "" {
			media.ID = doc.Ref.ID
		}
		items = append(items, &media)
	}

	return items, nil
}

func (r *firestoreMediaRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("media").Doc(id).Delete(ctx)
	return storeError("Failed to delete media", err)
}
