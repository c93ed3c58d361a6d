package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/internal/domain/repository"
	"github.com/Elmalamb/vdm/pkg/errors"
	"github.com/Elmalamb/vdm/pkg/logger"
)

type firestoreAdRepository struct {
	client *firestore.Client
}

func NewFirestoreAdRepository(client *firestore.Client) repository.AdRepository {
	return &firestoreAdRepository{
		client: client,
	}
}

func (r *firestoreAdRepository) ads() *firestore.CollectionRef {
	return r.client.Collection("ads")
}

func (r *firestoreAdRepository) Create(ctx context.Context, ad *entity.Ad) error {
	if ad.ID == "" {
		ad.ID = r.ads().NewDoc().ID
	}

	now := time.Now()
	if ad.CreatedAt.IsZero() {
		ad.CreatedAt = now
	}
	ad.UpdatedAt = now

	_, err := r.ads().Doc(ad.ID).Set(ctx, ad)
	return storeError("Failed to create ad", err)
}

func (r *firestoreAdRepository) GetByID(ctx context.Context, id string) (*entity.Ad, error) {
	doc, err := r.ads().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Ad", err)
		}
		return nil, storeError("Failed to get ad", err)
	}

	ad, err := decodeAd(doc)
	if err != nil {
		return nil, errors.Internal("Failed to parse ad data", err)
	}
	return ad, nil
}

// List returns the ads matching filter, newest first. Documents that fail
// validation are skipped.
func (r *firestoreAdRepository) List(ctx context.Context, filter repository.AdFilter) ([]*entity.Ad, error) {
	query := r.ads().Query
	if filter.Status != "" {
		query = query.Where("status", "==", filter.Status)
	}
	if filter.UserID != "" {
		query = query.Where("userId", "==", filter.UserID)
	}
	if filter.PostalCode != "" {
		query = query.Where("postalCode", "==", filter.PostalCode)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var ads []*entity.Ad
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError("Failed to list ads", err)
		}
		ad, err := decodeAd(doc)
		if err != nil {
			logger.Warn("Skipping malformed ad %s: %v", doc.Ref.ID, err)
			continue
		}
		ads = append(ads, ad)
	}

	sort.SliceStable(ads, func(i, j int) bool {
		return ads[i].CreatedAt.After(ads[j].CreatedAt)
	})
	return ads, nil
}

func (r *firestoreAdRepository) Update(ctx context.Context, ad *entity.Ad) error {
	ad.UpdatedAt = time.Now()

	_, err := r.ads().Doc(ad.ID).Set(ctx, ad)
	return storeError("Failed to update ad", err)
}

func (r *firestoreAdRepository) Delete(ctx context.Context, id string) error {
	_, err := r.ads().Doc(id).Delete(ctx)
	return storeError("Failed to delete ad", err)
}

func (r *firestoreAdRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.ads().Doc(id).Update(ctx, []firestore.Update{
		{Path: "views", Value: firestore.Increment(1)},
	})
	if isNotFound(err) {
		return errors.NotFound("Ad", err)
	}
	return storeError("Failed to increment ad views", err)
}

func decodeAd(doc *firestore.DocumentSnapshot) (*entity.Ad, error) {
	var ad entity.Ad
	if err := doc.DataTo(&ad); err != nil {
		return nil, err
	}
	if ad.ID == "" {
		ad.ID = doc.Ref.ID
	}
	if err := ad.Validate(); err != nil {
		return nil, err
	}
	return &ad, nil
}
