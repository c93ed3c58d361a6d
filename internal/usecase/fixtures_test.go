package usecase

import (
	"time"

	"github.com/Elmalamb/vdm/internal/domain/entity"
)

var (
	seller = &entity.Session{UID: "U1", Email: "seller@x.fr", EmailVerified: true, Role: entity.RoleUser}
	buyer  = &entity.Session{UID: "U2", Email: "buyer@x.fr", EmailVerified: true, Role: entity.RoleUser}
	mod1   = &entity.Session{UID: "M1", Email: "m1@x.fr", EmailVerified: true, Role: entity.RoleModerator}
	mod2   = &entity.Session{UID: "M2", Email: "m2@x.fr", EmailVerified: true, Role: entity.RoleModerator}
)

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
