package entity

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	AdStatusPending  = "pending"
	AdStatusApproved = "approved"
	AdStatusRejected = "rejected"
)

var postalCodePattern = regexp.MustCompile(`^\d{5}$`)

type Ad struct {
	ID         string    `json:"id" firestore:"id"`
	Title      string    `json:"title" firestore:"title"`
	Price      float64   `json:"price" firestore:"price"`
	PostalCode string    `json:"postal_code" firestore:"postalCode"`
	ImageURL   string    `json:"image_url" firestore:"imageUrl"`
	VideoURL   string    `json:"video_url" firestore:"videoUrl"`
	Status     string    `json:"status" firestore:"status"`
	UserID     string    `json:"user_id" firestore:"userId"`
	UserEmail  string    `json:"user_email" firestore:"userEmail"`
	Views      int       `json:"views" firestore:"views"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" firestore:"updatedAt"`
}

func ValidPostalCode(code string) bool {
	return postalCodePattern.MatchString(code)
}

func ValidAdStatus(status string) bool {
	switch status {
	case AdStatusPending, AdStatusApproved, AdStatusRejected:
		return true
	}
	return false
}

// Validate checks a decoded ad document before it is handed to callers.
func (a *Ad) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("ad: missing id")
	}
	if a.UserID == "" {
		return fmt.Errorf("ad %s: missing owner", a.ID)
	}
	if !ValidAdStatus(a.Status) {
		return fmt.Errorf("ad %s: unknown status %q", a.ID, a.Status)
	}
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("ad %s: empty title", a.ID)
	}
	return nil
}

func (a *Ad) IsApproved() bool {
	return a.Status == AdStatusApproved
}
