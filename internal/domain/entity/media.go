package entity

import (
	"time"
)

const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// Media records one blob uploaded for an ad.
type Media struct {
	ID          string    `json:"id" firestore:"id"`
	URL         string    `json:"url" firestore:"url"`
	ObjectName  string    `json:"object_name" firestore:"objectName"`
	AdID        string    `json:"ad_id" firestore:"adId"`
	Kind        string    `json:"kind" firestore:"kind"`
	UploadedBy  string    `json:"uploaded_by" firestore:"uploadedBy"`
	Filename    string    `json:"filename" firestore:"filename"`
	ContentType string    `json:"content_type" firestore:"contentType"`
	Size        int64     `json:"size" firestore:"size"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
}
