package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/internal/domain/repository"
	"github.com/Elmalamb/vdm/internal/domain/service"
	"github.com/Elmalamb/vdm/pkg/errors"
	"github.com/Elmalamb/vdm/pkg/logger"
)

const minTitleLength = 5

type AdUseCase struct {
	adRepo        repository.AdRepository
	mediaRepo     repository.MediaRepository
	blobs         service.BlobStore
	maxMediaBytes int64
}

func NewAdUseCase(adRepo repository.AdRepository, mediaRepo repository.MediaRepository, blobs service.BlobStore, maxMediaBytes int64) *AdUseCase {
	return &AdUseCase{
		adRepo:        adRepo,
		mediaRepo:     mediaRepo,
		blobs:         blobs,
		maxMediaBytes: maxMediaBytes,
	}
}

// MediaUpload is one file of an ad submission.
type MediaUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

type SubmitAdInput struct {
	Title      string
	Price      float64
	PostalCode string
	Image      *MediaUpload
	Video      *MediaUpload
}

type UpdateAdInput struct {
	Title      string
	PostalCode string
}

// AdView is an ad as seen by one caller.
type AdView struct {
	Ad          *entity.Ad         `json:"ad"`
	Viewer      entity.ViewerKind  `json:"viewer"`
	Permissions entity.Permissions `json:"permissions"`
}

func validateTitle(title string) error {
	if len([]rune(strings.TrimSpace(title))) < minTitleLength {
		return errors.Validation("title must be at least 5 characters")
	}
	return nil
}

func validatePostalCode(code string) error {
	if !entity.ValidPostalCode(code) {
		return errors.Validation("postalcode must contain 5 digits")
	}
	return nil
}

func (uc *AdUseCase) validateMedia(m *MediaUpload, kind string) error {
	if m == nil || m.Reader == nil {
		return errors.Validation(kind + " is required")
	}
	if !strings.HasPrefix(m.ContentType, kind+"/") {
		return errors.Validation(fmt.Sprintf("%s must be a %s file", kind, kind))
	}
	if m.Size <= 0 || m.Size >= uc.maxMediaBytes {
		return errors.Validation(fmt.Sprintf("%s must be smaller than %d MB", kind, uc.maxMediaBytes/(1024*1024)))
	}
	return nil
}

func (uc *AdUseCase) Submit(ctx context.Context, session *entity.Session, input SubmitAdInput) (*entity.Ad, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if session.IsModerator() {
		return nil, errors.Forbidden("Moderators cannot submit ads", nil)
	}

	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}
	if input.Price <= 0 {
		return nil, errors.Validation("price must be greater than 0")
	}
	if err := validatePostalCode(input.PostalCode); err != nil {
		return nil, err
	}
	if err := uc.validateMedia(input.Image, entity.MediaKindImage); err != nil {
		return nil, err
	}
	if err := uc.validateMedia(input.Video, entity.MediaKindVideo); err != nil {
		return nil, err
	}

	folder := "ads/" + session.UID
	image, err := uc.blobs.Upload(ctx, io.LimitReader(input.Image.Reader, uc.maxMediaBytes), input.Image.ContentType, folder)
	if err != nil {
		return nil, errors.Unavailable("Failed to upload image", err)
	}
	video, err := uc.blobs.Upload(ctx, io.LimitReader(input.Video.Reader, uc.maxMediaBytes), input.Video.ContentType, folder)
	if err != nil {
		uc.discardBlobs(ctx, image.URL)
		return nil, errors.Unavailable("Failed to upload video", err)
	}

	ad := &entity.Ad{
		Title:      strings.TrimSpace(input.Title),
		Price:      input.Price,
		PostalCode: input.PostalCode,
		ImageURL:   image.URL,
		VideoURL:   video.URL,
		Status:     entity.AdStatusPending,
		UserID:     session.UID,
		UserEmail:  session.Email,
	}
	if err := uc.adRepo.Create(ctx, ad); err != nil {
		uc.discardBlobs(ctx, image.URL, video.URL)
		return nil, err
	}

	uc.recordMedia(ctx, ad, session.UID, entity.MediaKindImage, input.Image, image)
	uc.recordMedia(ctx, ad, session.UID, entity.MediaKindVideo, input.Video, video)

	logger.Info("Ad %s submitted by %s", ad.ID, session.UID)
	return ad, nil
}

func (uc *AdUseCase) recordMedia(ctx context.Context, ad *entity.Ad, uploader, kind string, upload *MediaUpload, blob *service.StoredBlob) {
	media := &entity.Media{
		URL:         blob.URL,
		ObjectName:  blob.ObjectName,
		AdID:        ad.ID,
		Kind:        kind,
		UploadedBy:  uploader,
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		Size:        blob.Size,
		CreatedAt:   ad.CreatedAt,
	}
	if err := uc.mediaRepo.Create(ctx, media); err != nil {
		logger.Warn("Failed to record %s metadata for ad %s: %v", kind, ad.ID, err)
	}
}

func (uc *AdUseCase) discardBlobs(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if err := uc.blobs.DeleteByURL(ctx, url); err != nil {
			logger.Warn("Failed to remove orphaned blob %s: %v", url, err)
		}
	}
}

// ListApproved is the public listing, optionally narrowed to one postal
// code.
func (uc *AdUseCase) ListApproved(ctx context.Context, postalCode string) ([]*entity.Ad, error) {
	postalCode = strings.TrimSpace(postalCode)
	if postalCode != "" {
		if err := validatePostalCode(postalCode); err != nil {
			return nil, err
		}
	}
	return uc.adRepo.List(ctx, repository.AdFilter{Status: entity.AdStatusApproved, PostalCode: postalCode})
}

func (uc *AdUseCase) ListMine(ctx context.Context, session *entity.Session) ([]*entity.Ad, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	return uc.adRepo.List(ctx, repository.AdFilter{UserID: session.UID})
}

// GetAd returns the ad with the caller's permissions. Ads the caller may
// not see are reported as missing.
func (uc *AdUseCase) GetAd(ctx context.Context, session *entity.Session, id string) (*AdView, error) {
	ad, err := uc.adRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	kind := entity.ResolveViewer(session, ad)
	perms := entity.PermissionsFor(kind, ad)
	if !perms.CanView {
		return nil, errors.NotFound("Ad", nil)
	}

	if kind != entity.ViewerOwner {
		if err := uc.adRepo.IncrementViews(ctx, ad.ID); err != nil {
			logger.Warn("Failed to count view of ad %s: %v", ad.ID, err)
		} else {
			ad.Views++
		}
	}

	return &AdView{Ad: ad, Viewer: kind, Permissions: perms}, nil
}

func (uc *AdUseCase) UpdateAd(ctx context.Context, session *entity.Session, id string, input UpdateAdInput) (*entity.Ad, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}
	if err := validatePostalCode(input.PostalCode); err != nil {
		return nil, err
	}

	ad, err := uc.adRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.PermissionsFor(entity.ResolveViewer(session, ad), ad).CanEdit {
		return nil, errors.Forbidden("You can only edit your own ads", nil)
	}

	ad.Title = strings.TrimSpace(input.Title)
	ad.PostalCode = input.PostalCode
	if err := uc.adRepo.Update(ctx, ad); err != nil {
		return nil, err
	}
	return ad, nil
}

func (uc *AdUseCase) ListForModeration(ctx context.Context, session *entity.Session, status string) ([]*entity.Ad, error) {
	if err := requireModerator(session); err != nil {
		return nil, err
	}
	if status != "" && !entity.ValidAdStatus(status) {
		return nil, errors.Validation("status must be one of: pending approved rejected")
	}
	return uc.adRepo.List(ctx, repository.AdFilter{Status: status})
}

func (uc *AdUseCase) SetStatus(ctx context.Context, session *entity.Session, id, status string) (*entity.Ad, error) {
	if err := requireModerator(session); err != nil {
		return nil, err
	}
	if !entity.ValidAdStatus(status) {
		return nil, errors.Validation("status must be one of: pending approved rejected")
	}

	ad, err := uc.adRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ad.Status = status
	if err := uc.adRepo.Update(ctx, ad); err != nil {
		return nil, err
	}

	logger.Info("Ad %s set to %s by moderator %s", ad.ID, status, session.UID)
	return ad, nil
}

// DeleteAd removes the ad's image and video blobs, then the ad document and
// finally its media records. Conversations that reference the ad are kept.
func (uc *AdUseCase) DeleteAd(ctx context.Context, session *entity.Session, adID string) error {
	if session == nil || session.UID == "" {
		return errors.Unauthorized("The function must be called while authenticated.", nil)
	}
	adID = strings.TrimSpace(adID)
	if adID == "" {
		return errors.BadRequest("The function must be called with a string 'adId' argument.", nil)
	}
	if !session.IsModerator() {
		return errors.Forbidden("You must be a moderator to perform this action.", nil)
	}

	ad, err := uc.adRepo.GetByID(ctx, adID)
	if err != nil {
		return err
	}

	for _, url := range []string{ad.ImageURL, ad.VideoURL} {
		if url == "" {
			continue
		}
		if err := uc.blobs.DeleteByURL(ctx, url); err != nil {
			logger.Error("Failed to delete blob %s of ad %s: %v", url, adID, err)
			return errors.Internal("Failed to delete ad media", err)
		}
	}

	media, err := uc.mediaRepo.ListByAd(ctx, adID)
	if err != nil {
		logger.Warn("Failed to list media of ad %s: %v", adID, err)
	}
	for _, m := range media {
		if m.URL == ad.ImageURL || m.URL == ad.VideoURL {
			continue
		}
		if err := uc.blobs.DeleteByURL(ctx, m.URL); err != nil {
			logger.Warn("Failed to delete extra blob %s of ad %s: %v", m.URL, adID, err)
		}
	}

	if err := uc.adRepo.Delete(ctx, adID); err != nil {
		logger.Error("Ad %s lost its media but the document delete failed: %v", adID, err)
		return err
	}

	// Records outlive a failed document delete.
	for _, m := range media {
		if err := uc.mediaRepo.Delete(ctx, m.ID); err != nil {
			logger.Warn("Failed to delete media record %s: %v", m.ID, err)
		}
	}

	logger.Info("Ad %s successfully deleted by moderator %s", adID, session.UID)
	return nil
}
