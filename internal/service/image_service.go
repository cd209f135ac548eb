package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"imagevault/internal/apperrors"
	"imagevault/internal/config"
	"imagevault/internal/domain"
	"imagevault/internal/repository"
	"imagevault/internal/validation"
)

type UploadRequest struct {
	UserID      string
	Filename    string
	ContentType string
	Tags        []string
	Description string
	Expiry      time.Duration
}

type UploadResult struct {
	Image     domain.Image
	UploadURL string
	Expiry    time.Duration
}

type ListRequest struct {
	UserID      string
	Status      domain.Status
	Tags        []string
	ContentType string
	MinSize     *int64
	MaxSize     *int64
	Limit       int32
	NextToken   string
}

type ListResult struct {
	Images    []domain.Image
	NextToken string
}

type StatusUpdateRequest struct {
	ImageID string
	UserID  string
	Status  domain.Status
	Size    *int64
	Width   *int32
	Height  *int32
}

type DownloadRequest struct {
	ImageID string
	UserID  string
	Expiry  time.Duration
}

type DownloadResult struct {
	URL       string
	Expiry    time.Duration
	ExpiresAt string
}

// ImageService coordinates the metadata table and the object store. Business
// failures come back as apperrors values carrying their HTTP mapping;
// anything else is a backend fault.
type ImageService interface {
	InitiateUpload(ctx context.Context, req UploadRequest) (*UploadResult, error)
	GetImage(ctx context.Context, imageID, userID string) (*domain.Image, error)
	ListImages(ctx context.Context, req ListRequest) (*ListResult, error)
	UpdateStatus(ctx context.Context, req StatusUpdateRequest) (*domain.Image, error)
	DeleteImage(ctx context.Context, imageID, userID string, hard bool) error
	PresignDownload(ctx context.Context, req DownloadRequest) (*DownloadResult, error)
}

type imageService struct {
	dynamoRepo repository.DynamoDBRepository
	s3Repo     repository.S3Repository
	cfg        *config.Config
	log        *zap.Logger
}

func NewImageService(dynamoRepo repository.DynamoDBRepository, s3Repo repository.S3Repository, cfg *config.Config, log *zap.Logger) ImageService {
	return &imageService{
		dynamoRepo: dynamoRepo,
		s3Repo:     s3Repo,
		cfg:        cfg,
		log:        log,
	}
}

func (s *imageService) InitiateUpload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if err := validation.UserID(req.UserID); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if req.Filename == "" {
		return nil, apperrors.Validation("filename is required")
	}
	if err := validation.ContentType(req.ContentType, s.cfg.Images.AllowedTypes); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := validation.Tags(req.Tags); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := validation.Description(req.Description); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	filename := validation.SanitizeFilename(req.Filename)

	expiry := req.Expiry
	if expiry <= 0 {
		expiry = s.cfg.S3.PresignExpiry
	}

	key := s.generateKey(req.UserID, filename)

	uploadURL, err := s.s3Repo.PresignUpload(ctx, key, req.ContentType, expiry)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	img := domain.Image{
		ImageID:         uuid.New().String(),
		UserID:          req.UserID,
		Filename:        filename,
		ContentType:     req.ContentType,
		Size:            0,
		S3Key:           key,
		S3Bucket:        s.cfg.S3.Bucket,
		UploadTimestamp: domain.NowTimestamp(),
		Tags:            tags,
		Description:     req.Description,
		Status:          domain.StatusProcessing,
		Metadata:        map[string]string{"presigned_upload": "true"},
	}

	if err := s.dynamoRepo.Save(ctx, &img); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.log.Info("Upload initiated",
		zap.String("image_id", img.ImageID),
		zap.String("user_id", req.UserID),
		zap.String("s3_key", key))

	return &UploadResult{Image: img, UploadURL: uploadURL, Expiry: expiry}, nil
}

// generateKey builds an object key that cannot collide across users or
// repeated filenames: prefix, owner, upload date, then a random fragment in
// front of the sanitized name.
func (s *imageService) generateKey(userID, filename string) string {
	date := time.Now().UTC().Format("20060102")
	fragment := uuid.New().String()[:8]
	return fmt.Sprintf("%s%s/%s/%s_%s", s.cfg.S3.KeyPrefix, userID, date, fragment, filename)
}

func (s *imageService) GetImage(ctx context.Context, imageID, userID string) (*domain.Image, error) {
	return s.fetchOwned(ctx, imageID, userID)
}

func (s *imageService) ListImages(ctx context.Context, req ListRequest) (*ListResult, error) {
	if err := validation.UserID(req.UserID); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.Images.DefaultLimit
	}
	if limit > s.cfg.Images.MaxLimit {
		limit = s.cfg.Images.MaxLimit
	}

	page, err := s.dynamoRepo.QueryByUser(ctx, repository.ListQuery{
		UserID:      req.UserID,
		Status:      req.Status,
		Tags:        req.Tags,
		ContentType: req.ContentType,
		MinSize:     req.MinSize,
		MaxSize:     req.MaxSize,
		Limit:       limit,
		StartToken:  req.NextToken,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &ListResult{Images: page.Items, NextToken: page.NextToken}, nil
}

func (s *imageService) UpdateStatus(ctx context.Context, req StatusUpdateRequest) (*domain.Image, error) {
	if !req.Status.Valid() || req.Status == domain.StatusDeleted {
		return nil, apperrors.Validation(fmt.Sprintf("invalid status, must be one of: %s, %s, %s",
			domain.StatusActive, domain.StatusProcessing, domain.StatusError))
	}
	if req.Size != nil && *req.Size <= 0 {
		return nil, apperrors.Validation("size must be greater than 0")
	}
	if req.Width != nil && *req.Width <= 0 {
		return nil, apperrors.Validation("width must be greater than 0")
	}
	if req.Height != nil && *req.Height <= 0 {
		return nil, apperrors.Validation("height must be greater than 0")
	}

	img, err := s.fetchOwned(ctx, req.ImageID, req.UserID)
	if err != nil {
		return nil, err
	}

	if img.Status == domain.StatusDeleted {
		return nil, apperrors.Conflict("Cannot update status of deleted image")
	}
	if !domain.CanTransition(img.Status, req.Status) {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot transition image from %s to %s", img.Status, req.Status))
	}

	// Activation with a reported size is verified against the store. A HEAD
	// transport failure is tolerated; a confirmed missing object is not.
	if req.Status == domain.StatusActive && req.Size != nil {
		_, exists, err := s.s3Repo.HeadObject(ctx, img.S3Key)
		if err != nil {
			s.log.Error("Failed to verify object before activation",
				zap.String("image_id", img.ImageID),
				zap.Error(err))
		} else if !exists {
			s.log.Warn("Object missing for activation",
				zap.String("image_id", img.ImageID),
				zap.String("s3_key", img.S3Key))
			return nil, apperrors.Validation("cannot set status to active: file not found in storage, upload the file first")
		}
	}

	meta := make(map[string]string, len(img.Metadata)+1)
	for k, v := range img.Metadata {
		meta[k] = v
	}
	meta["status_updated_at"] = domain.NowTimestamp()

	updates := map[string]any{
		"status":   req.Status,
		"metadata": meta,
	}
	if req.Size != nil && req.Status == domain.StatusActive {
		updates["size"] = *req.Size
	}
	if req.Width != nil {
		updates["width"] = *req.Width
	}
	if req.Height != nil {
		updates["height"] = *req.Height
	}

	if err := s.dynamoRepo.Update(ctx, img.ImageID, updates); err != nil {
		return nil, apperrors.Internal(err)
	}

	img.Status = req.Status
	img.Metadata = meta
	if req.Size != nil && req.Status == domain.StatusActive {
		img.Size = *req.Size
	}
	if req.Width != nil {
		img.Width = req.Width
	}
	if req.Height != nil {
		img.Height = req.Height
	}

	s.log.Info("Image status updated",
		zap.String("image_id", img.ImageID),
		zap.String("status", string(req.Status)))

	return img, nil
}

func (s *imageService) DeleteImage(ctx context.Context, imageID, userID string, hard bool) error {
	img, err := s.fetchOwned(ctx, imageID, userID)
	if err != nil {
		return err
	}

	if hard {
		// Losing the object is tolerable, losing the record is not. The
		// metadata delete proceeds even when S3 refuses.
		if err := s.s3Repo.DeleteObject(ctx, img.S3Key); err != nil {
			s.log.Warn("Failed to delete object during hard delete",
				zap.String("image_id", imageID),
				zap.String("s3_key", img.S3Key),
				zap.Error(err))
		}
		if err := s.dynamoRepo.Delete(ctx, imageID); err != nil {
			return apperrors.Internal(err)
		}
		s.log.Info("Image hard-deleted", zap.String("image_id", imageID))
		return nil
	}

	if err := s.dynamoRepo.Update(ctx, imageID, map[string]any{"status": domain.StatusDeleted}); err != nil {
		return apperrors.Internal(err)
	}
	s.log.Info("Image soft-deleted", zap.String("image_id", imageID))
	return nil
}

func (s *imageService) PresignDownload(ctx context.Context, req DownloadRequest) (*DownloadResult, error) {
	img, err := s.fetchOwned(ctx, req.ImageID, req.UserID)
	if err != nil {
		return nil, err
	}

	if img.Status == domain.StatusDeleted {
		return nil, apperrors.Gone("Image has been deleted")
	}

	expiry := req.Expiry
	if expiry <= 0 {
		expiry = s.cfg.S3.PresignExpiry
	}
	if expiry > s.cfg.S3.MaxDownloadExpiry {
		expiry = s.cfg.S3.MaxDownloadExpiry
	}

	url, err := s.s3Repo.PresignDownload(ctx, img.S3Key, expiry)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &DownloadResult{
		URL:       url,
		Expiry:    expiry,
		ExpiresAt: time.Now().UTC().Add(expiry).Format(time.RFC3339),
	}, nil
}

// fetchOwned loads a record and enforces ownership. Callers see the same
// not-found and forbidden failures across every operation.
func (s *imageService) fetchOwned(ctx context.Context, imageID, userID string) (*domain.Image, error) {
	if err := validation.ImageID(imageID); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := validation.UserID(userID); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	img, err := s.dynamoRepo.Get(ctx, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Image not found")
		}
		return nil, apperrors.Internal(err)
	}

	if img.UserID != userID {
		s.log.Warn("Cross-user access denied",
			zap.String("image_id", imageID),
			zap.String("requester", userID),
			zap.String("owner", img.UserID))
		return nil, apperrors.Forbidden("You do not have access to this image")
	}

	return img, nil
}
