package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"imagevault/internal/apperrors"
	"imagevault/internal/domain"
	"imagevault/internal/service"
)

type Handler struct {
	service service.ImageService
	log     *zap.Logger
}

func NewHandler(service service.ImageService, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

type uploadRequest struct {
	Filename    string   `json:"filename" binding:"required"`
	ContentType string   `json:"content_type" binding:"required"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Expiry      *int64   `json:"expiry"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Size   *int64 `json:"size"`
	Width  *int32 `json:"width"`
	Height *int32 `json:"height"`
}

// InitiateUpload reserves a metadata record and hands the client a presigned
// PUT URL. The file itself never passes through this service.
func (h *Handler) InitiateUpload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.Validation(err.Error()))
		return
	}

	var expiry time.Duration
	if req.Expiry != nil {
		expiry = time.Duration(*req.Expiry) * time.Second
	}

	res, err := h.service.InitiateUpload(c.Request.Context(), service.UploadRequest{
		UserID:      c.GetHeader("user-id"),
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Tags:        req.Tags,
		Description: req.Description,
		Expiry:      expiry,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	img := res.Image
	respondSuccess(c, http.StatusCreated, "Upload URL generated successfully", gin.H{
		"image_id":       img.ImageID,
		"upload_url":     res.UploadURL,
		"s3_key":         img.S3Key,
		"expiry_seconds": int64(res.Expiry.Seconds()),
		"upload_method":  "PUT",
		"metadata": gin.H{
			"image_id":     img.ImageID,
			"filename":     img.Filename,
			"content_type": img.ContentType,
			"user_id":      img.UserID,
			"status":       img.Status,
			"tags":         img.Tags,
			"description":  img.Description,
		},
		"headers": gin.H{
			"Content-Type": img.ContentType,
		},
		"instructions": gin.H{
			"step1": "PUT " + res.UploadURL,
			"step2": "Set Content-Type header to: " + img.ContentType,
			"step3": "Upload image as binary body",
			"step4": "PATCH /images/{image_id} with status=active to mark as complete",
			"note":  `Image status is "processing" until you mark it complete`,
		},
	})
}

func (h *Handler) GetImage(c *gin.Context) {
	img, err := h.service.GetImage(c.Request.Context(), c.Param("id"), c.GetHeader("user-id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Success", img)
}

// ListImages pages through a user's records newest-first. Unparsable and
// zero-valued size filters and unparsable limits are dropped rather than
// rejected.
func (h *Handler) ListImages(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		userID = c.GetHeader("user-id")
	}

	var tags []string
	if raw := c.Query("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	var minSize, maxSize *int64
	if raw := c.Query("min_size"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n != 0 {
			minSize = &n
		}
	}
	if raw := c.Query("max_size"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n != 0 {
			maxSize = &n
		}
	}

	var limit int32
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 32); err == nil {
			limit = int32(n)
		}
	}

	res, err := h.service.ListImages(c.Request.Context(), service.ListRequest{
		UserID:      userID,
		Status:      domain.Status(c.Query("status")),
		Tags:        tags,
		ContentType: c.Query("content_type"),
		MinSize:     minSize,
		MaxSize:     maxSize,
		Limit:       limit,
		NextToken:   c.Query("next_token"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]domain.ImageSummary, 0, len(res.Images))
	for i := range res.Images {
		items = append(items, res.Images[i].Summary())
	}

	data := gin.H{
		"items":    items,
		"count":    len(items),
		"has_more": res.NextToken != "",
	}
	if res.NextToken != "" {
		data["next_token"] = res.NextToken
	}

	respondSuccess(c, http.StatusOK, "Success", data)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.Validation(err.Error()))
		return
	}

	img, err := h.service.UpdateStatus(c.Request.Context(), service.StatusUpdateRequest{
		ImageID: c.Param("id"),
		UserID:  c.GetHeader("user-id"),
		Status:  domain.Status(req.Status),
		Size:    req.Size,
		Width:   req.Width,
		Height:  req.Height,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	data := gin.H{
		"image_id": img.ImageID,
		"status":   img.Status,
		"message":  "Image status updated successfully",
	}
	if req.Size != nil {
		data["size"] = *req.Size
	}
	if req.Width != nil {
		data["width"] = *req.Width
	}
	if req.Height != nil {
		data["height"] = *req.Height
	}

	respondSuccess(c, http.StatusOK, "Success", data)
}

func (h *Handler) DeleteImage(c *gin.Context) {
	hard := strings.EqualFold(c.Query("hard_delete"), "true")

	err := h.service.DeleteImage(c.Request.Context(), c.Param("id"), c.GetHeader("user-id"), hard)
	if err != nil {
		h.respondError(c, err)
		return
	}

	deleteType := "soft"
	message := "Image marked as deleted successfully"
	if hard {
		deleteType = "hard"
		message = "Image permanently deleted successfully"
	}

	respondSuccess(c, http.StatusOK, message, gin.H{
		"image_id":    c.Param("id"),
		"deleted":     true,
		"delete_type": deleteType,
	})
}

// DownloadImage answers with a presigned GET URL, or a redirect straight to
// it when ?redirect=true.
func (h *Handler) DownloadImage(c *gin.Context) {
	var expiry time.Duration
	if raw := c.Query("expiry"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respondError(c, apperrors.Validation("invalid expiry value, must be an integer"))
			return
		}
		expiry = time.Duration(n) * time.Second
	}

	res, err := h.service.PresignDownload(c.Request.Context(), service.DownloadRequest{
		ImageID: c.Param("id"),
		UserID:  c.GetHeader("user-id"),
		Expiry:  expiry,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if strings.EqualFold(c.Query("redirect"), "true") {
		c.Redirect(http.StatusFound, res.URL)
		return
	}

	respondSuccess(c, http.StatusOK, "Success", gin.H{
		"presigned_url":  res.URL,
		"image_id":       c.Param("id"),
		"expiry_seconds": int64(res.Expiry.Seconds()),
		"expires_at":     res.ExpiresAt,
	})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
