package domain

import (
	"time"
)

// Status is the lifecycle state of a stored image record.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusActive     Status = "active"
	StatusError      Status = "error"
	StatusDeleted    Status = "deleted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusActive, StatusError, StatusDeleted:
		return true
	}
	return false
}

// CanTransition reports whether a record may move from one status to
// another. Deleted records are frozen; re-applying the current status is
// allowed so dimension and size updates can ride an idempotent transition.
func CanTransition(from, to Status) bool {
	if from == StatusDeleted {
		return false
	}
	if from == to || to == StatusDeleted {
		return true
	}
	return from == StatusProcessing && (to == StatusActive || to == StatusError)
}

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// NowTimestamp returns the current UTC time in the sortable form used for
// the upload_timestamp range key.
func NowTimestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}

type Image struct {
	ImageID         string            `json:"image_id" dynamodbav:"image_id"`
	UserID          string            `json:"user_id" dynamodbav:"user_id"`
	Filename        string            `json:"filename" dynamodbav:"filename"`
	ContentType     string            `json:"content_type" dynamodbav:"content_type"`
	Size            int64             `json:"size" dynamodbav:"size"`
	S3Key           string            `json:"s3_key" dynamodbav:"s3_key"`
	S3Bucket        string            `json:"s3_bucket" dynamodbav:"s3_bucket"`
	UploadTimestamp string            `json:"upload_timestamp" dynamodbav:"upload_timestamp"`
	Tags            []string          `json:"tags" dynamodbav:"tags"`
	Description     string            `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Width           *int32            `json:"width,omitempty" dynamodbav:"width,omitempty"`
	Height          *int32            `json:"height,omitempty" dynamodbav:"height,omitempty"`
	Status          Status            `json:"status" dynamodbav:"status"`
	Metadata        map[string]string `json:"metadata,omitempty" dynamodbav:"metadata,omitempty"`
}

// ImageSummary is the list representation. Storage coordinates and the
// auxiliary metadata map stay internal.
type ImageSummary struct {
	ImageID         string   `json:"image_id"`
	UserID          string   `json:"user_id"`
	Filename        string   `json:"filename"`
	ContentType     string   `json:"content_type"`
	Size            int64    `json:"size"`
	UploadTimestamp string   `json:"upload_timestamp"`
	Tags            []string `json:"tags"`
	Description     string   `json:"description,omitempty"`
	Width           *int32   `json:"width,omitempty"`
	Height          *int32   `json:"height,omitempty"`
	Status          Status   `json:"status"`
}

func (i *Image) Summary() ImageSummary {
	return ImageSummary{
		ImageID:         i.ImageID,
		UserID:          i.UserID,
		Filename:        i.Filename,
		ContentType:     i.ContentType,
		Size:            i.Size,
		UploadTimestamp: i.UploadTimestamp,
		Tags:            i.Tags,
		Description:     i.Description,
		Width:           i.Width,
		Height:          i.Height,
		Status:          i.Status,
	}
}
