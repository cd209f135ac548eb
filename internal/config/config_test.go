package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)

	assert.True(t, cfg.AWS.UsePathStyle)

	assert.Equal(t, "image-storage-bucket", cfg.S3.Bucket)
	assert.Empty(t, cfg.S3.KeyPrefix)
	assert.Equal(t, 15*time.Minute, cfg.S3.PresignExpiry)
	assert.Equal(t, time.Hour, cfg.S3.MaxDownloadExpiry)
	assert.True(t, cfg.S3.AutoCreate)

	assert.Equal(t, "images", cfg.DynamoDB.Table)
	assert.Equal(t, "UserIndex", cfg.DynamoDB.UserIndex)
	assert.Equal(t, "StatusIndex", cfg.DynamoDB.StatusIndex)

	assert.Equal(t, int64(10*1024*1024), cfg.Images.MaxSize)
	assert.Equal(t, []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"}, cfg.Images.AllowedTypes)
	assert.Equal(t, int32(50), cfg.Images.DefaultLimit)
	assert.Equal(t, int32(100), cfg.Images.MaxLimit)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AWS_ENDPOINT", "")
	t.Setenv("AWS_USE_PATH_STYLE", "false")
	t.Setenv("S3_BUCKET_NAME", "prod-images")
	t.Setenv("S3_PRESIGN_EXPIRY", "30m")
	t.Setenv("DYNAMODB_TABLE_NAME", "prod-image-metadata")
	t.Setenv("MAX_IMAGE_SIZE", "1048576")
	t.Setenv("ALLOWED_CONTENT_TYPES", "image/png, image/webp")
	t.Setenv("MAX_PAGE_SIZE", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Empty(t, cfg.AWS.Endpoint)
	assert.False(t, cfg.AWS.UsePathStyle)
	assert.Equal(t, "prod-images", cfg.S3.Bucket)
	assert.Equal(t, 30*time.Minute, cfg.S3.PresignExpiry)
	assert.Equal(t, "prod-image-metadata", cfg.DynamoDB.Table)
	assert.Equal(t, int64(1048576), cfg.Images.MaxSize)
	assert.Equal(t, []string{"image/png", "image/webp"}, cfg.Images.AllowedTypes)
	assert.Equal(t, int32(250), cfg.Images.MaxLimit)
}

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"spaces trimmed", " a , b ", []string{"a", "b"}},
		{"empty parts dropped", "a,,b,", []string{"a", "b"}},
		{"empty input", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitCSV(tt.input))
		})
	}
}
