package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	AWS      AWSConfig
	S3       S3Config
	DynamoDB DynamoDBConfig
	Images   ImagesConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type AWSConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

type S3Config struct {
	Bucket            string
	KeyPrefix         string
	PresignExpiry     time.Duration
	MaxDownloadExpiry time.Duration
	AutoCreate        bool
}

type DynamoDBConfig struct {
	Table       string
	UserIndex   string
	StatusIndex string
	AutoCreate  bool
}

type ImagesConfig struct {
	MaxSize      int64
	AllowedTypes []string
	DefaultLimit int32
	MaxLimit     int32
}

func Load() (*Config, error) {
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("AWS_ENDPOINT", "http://localhost:4566")
	viper.SetDefault("AWS_ACCESS_KEY_ID", "test")
	viper.SetDefault("AWS_SECRET_ACCESS_KEY", "test")
	viper.SetDefault("AWS_USE_PATH_STYLE", true)
	viper.SetDefault("S3_BUCKET_NAME", "image-storage-bucket")
	viper.SetDefault("S3_KEY_PREFIX", "")
	viper.SetDefault("S3_PRESIGN_EXPIRY", 15*time.Minute)
	viper.SetDefault("S3_MAX_DOWNLOAD_EXPIRY", time.Hour)
	viper.SetDefault("S3_AUTO_CREATE", true)
	viper.SetDefault("DYNAMODB_TABLE_NAME", "images")
	viper.SetDefault("DYNAMODB_USER_INDEX", "UserIndex")
	viper.SetDefault("DYNAMODB_STATUS_INDEX", "StatusIndex")
	viper.SetDefault("DYNAMODB_AUTO_CREATE", true)
	viper.SetDefault("MAX_IMAGE_SIZE", 10*1024*1024) // 10MB
	viper.SetDefault("ALLOWED_CONTENT_TYPES", "image/jpeg,image/jpg,image/png,image/gif,image/webp")
	viper.SetDefault("DEFAULT_PAGE_SIZE", 50)
	viper.SetDefault("MAX_PAGE_SIZE", 100)

	viper.AllowEmptyEnv(true)
	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("SERVER_HOST"),
			Port: viper.GetString("SERVER_PORT"),
		},
		AWS: AWSConfig{
			Region:          viper.GetString("AWS_REGION"),
			Endpoint:        viper.GetString("AWS_ENDPOINT"),
			AccessKeyID:     viper.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: viper.GetString("AWS_SECRET_ACCESS_KEY"),
			UsePathStyle:    viper.GetBool("AWS_USE_PATH_STYLE"),
		},
		S3: S3Config{
			Bucket:            viper.GetString("S3_BUCKET_NAME"),
			KeyPrefix:         viper.GetString("S3_KEY_PREFIX"),
			PresignExpiry:     viper.GetDuration("S3_PRESIGN_EXPIRY"),
			MaxDownloadExpiry: viper.GetDuration("S3_MAX_DOWNLOAD_EXPIRY"),
			AutoCreate:        viper.GetBool("S3_AUTO_CREATE"),
		},
		DynamoDB: DynamoDBConfig{
			Table:       viper.GetString("DYNAMODB_TABLE_NAME"),
			UserIndex:   viper.GetString("DYNAMODB_USER_INDEX"),
			StatusIndex: viper.GetString("DYNAMODB_STATUS_INDEX"),
			AutoCreate:  viper.GetBool("DYNAMODB_AUTO_CREATE"),
		},
		Images: ImagesConfig{
			MaxSize:      viper.GetInt64("MAX_IMAGE_SIZE"),
			AllowedTypes: splitCSV(viper.GetString("ALLOWED_CONTENT_TYPES")),
			DefaultLimit: viper.GetInt32("DEFAULT_PAGE_SIZE"),
			MaxLimit:     viper.GetInt32("MAX_PAGE_SIZE"),
		},
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
