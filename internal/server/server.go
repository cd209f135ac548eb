package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"imagevault/internal/config"
	"imagevault/internal/handler"
	"imagevault/internal/repository"
	"imagevault/internal/service"
)

type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	log        *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(log), cors())

	awsCfg, err := repository.NewAWSConfig(context.Background(), &cfg.AWS)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	dynamoRepo := repository.NewDynamoDBRepository(repository.NewDynamoDBClient(awsCfg, &cfg.AWS), &cfg.DynamoDB, log)
	s3Repo := repository.NewS3Repository(repository.NewS3Client(awsCfg, &cfg.AWS), &cfg.S3, log)

	imageService := service.NewImageService(dynamoRepo, s3Repo, cfg, log)

	h := handler.NewHandler(imageService, log)

	router.GET("/health", h.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/images", h.InitiateUpload)
		api.GET("/images", h.ListImages)
		api.GET("/images/:id", h.GetImage)
		api.PATCH("/images/:id", h.UpdateStatus)
		api.DELETE("/images/:id", h.DeleteImage)
		api.GET("/images/:id/download", h.DownloadImage)
	}

	server := &Server{
		httpServer: &http.Server{
			Addr:           cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:        router,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
		cfg: cfg,
		log: log,
	}

	log.Info("Server created successfully",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port))

	return server, nil
}

func (s *Server) Run() error {
	s.log.Info("Server is running",
		zap.String("host", s.cfg.Server.Host),
		zap.String("port", s.cfg.Server.Port),
		zap.String("address", s.httpServer.Addr))

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
