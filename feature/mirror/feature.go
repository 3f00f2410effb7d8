package mirror

import (
	"data-mirror/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	cfg     Config
}

// NewFeature creates a new Mirror feature.
func NewFeature(db *gorm.DB, client storage.Client, bucket string, cfg Config, logger *zap.Logger) *Feature {
	svc := NewService(db, client, bucket, cfg, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h, cfg: cfg}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "mirror"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.cfg.Enabled() && f.service.db != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
