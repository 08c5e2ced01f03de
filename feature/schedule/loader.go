package schedule

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Feature exposes scheduled tasks over HTTP.
type Feature struct {
	service *Service
	handler *Handler
	enabled bool
}

// NewFeature creates the schedule feature. A disabled feature registers no
// routes and schedules nothing.
func NewFeature(svc *Service, enabled bool) *Feature {
	return &Feature{service: svc, handler: NewHandler(svc), enabled: enabled}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "schedule"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the routes and schedules the stored tasks.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	_, err := f.service.Load(context.Background())
	return err
}
