// Package v1 exposes the capture pipeline and event storage over REST.
package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/snapcal/snapcal/internal/profile"
	"github.com/snapcal/snapcal/plugin/ai/eventparse"
	"github.com/snapcal/snapcal/plugin/icalendar"
	"github.com/snapcal/snapcal/plugin/ocr"
	pipeerrors "github.com/snapcal/snapcal/internal/errors"
	"github.com/snapcal/snapcal/server/middleware"
	"github.com/snapcal/snapcal/server/service/event"
)

// APIV1Service wires the pipeline components to the REST surface.
type APIV1Service struct {
	Profile   *profile.Profile
	Extractor *eventparse.Extractor
	Events    *event.Service
	OCR       *ocr.Client
	Exporter  *icalendar.Exporter

	limiter *middleware.RateLimiter
	logger  *slog.Logger
}

// NewAPIV1Service creates the v1 API service. OCR may be nil when disabled.
func NewAPIV1Service(profile *profile.Profile, extractor *eventparse.Extractor, events *event.Service, ocrClient *ocr.Client, logger *slog.Logger) *APIV1Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIV1Service{
		Profile:   profile,
		Extractor: extractor,
		Events:    events,
		OCR:       ocrClient,
		Exporter:  icalendar.NewExporter("SnapCal"),
		limiter:   middleware.NewRateLimiter(middleware.DefaultRateLimitConfig()),
		logger:    logger,
	}
}

// RegisterRoutes mounts all v1 routes on the echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.Use(middleware.RequestID())

	// Capture runs an AI call per request; rate limit it per client.
	g.POST("/parse", s.Parse, s.limiter.Middleware())

	g.POST("/events", s.CreateEvent)
	g.GET("/events", s.ListEvents)
	g.GET("/events/:uid", s.GetEvent)
	g.PATCH("/events/:uid", s.PatchEvent)
	g.DELETE("/events/:uid", s.DeleteEvent)

	g.GET("/events/:uid/ics", s.ExportEventICS)
	g.GET("/calendar.ics", s.ExportCalendarICS)
	g.GET("/feed.rss", s.Feed)
}

// errorResponse is the JSON error body for all v1 endpoints.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps coded pipeline errors to HTTP statuses.
func respondError(c echo.Context, err error) error {
	code := pipeerrors.GetCodeFromError(err, pipeerrors.ErrCodeServiceUnavailable)

	status := http.StatusInternalServerError
	switch code {
	case pipeerrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case pipeerrors.ErrCodeInvalidArgument, pipeerrors.ErrCodeInvalidTimezone, pipeerrors.ErrCodeValidationFailed:
		status = http.StatusBadRequest
	case pipeerrors.ErrCodeRateLimitExceeded:
		status = http.StatusTooManyRequests
	case pipeerrors.ErrCodeServiceUnavailable:
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, errorResponse{Code: string(code), Message: err.Error()})
}
