package v1

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/snapcal/snapcal/plugin/ai/eventparse"
	"github.com/snapcal/snapcal/plugin/imageprep"
	"github.com/snapcal/snapcal/server/internal/observability"
)

// parseRequest is the JSON body for text capture.
type parseRequest struct {
	Text string `json:"text"`
}

// parseResponse carries one ParseResult per captured input: a single element
// for text, one per file for image batches.
type parseResponse struct {
	Results []*eventparse.ParseResult `json:"results"`
}

// Parse runs the capture pipeline. Accepts either a JSON body with a text
// field, or a multipart form with one or more "images" files. Images in a
// batch are processed sequentially; a failed image degrades to a fallback
// result without sinking its siblings.
func (s *APIV1Service) Parse(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.Profile.AITimeout)
	defer cancel()

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		return s.parseImages(ctx, c)
	}
	return s.parseText(ctx, c)
}

func (s *APIV1Service) parseText(ctx context.Context, c echo.Context) error {
	var req parseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: "malformed request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: "text is required"})
	}

	if reqCtx, ok := observability.FromContext(ctx); ok {
		reqCtx.Info("parsing text capture", slog.Int("length", len(req.Text)))
	}

	result := s.Extractor.FromText(ctx, req.Text)
	return c.JSON(http.StatusOK, parseResponse{Results: []*eventparse.ParseResult{result}})
}

func (s *APIV1Service) parseImages(ctx context.Context, c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: "malformed multipart form"})
	}
	files := form.File["images"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: "at least one image is required"})
	}

	results := make([]*eventparse.ParseResult, 0, len(files))
	for _, fh := range files {
		results = append(results, s.parseOneImage(ctx, fh.Filename, func() ([]byte, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return io.ReadAll(f)
		}))
	}

	return c.JSON(http.StatusOK, parseResponse{Results: results})
}

// parseOneImage never fails the batch: every error path degrades to a
// fallback result carrying the reason.
func (s *APIV1Service) parseOneImage(ctx context.Context, name string, read func() ([]byte, error)) *eventparse.ParseResult {
	fallback := func(reason string) *eventparse.ParseResult {
		s.logger.Warn("image capture degraded", slog.String("file", name), slog.String("reason", reason))
		return s.Extractor.Fallback("", reason)
	}

	data, err := read()
	if err != nil {
		return fallback("unreadable upload: " + err.Error())
	}

	prepared, err := imageprep.Prepare(data)
	if err != nil {
		return fallback("image preparation failed: " + err.Error())
	}

	// OCR-first profile: recover text locally, then run the text pipeline.
	if s.Profile.OCREnabled && s.OCR != nil {
		text, err := s.OCR.ExtractText(ctx, prepared.Data, prepared.MimeType)
		if err == nil && strings.TrimSpace(text) != "" {
			result := s.Extractor.FromText(ctx, text)
			result.ExtractedText = text
			return result
		}
		if err != nil {
			s.logger.Warn("ocr failed, falling through to vision", slog.String("file", name), slog.String("error", err.Error()))
		}
	}

	return s.Extractor.FromImage(ctx, prepared.Data, prepared.MimeType)
}
