// Package ocr extracts text from poster photos using the Tesseract CLI. It is
// the capture path used when no vision model is configured.
package ocr

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/pkg/errors"
)

// SupportedMimeTypes are the image MIME types Tesseract accepts.
var SupportedMimeTypes = []string{
	"image/png",
	"image/jpeg",
	"image/jpg",
	"image/gif",
	"image/bmp",
	"image/webp",
}

// Config holds the OCR configuration.
type Config struct {
	// TesseractPath is the path to the tesseract executable.
	TesseractPath string
	// DataPath is the path to the tessdata directory (optional).
	DataPath string
	// Languages are the languages to use for OCR (e.g., "eng+spa").
	Languages string
}

// DefaultConfig returns the default OCR configuration.
func DefaultConfig() *Config {
	return &Config{
		TesseractPath: "tesseract",
		DataPath:      "",
		Languages:     "eng",
	}
}

// Client runs Tesseract over poster images.
type Client struct {
	config *Config
}

// NewClient creates a new OCR client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	return &Client{config: config}
}

// ExtractText runs Tesseract on the image and returns the recovered text.
// Posters mix fonts and sizes, so automatic page segmentation is left on.
func (c *Client) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if !c.isSupported(mimeType) {
		return "", errors.Errorf("unsupported MIME type: %s", mimeType)
	}

	tmpFile, err := os.CreateTemp("", "snapcal_ocr_*.png")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp file")
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)
	tmpFile.Close()

	if err := os.WriteFile(tmpPath, image, 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write temp file")
	}

	// Tesseract writes <out>.txt next to the output stem.
	outPath := strings.TrimSuffix(tmpPath, filepath.Ext(tmpPath))

	args := []string{tmpPath, outPath}
	if c.config.Languages != "" {
		args = append(args, "-l", c.config.Languages)
	}
	if c.config.DataPath != "" {
		args = append(args, "--tessdata-dir", c.config.DataPath)
	}

	cmd := exec.CommandContext(ctx, c.config.TesseractPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		slog.Warn("tesseract command failed", "error", err, "stderr", stderr.String())
		return "", errors.Wrap(err, "tesseract command failed")
	}

	txtPath := outPath + ".txt"
	defer os.Remove(txtPath)

	text, err := os.ReadFile(txtPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to read OCR output")
	}

	return strings.TrimSpace(string(text)), nil
}

// IsAvailable checks whether the Tesseract binary can be executed.
func (c *Client) IsAvailable(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, c.config.TesseractPath, "--version")
	return cmd.Run() == nil
}

// GetVersion returns the first line of `tesseract --version`.
func (c *Client) GetVersion(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, c.config.TesseractPath, "--version")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrap(err, "failed to get tesseract version")
	}
	// Version banner may land on either stream depending on the build.
	out := stdout.String()
	if out == "" {
		out = stderr.String()
	}
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	return line, nil
}

func (c *Client) isSupported(mimeType string) bool {
	mimeType = strings.ToLower(mimeType)
	for _, supported := range SupportedMimeTypes {
		if mimeType == supported {
			return true
		}
	}
	return false
}
