package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where snapcal stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// DisplayTimezone is the IANA zone used to interpret wall-clock times in
	// source text that carries no zone of its own, and to render events.
	DisplayTimezone string
	// CurrentYear substitutes for source text that names no year. Zero means
	// "use the wall clock at normalization time".
	CurrentYear int

	// AI Configuration
	AIEnabled     bool          // SNAPCAL_AI_ENABLED
	AIAPIKey      string        // SNAPCAL_AI_API_KEY
	AIBaseURL     string        // SNAPCAL_AI_BASE_URL (default: https://api.openai.com/v1)
	AIChatModel   string        // SNAPCAL_AI_CHAT_MODEL (default: gpt-4o-mini)
	AIVisionModel string        // SNAPCAL_AI_VISION_MODEL (default: gpt-4o)
	AITimeout     time.Duration // SNAPCAL_AI_TIMEOUT_SECONDS (default: 60s)

	// Image Processing Configuration
	OCREnabled    bool   // SNAPCAL_OCR_ENABLED (default: false; vision is used instead)
	TesseractPath string // SNAPCAL_OCR_TESSERACT_PATH (default: tesseract)
	TessdataPath  string // SNAPCAL_OCR_TESSDATA_PATH (default: "")
	OCRLanguages  string // SNAPCAL_OCR_LANGUAGES (default: eng)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI extraction is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from SNAPCAL_* environment variables.
func (p *Profile) FromEnv() {
	p.DisplayTimezone = getEnvOrDefault("SNAPCAL_DISPLAY_TIMEZONE", "America/New_York")
	if year := os.Getenv("SNAPCAL_CURRENT_YEAR"); year != "" {
		if v, err := strconv.Atoi(year); err == nil {
			p.CurrentYear = v
		}
	}

	p.AIEnabled = os.Getenv("SNAPCAL_AI_ENABLED") == "true"
	p.AIAPIKey = os.Getenv("SNAPCAL_AI_API_KEY")
	p.AIBaseURL = getEnvOrDefault("SNAPCAL_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIChatModel = getEnvOrDefault("SNAPCAL_AI_CHAT_MODEL", "gpt-4o-mini")
	p.AIVisionModel = getEnvOrDefault("SNAPCAL_AI_VISION_MODEL", "gpt-4o")
	p.AITimeout = 60 * time.Second
	if secs := os.Getenv("SNAPCAL_AI_TIMEOUT_SECONDS"); secs != "" {
		if v, err := strconv.Atoi(secs); err == nil && v > 0 {
			p.AITimeout = time.Duration(v) * time.Second
		}
	}

	p.OCREnabled = os.Getenv("SNAPCAL_OCR_ENABLED") == "true"
	p.TesseractPath = getEnvOrDefault("SNAPCAL_OCR_TESSERACT_PATH", "tesseract")
	p.TessdataPath = os.Getenv("SNAPCAL_OCR_TESSDATA_PATH")
	p.OCRLanguages = getEnvOrDefault("SNAPCAL_OCR_LANGUAGES", "eng")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "snapcal")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/snapcal"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("snapcal_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.DisplayTimezone == "" {
		p.DisplayTimezone = "America/New_York"
	}

	return nil
}
