package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Embedded tz database: timezone projection must work even on hosts
	// without /usr/share/zoneinfo.
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/snapcal/snapcal/internal/profile"
	"github.com/snapcal/snapcal/plugin/ai/eventparse"
	"github.com/snapcal/snapcal/plugin/ocr"
	"github.com/snapcal/snapcal/server/ai"
	apiv1 "github.com/snapcal/snapcal/server/router/api/v1"
	"github.com/snapcal/snapcal/server/service/event"
	"github.com/snapcal/snapcal/store"
	"github.com/snapcal/snapcal/store/db"
)

const greetingBanner = `SnapCal: poster to calendar, without the ambiguity`

var rootCmd = &cobra.Command{
	Use:   "snapcal",
	Short: "An event capture service that turns posters and notes into calendar events",
	RunE: func(_ *cobra.Command, _ []string) error {
		return run()
	},
}

func init() {
	// A local .env is developer convenience only; absence is not an error.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8231, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("snapcal")
	viper.AutomaticEnv()
}

func run() error {
	p := &profile.Profile{
		Mode:   viper.GetString("mode"),
		Addr:   viper.GetString("addr"),
		Port:   viper.GetInt("port"),
		Data:   viper.GetString("data"),
		Driver: viper.GetString("driver"),
		DSN:    viper.GetString("dsn"),
	}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		return fmt.Errorf("failed to create db driver: %w", err)
	}
	st := store.New(dbDriver, p)
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	provider, err := ai.NewProvider(&ai.Config{
		BaseURL:     p.AIBaseURL,
		APIKey:      p.AIAPIKey,
		ChatModel:   p.AIChatModel,
		VisionModel: p.AIVisionModel,
		Timeout:     p.AITimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	if !p.IsAIEnabled() {
		slog.Warn("AI extraction is not configured; every capture will use the fallback heuristic")
	}

	normalizer := eventparse.NewNormalizer(eventparse.Config{
		DisplayTimezone: p.DisplayTimezone,
		CurrentYear:     p.CurrentYear,
	}, slog.Default())
	extractor := eventparse.NewExtractor(provider, normalizer, slog.Default())

	var ocrClient *ocr.Client
	if p.OCREnabled {
		ocrClient = ocr.NewClient(&ocr.Config{
			TesseractPath: p.TesseractPath,
			DataPath:      p.TessdataPath,
			Languages:     p.OCRLanguages,
		})
		if !ocrClient.IsAvailable(ctx) {
			slog.Warn("tesseract not available; image captures will use the vision model only")
			ocrClient = nil
		}
	}

	events := event.NewService(st)
	api := apiv1.NewAPIV1Service(p, extractor, events, ocrClient, slog.Default())

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	api.RegisterRoutes(e)

	address := fmt.Sprintf("%s:%d", p.Addr, p.Port)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server started", slog.String("address", address), slog.String("mode", p.Mode))
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	fmt.Println(greetingBanner)
	return g.Wait()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
