package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"minutesapi/docs"
	"minutesapi/internal/cloud"
	"minutesapi/internal/config"
	handlers "minutesapi/internal/http/handler"
	"minutesapi/internal/http/middleware"
	"minutesapi/internal/logger"
	"minutesapi/internal/metrics"
	"minutesapi/internal/otel"
	"minutesapi/internal/prompt"
	"minutesapi/internal/service"
)

// @title Minutes API
// @version 1.0
// @BasePath /
func main() {
	// Secret store first, then environment (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(config.LogConfig{Level: "info"})
		bootLog.Fatal().Err(err).Msg("configuration_invalid: run with GCP project, storage bucket and credentials configured")
	}

	log := logger.New(cfg.Log)

	shutdownTracing, err := otel.Init(context.Background(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer shutdownTracing(context.Background())

	prompts, err := loadPrompts(cfg.Prompt)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load prompts")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	pipelineMetrics, err := metrics.NewPipelineObserver(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register pipeline metrics")
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}

	// Clients are created per run by the connector; nothing is shared between runs
	connector := cloud.NewConnector(*cfg, log)
	minutesSvc := service.NewMinutesService(connector, prompts,
		service.WithObserver(service.LogObserver{Log: log}, pipelineMetrics),
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		// Transcription of long recordings can take several minutes
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 30 * time.Minute,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.LoggerWithWriter(os.Stdout, time.UTC))
	app.Use(httpMetrics.Handler())

	handlers.RegisterRoutes(app, minutesSvc, reg)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().
		Str("addr", ":"+cfg.Port).
		Str("credential_source", cfg.CredentialSource).
		Str("prompt_preset", prompts.Preset).
		Msg("server_starting")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("failed to start server")
		shutdownTracing(context.Background())
		os.Exit(1)
	}
}

func loadPrompts(cfg config.PromptConfig) (*prompt.Set, error) {
	var (
		pack *prompt.Pack
		err  error
	)
	if cfg.File != "" {
		pack, err = prompt.LoadFile(cfg.File)
	} else {
		pack, err = prompt.Default()
	}
	if err != nil {
		return nil, err
	}
	return pack.Resolve(cfg.Preset)
}
