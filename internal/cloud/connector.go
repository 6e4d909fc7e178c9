// Package cloud performs the authenticate/init stage of a pipeline run.
package cloud

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"minutesapi/internal/config"
	"minutesapi/internal/generative"
	"minutesapi/internal/service"
	"minutesapi/internal/storage"
)

// Connector builds fresh storage and model clients for every run from an
// explicit configuration. Nothing is cached between runs.
type Connector struct {
	cfg config.AppConfig
	log zerolog.Logger

	newStorage func(context.Context, config.MinIOConfig) (storage.Storage, error)
	newGemini  func(context.Context, config.GCPConfig, config.ModelConfig) (*generative.Gemini, error)
}

// NewConnector returns a Connector for cfg.
func NewConnector(cfg config.AppConfig, log zerolog.Logger) *Connector {
	return &Connector{
		cfg:        cfg,
		log:        log,
		newStorage: storage.NewMinIO,
		newGemini:  generative.NewGemini,
	}
}

// Connect obtains credentials and region-scoped clients.
func (c *Connector) Connect(ctx context.Context) (*service.Backends, error) {
	c.log.Debug().
		Str("credential_source", c.cfg.CredentialSource).
		Str("project_id", c.cfg.GCP.ProjectID).
		Str("location", c.cfg.GCP.Location).
		Msg("connecting")

	store, err := c.newStorage(ctx, c.cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	gem, err := c.newGemini(ctx, c.cfg.GCP, c.cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("init vertex ai: %w", err)
	}

	return &service.Backends{
		Storage:     store,
		Transcriber: gem,
		Summarizer:  gem,
	}, nil
}
