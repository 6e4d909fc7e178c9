package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultSecretsFile is where the secret store is looked up when SECRETS_FILE is unset.
const DefaultSecretsFile = ".streamlit/secrets.toml"

// serviceAccountKey is the secret store table holding a GCP service account key.
const serviceAccountKey = "gcp_service_account"

// Credential sources reported in AppConfig.CredentialSource.
const (
	CredentialSourceSecrets     = "secrets"
	CredentialSourceEnvironment = "environment"
)

// GCPConfig holds the Vertex AI project settings.
type GCPConfig struct {
	ProjectID string `validate:"required"`
	Location  string `validate:"required"`
	// CredentialsJSON is a service account key. Empty means Application Default Credentials.
	CredentialsJSON []byte
}

// MinIOConfig holds S3-compatible object storage settings.
// Against GCS this is the XML interoperability endpoint with HMAC keys.
type MinIOConfig struct {
	Endpoint      string `validate:"required"`
	AccessKey     string `validate:"required"`
	SecretKey     string `validate:"required"`
	Bucket        string `validate:"required"`
	UseSSL        bool
	LocatorScheme string `validate:"required"`
}

// ModelConfig names the generative models used by the pipeline.
type ModelConfig struct {
	Transcription string `validate:"required"`
	Summarization string `validate:"required"`
}

// PromptConfig selects the instruction prompts.
type PromptConfig struct {
	File   string
	Preset string
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level  string `validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `validate:"oneof=json console"`
}

// AppConfig is the centralized configuration struct for the application.
// It is resolved once at startup and passed into constructors.
type AppConfig struct {
	AppHost     string
	Port        string `validate:"required"`
	BodyLimitMB int    `validate:"gt=0"`
	GCP         GCPConfig
	MinIO       MinIOConfig
	Model       ModelConfig
	Prompt      PromptConfig
	Log         LogConfig
	// CredentialSource reports where GCP credentials came from.
	CredentialSource string
}

// Option customizes Load.
type Option func(*loadOptions)

type loadOptions struct {
	secretsFile string
}

// WithSecretsFile overrides the secret store location.
func WithSecretsFile(path string) Option {
	return func(o *loadOptions) { o.secretsFile = path }
}

// Load resolves configuration. Every key is looked up in the secret store
// first (a TOML/YAML/JSON file read with viper), then in the environment,
// then falls back to its default. A .env file can be auto-loaded by importing:
// _ "github.com/joho/godotenv/autoload"
func Load(opts ...Option) (*AppConfig, error) {
	o := loadOptions{secretsFile: os.Getenv("SECRETS_FILE")}
	for _, opt := range opts {
		opt(&o)
	}
	if o.secretsFile == "" {
		o.secretsFile = DefaultSecretsFile
	}

	src, err := newSource(o.secretsFile)
	if err != nil {
		return nil, err
	}

	cfg := &AppConfig{
		AppHost:     src.get("APP_HOST", "localhost:8080"),
		Port:        src.get("PORT", "8080"),
		BodyLimitMB: src.getInt("BODY_LIMIT_MB", 512),
		GCP: GCPConfig{
			ProjectID: src.get("GCP_PROJECT_ID", ""),
			Location:  src.get("GCP_LOCATION", "asia-northeast1"),
		},
		MinIO: MinIOConfig{
			Endpoint:      src.get("MINIO_ENDPOINT", "storage.googleapis.com"),
			AccessKey:     src.get("MINIO_ACCESS_KEY", ""),
			SecretKey:     src.get("MINIO_SECRET_KEY", ""),
			Bucket:        src.get("MINIO_BUCKET", ""),
			UseSSL:        src.getBool("MINIO_USE_SSL", true),
			LocatorScheme: src.get("STORAGE_LOCATOR_SCHEME", "gs"),
		},
		Model: ModelConfig{
			Transcription: src.get("MODEL_TRANSCRIPTION", "gemini-2.5-pro"),
			Summarization: src.get("MODEL_SUMMARIZATION", "gemini-2.5-pro"),
		},
		Prompt: PromptConfig{
			File:   src.get("PROMPT_FILE", ""),
			Preset: src.get("PROMPT_PRESET", "scn"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(src.get("LOG_LEVEL", "info")),
			Format: strings.ToLower(src.get("LOG_FORMAT", "json")),
		},
		CredentialSource: CredentialSourceEnvironment,
	}

	if sa, projectID, err := src.serviceAccount(); err != nil {
		return nil, err
	} else if sa != nil {
		cfg.GCP.CredentialsJSON = sa
		cfg.CredentialSource = CredentialSourceSecrets
		if cfg.GCP.ProjectID == "" {
			cfg.GCP.ProjectID = projectID
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate reports the first missing or malformed setting.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid configuration: %s failed %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// source looks values up in the secret store, then the environment.
type source struct {
	secrets *viper.Viper
}

func newSource(path string) (*source, error) {
	s := &source{}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("stat secrets file: %w", err)
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read secrets file %s: %w", path, err)
	}
	s.secrets = v
	return s, nil
}

func (s *source) lookup(key string) (string, bool) {
	if s.secrets != nil {
		if k := strings.ToLower(key); s.secrets.IsSet(k) {
			return s.secrets.GetString(k), true
		}
	}
	if v := os.Getenv(key); v != "" {
		return v, true
	}
	return "", false
}

func (s *source) get(key, def string) string {
	if v, ok := s.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (s *source) getBool(key string, def bool) bool {
	if v, ok := s.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func (s *source) getInt(key string, def int) int {
	if v, ok := s.lookup(key); ok {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// serviceAccount returns the service account key stored in the secret store
// as JSON, along with the project it belongs to.
func (s *source) serviceAccount() ([]byte, string, error) {
	if s.secrets == nil || !s.secrets.IsSet(serviceAccountKey) {
		return nil, "", nil
	}
	info := s.secrets.GetStringMap(serviceAccountKey)
	if len(info) == 0 {
		return nil, "", nil
	}
	b, err := json.Marshal(info)
	if err != nil {
		return nil, "", fmt.Errorf("encode service account: %w", err)
	}
	projectID, _ := info["project_id"].(string)
	return b, projectID, nil
}
