// Package config provides configuration loading for medragd.
//
// Configuration is loaded from a YAML file, then overridden with
// MEDRAG_-prefixed environment variables, with hardcoded defaults
// filling the rest.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/medrag/internal/corpus"
	"github.com/fyrsmithlabs/medrag/internal/embeddings"
	"github.com/fyrsmithlabs/medrag/internal/llm"
	"github.com/fyrsmithlabs/medrag/internal/logging"
	"github.com/fyrsmithlabs/medrag/internal/pipeline"
	"github.com/fyrsmithlabs/medrag/internal/retriever"
	"github.com/fyrsmithlabs/medrag/internal/telemetry"
)

// Config holds the complete medragd configuration.
type Config struct {
	Server     ServerConfig        `koanf:"server"`
	Logging    logging.Config      `koanf:"logging"`
	Telemetry  telemetry.Config    `koanf:"telemetry"`
	Corpus     corpus.Config       `koanf:"corpus"`
	Embeddings embeddings.Config   `koanf:"embeddings"`
	Retrieval  retriever.Config    `koanf:"retrieval"`
	Gate       pipeline.GateConfig `koanf:"gate"`
	LLM        llm.Config          `koanf:"llm"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	logDefaults := logging.NewDefaultConfig()
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = logDefaults.Format
	}
	if cfg.Logging.Fields == nil {
		cfg.Logging.Fields = logDefaults.Fields
	}

	telDefaults := telemetry.NewDefaultConfig()
	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = telDefaults.Endpoint
	}
	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = telDefaults.Protocol
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = telDefaults.ServiceName
	}
	if cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = telDefaults.ServiceVersion
	}
	if cfg.Telemetry.SamplingRate == 0 {
		cfg.Telemetry.SamplingRate = telDefaults.SamplingRate
	}
	if cfg.Telemetry.ShutdownTimeout == 0 {
		cfg.Telemetry.ShutdownTimeout = telDefaults.ShutdownTimeout
	}
	if cfg.Corpus.DocumentsPath == "" {
		cfg.Corpus.DocumentsPath = "data/documents.json"
	}
	if cfg.Corpus.EmbeddingsPath == "" {
		cfg.Corpus.EmbeddingsPath = "data/embeddings.bin"
	}
}

// Validate validates the configuration sections that do not require
// external collaborators. Corpus and LLM settings are validated when
// their components are constructed.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	if err := c.Retrieval.Validate(); err != nil {
		return fmt.Errorf("retrieval: %w", err)
	}
	if err := c.Gate.Validate(); err != nil {
		return fmt.Errorf("gate: %w", err)
	}

	return nil
}
