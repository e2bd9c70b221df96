// Package config loads the YAML settings file. Fields missing from the file
// keep their Default values.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/dora-ryukyu/word2vec3d/projection"

	"gopkg.in/yaml.v3"
)

const (
	BackendOllama      = "ollama"
	BackendHuggingFace = "huggingface"
)

type OllamaConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

type HuggingFaceConfig struct {
	Model string `yaml:"model"`
	// Token falls back to $HF_TOKEN when empty.
	Token string `yaml:"token,omitempty"`
}

type QdrantConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Address    string `yaml:"address"`
	Collection string `yaml:"collection"`
	Dimensions uint64 `yaml:"dimensions"`
}

type ProjectionConfig struct {
	Solver   projection.Solver    `yaml:"solver"`
	Tunables projection.Tunables `yaml:"tunables"`
}

type Config struct {
	Backend     string            `yaml:"backend"`
	Ollama      OllamaConfig      `yaml:"ollama"`
	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
	Qdrant      QdrantConfig      `yaml:"qdrant"`
	Projection  ProjectionConfig  `yaml:"projection"`
	// LogFile receives log output while the TUI owns the terminal. Empty
	// discards it.
	LogFile string `yaml:"log_file,omitempty"`
}

func Default() *Config {
	return &Config{
		Backend: BackendOllama,
		Ollama: OllamaConfig{
			URL:   "http://localhost:11434",
			Model: "nomic-embed-text",
		},
		HuggingFace: HuggingFaceConfig{
			Model: "sentence-transformers/all-MiniLM-L6-v2",
		},
		Qdrant: QdrantConfig{
			Address:    "localhost:6334",
			Collection: "embeddings",
			Dimensions: 768,
		},
		Projection: ProjectionConfig{
			Solver:   projection.SolverPowerIteration,
			Tunables: projection.DefaultTunables(),
		},
	}
}

// Load reads path over the defaults. An empty path, or one that does not
// exist, yields Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOllama, BackendHuggingFace:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	switch c.Projection.Solver {
	case "", projection.SolverPowerIteration, projection.SolverSVD:
	default:
		return fmt.Errorf("unknown solver %q", c.Projection.Solver)
	}

	if c.Qdrant.Enabled && c.Qdrant.Dimensions == 0 {
		return errors.New("qdrant.dimensions must be set when qdrant is enabled")
	}
	return nil
}

// Save writes the config as YAML, typically to seed a new settings file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
