package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader assembles configuration from layered sources. Priority, lowest to
// highest: built-in defaults, base.yaml, <environment>.yaml, local.yaml
// (development only), environment variables.
type Loader struct {
	basePath    string
	environment Environment
	sources     []string
}

// NewLoader creates a loader rooted at basePath (default "config").
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}
	return &Loader{basePath: basePath, environment: env}
}

// Load assembles and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := l.defaultConfig()
	l.sources = append(l.sources, "defaults")

	if err := l.loadFile("base", cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	envFile := strings.ToLower(string(l.environment))
	if err := l.loadFile(envFile, cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading %s config: %w", envFile, err)
	}

	if l.environment == Development {
		if err := l.loadFile("local", cfg); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: failed to load local config: %v\n", err)
		}
	}

	l.loadEnvironmentVariables(cfg)
	l.sources = append(l.sources, "environment")

	cfg.LoadedFrom = l.sources
	cfg.applyEnvironmentDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) loadFile(name string, cfg *Config) error {
	path := filepath.Join(l.basePath, name+".yaml")
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	l.sources = append(l.sources, path)
	return nil
}

func (l *Loader) loadEnvironmentVariables(cfg *Config) {
	if val := os.Getenv("SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if val := os.Getenv("GRAPH_SEED_FILE"); val != "" {
		cfg.Graph.SeedFile = val
	}
	if val := os.Getenv("SIMILARITY_THRESHOLD"); val != "" {
		if threshold, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Semantic.SimilarityThreshold = threshold
		}
	}
	if val := os.Getenv("SESSION_IDLE_TTL"); val != "" {
		if ttl, err := time.ParseDuration(val); err == nil {
			cfg.Session.IdleTTL = ttl
		}
	}
	if val := os.Getenv("JWT_SECRET"); val != "" {
		cfg.Security.JWTSecret = val
	}
	if val := os.Getenv("ENABLE_AUTH"); val != "" {
		cfg.Security.EnableAuth = parseBool(val)
	}
	if val := os.Getenv("ENABLE_METRICS"); val != "" {
		cfg.Metrics.Enabled = parseBool(val)
	}
	if val := os.Getenv("TRACING_ENDPOINT"); val != "" {
		cfg.Tracing.Endpoint = val
		cfg.Tracing.Enabled = true
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
}

func (l *Loader) defaultConfig() *Config {
	return &Config{
		Environment: l.environment,
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Semantic: Semantic{
			SimilarityThreshold: 0.7,
			EmbeddingTimeout:    2 * time.Second,
		},
		Session: Session{
			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Security: Security{
			EnableAuth:     false,
			AllowedOrigins: []string{"*"},
		},
		Metrics: Metrics{
			Enabled: true,
			Path:    "/metrics",
		},
		Tracing: Tracing{
			ServiceName: "atlas-backend",
			SampleRate:  0.1,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
	}
}

func parseBool(s string) bool {
	val, _ := strconv.ParseBool(s)
	return val
}

// Load assembles configuration from the default config directory and the
// ENVIRONMENT variable.
func Load() (*Config, error) {
	basePath := os.Getenv("CONFIG_DIR")
	return NewLoader(basePath, getEnvironment()).Load()
}
