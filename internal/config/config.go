// Package config provides layered configuration loading: defaults, YAML
// files, then environment variables, with hot reloading in development.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment identifies the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the full application configuration.
type Config struct {
	Environment Environment `yaml:"environment" validate:"required,oneof=development staging production"`

	Server   Server   `yaml:"server"`
	Graph    Graph    `yaml:"graph"`
	Semantic Semantic `yaml:"semantic"`
	Session  Session  `yaml:"session"`
	Security Security `yaml:"security"`
	Metrics  Metrics  `yaml:"metrics"`
	Tracing  Tracing  `yaml:"tracing"`
	Logging  Logging  `yaml:"logging"`

	// LoadedFrom records which sources contributed, for startup logging.
	LoadedFrom []string `yaml:"-"`
}

// Server holds HTTP server settings.
type Server struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// Graph holds navigation graph settings.
type Graph struct {
	// SeedFile is an optional YAML file of topics, landmarks and routes
	// loaded at startup.
	SeedFile string `yaml:"seedFile"`
}

// Semantic holds intent matching settings.
type Semantic struct {
	SimilarityThreshold float64       `yaml:"similarityThreshold" validate:"gte=0,lte=1"`
	EmbeddingTimeout    time.Duration `yaml:"embeddingTimeout"`
}

// Session holds per-user session settings.
type Session struct {
	IdleTTL       time.Duration `yaml:"idleTtl"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

// Security holds auth settings.
type Security struct {
	EnableAuth     bool     `yaml:"enableAuth"`
	JWTSecret      string   `yaml:"jwtSecret"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// Metrics holds metrics exposure settings.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Tracing holds distributed tracing settings.
type Tracing struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"serviceName"`
	SampleRate  float64 `yaml:"sampleRate" validate:"gte=0,lte=1"`
}

// Logging holds logger settings.
type Logging struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

var validate = validator.New()

// Validate checks the assembled configuration against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Environment == Production && c.Security.EnableAuth && c.Security.JWTSecret == "" {
		return fmt.Errorf("invalid configuration: jwt secret is required in production with auth enabled")
	}
	return nil
}

// applyEnvironmentDefaults tightens or relaxes settings per environment.
func (c *Config) applyEnvironmentDefaults() {
	switch c.Environment {
	case Production:
		if c.Logging.Level == "debug" {
			c.Logging.Level = "info"
		}
	case Development:
		if len(c.Security.AllowedOrigins) == 0 {
			c.Security.AllowedOrigins = []string{"*"}
		}
	}
}

// IsDevelopment reports whether the configuration targets development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// getEnvironment resolves the deployment environment from ENVIRONMENT,
// defaulting to development.
func getEnvironment() Environment {
	switch strings.ToLower(os.Getenv("ENVIRONMENT")) {
	case "production", "prod":
		return Production
	case "staging", "stage":
		return Staging
	default:
		return Development
	}
}
