package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds server configuration.
type Config struct {
	// Addr is the listen address for the HTTP(S) server.
	Addr         string
	DatabasePath string
	MasterSecret string
	Debug        bool
	// LogLevel is the shared/logger threshold ("trace".."error").
	LogLevel       string
	AllowedOrigins []string
	// TLS holds HTTPS configuration. If nil, the server runs in plain HTTP mode.
	TLS *TLSConfig
}

// TLSConfig holds file paths for serving HTTPS directly from the server.
type TLSConfig struct {
	// CertFile is a PEM-encoded certificate chain.
	CertFile string
	// KeyFile is a PEM-encoded private key.
	KeyFile string
}

// Overrides optionally overrides values from environment variables.
//
// A nil pointer means "use the environment/default value".
type Overrides struct {
	Addr         *string
	DatabasePath *string
	MasterSecret *string
	Debug        *bool
	LogLevel     *string
	TLS          *TLSConfig
}

// environment is the envconfig-parsed view of the process environment.
type environment struct {
	Port           int      `envconfig:"PORT" default:"3005"`
	DatabasePath   string   `envconfig:"DATABASE_PATH" default:"./collab.db"`
	MasterSecret   string   `envconfig:"COLLAB_MASTER_SECRET"`
	Debug          bool     `envconfig:"DEBUG" default:"false"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	TLSCertFile    string   `envconfig:"TLS_CERT_FILE"`
	TLSKeyFile     string   `envconfig:"TLS_KEY_FILE"`
}

// Load loads server configuration from the environment (plus an optional
// .env file) and applies any explicit overrides.
func Load(overrides Overrides) (*Config, error) {
	_ = godotenv.Load()

	var env environment
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	addr := fmt.Sprintf(":%d", env.Port)
	if overrides.Addr != nil {
		addr = *overrides.Addr
	}

	dbPath := env.DatabasePath
	if overrides.DatabasePath != nil {
		dbPath = *overrides.DatabasePath
	}

	masterSecret := env.MasterSecret
	if overrides.MasterSecret != nil {
		masterSecret = *overrides.MasterSecret
	}
	if masterSecret == "" {
		return nil, fmt.Errorf("COLLAB_MASTER_SECRET environment variable is required")
	}

	debug := env.Debug
	if overrides.Debug != nil {
		debug = *overrides.Debug
	}

	logLevel := env.LogLevel
	if overrides.LogLevel != nil {
		logLevel = *overrides.LogLevel
	}

	var tls *TLSConfig
	if env.TLSCertFile != "" && env.TLSKeyFile != "" {
		tls = &TLSConfig{CertFile: env.TLSCertFile, KeyFile: env.TLSKeyFile}
	}
	if overrides.TLS != nil {
		tls = overrides.TLS
	}

	return &Config{
		Addr:           addr,
		DatabasePath:   dbPath,
		MasterSecret:   masterSecret,
		Debug:          debug,
		LogLevel:       logLevel,
		AllowedOrigins: env.AllowedOrigins,
		TLS:            tls,
	}, nil
}
