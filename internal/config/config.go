// Package config provides application configuration through environment variables.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// ChallengeSecret keys the HMAC over issued challenge payloads.
	ChallengeSecret string
	// SessionSecret signs issued session tokens.
	SessionSecret string
	// SessionIssuer is the issuer claim of session tokens.
	SessionIssuer string
	// FrontendURL is the origin embedded in challenge payloads.
	FrontendURL string
	// BypassSignatureVerification disables wallet signature checks. Never
	// enable outside local development.
	BypassSignatureVerification bool

	// MirrorNodeURL is the base URL of the Hedera Mirror Node REST API.
	MirrorNodeURL string
	// RedisURL is the connection string for the nonce store.
	RedisURL string

	// GraphQLEndpoint is the user-identity backend's GraphQL endpoint.
	GraphQLEndpoint string
	// GraphQLAdminSecret authenticates mutations against the GraphQL backend.
	GraphQLAdminSecret string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		LogLevel: env.GetString("LOG_LEVEL", "info"),

		ChallengeSecret:             env.GetString("CHALLENGE_SECRET", ""),
		SessionSecret:               env.GetString("SESSION_SECRET", ""),
		SessionIssuer:               env.GetString("SESSION_ISSUER", "hashgate"),
		FrontendURL:                 env.GetString("FRONTEND_URL", "http://localhost:3000"),
		BypassSignatureVerification: env.GetBool("BYPASS_SIGNATURE_VERIFICATION", false),

		MirrorNodeURL: env.GetString("MIRROR_NODE_URL", "https://mainnet-public.mirrornode.hedera.com"),
		RedisURL:      env.GetString("REDIS_URL", "redis://localhost:6379/0"),

		GraphQLEndpoint:    env.GetString("GRAPHQL_ENDPOINT", ""),
		GraphQLAdminSecret: env.GetString("GRAPHQL_ADMIN_SECRET", ""),
	}
}

// Validate reports fatal misconfiguration. Missing signing secrets abort the
// process before any network I/O.
func (c *Config) Validate() error {
	if c.ChallengeSecret == "" {
		return errors.New("CHALLENGE_SECRET is required")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.RedisURL == "" {
		return errors.New("REDIS_URL is required")
	}
	return nil
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// loadDotEnv walks up from the working directory looking for a .env file.
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}

	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
