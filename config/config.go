package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8787
//	CORS_ORIGINS=http://localhost:5173,https://kishan-ai-frontend.onrender.com
//	DATA_GOV_API_KEY=...
//	GROQ_API_KEY=...
//	JWT_SECRET=...
//	POSTGRES_HOST=localhost
//	POSTGRES_PORT=5432
//	POSTGRES_USER=postgres
//	POSTGRES_PASSWORD=secret
//	POSTGRES_DB=mandipulse
//	POSTGRES_SSLMODE=disable
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	DataGov  DataGovConfig  // AGMARKNET (data.gov.in) client settings
	Groq     GroqConfig     // Groq chat completions settings
	Auth     AuthConfig     // Token signing settings
	Postgres PostgresConfig // PostgreSQL connection settings
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        // The TCP port the HTTP server will listen on (e.g., "8787")
	CORSOrigins    []string      // Browser origins allowed to call the API with credentials
	RequestTimeout time.Duration // Per-request deadline applied by the router
}

// DataGovConfig configures the market price client.
//
// APIKey may be empty: price endpoints then fail per request with a missing
// credential error instead of preventing startup.
type DataGovConfig struct {
	APIKey     string
	BaseURL    string
	ResourceID string
	Timeout    time.Duration
}

// GroqConfig configures the assistant proxy.
type GroqConfig struct {
	APIKey      string
	APIURL      string
	Model       string
	VisionModel string
	Timeout     time.Duration
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and handed to constructors in
// app.InitializeApp. Packages below app never read it directly.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing, validateConfig() will terminate the app
//     with a descriptive log message.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8787")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,https://kishan-ai-frontend.onrender.com")
	viper.SetDefault("REQUEST_TIMEOUT", "30s")

	viper.SetDefault("DATA_GOV_API_KEY", "")
	viper.SetDefault("VITE_DATA_GOV_API_KEY", "")
	viper.SetDefault("DATA_GOV_BASE_URL", "https://api.data.gov.in/resource")
	viper.SetDefault("DATA_GOV_RESOURCE_ID", "9ef84268-d588-465a-a308-a864a43d0070")

	viper.SetDefault("GROQ_API_KEY", "")
	viper.SetDefault("GROQ_API_URL", "https://api.groq.com/openai/v1/chat/completions")
	viper.SetDefault("GROQ_MODEL", "llama-3.1-8b-instant")
	viper.SetDefault("GROQ_VISION_MODEL", "llama-3.2-11b-vision-preview")
	viper.SetDefault("UPSTREAM_TIMEOUT", "20s")

	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_TTL", "168h")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "mandipulse")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	upstreamTimeout := viper.GetDuration("UPSTREAM_TIMEOUT")

	// The frontend build only knows VITE_DATA_GOV_API_KEY; accept it as a fallback.
	dataGovKey := viper.GetString("DATA_GOV_API_KEY")
	if dataGovKey == "" {
		dataGovKey = viper.GetString("VITE_DATA_GOV_API_KEY")
	}

	AppConfig = Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			CORSOrigins:    splitList(viper.GetString("CORS_ORIGINS")),
			RequestTimeout: viper.GetDuration("REQUEST_TIMEOUT"),
		},
		DataGov: DataGovConfig{
			APIKey:     dataGovKey,
			BaseURL:    viper.GetString("DATA_GOV_BASE_URL"),
			ResourceID: viper.GetString("DATA_GOV_RESOURCE_ID"),
			Timeout:    upstreamTimeout,
		},
		Groq: GroqConfig{
			APIKey:      viper.GetString("GROQ_API_KEY"),
			APIURL:      viper.GetString("GROQ_API_URL"),
			Model:       viper.GetString("GROQ_MODEL"),
			VisionModel: viper.GetString("GROQ_VISION_MODEL"),
			Timeout:     upstreamTimeout,
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("JWT_SECRET"),
			TokenTTL:  viper.GetDuration("JWT_TTL"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
	}

	// Construct Postgres DSN (used by database/sql)
	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	validateConfig()
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// missingFields returns the names of required variables that are unset.
func missingFields(c Config) []string {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if c.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if c.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if c.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if c.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	return missing
}

// validateConfig terminates the application when required variables are missing.
func validateConfig() {
	if missing := missingFields(AppConfig); len(missing) > 0 {
		log.Fatalf("missing required environment variables: %v\n", missing)
	}
}
