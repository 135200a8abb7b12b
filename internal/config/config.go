package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort           string
	Env                string
	CORSAllowedOrigins []string
	DB                 DBConfig
	Identity           IdentityConfig
	Import             ImportConfig
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// IdentityConfig points at the external identity provider. The provider
// authenticates callers (userinfo endpoint) and hosts the user directory,
// which is reached with a delegated token obtained from the token endpoint.
type IdentityConfig struct {
	IssuerURL       string
	UsersAPIURL     string
	ClientID        string
	ClientSecret    string
	DelegationScope string
	AuthTimeout     time.Duration
	SkipAuth        bool
	MockSubject     string
	MockEmail       string
	MockName        string
}

type ImportConfig struct {
	// DecimalSeparator drives CSV delimiter autodetection: "," selects ";",
	// "." selects ",".
	DecimalSeparator string
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:4200")),
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "expenses_app"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Identity: IdentityConfig{
			IssuerURL:       getEnv("IDENTITY_ISSUER_URL", ""),
			UsersAPIURL:     getEnv("IDENTITY_USERS_API_URL", ""),
			ClientID:        getEnv("IDENTITY_CLIENT_ID", "ExpensesAPIClient"),
			ClientSecret:    getEnv("IDENTITY_CLIENT_SECRET", ""),
			DelegationScope: getEnv("IDENTITY_DELEGATION_SCOPE", "ExpensesIdentityServerUsersAPI"),
			AuthTimeout:     getEnvDuration("IDENTITY_AUTH_TIMEOUT", 5*time.Second),
			SkipAuth:        getEnvBool("AUTH_SKIP", false),
			MockSubject:     getEnv("AUTH_MOCK_SUBJECT", "dev-user"),
			MockEmail:       getEnv("AUTH_MOCK_EMAIL", ""),
			MockName:        getEnv("AUTH_MOCK_NAME", ""),
		},
		Import: ImportConfig{
			DecimalSeparator: getEnv("IMPORT_DECIMAL_SEPARATOR", ","),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
