package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"

	EmailProviderLog   = "log"
	EmailProviderSMTP  = "smtp"
	EmailProviderQueue = "queue"

	DefaultResetURLBase = "https://miapp.com/reset-password"
)

var ErrInvalidURL = errors.New("invalid url")

type Config struct {
	HTTP      HTTPConfig
	GRPC      GRPCConfig
	Database  DatabaseConfig
	Reset     ResetConfig
	Password  PasswordConfig
	Email     EmailConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type HTTPConfig struct {
	Host           string
	Port           string
	FrontendOrigin string
}

type GRPCConfig struct {
	Enabled        bool
	Host           string
	Port           string
	InternalAPIKey string
}

type DatabaseConfig struct {
	Driver string
	URL    string
	SSL    bool
	SSLCA  string
}

type ResetConfig struct {
	TokenTTL time.Duration
	URLBase  string
}

type PasswordConfig struct {
	HashCost int
	Policy   PasswordPolicy
}

type EmailConfig struct {
	Provider string
	From     string
	SMTP     SMTPConfig
}

type SMTPConfig struct {
	Host    string
	Port    int
	Secure  bool
	User    string
	Pass    string
	Timeout time.Duration
}

type RedisConfig struct {
	URL string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

func (p PasswordPolicy) Validate(password string) error {
	if utf8.RuneCountInString(password) < p.MinLength {
		return fmt.Errorf("password must be at least %d characters long", p.MinLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes long", MaxPasswordBytes)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasNumber = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			hasSpecial = true
		}
	}

	var missing []string
	if p.RequireUppercase && !hasUpper {
		missing = append(missing, "uppercase letter")
	}
	if p.RequireLowercase && !hasLower {
		missing = append(missing, "lowercase letter")
	}
	if p.RequireNumber && !hasNumber {
		missing = append(missing, "number")
	}
	if p.RequireSpecial && !hasSpecial {
		missing = append(missing, "special character")
	}

	if len(missing) > 0 {
		return fmt.Errorf("password must contain at least one: %s", strings.Join(missing, ", "))
	}

	return nil
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", DriverPostgres))
	if driver != DriverPostgres && driver != DriverMySQL {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	resetURLBase := getEnv("RESET_URL_BASE", DefaultResetURLBase)
	if err := ValidateBaseURL(resetURLBase); err != nil {
		return nil, fmt.Errorf("RESET_URL_BASE: %w", err)
	}

	return &Config{
		HTTP: HTTPConfig{
			Host:           os.Getenv("HTTP_HOST"),
			Port:           getEnv("HTTP_PORT", "3000"),
			FrontendOrigin: getEnv("FRONTEND_ORIGIN", "*"),
		},
		GRPC: GRPCConfig{
			Enabled:        getBoolEnv("GRPC_ENABLED", true),
			Host:           os.Getenv("GRPC_HOST"),
			Port:           getEnv("GRPC_PORT", "9090"),
			InternalAPIKey: strings.TrimSpace(os.Getenv("INTERNAL_API_KEY")),
		},
		Database: DatabaseConfig{
			Driver: driver,
			URL:    databaseURL,
			SSL:    getBoolEnv("DATABASE_SSL", false),
			SSLCA:  os.Getenv("DATABASE_SSL_CA"),
		},
		Reset: ResetConfig{
			TokenTTL: getDurationEnv("RESET_TOKEN_TTL", 1*time.Hour),
			URLBase:  resetURLBase,
		},
		Password: PasswordConfig{
			HashCost: clampHashCost(getIntEnv("PASSWORD_HASH_COST", bcrypt.DefaultCost)),
			Policy:   loadPasswordPolicy(),
		},
		Email:     loadEmailConfig(),
		Redis:     RedisConfig{URL: getEnv("REDIS_URL", "redis://localhost:6379/0")},
		RateLimit: RateLimitConfig{
			Requests: getIntEnv("RATE_LIMIT_REQUESTS", 10),
			Window:   getDurationEnv("RATE_LIMIT_WINDOW", 1*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

// DSN returns the connection string for the configured driver. For postgres the
// SSL settings are folded into the URL unless it already carries an sslmode.
func (c *Config) DSN() string {
	if c.Database.Driver != DriverPostgres {
		return c.Database.URL
	}

	u, err := url.Parse(c.Database.URL)
	if err != nil || u.Scheme == "" {
		return c.Database.URL
	}

	q := u.Query()
	if q.Get("sslmode") == "" && c.Database.SSL {
		q.Set("sslmode", "require")
	}
	if c.Database.SSLCA != "" && q.Get("sslrootcert") == "" && q.Get("sslmode") != "disable" {
		q.Set("sslrootcert", c.Database.SSLCA)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidURL, err.Error())
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, raw)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func clampHashCost(cost int) int {
	if cost < bcrypt.MinCost {
		return bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		return bcrypt.MaxCost
	}
	return cost
}

func loadPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        getIntEnv("PASSWORD_MIN_LENGTH", 8),
		RequireUppercase: getBoolEnv("PASSWORD_REQUIRE_UPPERCASE", false),
		RequireLowercase: getBoolEnv("PASSWORD_REQUIRE_LOWERCASE", false),
		RequireNumber:    getBoolEnv("PASSWORD_REQUIRE_NUMBER", false),
		RequireSpecial:   getBoolEnv("PASSWORD_REQUIRE_SPECIAL", false),
	}
}

func loadEmailConfig() EmailConfig {
	smtpHost := os.Getenv("SMTP_HOST")

	defaultProvider := EmailProviderLog
	if smtpHost != "" {
		defaultProvider = EmailProviderSMTP
	}
	provider := strings.ToLower(getEnv("EMAIL_PROVIDER", defaultProvider))

	port := getIntEnv("SMTP_PORT", 587)
	return EmailConfig{
		Provider: provider,
		From:     getEnv("EMAIL_FROM", "no-reply@miapp.com"),
		SMTP: SMTPConfig{
			Host:    smtpHost,
			Port:    port,
			Secure:  getBoolEnv("SMTP_SECURE", port == 465),
			User:    os.Getenv("SMTP_USER"),
			Pass:    os.Getenv("SMTP_PASS"),
			Timeout: time.Duration(getIntEnv("SMTP_TIMEOUT", 30)) * time.Second,
		},
	}
}
