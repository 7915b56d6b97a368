package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration required by the API process.
// All values must come from env (or a .env file loaded at startup).
// No business logic should depend on raw environment variables.
type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	Auth  AuthConfig
	Mail  MailConfig
	Rate  RateLimitConfig
}

type AppConfig struct {
	Env  string
	Port int

	// PublicBaseURL is used to build confirmation/reset links placed in
	// outbound email. Must include scheme and host, no trailing slash.
	PublicBaseURL string

	// AvatarDir is the local directory avatar uploads are written to.
	AvatarDir string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	// SecretKey signs every token the service issues. Required, opaque.
	SecretKey string

	// Algorithm is the JWT signing algorithm: HS256 or HS512.
	// Any other value is a startup error; the process must not serve
	// traffic with an invalid signing configuration.
	Algorithm string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type RateLimitConfig struct {
	// APIPerMinute caps authenticated API requests per client IP.
	APIPerMinute int
	// AuthPerMinute caps login/signup/reset requests per client IP.
	AuthPerMinute int
}

func Load() (Config, error) {
	// Optional .env for local development; real deployments use the process env.
	_ = godotenv.Load()

	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}
	c.App.PublicBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/")
	c.App.AvatarDir = strings.TrimSpace(os.Getenv("AVATAR_DIR"))

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Auth.SecretKey = os.Getenv("SECRET_KEY")
	c.Auth.Algorithm = strings.TrimSpace(os.Getenv("JWT_ALGORITHM"))
	c.Auth.AccessTokenTTL = time.Duration(optInt("ACCESS_EXPIRE_MIN", 15)) * time.Minute
	c.Auth.RefreshTokenTTL = time.Duration(optInt("REFRESH_EXPIRE_DAYS", 7)) * 24 * time.Hour

	c.Mail.Host = strings.TrimSpace(os.Getenv("MAIL_SERVER"))
	c.Mail.Port = optInt("MAIL_PORT", 2525)
	c.Mail.Username = strings.TrimSpace(os.Getenv("MAIL_USERNAME"))
	c.Mail.Password = os.Getenv("MAIL_PASSWORD")
	c.Mail.From = strings.TrimSpace(os.Getenv("MAIL_FROM"))

	c.Rate.APIPerMinute = optInt("RATE_LIMIT_API_RPM", 100)
	c.Rate.AuthPerMinute = optInt("RATE_LIMIT_AUTH_RPM", 10)

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}
	if c.App.PublicBaseURL == "" {
		errs = append(errs, errors.New("PUBLIC_BASE_URL is required"))
	}
	if c.App.AvatarDir == "" {
		c.App.AvatarDir = "./data/avatars"
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if strings.TrimSpace(c.DB.SSLMode) == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Auth.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if c.Auth.Algorithm == "" {
		c.Auth.Algorithm = "HS256"
	}
	if !isValidAlgorithm(c.Auth.Algorithm) {
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM must be HS256 or HS512, got %q", c.Auth.Algorithm))
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		errs = append(errs, errors.New("REFRESH_EXPIRE_DAYS must outlive ACCESS_EXPIRE_MIN"))
	}

	if c.Mail.Host == "" {
		errs = append(errs, errors.New("MAIL_SERVER is required"))
	}
	if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
		errs = append(errs, fmt.Errorf("MAIL_PORT must be a valid port, got %d", c.Mail.Port))
	}
	if c.Mail.From == "" {
		errs = append(errs, errors.New("MAIL_FROM is required"))
	}

	if c.Rate.APIPerMinute <= 0 {
		c.Rate.APIPerMinute = 100
	}
	if c.Rate.AuthPerMinute <= 0 {
		c.Rate.AuthPerMinute = 10
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func (c Config) MailAddr() string {
	return fmt.Sprintf("%s:%d", c.Mail.Host, c.Mail.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func isValidAlgorithm(v string) bool {
	switch v {
	case "HS256", "HS512":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
