// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.
type Config struct {
	Env            string // APP_ENV (dev, test, prod)
	Port           string // APP_PORT
	DBUser         string
	DBPass         string // optional
	DBHost         string
	DBPort         string
	DBName         string
	JWTSecret      string
	AccessTTLMin   int // access token lifetime in minutes
	RefreshTTLDays int // refresh token lifetime in days
	BcryptCost     int
	LogLevel       string

	// ClubLocation is the wall clock used to decide whether a cash table is live.
	ClubLocation *time.Location

	ClubVenue      string // calendar LOCATION
	CalendarDomain string // right-hand side of calendar UIDs

	UploadDir      string
	UploadMaxBytes int64
	PublicBaseURL  string // prefix for uploaded file URLs and calendar links
	CORSOrigins    []string
	MigrateOnStart bool

	AdminEmail    string // bootstrap admin, created when no user with this email exists
	AdminPassword string

	RabbitMQURL string // empty disables the broker; cache invalidation then runs inline
}

// LoadDotEnv reads a .env file when one is present.  A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

// Load reads configuration values from the environment.  Every missing or
// malformed variable is reported in a single error.
func Load() (Config, error) {
	l := &loader{}
	cfg := Config{
		Env:            l.must("APP_ENV"),
		Port:           l.must("APP_PORT"),
		DBUser:         l.must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         l.must("DB_HOST"),
		DBPort:         l.must("DB_PORT"),
		DBName:         l.must("DB_NAME"),
		JWTSecret:      l.must("JWT_SECRET"),
		AccessTTLMin:   l.intOr("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: l.intOr("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:     l.intOr("BCRYPT_COST", 12),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		ClubVenue:      os.Getenv("CLUB_VENUE"),
		CalendarDomain: envStr("CLUB_DOMAIN", "poker-club"),
		UploadDir:      envStr("UPLOAD_DIR", "./uploads"),
		UploadMaxBytes: int64(l.intOr("UPLOAD_MAX_BYTES", 5<<20)),
		PublicBaseURL:  strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		CORSOrigins:    splitList(envStr("CORS_ORIGINS", "*")),
		MigrateOnStart: envBool("MIGRATE_ON_START", true),
		AdminEmail:     strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		RabbitMQURL:    firstNonEmpty(os.Getenv("RABBITMQ_URL"), os.Getenv("AMQP_URL")),
	}

	tz := envStr("CLUB_TIMEZONE", "Europe/Budapest")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		l.fail("invalid CLUB_TIMEZONE %q: %v", tz, err)
	}
	cfg.ClubLocation = loc

	if cfg.AdminEmail != "" && cfg.AdminPassword == "" {
		l.fail("ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		l.fail("BCRYPT_COST must be between 4 and 31, got %d", cfg.BcryptCost)
	}

	if len(l.problems) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(l.problems, "; "))
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with APP_ENV=prod.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

type loader struct {
	problems []string
}

func (l *loader) fail(format string, args ...any) {
	l.problems = append(l.problems, fmt.Sprintf(format, args...))
}

func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		l.fail("missing required env var: %s", key)
		return ""
	}
	return v
}

func (l *loader) intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.fail("invalid int for %s: %q", key, v)
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
