package config

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type Config struct {
	HTTPAddr string
	Store    string
	DB       DBConfig
	Session  SessionConfig
	Upload   UploadConfig
	S3       S3Config

	Timezone   string
	BcryptCost int

	SweepInterval time.Duration
	SweepGrace    time.Duration

	LogLevel  string
	LogFormat string
}

type DBConfig struct {
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	QueryTimeout time.Duration
}

type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	CookieSecure bool
	RedisURL     string
}

type UploadConfig struct {
	Dir        string
	MaxBytes   int64
	ImageStore string
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Load reads the optional .env file (envFile, or ".env" when empty) and then
// the process environment. Variables already set in the environment win.
func Load(envFile string) Config {
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	return Config{
		HTTPAddr: getenv("HTTP_ADDR", ":"+getenv("PORT", "3000")),
		Store:    strings.ToLower(getenv("STORE", "postgres")),
		DB: DBConfig{
			URL:          getenv("DATABASE_URL", ""),
			Host:         getenv("DB_HOST", "localhost"),
			Port:         getenvInt("DB_PORT", 5432),
			User:         getenv("DB_USER", "vvk"),
			Password:     getenv("DB_PASSWORD", "vvk2026"),
			Name:         getenv("DB_NAME", "vvk_spring_fair"),
			SSLMode:      getenv("DB_SSLMODE", "disable"),
			MaxOpenConns: getenvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getenvInt("DB_MAX_IDLE_CONNS", 5),
			QueryTimeout: getenvDuration("DB_QUERY_TIMEOUT", 10*time.Second),
		},
		Session: SessionConfig{
			Secret:       getenv("SESSION_SECRET", "vvk_secret_key"),
			TTL:          getenvDuration("SESSION_TTL", 24*time.Hour),
			CookieSecure: getenvBool("COOKIE_SECURE", false),
			RedisURL:     getenv("REDIS_URL", ""),
		},
		Upload: UploadConfig{
			Dir:        getenv("UPLOAD_DIR", "public/uploads"),
			MaxBytes:   int64(getenvInt("MAX_UPLOAD_MB", 50)) << 20,
			ImageStore: strings.ToLower(getenv("IMAGE_STORE", "disk")),
		},
		S3: S3Config{
			Bucket:    getenv("S3_BUCKET", "vvk-uploads"),
			Region:    getenv("S3_REGION", "us-east-1"),
			Endpoint:  getenv("S3_ENDPOINT", ""),
			AccessKey: getenv("S3_ACCESS_KEY", ""),
			SecretKey: getenv("S3_SECRET_KEY", ""),
		},
		Timezone:      getenv("TIMEZONE", "Asia/Ho_Chi_Minh"),
		BcryptCost:    getenvInt("BCRYPT_COST", 12),
		SweepInterval: getenvDuration("SWEEP_INTERVAL", time.Hour),
		SweepGrace:    getenvDuration("SWEEP_GRACE", 24*time.Hour),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogFormat:     getenv("LOG_FORMAT", "text"),
	}
}

// DSN returns DATABASE_URL when set, otherwise a lib/pq URL built from the
// DB_* variables.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}, "connect_timeout": []string{"60"}}.Encode(),
	}
	return u.String()
}

// OpenDB opens and pings the PostgreSQL pool.
func OpenDB(c DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", c.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Location resolves the configured time zone, falling back to UTC+7.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
