// internal/config/config.go
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWTSecret   string
	CORSOrigins []string

	S3       S3Settings
	Redis    RedisSettings
	SMTP     SMTPSettings
	Launch   LaunchSettings
	Sessions SessionSettings

	// TemplatesFile switches the template catalogue to a YAML file.
	TemplatesFile string
}

type S3Settings struct {
	Region        string
	AccessKeyID   string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

func (s S3Settings) Enabled() bool {
	return s.Bucket != ""
}

type RedisSettings struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type SMTPSettings struct {
	Host       string
	Port       string
	User       string
	Pass       string
	From       string
	UseTLS     bool
	Recipients []string
}

type LaunchSettings struct {
	Mode        string
	StepTimeout time.Duration
	Compensate  bool
}

type SessionSettings struct {
	MaxIdle       time.Duration
	SweepInterval time.Duration
}

// Load reads the environment, after an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		host := getEnv("PSQL_HOST", "localhost")
		port := getEnv("PSQL_PORT", "5432")
		user := getEnv("PSQL_USER", "postgres")
		password := getEnv("PSQL_PASSWORD", "postgres")
		dbName := getEnv("PSQL_DB_NAME", "adbuilder")

		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(user, password),
			Host:   host + ":" + port,
			Path:   dbName,
		}
		q := u.Query()
		q.Set("sslmode", "disable")
		u.RawQuery = q.Encode()
		databaseURL = u.String()
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DatabaseURL: databaseURL,
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		S3: S3Settings{
			Region:        getEnv("AWS_REGION", ""),
			AccessKeyID:   getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Bucket:        getEnv("S3_BUCKET_NAME", ""),
			PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		},
		Redis: RedisSettings{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
			Channel:  getEnv("REDIS_CHANNEL", "campaign-launches"),
		},
		SMTP: SMTPSettings{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnv("SMTP_PORT", "587"),
			User:       getEnv("SMTP_USER", ""),
			Pass:       getEnv("SMTP_PASS", ""),
			From:       getEnv("SMTP_FROM", ""),
			UseTLS:     getBool("SMTP_USE_TLS", false),
			Recipients: getList("LAUNCH_NOTIFY_EMAILS", nil),
		},
		Launch: LaunchSettings{
			Mode:        getEnv("LAUNCH_MODE", "flattened"),
			StepTimeout: getDuration("LAUNCH_STEP_TIMEOUT", 30*time.Second),
			Compensate:  getBool("LAUNCH_COMPENSATE", false),
		},
		Sessions: SessionSettings{
			MaxIdle:       getDuration("SESSION_MAX_IDLE", 2*time.Hour),
			SweepInterval: getDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		},
		TemplatesFile: getEnv("TEMPLATES_FILE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
