package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mongo struct {
	URI                    string
	Database               string
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
}

type Firebase struct {
	ServiceAccountPath string
	ProjectID          string
}

type AWS struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

type SMTP struct {
	Host     string
	Port     string
	From     string
	Password string
}

// App is the process configuration, read once at startup.
type App struct {
	Port      string
	Env       string
	LogLevel  string
	ClientURL string
	BaseURL   string
	UploadDir string
	JWTSecret string
	RedisURL  string

	Mongo    Mongo
	Firebase Firebase
	AWS      AWS
	SMTP     SMTP
}

// Load reads an optional .env file and then the environment.
func Load() (App, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return App{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := App{
		Port:      getenv("PORT", "8080"),
		Env:       getenv("APP_ENV", "development"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		ClientURL: os.Getenv("CLIENT_URL"),
		BaseURL:   getenv("BASE_URL", "http://localhost:8080"),
		UploadDir: getenv("UPLOAD_DIR", "./uploads"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		RedisURL:  os.Getenv("REDIS_URL"),
		Mongo: Mongo{
			URI:      os.Getenv("MONGODB_URI"),
			Database: getenv("MONGODB_DB", "car_rental"),
		},
		Firebase: Firebase{
			ServiceAccountPath: os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),
			ProjectID:          os.Getenv("FIREBASE_PROJECT_ID"),
		},
		AWS: AWS{
			Region:          os.Getenv("AWS_REGION"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			Bucket:          os.Getenv("AWS_S3_BUCKET"),
		},
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getenv("SMTP_PORT", "587"),
			From:     os.Getenv("EMAIL_FROM"),
			Password: os.Getenv("EMAIL_PASSWORD"),
		},
	}

	var err error
	if cfg.Mongo.ServerSelectionTimeout, err = duration("MONGODB_SERVER_SELECTION_TIMEOUT", 5*time.Second); err != nil {
		return App{}, err
	}
	if cfg.Mongo.SocketTimeout, err = duration("MONGODB_SOCKET_TIMEOUT", 45*time.Second); err != nil {
		return App{}, err
	}

	if cfg.Mongo.URI == "" {
		return App{}, errors.New("MONGODB_URI is required")
	}
	return cfg, nil
}

// S3Enabled reports whether every AWS setting needed for uploads is present.
func (a App) S3Enabled() bool {
	return a.AWS.Region != "" && a.AWS.AccessKeyID != "" && a.AWS.SecretAccessKey != "" && a.AWS.Bucket != ""
}

// CORSOrigins returns the browser origins allowed to call the API.
func (a App) CORSOrigins() []string {
	origins := []string{"http://localhost:5173", "http://localhost:5000"}
	for _, o := range strings.Split(a.ClientURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// FrontendURL is the first client origin, used for links in emails.
func (a App) FrontendURL() string {
	for _, o := range strings.Split(a.ClientURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			return o
		}
	}
	return "http://localhost:5173"
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (a App) SlogLevel() slog.Level {
	switch strings.ToLower(a.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func duration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}
