package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseURL      string
	DBMaxConnections int

	JWTSecret string
	JWTTTL    time.Duration

	RequestTimeout   time.Duration
	RequestBodyLimit int64
	DefaultPageLimit int
	PinTTL           time.Duration
	LoginRatePerMin  int
	WebsiteURL       string
	ServerURL        string

	StorageType   string
	UploadDir     string
	AWSRegion     string
	AWSBucketName string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	FirebaseCredentialsPath string
	NatsURL                 string
}

// Load reads an optional .env file and then the process environment.
// Values already present in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNECTIONS", 20)
	v.SetDefault("JWT_TTL", "720h")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("REQUEST_BODY_LIMIT_MB", 5)
	v.SetDefault("DEFAULT_PAGE_LIMIT", 20)
	v.SetDefault("PIN_TTL", "5m")
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 5)
	v.SetDefault("WEBSITE_URL", "https://example.com")
	v.SetDefault("SERVER_URL", "http://localhost:8080")
	v.SetDefault("STORAGE_TYPE", "disk")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("SMTP_PORT", 587)

	cfg := &Config{
		Env:      v.GetString("ENV"),
		Port:     v.GetString("PORT"),
		LogLevel: v.GetString("LOG_LEVEL"),

		DatabaseURL:      v.GetString("DATABASE_URL"),
		DBMaxConnections: v.GetInt("DB_MAX_CONNECTIONS"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		RequestTimeout:   v.GetDuration("REQUEST_TIMEOUT"),
		RequestBodyLimit: v.GetInt64("REQUEST_BODY_LIMIT_MB") * 1024 * 1024,
		DefaultPageLimit: v.GetInt("DEFAULT_PAGE_LIMIT"),
		PinTTL:           v.GetDuration("PIN_TTL"),
		LoginRatePerMin:  v.GetInt("LOGIN_RATE_PER_MINUTE"),
		WebsiteURL:       v.GetString("WEBSITE_URL"),
		ServerURL:        strings.TrimRight(v.GetString("SERVER_URL"), "/"),

		StorageType:   strings.ToLower(v.GetString("STORAGE_TYPE")),
		UploadDir:     v.GetString("UPLOAD_DIR"),
		AWSRegion:     v.GetString("AWS_REGION"),
		AWSBucketName: v.GetString("AWS_BUCKET_NAME"),

		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPUsername: v.GetString("SMTP_USERNAME"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),
		SMTPFrom:     v.GetString("SMTP_FROM"),

		FirebaseCredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
		NatsURL:                 v.GetString("NATS_URL"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.StorageType == "s3" && c.AWSBucketName == "" {
		return errors.New("AWS_BUCKET_NAME is required when STORAGE_TYPE=s3")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "dev" || c.Env == "development"
}
