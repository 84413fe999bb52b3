package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Mongo        MongoConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Checkin      CheckinConfig
	QR           QRConfig
	S3           S3Config
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	// PublicURL prefixes the shareable registration links handed out for events.
	PublicURL             string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	AppName        string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	// URL, when set, takes precedence over Addr, Password and DB.
	URL       string
	Addr      string
	Password  string
	DB        int
	TimeoutMS int
}

// MongoConfig holds MongoDB connection values. An empty URI disables Mongo.
type MongoConfig struct {
	URI      string
	Database string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Development bool
	// Encoding is json or console.
	Encoding    string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	BootstrapName         string
	BootstrapEmail        string
	BootstrapPassword     string
	SuperAdminEmails      []string
	OrganizationDomains   []string
}

// Ledger and session backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// CheckinConfig controls token validity and the consumption ledger.
type CheckinConfig struct {
	TokenTTLMinutes int
	LedgerBackend   string
	LedgerTimeoutMS int
	SessionBackend  string
}

// Rendering limits. The encoder allocates width² pixels per image.
const (
	MaxQRWidth  = 4096
	MaxQRMargin = 64
)

// QRConfig controls barcode rendering.
type QRConfig struct {
	Width         int
	Margin        int
	DarkColor     string
	LightColor    string
	RecoveryLevel string
}

// S3Config configures the optional QR image bucket. An empty bucket keeps images inline.
type S3Config struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	Bucket               string
	PresignExpireMinutes int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "checkin-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			PublicURL:             strings.TrimRight(getEnv("APP_PUBLIC_URL", "http://localhost:8080"), "/"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			AppName:        getEnv("APP_NAME", "checkin-service"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			URL:       os.Getenv("REDIS_URL"),
			Addr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			TimeoutMS: getEnvAsInt("REDIS_TIMEOUT_MS", 1000),
		},
		Mongo: MongoConfig{
			URI:      os.Getenv("MONGO_URI"),
			Database: getEnv("MONGO_DATABASE", "checkin"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
			Encoding:    strings.ToLower(getEnv("LOG_ENCODING", "json")),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			BootstrapName:         getEnv("AUTH_BOOTSTRAP_NAME", "Administrator"),
			BootstrapEmail:        os.Getenv("AUTH_BOOTSTRAP_EMAIL"),
			BootstrapPassword:     os.Getenv("AUTH_BOOTSTRAP_PASSWORD"),
			SuperAdminEmails:      splitTrim(getEnv("AUTH_SUPER_ADMINS", "admin@mapease.com,superadmin@mapease.com")),
			OrganizationDomains:   splitTrim(getEnv("AUTH_ORG_DOMAINS", "@company.com,@university.edu,@organization.org")),
		},
		Checkin: CheckinConfig{
			TokenTTLMinutes: getEnvAsInt("CHECKIN_TOKEN_TTL_MINUTES", 24*60),
			LedgerBackend:   strings.ToLower(getEnv("LEDGER_BACKEND", BackendMemory)),
			LedgerTimeoutMS: getEnvAsInt("LEDGER_TIMEOUT_MS", 2000),
			SessionBackend:  strings.ToLower(getEnv("SESSION_BACKEND", BackendMemory)),
		},
		QR: QRConfig{
			Width:         getEnvAsInt("QR_WIDTH", 256),
			Margin:        getEnvAsInt("QR_MARGIN", 2),
			DarkColor:     getEnv("QR_DARK_COLOR", "#000000"),
			LightColor:    getEnv("QR_LIGHT_COLOR", "#ffffff"),
			RecoveryLevel: strings.ToLower(getEnv("QR_RECOVERY_LEVEL", "medium")),
		},
		S3: S3Config{
			Region:               getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:          os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey:      os.Getenv("AWS_SECRET_ACCESS_KEY"),
			Bucket:               os.Getenv("AWS_S3_QR_BUCKET"),
			PresignExpireMinutes: getEnvAsInt("AWS_PRESIGN_EXPIRE_MINUTES", 24*60),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@mapease.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Checkin.LedgerBackend {
	case BackendMemory, BackendRedis, BackendPostgres, BackendMongo:
	default:
		return fmt.Errorf("invalid LEDGER_BACKEND %q: should be one of memory, redis, postgres, mongo", c.Checkin.LedgerBackend)
	}
	switch c.Checkin.SessionBackend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("invalid SESSION_BACKEND %q: should be one of memory, redis", c.Checkin.SessionBackend)
	}
	if c.Checkin.LedgerBackend == BackendPostgres && c.Postgres.DSN == "" {
		return fmt.Errorf("LEDGER_BACKEND=postgres requires POSTGRES_DSN")
	}
	if c.Checkin.LedgerBackend == BackendMongo && c.Mongo.URI == "" {
		return fmt.Errorf("LEDGER_BACKEND=mongo requires MONGO_URI")
	}
	if c.Checkin.TokenTTLMinutes <= 0 {
		return fmt.Errorf("CHECKIN_TOKEN_TTL_MINUTES must be positive")
	}
	if c.QR.Width <= 0 || c.QR.Width > MaxQRWidth {
		return fmt.Errorf("QR_WIDTH must be between 1 and %d", MaxQRWidth)
	}
	if c.QR.Margin < 0 || c.QR.Margin > MaxQRMargin {
		return fmt.Errorf("QR_MARGIN must be between 0 and %d", MaxQRMargin)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TokenTTL is the validity window of an issued check-in token.
func (c CheckinConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// LedgerTimeout bounds a single ledger round trip.
func (c CheckinConfig) LedgerTimeout() time.Duration {
	if c.LedgerTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(c.LedgerTimeoutMS) * time.Millisecond
}

// Timeout bounds dialing and each command round trip.
func (r RedisConfig) Timeout() time.Duration {
	if r.TimeoutMS <= 0 {
		return time.Second
	}
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

// AccessTokenTTL returns the operator JWT lifetime.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	if a.AccessTokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// PresignExpire returns the presigned URL lifetime.
func (s S3Config) PresignExpire() time.Duration {
	if s.PresignExpireMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(s.PresignExpireMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitTrim(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, ",") {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
