package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Todoist     TodoistConfig
	Renderer    RendererConfig
	Artifact    ArtifactConfig
	Printer     PrinterConfig
	Admin       AdminConfig
	RateLimit   RateLimitConfig
	Buffer      BufferConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type TodoistConfig struct {
	APIToken      string
	ProjectName   string
	WebhookSecret string
	Timeout       time.Duration
}

type RendererConfig struct {
	// TicketBaseURL is the display page the headless browser navigates to;
	// submission fields travel as query parameters.
	TicketBaseURL string
	// ChromeWSURL points at a remote DevTools endpoint. Empty means a locally
	// launched headless browser.
	ChromeWSURL string
	// Selector is the ticket root element the capture is scoped to.
	Selector string
	Timeout  time.Duration
}

type ArtifactConfig struct {
	Bucket   string
	Region   string
	Endpoint string
}

type PrinterConfig struct {
	QueueURL string
	Region   string
	GroupID  string
}

type AdminConfig struct {
	APIKey string
}

type RateLimitConfig struct {
	// RequestsPerWindow of zero disables the limiter entirely.
	RequestsPerWindow int
	Window            time.Duration
}

type BufferConfig struct {
	Path          string
	SweepInterval time.Duration
	MaxRetry      int
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "faxmemaybe"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "faxmemaybe_db"),
			User:            getString("DB_USER", "faxmemaybe_user"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Todoist: TodoistConfig{
			APIToken:      os.Getenv("TODOIST_API_TOKEN"),
			ProjectName:   getString("TODOIST_PROJECT_NAME", "FaxMeMaybe"),
			WebhookSecret: os.Getenv("TODOIST_WEBHOOK_SECRET"),
			Timeout:       getDuration("TODOIST_TIMEOUT", 15*time.Second),
		},
		Renderer: RendererConfig{
			TicketBaseURL: getString("TICKET_PAGE_URL", "http://localhost:5173/ticket"),
			ChromeWSURL:   os.Getenv("CHROME_WS_URL"),
			Selector:      getString("TICKET_SELECTOR", "#ticket"),
			Timeout:       getDuration("RENDER_TIMEOUT", 30*time.Second),
		},
		Artifact: ArtifactConfig{
			Bucket:   getString("ARTIFACT_BUCKET", "faxmemaybe"),
			Region:   getString("AWS_REGION", "us-east-1"),
			Endpoint: os.Getenv("ARTIFACT_ENDPOINT"),
		},
		Printer: PrinterConfig{
			QueueURL: os.Getenv("SQS_QUEUE_URL"),
			Region:   getString("AWS_REGION", "us-east-1"),
			GroupID:  getString("PRINT_GROUP_ID", "todo-printer"),
		},
		Admin: AdminConfig{
			APIKey: os.Getenv("ADMIN_API_KEY"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getInt("RATE_LIMIT_REQUESTS", 30),
			Window:            getDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Buffer: BufferConfig{
			Path:          getString("BOLTDB_PATH", "./data/dispatch.db"),
			SweepInterval: getDuration("DISPATCH_SWEEP_INTERVAL", 60*time.Second),
			MaxRetry:      getInt("DISPATCH_MAX_RETRY", 5),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 60*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// StrictDueDates reports whether due dates must be concrete YYYY-MM-DD dates.
// Natural-language due strings are allowed outside strict deployments.
func (c *Config) StrictDueDates() bool {
	return getBool("STRICT_DUE_DATES", c.Environment == "production")
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
