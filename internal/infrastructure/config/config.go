package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values for the enumerated settings
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	RendererWkhtmltopdf = "wkhtmltopdf"
	RendererChromedp    = "chromedp"

	StorageFilesystem = "filesystem"
	StorageS3         = "s3"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Log       LogConfig
	Media     MediaConfig
	PDF       PDFConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Swagger   SwaggerConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests float64 // sustained requests per second per client
	RateLimitBurst    int
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	SQLitePath      string
	AutoMigrate     bool
	MigrationsPath  string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	SlowQueryThresh time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout, stderr, or file path
	MaxSizeMB  int    // rotation size for file output
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// MediaConfig holds where attached files live on disk and the URL prefix they are served under
type MediaConfig struct {
	Root    string
	BaseURL string
}

// PDFConfig holds the recipe PDF renderer and worker pool settings
type PDFConfig struct {
	Renderer          string // wkhtmltopdf or chromedp
	BinaryPath        string
	UseXvfb           bool
	XvfbPath          string
	XvfbScreen        string
	Zoom              float64
	LoadErrorHandling string
	RenderTimeout     time.Duration
	Workers           int
	QueueSize         int
	LeaseTTL          time.Duration
	RecoverOnStart    bool
	SweepInterval     time.Duration // periodic re-enqueue of pending recipes, 0 disables
	ChromeRemoteURL   string
	ChromeNoSandbox   bool
}

// StorageConfig holds object storage settings used when Driver is s3
type StorageConfig struct {
	Driver            string // filesystem or s3
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	Prefix            string
	PresignExpiration time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled   bool
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// SwaggerConfig holds API documentation endpoint configuration
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // IPs or CIDRs admitted to the docs, empty admits all
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable tracing
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool // Enable database query tracing (otelgorm)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with COOKBOOK_ prefix (e.g., COOKBOOK_DATABASE_PASSWORD)
// 2. Variables from a .env file in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/cookbook")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return loadFrom(v)
}

// loadFrom builds a Config from an already prepared viper instance
func loadFrom(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("COOKBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Boolean settings whose default is true cannot be told apart from an unset
	// value after reading, so they get viper defaults.
	v.SetDefault("pdf.use_xvfb", true)
	v.SetDefault("pdf.recover_on_start", true)
	v.SetDefault("pdf.sweep_interval", "5m")
	v.SetDefault("swagger.enabled", true)
	v.SetDefault("telemetry.insecure", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetFloat64("http.rate_limit_requests"),
			RateLimitBurst:    v.GetInt("http.rate_limit_burst"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
			MigrationsPath:  v.GetString("database.migrations_path"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			SlowQueryThresh: v.GetDuration("database.slow_query_threshold"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			Output:     v.GetString("log.output"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
			Compress:   v.GetBool("log.compress"),
		},
		Media: MediaConfig{
			Root:    v.GetString("media.root"),
			BaseURL: v.GetString("media.base_url"),
		},
		PDF: PDFConfig{
			Renderer:          v.GetString("pdf.renderer"),
			BinaryPath:        v.GetString("pdf.binary_path"),
			UseXvfb:           v.GetBool("pdf.use_xvfb"),
			XvfbPath:          v.GetString("pdf.xvfb_path"),
			XvfbScreen:        v.GetString("pdf.xvfb_screen"),
			Zoom:              v.GetFloat64("pdf.zoom"),
			LoadErrorHandling: v.GetString("pdf.load_error_handling"),
			RenderTimeout:     v.GetDuration("pdf.render_timeout"),
			Workers:           v.GetInt("pdf.workers"),
			QueueSize:         v.GetInt("pdf.queue_size"),
			LeaseTTL:          v.GetDuration("pdf.lease_ttl"),
			RecoverOnStart:    v.GetBool("pdf.recover_on_start"),
			SweepInterval:     v.GetDuration("pdf.sweep_interval"),
			ChromeRemoteURL:   v.GetString("pdf.chrome_remote_url"),
			ChromeNoSandbox:   v.GetBool("pdf.chrome_no_sandbox"),
		},
		Storage: StorageConfig{
			Driver:            v.GetString("storage.driver"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			Prefix:            v.GetString("storage.prefix"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Redis: RedisConfig{
			Enabled:   v.GetBool("redis.enabled"),
			Host:      v.GetString("redis.host"),
			Port:      v.GetInt("redis.port"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			KeyPrefix: v.GetString("redis.key_prefix"),
		},
		Swagger: SwaggerConfig{
			Enabled:    v.GetBool("swagger.enabled"),
			AllowedIPs: v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "cookbook-api"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8000"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 10
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = 20
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "cookbook.db"
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "migrations"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "cookbook"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.SlowQueryThresh == 0 {
		cfg.Database.SlowQueryThresh = 200 * time.Millisecond
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 100
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 5
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 28
	}

	if cfg.Media.Root == "" {
		cfg.Media.Root = "./media"
	}
	if cfg.Media.BaseURL == "" {
		cfg.Media.BaseURL = "/media"
	}

	if cfg.PDF.Renderer == "" {
		cfg.PDF.Renderer = RendererWkhtmltopdf
	}
	if cfg.PDF.BinaryPath == "" {
		cfg.PDF.BinaryPath = "wkhtmltopdf"
	}
	if cfg.PDF.XvfbPath == "" {
		cfg.PDF.XvfbPath = "xvfb-run"
	}
	if cfg.PDF.XvfbScreen == "" {
		cfg.PDF.XvfbScreen = "640x480x16"
	}
	if cfg.PDF.Zoom == 0 {
		cfg.PDF.Zoom = 1.0
	}
	if cfg.PDF.LoadErrorHandling == "" {
		cfg.PDF.LoadErrorHandling = "ignore"
	}
	if cfg.PDF.RenderTimeout == 0 {
		cfg.PDF.RenderTimeout = 60 * time.Second
	}
	if cfg.PDF.Workers == 0 {
		cfg.PDF.Workers = 2
	}
	if cfg.PDF.QueueSize == 0 {
		cfg.PDF.QueueSize = 100
	}
	if cfg.PDF.LeaseTTL == 0 {
		cfg.PDF.LeaseTTL = cfg.PDF.RenderTimeout + 30*time.Second
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageFilesystem
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "cookbook:render-lease:"
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.PDF.Renderer {
	case RendererWkhtmltopdf, RendererChromedp:
	default:
		return fmt.Errorf("pdf.renderer must be %q or %q, got %q", RendererWkhtmltopdf, RendererChromedp, c.PDF.Renderer)
	}
	if c.PDF.Workers < 1 {
		return fmt.Errorf("pdf.workers must be at least 1")
	}
	if c.PDF.QueueSize < 1 {
		return fmt.Errorf("pdf.queue_size must be at least 1")
	}
	if c.PDF.Zoom <= 0 {
		return fmt.Errorf("pdf.zoom must be positive")
	}
	if c.PDF.LeaseTTL < c.PDF.RenderTimeout {
		return fmt.Errorf("pdf.lease_ttl (%s) must not be shorter than pdf.render_timeout (%s)",
			c.PDF.LeaseTTL, c.PDF.RenderTimeout)
	}
	if c.PDF.SweepInterval < 0 {
		return fmt.Errorf("pdf.sweep_interval must not be negative")
	}

	switch c.Storage.Driver {
	case StorageFilesystem:
	case StorageS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required when storage.driver is %q", StorageS3)
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return fmt.Errorf("storage.access_key and storage.secret_key are required when storage.driver is %q", StorageS3)
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", StorageFilesystem, StorageS3, c.Storage.Driver)
	}

	if c.App.Env == "production" {
		if c.Database.Driver == DriverPostgres && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
