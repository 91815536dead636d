package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Provider ProviderConfig
	Sync     SyncConfig
	Cache    CacheConfig
	Analysis AnalysisConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
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
}

// RedisConfig holds Redis connection settings.
// Redis is the optional first cache tier for market transactions;
// leaving Enabled false keeps the database-only read-through path.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	TrustedProxies []string
}

// ProviderConfig holds upstream data source settings
type ProviderConfig struct {
	// ApplyHomeBaseURL is the subscription announcement API endpoint
	ApplyHomeBaseURL string
	// ApplyHomeServiceKey authenticates announcement API calls
	ApplyHomeServiceKey string
	// ApplyHomePageSize bounds one page of announcement results
	ApplyHomePageSize int
	// ApplyHomeWebEnabled turns the headless-browser fallback tier on
	ApplyHomeWebEnabled bool
	// ApplyHomeWebURL is the public listing page scraped by the fallback tier
	ApplyHomeWebURL string
	// MolitBaseURL is the real-estate transaction API endpoint
	MolitBaseURL string
	// MolitServiceKey authenticates transaction API calls
	MolitServiceKey string
	// RequestDelay is the pause between consecutive paginated calls
	RequestDelay time.Duration
	// Timeout bounds one upstream HTTP call
	Timeout time.Duration
}

// SyncConfig holds listing synchronization settings
type SyncConfig struct {
	// TargetAreas lists the region names whose listings are collected
	TargetAreas []string
	// Retention is how long past listings are kept before cleanup
	Retention time.Duration
}

// CacheConfig holds market transaction cache settings
type CacheConfig struct {
	// TransactionTTL is how long a fetched region's transactions stay fresh
	TransactionTTL time.Duration
	// MonthsBack is how many deal months one upstream fetch covers
	MonthsBack int
}

// AnalysisConfig holds price classification settings
type AnalysisConfig struct {
	// AcceptDistanceSqm bounds the representative unit's distance from 84 sqm
	AcceptDistanceSqm int
	// MaxBuildingAgeYears bounds comparable building age
	MaxBuildingAgeYears int
	// CheapRatio and ExpensiveRatio bound the neutral band around the median
	CheapRatio     float64
	ExpensiveRatio float64
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with HOUSEPING_ prefix (e.g., HOUSEPING_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("HOUSEPING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
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
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Provider: ProviderConfig{
			ApplyHomeBaseURL:    v.GetString("provider.applyhome_base_url"),
			ApplyHomeServiceKey: v.GetString("provider.applyhome_service_key"),
			ApplyHomePageSize:   v.GetInt("provider.applyhome_page_size"),
			ApplyHomeWebEnabled: v.GetBool("provider.applyhome_web_enabled"),
			ApplyHomeWebURL:     v.GetString("provider.applyhome_web_url"),
			MolitBaseURL:        v.GetString("provider.molit_base_url"),
			MolitServiceKey:     v.GetString("provider.molit_service_key"),
			RequestDelay:        v.GetDuration("provider.request_delay"),
			Timeout:             v.GetDuration("provider.timeout"),
		},
		Sync: SyncConfig{
			TargetAreas: v.GetStringSlice("sync.target_areas"),
			Retention:   v.GetDuration("sync.retention"),
		},
		Cache: CacheConfig{
			TransactionTTL: v.GetDuration("cache.transaction_ttl"),
			MonthsBack:     v.GetInt("cache.months_back"),
		},
		Analysis: AnalysisConfig{
			AcceptDistanceSqm:   v.GetInt("analysis.accept_distance_sqm"),
			MaxBuildingAgeYears: v.GetInt("analysis.max_building_age_years"),
			CheapRatio:          v.GetFloat64("analysis.cheap_ratio"),
			ExpensiveRatio:      v.GetFloat64("analysis.expensive_ratio"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "house-ping"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
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
		cfg.Database.DBName = "houseping"
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
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
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
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.Provider.ApplyHomeBaseURL == "" {
		cfg.Provider.ApplyHomeBaseURL = "https://api.odcloud.kr/api/ApplyhomeInfoDetailSvc/v1"
	}
	if cfg.Provider.ApplyHomePageSize == 0 {
		cfg.Provider.ApplyHomePageSize = 100
	}
	if cfg.Provider.ApplyHomeWebURL == "" {
		cfg.Provider.ApplyHomeWebURL = "https://www.applyhome.co.kr/ai/aia/selectAPTLttotPblancListView.do"
	}
	if cfg.Provider.MolitBaseURL == "" {
		cfg.Provider.MolitBaseURL = "https://apis.data.go.kr/1613000/RTMSDataSvcAptTradeDev"
	}
	if cfg.Provider.RequestDelay == 0 {
		cfg.Provider.RequestDelay = 100 * time.Millisecond
	}
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = 10 * time.Second
	}
	if len(cfg.Sync.TargetAreas) == 0 {
		cfg.Sync.TargetAreas = []string{"서울", "경기"}
	}
	if cfg.Sync.Retention == 0 {
		cfg.Sync.Retention = 8760 * time.Hour // one year
	}
	if cfg.Cache.TransactionTTL == 0 {
		cfg.Cache.TransactionTTL = 24 * time.Hour
	}
	if cfg.Cache.MonthsBack == 0 {
		cfg.Cache.MonthsBack = 3
	}
	if cfg.Analysis.AcceptDistanceSqm == 0 {
		cfg.Analysis.AcceptDistanceSqm = 12
	}
	if cfg.Analysis.MaxBuildingAgeYears == 0 {
		cfg.Analysis.MaxBuildingAgeYears = 10
	}
	if cfg.Analysis.CheapRatio == 0 {
		cfg.Analysis.CheapRatio = 0.95
	}
	if cfg.Analysis.ExpensiveRatio == 0 {
		cfg.Analysis.ExpensiveRatio = 1.05
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	// Validate connection pool settings
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

	if c.Analysis.CheapRatio <= 0 || c.Analysis.CheapRatio >= 1 {
		return fmt.Errorf("analysis.cheap_ratio must be between 0 and 1, got %f", c.Analysis.CheapRatio)
	}
	if c.Analysis.ExpensiveRatio <= 1 {
		return fmt.Errorf("analysis.expensive_ratio must be greater than 1, got %f", c.Analysis.ExpensiveRatio)
	}
	if c.Analysis.AcceptDistanceSqm < 0 {
		return fmt.Errorf("analysis.accept_distance_sqm cannot be negative")
	}

	if c.Provider.RequestDelay < 0 {
		return fmt.Errorf("provider.request_delay cannot be negative")
	}
	if c.Cache.MonthsBack <= 0 {
		return fmt.Errorf("cache.months_back must be positive")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Provider.ApplyHomeServiceKey == "" {
			return fmt.Errorf("provider.applyhome_service_key is required in production")
		}
		if c.Provider.MolitServiceKey == "" {
			return fmt.Errorf("provider.molit_service_key is required in production")
		}
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

// Addr returns the Redis host:port address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
