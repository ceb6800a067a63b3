package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/tuncrm/crm-api/internal/secrets"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Logging       LoggingConfig
	Server        ServerConfig
	CORS          CORSConfig
	Security      SecurityConfig
	RateLimit     RateLimitConfig
	Cache         CacheConfig
	Events        EventsConfig
	Notifications NotificationsConfig
	Storage       StorageConfig
	Secrets       SecretsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

// DatabaseConfig selects the gorm dialect. Driver is "sqlite" or "postgres";
// DSN is a file path for sqlite and a libpq connection string for postgres.
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	AutoMigrate     bool
}

type LoggingConfig struct {
	Level  string
	Format string
	File   LogFileConfig
}

// LogFileConfig enables a time-rotated file sink next to stdout
type LogFileConfig struct {
	Enabled       bool
	Path          string
	MaxAgeHours   int
	RotationHours int
}

type ServerConfig struct {
	ReadTimeout     int
	WriteTimeout    int
	IdleTimeout     int
	ShutdownTimeout int
	EnableSwagger   bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds token settings and security header configuration
type SecurityConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	// TokenTTL is the access token lifetime in minutes
	TokenTTL int

	EnableHSTS            bool
	HSTSMaxAge            int
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	ReferrerPolicy        string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the limit for unauthenticated requests (per IP)
	RequestsPerMinute int
	// RequestsPerMinuteAuth is the limit for authenticated requests (per user)
	RequestsPerMinuteAuth int
	WhitelistIPs          []string
	WhitelistPaths        []string
}

// CacheConfig configures the read-through list cache.
// AbsoluteTTL and SlidingTTL are in seconds.
type CacheConfig struct {
	Backend           string
	AbsoluteTTL       int
	SlidingTTL        int
	InvalidateOnWrite bool
	Redis             RedisConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// EventsConfig configures the Kafka domain event publisher
type EventsConfig struct {
	Enabled  bool
	Brokers  []string
	Topic    string
	ClientID string
}

// NotificationsConfig configures the scheduled notification sweep
type NotificationsConfig struct {
	Enabled bool
	// Schedule is a cron expression with a leading seconds field
	Schedule             string
	StaleOpportunityDays int
	TimeoutSeconds       int
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	Source    string
	VaultName string
	CacheTTL  int // seconds
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

func (s *ServerConfig) IdleTimeoutDuration() time.Duration {
	return time.Duration(s.IdleTimeout) * time.Second
}

func (s *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

func (s *SecurityConfig) TokenTTLDuration() time.Duration {
	return time.Duration(s.TokenTTL) * time.Minute
}

func (c *CacheConfig) AbsoluteTTLDuration() time.Duration {
	return time.Duration(c.AbsoluteTTL) * time.Second
}

func (c *CacheConfig) SlidingTTLDuration() time.Duration {
	return time.Duration(c.SlidingTTL) * time.Second
}

func (n *NotificationsConfig) StaleOpportunityAge() time.Duration {
	return time.Duration(n.StaleOpportunityDays) * 24 * time.Hour
}

func (n *NotificationsConfig) TimeoutDuration() time.Duration {
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// IsDevelopment reports whether the app runs in a local/development environment
func (a *AppConfig) IsDevelopment() bool {
	switch a.Environment {
	case "", "development", "local", "test":
		return true
	}
	return false
}

// Load loads configuration from file and environment variables.
// Secrets that live in a vault are resolved separately by ResolveSecrets.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Security.JWTSecret == "" {
		cfg.Security.JWTSecret = v.GetString("JWT_SECRET")
	}
	if cfg.Secrets.VaultName == "" {
		cfg.Secrets.VaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	return &cfg, nil
}

// Validate checks the settings that cannot be defaulted.
// It runs after ResolveSecrets so vault-provided values count.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache backend %q", c.Cache.Backend)
	}

	if c.Security.JWTSecret == "" {
		if !c.App.IsDevelopment() {
			return fmt.Errorf("security.jwtSecret is required in %s", c.App.Environment)
		}
		c.Security.JWTSecret = devJWTSecret
	}

	if c.Cache.SlidingTTL > c.Cache.AbsoluteTTL {
		return fmt.Errorf("cache.slidingTTL (%d) must not exceed cache.absoluteTTL (%d)", c.Cache.SlidingTTL, c.Cache.AbsoluteTTL)
	}

	return nil
}

// devJWTSecret only signs tokens for local development
const devJWTSecret = "tuncrm-development-secret-change-me"

// ResolveSecrets fills sensitive settings from the configured secret source.
// With source "environment" nothing changes beyond what Load already read.
func ResolveSecrets(ctx context.Context, cfg *Config, logger *zap.Logger) error {
	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:      secrets.SecretSource(cfg.Secrets.Source),
		VaultName:   cfg.Secrets.VaultName,
		Environment: cfg.App.Environment,
		CacheTTL:    time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	if !provider.IsVaultEnabled() {
		return nil
	}

	logger.Info("Loading secrets from Azure Key Vault", zap.String("source", string(provider.Source())))

	if v, err := provider.GetSecretOrEnv(ctx, "crm-jwt-secret", "SECURITY_JWTSECRET"); err == nil && v != "" {
		cfg.Security.JWTSecret = v
	}
	if v, err := provider.GetSecretOrEnv(ctx, "crm-database-dsn", "DATABASE_DSN"); err == nil && v != "" {
		cfg.Database.DSN = v
	}
	if v, err := provider.GetSecretOrEnv(ctx, "crm-redis-password", "CACHE_REDIS_PASSWORD"); err == nil && v != "" {
		cfg.Cache.Redis.Password = v
	}
	if v, err := provider.GetSecretOrEnv(ctx, "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING"); err == nil && v != "" {
		cfg.Storage.CloudConnectionString = v
	}

	logger.Info("Secrets loaded from vault successfully")
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "TunCRM API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "tuncrm.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)
	v.SetDefault("database.autoMigrate", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.enabled", false)
	v.SetDefault("logging.file.path", "./logs/tuncrm.log")
	v.SetDefault("logging.file.maxAgeHours", 24*7)
	v.SetDefault("logging.file.rotationHours", 24)

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.idleTimeout", 120)
	v.SetDefault("server.shutdownTimeout", 30)
	v.SetDefault("server.enableSwagger", true)

	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID", "X-Archive-Key", "X-Archive-Status"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.jwtIssuer", "TunCRM")
	v.SetDefault("security.jwtAudience", "TunCRM_Users")
	v.SetDefault("security.tokenTTL", 60)
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.absoluteTTL", 15*60)
	v.SetDefault("cache.slidingTTL", 5*60)
	v.SetDefault("cache.invalidateOnWrite", true)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("events.enabled", false)
	v.SetDefault("events.brokers", []string{"localhost:9092"})
	v.SetDefault("events.topic", "tuncrm.events")
	v.SetDefault("events.clientID", "tuncrm-api")

	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.schedule", "0 */30 * * * *")
	v.SetDefault("notifications.staleOpportunityDays", 7)
	v.SetDefault("notifications.timeoutSeconds", 120)

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudContainer", "exports")

	v.SetDefault("secrets.source", "environment")
	v.SetDefault("secrets.cacheTTL", 300)
}
