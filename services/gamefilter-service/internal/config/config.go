// Package config loads the gamefilter service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vasapolrittideah/gamefilter-api/shared/discovery"
	"github.com/vasapolrittideah/gamefilter-api/shared/logger"
	"github.com/vasapolrittideah/gamefilter-api/shared/mailer"
)

// Session store backends.
const (
	SessionStoreMongo = "mongo"
	SessionStoreRedis = "redis"
)

// Config is the root configuration of the service.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"production"`

	HTTP      HTTPConfig       `envPrefix:"HTTP_"`
	GRPC      GRPCConfig       `envPrefix:"GRPC_"`
	Log       logger.Config    `envPrefix:"LOG_"`
	Mongo     MongoConfig      `envPrefix:"MONGO_"`
	Redis     RedisConfig      `envPrefix:"REDIS_"`
	Session   SessionConfig    `envPrefix:"SESSION_"`
	SMTP      mailer.Config    `envPrefix:"SMTP_"`
	Mail      MailConfig       `envPrefix:"MAIL_"`
	Discord   DiscordConfig    `envPrefix:"DISCORD_"`
	CORS      CORSConfig       `envPrefix:"CORS_"`
	RateLimit RateLimitConfig  `envPrefix:"RATE_LIMIT_"`
	Consul    discovery.Config `envPrefix:"CONSUL_"`
}

// HTTPConfig holds HTTP listener settings.
type HTTPConfig struct {
	Port            int           `env:"PORT"             envDefault:"4000"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT"     envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT"    envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES"   envDefault:"1048576"`
}

// GRPCConfig holds the gRPC health listener settings. Port 0 disables it.
type GRPCConfig struct {
	Port int `env:"PORT" envDefault:"0"`
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URI            string        `env:"URI"             envDefault:"mongodb://127.0.0.1:27017"`
	Database       string        `env:"DATABASE"        envDefault:"gamefilter"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

// RedisConfig is only used when the session store is redis.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"127.0.0.1:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB"       envDefault:"0"`
}

// SessionConfig controls web sessions and token issuance.
type SessionConfig struct {
	Secret       string        `env:"SECRET,required"`
	TTL          time.Duration `env:"TTL"           envDefault:"24h"`
	Store        string        `env:"STORE"         envDefault:"mongo"`
	CookieName   string        `env:"COOKIE_NAME"   envDefault:"gamefilter.sid"`
	CookieDomain string        `env:"COOKIE_DOMAIN"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"true"`
}

// MailConfig controls the verification email.
type MailConfig struct {
	VerifyURL    string `env:"VERIFY_URL"    envDefault:"http://localhost:4000/api/auth/verify"`
	TemplatePath string `env:"TEMPLATE_PATH"`
}

// DiscordConfig holds the Discord OAuth application settings.
type DiscordConfig struct {
	ClientID       string        `env:"CLIENT_ID"`
	ClientSecret   string        `env:"CLIENT_SECRET"`
	RedirectURL    string        `env:"REDIRECT_URL"`
	ClientRedirect string        `env:"CLIENT_REDIRECT" envDefault:"http://localhost:3000"`
	Scopes         []string      `env:"SCOPES"          envDefault:"identify email guilds" envSeparator:" "`
	AuthURL        string        `env:"AUTH_URL"        envDefault:"https://discord.com/oauth2/authorize"`
	TokenURL       string        `env:"TOKEN_URL"       envDefault:"https://discord.com/api/oauth2/token"`
	APIBaseURL     string        `env:"API_BASE_URL"    envDefault:"https://discord.com/api"`
	StateTTL       time.Duration `env:"STATE_TTL"       envDefault:"10m"`
}

// Enabled reports whether the Discord application is configured.
func (c DiscordConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != ""
}

// CORSConfig points at the origin whitelist file.
type CORSConfig struct {
	WhitelistFile string `env:"WHITELIST_FILE" envDefault:"config/whitelist.txt"`
}

// RateLimitConfig limits unauthenticated auth endpoints per client IP.
type RateLimitConfig struct {
	PerSecond float64 `env:"PER_SECOND" envDefault:"1"`
	Burst     int     `env:"BURST"      envDefault:"5"`
}

// Load parses the process environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromMap parses the given variables instead of the process environment.
func LoadFromMap(vars map[string]string) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: vars})
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	if c.Session.Store != SessionStoreMongo && c.Session.Store != SessionStoreRedis {
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Session.Store)
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.HTTP.Port <= 0 {
		return errors.New("HTTP_PORT must be positive")
	}
	if c.RateLimit.PerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("RATE_LIMIT_PER_SECOND and RATE_LIMIT_BURST must be positive")
	}

	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
