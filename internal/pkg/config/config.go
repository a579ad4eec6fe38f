package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

// AuthConfig holds the knobs of the authentication subsystem. The signing
// secret itself is validated by the token service at startup.
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
	// TokenTTL is the lifetime of issued bearer tokens.
	TokenTTL time.Duration `env:"TOKEN_TTL, default=168h"`
	// Store selects where lockout and revocation state lives:
	// "memory" for single-instance deployments, "redis" for shared state.
	// The memory variant loses all lockouts and revocations on restart.
	Store string `env:"AUTH_STORE, default=memory"`

	LockoutThreshold int           `env:"LOCKOUT_THRESHOLD, default=10"`
	LockoutWindow    time.Duration `env:"LOCKOUT_WINDOW,    default=1h"`

	RequireVerifiedEmail bool `env:"REQUIRE_VERIFIED_EMAIL, default=false"`
	AllowCookieToken     bool `env:"ALLOW_COOKIE_TOKEN,     default=true"`
	EnableIPLockout      bool `env:"ENABLE_IP_LOCKOUT,      default=true"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=olivegardens"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
