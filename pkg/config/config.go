package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "ARMORY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	OpenAI        OpenAIConfig
	Payments      PaymentsConfig
	Assistant     AssistantConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"ARMORY_APP_ENV" default:"dev"`
	Port         string   `envconfig:"ARMORY_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"ARMORY_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"ARMORY_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"ARMORY_APP_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ARMORY_DB_DSN"`
	Driver string `envconfig:"ARMORY_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"ARMORY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ARMORY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ARMORY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ARMORY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ARMORY_REDIS_URL"`
	Address      string        `envconfig:"ARMORY_REDIS_ADDR"`
	Password     string        `envconfig:"ARMORY_REDIS_PASSWORD"`
	DB           int           `envconfig:"ARMORY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ARMORY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ARMORY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ARMORY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ARMORY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ARMORY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ARMORY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ARMORY_JWT_ISSUER" default:"armory-market"`
	ExpirationMinutes int    `envconfig:"ARMORY_JWT_EXPIRATION_MINUTES" default:"60"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ARMORY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ARMORY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ARMORY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ARMORY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ARMORY_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ARMORY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ARMORY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ARMORY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ARMORY_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ARMORY_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ARMORY_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type OpenAIConfig struct {
	APIKey         string        `envconfig:"ARMORY_OPENAI_API_KEY"`
	Model          string        `envconfig:"ARMORY_OPENAI_MODEL" default:"openai/gpt-4o-mini"`
	RequestTimeout time.Duration `envconfig:"ARMORY_OPENAI_REQUEST_TIMEOUT" default:"30s"`
}

type PaymentsConfig struct {
	BaseURL        string        `envconfig:"ARMORY_TOSS_BASE_URL" default:"https://api.tosspayments.com"`
	SecretKey      string        `envconfig:"ARMORY_TOSS_SECRET_KEY"`
	RequestTimeout time.Duration `envconfig:"ARMORY_TOSS_REQUEST_TIMEOUT" default:"10s"`
}

type AssistantConfig struct {
	HistoryLimit    int           `envconfig:"ARMORY_ASSISTANT_HISTORY_LIMIT" default:"10"`
	MaxToolRounds   int           `envconfig:"ARMORY_ASSISTANT_MAX_TOOL_ROUNDS" default:"3"`
	SearchLimit     int           `envconfig:"ARMORY_ASSISTANT_SEARCH_LIMIT" default:"10"`
	DisplayLimit    int           `envconfig:"ARMORY_ASSISTANT_DISPLAY_LIMIT" default:"6"`
	DefaultStock    int           `envconfig:"ARMORY_ASSISTANT_DEFAULT_STOCK" default:"10"`
	SessionIdleTTL  time.Duration `envconfig:"ARMORY_ASSISTANT_SESSION_IDLE_TTL" default:"1h"`
	StoreCallBudget time.Duration `envconfig:"ARMORY_ASSISTANT_STORE_CALL_BUDGET" default:"10s"`
}
