package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "STYLESENSE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	Mongo         MongoConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Gemini        GeminiConfig
	Upload        UploadConfig
	CORS          CORSConfig
	Feed          FeedConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STYLESENSE_APP_ENV" default:"dev"`
	Port         string `envconfig:"STYLESENSE_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"STYLESENSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STYLESENSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type MongoConfig struct {
	URI         string        `envconfig:"STYLESENSE_MONGODB_URI" default:"mongodb://localhost:27017"`
	Database    string        `envconfig:"STYLESENSE_MONGODB_DATABASE" default:"outfit_analyzer"`
	ConnTimeout time.Duration `envconfig:"STYLESENSE_MONGODB_CONNECT_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STYLESENSE_REDIS_URL"`
	Address      string        `envconfig:"STYLESENSE_REDIS_ADDR"`
	Password     string        `envconfig:"STYLESENSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"STYLESENSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STYLESENSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STYLESENSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STYLESENSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STYLESENSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STYLESENSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STYLESENSE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STYLESENSE_JWT_ISSUER" default:"stylesense"`
	ExpirationMinutes int    `envconfig:"STYLESENSE_JWT_EXPIRATION_MINUTES" default:"30"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STYLESENSE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STYLESENSE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STYLESENSE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STYLESENSE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STYLESENSE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"STYLESENSE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"STYLESENSE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"STYLESENSE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"STYLESENSE_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"STYLESENSE_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"STYLESENSE_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type GeminiConfig struct {
	APIKey string `envconfig:"STYLESENSE_GEMINI_API_KEY" required:"true"`
	Model  string `envconfig:"STYLESENSE_GEMINI_MODEL" default:"models/gemini-2.5-flash"`
}

type UploadConfig struct {
	Dir               string `envconfig:"STYLESENSE_UPLOAD_DIR" default:"uploads"`
	MaxSizeBytes      int64  `envconfig:"STYLESENSE_MAX_UPLOAD_SIZE" default:"5242880"`
	AllowedExtensions string `envconfig:"STYLESENSE_ALLOWED_EXTENSIONS" default:"jpg,jpeg,png"`
}

// ExtensionsList splits the configured allow-list into normalized entries.
func (u UploadConfig) ExtensionsList() []string {
	parts := strings.Split(u.AllowedExtensions, ",")
	exts := make([]string, 0, len(parts))
	for _, part := range parts {
		if ext := strings.ToLower(strings.TrimSpace(part)); ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}

type CORSConfig struct {
	AllowedOrigins string `envconfig:"STYLESENSE_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

// OriginsList splits the configured origins into trimmed entries.
func (c CORSConfig) OriginsList() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

type FeedConfig struct {
	CacheTTL time.Duration `envconfig:"STYLESENSE_FEED_CACHE_TTL" default:"30s"`
}
