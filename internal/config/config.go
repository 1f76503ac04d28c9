package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/mind-engage/interview-console/internal/scoring"
)

type Config struct {
	HTTPAddr       string
	RequestTimeout time.Duration

	DBDriver string // sqlite|postgres
	DBDSN    string

	LogLevel  string
	LogPretty bool

	AuthEnabled     bool
	AuthHMACSecret  string
	EnableLocalAuth bool
	TokenTTL        time.Duration

	// bootstrap account accepted by /auth/login besides stored interviewers
	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOrigins []string

	DefaultMinimalRate float64
	ScoreResolution    scoring.Resolution
	ScoreMaxValue      float64

	AMQPURL          string // empty disables publishing
	AMQPQueue        string
	AMQPExpirationMS int

	RedisAddr      string // empty disables the stats cache
	RedisPassword  string
	RedisDB        int
	RedisNamespace string
	StatsCacheTTL  time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("AUTH_HMAC_SECRET", "dev-secret")
	v.SetDefault("ENABLE_LOCAL_AUTH", true)
	v.SetDefault("TOKEN_TTL", "12h")
	v.SetDefault("ADMIN_USER", "admin")
	v.SetDefault("ADMIN_PASS_HASH", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("DEFAULT_MINIMAL_RATE", scoring.DefaultMinimalRate)
	v.SetDefault("SCORE_RESOLUTION", string(scoring.ResolveAverage))
	v.SetDefault("SCORE_MAX_VALUE", scoring.DefaultMaxValue)
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_QUEUE", "interview.evaluations")
	v.SetDefault("AMQP_EXPIRATION_MS", 0)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_NAMESPACE", "interviews")
	v.SetDefault("STATS_CACHE_TTL", "30s")
}

// Load reads the .env file named by ENV_PATH (default ".env") when it exists,
// then resolves every setting from the environment.
func Load() (Config, error) {
	path := os.Getenv("ENV_PATH")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrapf(err, "load %s", path)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	return v
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (Config, error) {
	res, err := scoring.ParseResolution(v.GetString("SCORE_RESOLUTION"))
	if err != nil {
		return Config{}, errors.Wrap(err, "SCORE_RESOLUTION")
	}
	cfg := Config{
		HTTPAddr:           v.GetString("HTTP_ADDR"),
		RequestTimeout:     v.GetDuration("REQUEST_TIMEOUT"),
		DBDriver:           strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:              v.GetString("DB_DSN"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogPretty:          v.GetBool("LOG_PRETTY"),
		AuthEnabled:        v.GetBool("AUTH_ENABLED"),
		AuthHMACSecret:     v.GetString("AUTH_HMAC_SECRET"),
		EnableLocalAuth:    v.GetBool("ENABLE_LOCAL_AUTH"),
		TokenTTL:           v.GetDuration("TOKEN_TTL"),
		AdminUser:          v.GetString("ADMIN_USER"),
		AdminPassHash:      v.GetString("ADMIN_PASS_HASH"),
		CORSOrigins:        csv(v.GetString("CORS_ORIGINS")),
		DefaultMinimalRate: v.GetFloat64("DEFAULT_MINIMAL_RATE"),
		ScoreResolution:    res,
		ScoreMaxValue:      v.GetFloat64("SCORE_MAX_VALUE"),
		AMQPURL:            v.GetString("AMQP_URL"),
		AMQPQueue:          v.GetString("AMQP_QUEUE"),
		AMQPExpirationMS:   v.GetInt("AMQP_EXPIRATION_MS"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		RedisNamespace:     v.GetString("REDIS_NAMESPACE"),
		StatsCacheTTL:      v.GetDuration("STATS_CACHE_TTL"),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return errors.Errorf("DB_DRIVER: unsupported driver %q", c.DBDriver)
	}
	if err := scoring.ValidateMinimalRate(c.DefaultMinimalRate); err != nil {
		return errors.Wrap(err, "DEFAULT_MINIMAL_RATE")
	}
	if !(c.ScoreMaxValue > 0) {
		return errors.Errorf("SCORE_MAX_VALUE: must be positive, got %v", c.ScoreMaxValue)
	}
	if c.RequestTimeout <= 0 {
		return errors.Errorf("REQUEST_TIMEOUT: must be positive, got %s", c.RequestTimeout)
	}
	if c.AuthEnabled && c.AuthHMACSecret == "" {
		return errors.New("AUTH_HMAC_SECRET: required when AUTH_ENABLED is set")
	}
	if c.RedisAddr != "" && c.StatsCacheTTL <= 0 {
		return errors.Errorf("STATS_CACHE_TTL: must be positive, got %s", c.StatsCacheTTL)
	}
	if c.TokenTTL <= 0 {
		return errors.Errorf("TOKEN_TTL: must be positive, got %s", c.TokenTTL)
	}
	return nil
}

func csv(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
