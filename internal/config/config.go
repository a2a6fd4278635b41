package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	AppEnv         string   `env:"APP_ENV" envDefault:"development"`
	LogFile        string   `env:"LOG_FILE"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5m"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"5m"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	DBDriver               string `env:"DB_DRIVER" envDefault:"mysql"`
	DBUser                 string `env:"DB_USER"`
	DBPassword             string `env:"DB_PASSWORD"`
	DBHost                 string `env:"DB_HOST"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `env:"DB_NAME"`
	DBPort                 string `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`
	DBPath                 string `env:"DB_PATH" envDefault:"reelspay.db"`

	// DBTimeout bounds dialing and each read or write on the database connection.
	DBTimeout time.Duration `env:"DB_TIMEOUT" envDefault:"10s"`

	FirebaseProjectID string        `env:"FIREBASE_PROJECT_ID"`
	AuthTimeout       time.Duration `env:"AUTH_TIMEOUT" envDefault:"5s"`

	MediaBucket          string        `env:"MEDIA_BUCKET"`
	MediaCredentialsFile string        `env:"MEDIA_CREDENTIALS_FILE"`
	MediaPublicBaseURL   string        `env:"MEDIA_PUBLIC_BASE_URL" envDefault:"https://firebasestorage.googleapis.com"`
	MediaTimeout         time.Duration `env:"MEDIA_TIMEOUT" envDefault:"2m"`

	RedisURL string `env:"REDIS_URL"`

	RewardTokenSecret string        `env:"REWARD_TOKEN_SECRET"`
	RewardTokenTTL    time.Duration `env:"REWARD_TOKEN_TTL" envDefault:"10m"`
	AdMinWatch        time.Duration `env:"AD_MIN_WATCH" envDefault:"5s"`
	RewardBucket      time.Duration `env:"REWARD_BUCKET" envDefault:"1h"`
	RevenueSplitFile  string        `env:"REVENUE_SPLIT_FILE"`

	ViewRateLimit    int           `env:"VIEW_RATE_LIMIT" envDefault:"5"`
	ViewRateWindow   time.Duration `env:"VIEW_RATE_WINDOW" envDefault:"60s"`
	ViewDedupWindow  time.Duration `env:"VIEW_DEDUP_WINDOW" envDefault:"1h"`
	PayoutMinCoins   int64         `env:"PAYOUT_MIN_COINS" envDefault:"5000"`
	CoinsToPaise     int64         `env:"COINS_TO_PAISE" envDefault:"1"`
	APIRatePerSecond float64       `env:"API_RATE_PER_SECOND" envDefault:"5"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations that would make the ledger or throttle misbehave at runtime.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.DBDriver) {
	case "mysql":
		if c.DBUser == "" || c.DBName == "" || (c.DBHost == "" && c.InstanceConnectionName == "") {
			errs = append(errs, errors.New("DB_USER, DB_NAME and DB_HOST (or INSTANCE_CONNECTION_NAME) are required for mysql"))
		}
	case "sqlite":
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.DBTimeout <= 0 || c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("DB_TIMEOUT and REQUEST_TIMEOUT must be positive"))
	}
	if strings.TrimSpace(c.RewardTokenSecret) == "" {
		errs = append(errs, errors.New("REWARD_TOKEN_SECRET is required"))
	}
	if c.ViewRateLimit <= 0 || c.ViewRateWindow <= 0 || c.ViewDedupWindow <= 0 {
		errs = append(errs, errors.New("view limits must be positive"))
	}
	if c.RewardBucket <= 0 || c.RewardTokenTTL <= 0 {
		errs = append(errs, errors.New("reward bucket and token ttl must be positive"))
	}
	if c.PayoutMinCoins <= 0 || c.CoinsToPaise <= 0 {
		errs = append(errs, errors.New("PAYOUT_MIN_COINS and COINS_TO_PAISE must be positive"))
	}
	return errors.Join(errs...)
}
