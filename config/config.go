package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type R2Config struct {
	Bucket          string `mapstructure:"R2_BUCKET"`
	AccountID       string `mapstructure:"R2_ACCOUNT_ID"`
	PublicURL       string `mapstructure:"R2_PUBLIC_URL"`
	AccessKeyID     string `mapstructure:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `mapstructure:"R2_SECRET_ACCESS_KEY"`
}

// Enabled reports whether generated PDFs should be uploaded.
func (c R2Config) Enabled() bool {
	return c.Bucket != "" && c.AccountID != "" && c.PublicURL != ""
}

type Config struct {
	Port           string `mapstructure:"PORT"`
	DBType         string `mapstructure:"DB_TYPE"`
	PostgresURL    string `mapstructure:"POSTGRES_URL"`
	MongoURL       string `mapstructure:"MONGO_URL"`
	MongoDB        string `mapstructure:"MONGO_DB"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Defaults for RNDC configuration records saved without endpoints.
	RNDCPrimaryURL string `mapstructure:"RNDC_PRIMARY_URL"`
	RNDCBackupURL  string `mapstructure:"RNDC_BACKUP_URL"`
	RNDCTimeoutMS  int    `mapstructure:"RNDC_TIMEOUT_MS"`

	BatchPauseMS int           `mapstructure:"BATCH_PAUSE_MS"`
	RedisURL     string        `mapstructure:"REDIS_URL"`
	LockTTL      time.Duration `mapstructure:"LOCK_TTL"`

	PDFDir       string `mapstructure:"PDF_DIR"`
	TemplatesDir string `mapstructure:"TEMPLATES_DIR"`

	R2 R2Config `mapstructure:",squash"`

	// EnvFile is the .env file that was loaded, empty when there was none.
	EnvFile string `mapstructure:"-"`
}

func (c *Config) BatchPause() time.Duration {
	return time.Duration(c.BatchPauseMS) * time.Millisecond
}

var defaults = map[string]interface{}{
	"PORT":             "8080",
	"DB_TYPE":          "postgres",
	"MONGO_DB":         "despachos",
	"MIGRATIONS_PATH":  "db/migrations",
	"LOG_LEVEL":        "info",
	"LOG_FORMAT":       "json",
	"RNDC_PRIMARY_URL": "http://rndcws.mintransporte.gov.co:8080/ws/svr008w.dll/soap/IBPMServices",
	"RNDC_BACKUP_URL":  "http://rndcws2.mintransporte.gov.co:8080/ws/svr008w.dll/soap/IBPMServices",
	"RNDC_TIMEOUT_MS":  30000,
	"BATCH_PAUSE_MS":   2000,
	"LOCK_TTL":         "10m",
	"PDF_DIR":          "./pdfs",
	"TEMPLATES_DIR":    "templates",
}

// optional keys without a default still need binding for Unmarshal.
var optional = []string{
	"POSTGRES_URL", "MONGO_URL", "REDIS_URL",
	"R2_BUCKET", "R2_ACCOUNT_ID", "R2_PUBLIC_URL", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY",
}

// LoadConfig reads .env (if present), an optional config.yaml in dir and
// the process environment, in increasing precedence.
func LoadConfig(dir string) (*Config, error) {
	envFile := filepath.Join(dir, ".env")
	if err := godotenv.Load(envFile); err != nil {
		// A missing .env is normal outside development.
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
		envFile = ""
	}

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	for _, k := range optional {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.EnvFile = envFile
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBType {
	case "postgres":
		if c.PostgresURL == "" {
			return errors.New("POSTGRES_URL is required when DB_TYPE=postgres")
		}
	case "mongo":
		if c.MongoURL == "" {
			return errors.New("MONGO_URL is required when DB_TYPE=mongo")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}
	if c.BatchPauseMS < 0 {
		return errors.New("BATCH_PAUSE_MS must not be negative")
	}
	return nil
}
