package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v4"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port        string `yaml:"port" env:"PORT"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
	RedisURL    string `yaml:"redis_url" env:"REDIS_URL"`
	FrontendURL string `yaml:"frontend_url" env:"FRONTEND_URL"`

	JWT      JWT      `yaml:"jwt"`
	Google   Google   `yaml:"google"`
	Log      Log      `yaml:"log"`
	Admin    Admin    `yaml:"admin"`
	Security Security `yaml:"security"`

	OAuthStateTTL         time.Duration `yaml:"oauth_state_ttl" env:"OAUTH_STATE_TTL"`
	InactiveThresholdDays int           `yaml:"inactive_threshold_days" env:"INACTIVE_THRESHOLD_DAYS"`
	OTLPEndpoint          string        `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type JWT struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET"`
	TTL    time.Duration `yaml:"ttl" env:"JWT_TTL"`
}

type Google struct {
	ClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	CallbackURL  string `yaml:"callback_url" env:"GOOGLE_CALLBACK_URL"`
}

type Log struct {
	Level    string `yaml:"level" env:"LOG_LEVEL"`
	Encoding string `yaml:"encoding" env:"LOG_ENCODING"`
}

// Admin seeds an administrator on start-up when Email and Password are set.
type Admin struct {
	Email    string `yaml:"email" env:"ADMIN_EMAIL"`
	Password string `yaml:"password" env:"ADMIN_PASSWORD"`
	Name     string `yaml:"name" env:"ADMIN_NAME"`
}

type Security struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST"`
}

// Default returns the built-in settings, suitable for local development.
func Default() Config {
	return Config{
		Port:        "8080",
		FrontendURL: "http://localhost:3000",
		JWT: JWT{
			Secret: "insecurekey",
			TTL:    7 * 24 * time.Hour,
		},
		Google: Google{
			CallbackURL: "http://localhost:3333/api/v1/auth/google/callback",
		},
		Log:                   Log{Level: "info", Encoding: "console"},
		Admin:                 Admin{Name: "Administrator"},
		Security:              Security{BcryptCost: bcrypt.DefaultCost},
		OAuthStateTTL:         10 * time.Minute,
		InactiveThresholdDays: 30,
	}
}

// Load builds the configuration from defaults, the YAML file named by
// CONFIG_FILE, a .env file and the process environment, later sources
// overriding earlier ones.
func Load() (Config, error) {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.OAuthStateTTL <= 0 {
		errs = append(errs, errors.New("OAUTH_STATE_TTL must be positive"))
	}
	if c.InactiveThresholdDays <= 0 {
		errs = append(errs, errors.New("INACTIVE_THRESHOLD_DAYS must be positive"))
	}
	return errors.Join(errs...)
}

// SeedAdmin reports whether an administrator should be provisioned.
func (c Config) SeedAdmin() bool {
	return c.Admin.Email != "" && c.Admin.Password != ""
}
