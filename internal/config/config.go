package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

const (
	DefaultSourceURL      = "https://www.sslproxies.org/"
	DefaultTableID        = "proxylisttable"
	DefaultTimeout        = 10
	DefaultStickyInterval = 2
	DefaultListenAddress  = ":8080"

	defaultConfigPath = "config.json"
)

var Module = fx.Provide(NewConfig)

var validate *validator.Validate

type Config struct {
	Source   Source   `json:"source" validate:"required"`
	Rotation Rotation `json:"rotation" validate:"required"`
	Refresh  Refresh  `json:"refresh"`
	Server   Server   `json:"server" validate:"required"`
}

type Source struct {
	URL       string `json:"url" validate:"required,url"`
	TableID   string `json:"table_id" validate:"required,htmlid"`
	Timeout   int    `json:"timeout" validate:"min=1"`
	UserAgent string `json:"user_agent"`
}

type Rotation struct {
	StickyInterval int `json:"sticky_interval" validate:"min=1"`
}

type Refresh struct {
	// Interval in seconds between background refreshes, 0 disables them
	Interval int `json:"interval" validate:"min=0"`
}

type Server struct {
	ListenAddress string `json:"listen_address" validate:"required"`
}

func (s Source) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

func (r Refresh) IntervalDuration() time.Duration {
	return time.Duration(r.Interval) * time.Second
}

// Default returns a configuration pointing at sslproxies.org
func Default() Config {
	return Config{
		Source: Source{
			URL:     DefaultSourceURL,
			TableID: DefaultTableID,
			Timeout: DefaultTimeout,
		},
		Rotation: Rotation{
			StickyInterval: DefaultStickyInterval,
		},
		Server: Server{
			ListenAddress: DefaultListenAddress,
		},
	}
}

// NewConfig creates a new Config instance from the environment.
// A missing config.json is not an error unless CONFIG_PATH points at it explicitly.
func NewConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()

	configPath, explicit := os.LookupEnv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
		explicit = false
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("error parsing config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration against its struct tags
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("htmlid", validateHTMLID); err != nil {
		panic(fmt.Sprintf("failed to register htmlid validator: %v", err))
	}
}

// HTML ids must be non-empty and contain no whitespace
func validateHTMLID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	return id != "" && !strings.ContainsAny(id, " \t\n\r\f")
}

// formatValidationErrors formats validation errors into a user-friendly error message
func formatValidationErrors(errors validator.ValidationErrors) error {
	var errMsgs []string
	for _, err := range errors {
		errMsgs = append(errMsgs, fmt.Sprintf(
			"field '%s' failed validation: %s",
			err.Field(),
			err.Tag(),
		))
	}
	return fmt.Errorf("validation errors: %v", errMsgs)
}
