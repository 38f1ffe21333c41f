package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/neighbourly/pkg/core/matcher"
)

// DatabaseURLEnv overrides databaseURL from the config file when set
const DatabaseURLEnv = "DATABASE_URL"

// MatchingConfig holds the scoring tunables of the matching engine
type MatchingConfig struct {
	matcher.Thresholds `yaml:",inline"`

	// DefaultTemplate is applied to communities that have no stored policy
	DefaultTemplate string `yaml:"defaultTemplate,omitempty"`

	// VariancePreviewRuns is the number of unseeded simulations run by the simulate command
	VariancePreviewRuns int `yaml:"variancePreviewRuns" validate:"min=1,max=500"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	// Imported (external) member batches are read from this sheet
	ExternalProfilesSheetID string `yaml:"externalProfilesSheetID" validate:"required"`
	ExternalProfilesTab     string `yaml:"externalProfilesTab" validate:"required"`

	GmailUserID string `yaml:"gmailUserID" validate:"required"`
	GmailSender string `yaml:"gmailSender,omitempty"`

	// MatchSchedule is an RRULE describing when matching rounds run
	MatchSchedule string `yaml:"matchSchedule" validate:"required"`

	// MetricsTextfile is written after each run for the node exporter textfile collector
	MetricsTextfile string `yaml:"metricsTextfile,omitempty"`

	Matching MatchingConfig `yaml:"matching"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// defaultConfig returns the values used for keys missing from the config file
func defaultConfig() Config {
	return Config{
		Matching: MatchingConfig{
			Thresholds:          matcher.DefaultThresholds,
			VariancePreviewRuns: 20,
		},
	}
}

// Load loads and validates the configuration from neighbourly_config.yaml
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads and validates the configuration for an environment.
// For example, env="test" will look for "neighbourly_config.test.yaml".
// A .env file in the working directory is loaded first so DATABASE_URL can be kept out of the config file.
func LoadWithEnv(env string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if url := os.Getenv(DatabaseURLEnv); url != "" {
		cfg.DatabaseURL = url
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, the schedule rrule and the default template
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := rrule.StrToRRule(cfg.MatchSchedule); err != nil {
		return fmt.Errorf("invalid rrule in matchSchedule: %w", err)
	}

	if cfg.Matching.DefaultTemplate != "" {
		if _, err := matcher.PolicyFromTemplate(cfg.Matching.DefaultTemplate); err != nil {
			return fmt.Errorf("invalid matching.defaultTemplate: %w", err)
		}
	}

	return nil
}

// loadDotEnv loads .env from the working directory if present
func loadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// findConfigFile searches for the config file of an environment
func findConfigFile(env string) (string, error) {
	configFileName := "neighbourly_config.yaml"
	if env != "" {
		configFileName = "neighbourly_config." + env + ".yaml"
	}
	return locate(configFileName)
}

// locate returns the path of fileName in the current directory, falling back to the home directory
func locate(fileName string) (string, error) {
	if _, err := os.Stat(fileName); err == nil {
		return fileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, fileName)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", fileName)
}
