package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yigit/fneseed/internal/pkg/apperrors"
	"github.com/yigit/fneseed/internal/pkg/helpers"
	"github.com/yigit/fneseed/internal/pkg/validation"
)

// ProductionProjectRef is the hosted project that must never be seeded or cleaned.
const ProductionProjectRef = "sxlogxqzmarhqsblxmtj"

// Config structure represents the seeder configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Store struct {
		URL             string `yaml:"url" env:"SEED_DATABASE_URL" validate:"required"`
		ServiceKey      string `yaml:"service_key" env:"SEED_SERVICE_ROLE_KEY" validate:"required"`
		MaxConns        int    `yaml:"max_conns" env:"SEED_DB_MAX_CONNS" validate:"min=1"`
		MinConns        int    `yaml:"min_conns" env:"SEED_DB_MIN_CONNS" validate:"min=0"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"SEED_DB_CONN_MAX_LIFETIME"`
	} `yaml:"store"`

	Safety struct {
		Environment         string   `yaml:"environment" env:"FNE_LMS_ENVIRONMENT" validate:"required"`
		AllowedEnvironments []string `yaml:"allowed_environments" env:"SEED_ALLOWED_ENVIRONMENTS" validate:"min=1"`
		ProductionBlacklist []string `yaml:"production_blacklist" env:"SEED_PRODUCTION_BLACKLIST" validate:"min=1"`
		CI                  bool     `yaml:"ci"`
	} `yaml:"safety"`

	Seeding struct {
		Tag          string `yaml:"tag" env:"SEED_TAG" validate:"required"`
		BatchSize    int    `yaml:"batch_size" env:"SEED_BATCH_SIZE" validate:"min=1,max=1000"`
		BatchDelay   string `yaml:"batch_delay" env:"SEED_BATCH_DELAY"`
		RandomSeed   uint64 `yaml:"random_seed" env:"SEED_RANDOM_SEED"`
		ScenarioFile string `yaml:"scenario_file" env:"SEED_SCENARIO_FILE"`
		ReportDir    string `yaml:"report_dir" env:"SEED_REPORT_DIR" validate:"required"`
		Password     string `yaml:"password" env:"SEED_ACCOUNT_PASSWORD" validate:"min=8"`
	} `yaml:"seeding"`

	Volumes Volumes `yaml:"volumes"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// Volumes controls how many records each phase produces.
type Volumes struct {
	Users       int `yaml:"users" json:"users" env:"SEED_USERS" validate:"min=1"`
	Schools     int `yaml:"schools" json:"schools" env:"SEED_SCHOOLS" validate:"min=1"`
	Admins      int `yaml:"admins" json:"admins" env:"SEED_ADMINS" validate:"min=0"`
	Consultants int `yaml:"consultants" json:"consultants" env:"SEED_CONSULTANTS" validate:"min=0"`
	Supervisors int `yaml:"supervisors" json:"supervisors" env:"SEED_SUPERVISORS" validate:"min=0"`
	Teachers    int `yaml:"teachers" json:"teachers" env:"SEED_TEACHERS" validate:"min=1"`
	Courses     int `yaml:"courses" json:"courses" env:"SEED_COURSES" validate:"min=0"`
	Activities  int `yaml:"activities" json:"activities" env:"SEED_ACTIVITIES" validate:"min=0"`
	MaxSessions int `yaml:"max_sessions" json:"maxSessions" env:"SEED_MAX_SESSIONS" validate:"min=0"`
}

const (
	// GenerationsPerSchool is the number of cohorts created under every school
	GenerationsPerSchool = 2
	// CommunitiesPerGeneration is the number of communities created under every cohort
	CommunitiesPerGeneration = 2
)

// Communities returns the number of communities the organization phase will create.
func (v Volumes) Communities() int {
	return v.Schools * GenerationsPerSchool * CommunitiesPerGeneration
}

// FixedUsers returns the number of users whose count does not depend on the student budget.
func (v Volumes) FixedUsers() int {
	return v.Admins + v.Consultants + v.Supervisors + v.Teachers + v.Communities()
}

// Validate checks that the user budget can hold every fixed role plus one leader per community.
func (v Volumes) Validate() error {
	if err := validation.Struct(v); err != nil {
		return err
	}
	if v.Users < v.FixedUsers() {
		return apperrors.NewInvalidConfigError(fmt.Sprintf(
			"user budget %d is smaller than the %d fixed-role users (admins, consultants, supervisors, teachers, one leader per community)",
			v.Users, v.FixedUsers()))
	}
	return nil
}

// LoadConfig loads configuration from .env files, a YAML file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// .env.local wins over .env; neither is required
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
	}

	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "release"

	// Store defaults
	config.Store.MaxConns = 10
	config.Store.MinConns = 1
	config.Store.ConnMaxLifetime = "30m"

	// Safety defaults
	config.Safety.AllowedEnvironments = []string{"sandbox", "development", "test"}
	config.Safety.ProductionBlacklist = []string{
		"https://" + ProductionProjectRef + ".supabase.co",
		ProductionProjectRef + ".supabase.co",
		ProductionProjectRef,
	}

	// Seeding defaults
	config.Seeding.Tag = "fne-seed"
	config.Seeding.BatchSize = 100
	config.Seeding.BatchDelay = "50ms"
	config.Seeding.ReportDir = "reports"
	config.Seeding.Password = "Sandbox#2024"

	config.Volumes = Volumes{
		Users:       500,
		Schools:     12,
		Admins:      5,
		Consultants: 10,
		Supervisors: 6,
		Teachers:    50,
		Courses:     60,
		Activities:  5000,
		MaxSessions: 5000,
	}

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "pretty"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	if err := processStructFields(config); err != nil {
		return err
	}
	// Runners set CI to all sorts of values; anything unparsable keeps the file value
	config.Safety.CI = GetEnvAsBool("CI", config.Safety.CI)
	return nil
}

// Validate ensures that the configuration is valid
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}

	if _, err := time.ParseDuration(c.Store.ConnMaxLifetime); err != nil {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("invalid store conn_max_lifetime: %v", err))
	}

	if _, err := time.ParseDuration(c.Seeding.BatchDelay); err != nil {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("invalid seeding batch_delay: %v", err))
	}

	return c.Volumes.Validate()
}

// BatchDelay returns the pause between insert chunks
func (c *Config) BatchDelay() time.Duration {
	return helpers.ParseDuration(c.Seeding.BatchDelay, 50*time.Millisecond)
}

// ConnMaxLifetime returns the maximum lifetime of a pooled connection
func (c *Config) ConnMaxLifetime() time.Duration {
	return helpers.ParseDuration(c.Store.ConnMaxLifetime, 30*time.Minute)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsBool gets an environment variable as a boolean or returns a default value
func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	valueLower := strings.ToLower(valueStr)
	if valueLower == "true" || valueLower == "1" || valueLower == "yes" {
		return true
	}
	if valueLower == "false" || valueLower == "0" || valueLower == "no" {
		return false
	}

	if b, err := strconv.ParseBool(valueLower); err == nil {
		return b
	}
	return defaultValue
}
