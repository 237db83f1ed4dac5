package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/franckalain/halalscan/internal/capture"
	"github.com/franckalain/halalscan/internal/ml"
)

// Config holds all application configuration
type Config struct {
	Server struct {
		Port      string `mapstructure:"port" validate:"required"`
		StaticDir string `mapstructure:"static_dir"`
		Debug     bool   `mapstructure:"debug"`
	} `mapstructure:"server"`

	Logging struct {
		Level string `mapstructure:"level"`
		JSON  bool   `mapstructure:"json"`
	} `mapstructure:"logging"`

	Database struct {
		Driver    string `mapstructure:"driver" validate:"oneof=sqlite redis"`
		Path      string `mapstructure:"path"`
		RedisAddr string `mapstructure:"redis_addr" validate:"required_if=Driver redis"`
		RedisDB   int    `mapstructure:"redis_db"`
	} `mapstructure:"database"`

	ML ml.Config `mapstructure:"ml"`

	Ingredients struct {
		Path string `mapstructure:"path"` // empty uses the embedded table
	} `mapstructure:"ingredients"`

	Camera capture.Config `mapstructure:"camera"`
}

const envPrefix = "HALALSCAN"

var validate = validator.New()

// LoadConfig loads configuration from a JSON, YAML or TOML file. A missing
// file is not an error: defaults and HALALSCAN_* environment variables
// still apply.
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.ML.ApplyEnv()

	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.static_dir", "./static")
	v.SetDefault("server.debug", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "halalscan.db")
	v.SetDefault("database.redis_addr", "")
	v.SetDefault("database.redis_db", 0)

	v.SetDefault("ml.type", "sample")
	v.SetDefault("ml.timeout", "30s")
	v.SetDefault("ml.sample_delay", "2s")
	v.SetDefault("ml.google.location", "us-central1")
	v.SetDefault("ml.google.model", "gemini-1.5-flash")
	v.SetDefault("ml.google.project_id", "")
	v.SetDefault("ml.google.credentials_file", "")
	v.SetDefault("ml.tesseract.binary", "tesseract")
	v.SetDefault("ml.tesseract.lang", "ara+eng")

	v.SetDefault("ingredients.path", "")

	v.SetDefault("camera.allow_camera", true)
	v.SetDefault("camera.allow_gallery", true)
	v.SetDefault("camera.capture_dir", "")
	v.SetDefault("camera.max_dimension", 1920)
	v.SetDefault("camera.quality", 90)
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() string {
	// First try environment variable
	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		return path
	}

	// Then try config directory
	configDir := "config"
	if _, err := os.Stat(configDir); err == nil {
		return filepath.Join(configDir, "config.json")
	}

	// Finally, try current directory
	return "config.json"
}
