// ABOUTME: Application configuration loaded from config.toml, .env and environment
// ABOUTME: Environment variables use the DEALBOARD_ prefix and override the file
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const AppName = "dealboard"

type Config struct {
	App    AppConfig
	Data   DataConfig
	Log    LogConfig
	Web    WebConfig
	Export ExportConfig
}

type AppConfig struct {
	Env string
}

// DataConfig controls how the in-memory stores are seeded.
type DataConfig struct {
	Fixtures string        // directory of fixture JSON, empty for the embedded set
	Latency  time.Duration // simulated latency per store call
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

type WebConfig struct {
	Port int
}

type ExportConfig struct {
	Dir string
}

// Load reads configuration in priority order: DEALBOARD_* environment
// variables (including those from .env), the config file, then defaults.
// An explicit path must exist; otherwise config.toml is looked up in the
// working directory and the XDG config directory.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("DEALBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Env: v.GetString("app.env"),
		},
		Data: DataConfig{
			Fixtures: v.GetString("data.fixtures"),
			Latency:  v.GetDuration("data.latency"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Web: WebConfig{
			Port: v.GetInt("web.port"),
		},
		Export: ExportConfig{
			Dir: v.GetString("export.dir"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("data.fixtures", "")
	v.SetDefault("data.latency", 150*time.Millisecond)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("web.port", 8080)
	v.SetDefault("export.dir", filepath.Join(xdg.DataHome, AppName, "exports"))
}

func (c *Config) validate() error {
	if c.Data.Latency < 0 {
		return fmt.Errorf("data.latency must not be negative: %s", c.Data.Latency)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console: %q", c.Log.Format)
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port out of range: %d", c.Web.Port)
	}
	return nil
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
