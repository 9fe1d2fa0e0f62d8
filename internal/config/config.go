package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the filters host configuration.
type Config struct {
	HTTP    HTTPConfig     `yaml:"http"`
	Host    HostConfig     `yaml:"host"`
	Fetch   FetchConfig    `yaml:"fetch"`
	Assets  AssetsConfig   `yaml:"assets"`
	S3      S3Config       `yaml:"s3"`
	Logging LoggingConfig  `yaml:"logging"`
	Widgets []WidgetConfig `yaml:"widgets"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// HostConfig holds widget instance settings.
type HostConfig struct {
	IdleTimeoutSec   int      `yaml:"idle_timeout_sec"`
	SweepIntervalSec int      `yaml:"sweep_interval_sec"`
	MaxInstances     int      `yaml:"max_instances"`
	MaxMessageBytes  int64    `yaml:"max_message_bytes"`
	AllowedOrigins   []string `yaml:"allowed_origins"` // empty: same origin only
	StyleSheets      []string `yaml:"style_sheets"`
	DevMode          bool     `yaml:"dev_mode"`
}

// FetchConfig holds settings for widgets in fetch mode.
type FetchConfig struct {
	TimeoutSec   int   `yaml:"timeout_sec"`
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// AssetsConfig overrides the widget image URLs.
type AssetsConfig struct {
	Loader     string `yaml:"loader"`
	FilledStar string `yaml:"filled_star"`
	EmptyStar  string `yaml:"empty_star"`
}

// S3Config configures s3:// schema sources.
type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// WidgetConfig describes one served widget.
type WidgetConfig struct {
	Name   string `yaml:"name"`
	Title  string `yaml:"title"`
	Schema string `yaml:"schema"` // file path or s3://bucket/key
	Class  string `yaml:"class"`

	// Apply is a bool or the string "true".
	Apply any `yaml:"apply"`

	Mode              string `yaml:"mode"` // navigate (default) or fetch
	NavigateDelayMsec int    `yaml:"navigate_delay_ms"`
}

// NavigateDelay returns the configured navigation delay, zero for the default.
func (w WidgetConfig) NavigateDelay() time.Duration {
	return time.Duration(w.NavigateDelayMsec) * time.Millisecond
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(filepath.Join("config", env+".yaml"))
}

// LoadFile reads configuration from the YAML file at path.
// Relative schema paths are resolved against the file's directory.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}

	dir := filepath.Dir(path)
	for i, w := range cfg.Widgets {
		if w.Schema != "" && !strings.Contains(w.Schema, "://") && !filepath.IsAbs(w.Schema) {
			cfg.Widgets[i].Schema = filepath.Join(dir, w.Schema)
		}
	}
	return cfg, nil
}

// Parse decodes, defaults and validates YAML configuration.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Host.IdleTimeoutSec <= 0 {
		c.Host.IdleTimeoutSec = 1800
	}
	if c.Host.SweepIntervalSec <= 0 {
		c.Host.SweepIntervalSec = 60
	}
	if c.Fetch.TimeoutSec <= 0 {
		c.Fetch.TimeoutSec = 10
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		c.Fetch.MaxBodyBytes = 8 << 20
	}
	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
	for i := range c.Widgets {
		if c.Widgets[i].Mode == "" {
			c.Widgets[i].Mode = "navigate"
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Widgets) == 0 {
		return fmt.Errorf("widgets: at least one widget is required")
	}
	seen := make(map[string]bool, len(c.Widgets))
	for i, w := range c.Widgets {
		switch {
		case w.Name == "":
			return fmt.Errorf("widgets[%d].name is required", i)
		case seen[w.Name]:
			return fmt.Errorf("widgets[%d].name %q is duplicated", i, w.Name)
		case w.Schema == "":
			return fmt.Errorf("widgets.%s.schema is required", w.Name)
		}
		seen[w.Name] = true

		switch w.Mode {
		case "navigate", "fetch":
			// ok
		default:
			return fmt.Errorf("widgets.%s.mode must be \"navigate\" or \"fetch\", got %q", w.Name, w.Mode)
		}
		switch w.Apply.(type) {
		case nil, bool, string:
			// ok
		default:
			return fmt.Errorf("widgets.%s.apply must be a bool or a string, got %T", w.Name, w.Apply)
		}
		if w.NavigateDelayMsec < 0 {
			return fmt.Errorf("widgets.%s.navigate_delay_ms must not be negative", w.Name)
		}
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
