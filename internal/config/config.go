package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override, e.g.
// SHEETSIFT_LINK_LABEL.
const EnvPrefix = "SHEETSIFT"

// Global configuration structure.
type Global struct {
	// Link columns
	LinkColumns []string `mapstructure:"link_columns" yaml:"link_columns"`
	LinkLabel   string   `mapstructure:"link_label" yaml:"link_label"`

	// Exact-set filters are offered for option_min_distinct < distinct < option_max_distinct
	OptionMinDistinct int `mapstructure:"option_min_distinct" yaml:"option_min_distinct"`
	OptionMaxDistinct int `mapstructure:"option_max_distinct" yaml:"option_max_distinct"`

	ExportFilename string `mapstructure:"export_filename" yaml:"export_filename"`
	DisplayMaxRows int    `mapstructure:"display_max_rows" yaml:"display_max_rows"`
	Title          string `mapstructure:"title" yaml:"title"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Web UI
	ServeAddr     string `mapstructure:"serve_addr" yaml:"serve_addr"`
	SessionTTLMin int    `mapstructure:"session_ttl_min" yaml:"session_ttl_min"`
	MaxSessions   int    `mapstructure:"max_sessions" yaml:"max_sessions"`

	// Spreadsheet selection
	SheetName  string `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex int    `mapstructure:"sheet_index" yaml:"sheet_index"`

	// S3-compatible dataset source
	S3Endpoint  string `mapstructure:"s3_endpoint" yaml:"s3_endpoint"`
	S3AccessKey string `mapstructure:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey string `mapstructure:"s3_secret_key" yaml:"s3_secret_key"`
	S3UseSSL    bool   `mapstructure:"s3_use_ssl" yaml:"s3_use_ssl"`
}

// Keys lists every configuration key in display order.
var Keys = []string{
	"link_columns", "link_label",
	"option_min_distinct", "option_max_distinct",
	"export_filename", "display_max_rows", "title",
	"log_level", "log_format",
	"serve_addr", "session_ttl_min", "max_sessions",
	"sheet_name", "sheet_index",
	"s3_endpoint", "s3_access_key", "s3_secret_key", "s3_use_ssl",
}

// DefaultPath returns ~/.sheetsift/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".sheetsift", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.sheetsift/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("link_columns", []string{"Spec Sheet"})
	v.SetDefault("link_label", "Open")
	v.SetDefault("option_min_distinct", 1)
	v.SetDefault("option_max_distinct", 40)
	v.SetDefault("export_filename", "filtered_data.csv")
	v.SetDefault("display_max_rows", 200)
	v.SetDefault("title", "sheetsift")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "logfmt")
	v.SetDefault("serve_addr", "127.0.0.1:8765")
	v.SetDefault("session_ttl_min", 30)
	v.SetDefault("max_sessions", 64)
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 0)
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")
	v.SetDefault("s3_use_ssl", true)
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A missing config file is not an
// error; a malformed one is.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".sheetsift"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Defaults returns the built-in configuration, ignoring files and env.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Validate checks values that would make the tool misbehave.
func (c *Global) Validate() error {
	if c.OptionMinDistinct < 0 {
		return fmt.Errorf("option_min_distinct must be >= 0, got %d", c.OptionMinDistinct)
	}
	if c.OptionMaxDistinct <= c.OptionMinDistinct {
		return fmt.Errorf("option_max_distinct (%d) must exceed option_min_distinct (%d)", c.OptionMaxDistinct, c.OptionMinDistinct)
	}
	if c.DisplayMaxRows < 0 {
		return fmt.Errorf("display_max_rows must be >= 0, got %d", c.DisplayMaxRows)
	}
	if c.SessionTTLMin <= 0 {
		return fmt.Errorf("session_ttl_min must be > 0, got %d", c.SessionTTLMin)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("max_sessions must be > 0, got %d", c.MaxSessions)
	}
	return nil
}

// Set assigns a single key from its string form, as used by
// `sheetsift config set`. List values are comma-separated.
func (c *Global) Set(key, value string) error {
	var err error
	switch key {
	case "link_columns":
		c.LinkColumns = splitList(value)
	case "link_label":
		c.LinkLabel = value
	case "option_min_distinct":
		c.OptionMinDistinct, err = atoi(key, value)
	case "option_max_distinct":
		c.OptionMaxDistinct, err = atoi(key, value)
	case "export_filename":
		c.ExportFilename = value
	case "display_max_rows":
		c.DisplayMaxRows, err = atoi(key, value)
	case "title":
		c.Title = value
	case "log_level":
		c.LogLevel = value
	case "log_format":
		c.LogFormat = value
	case "serve_addr":
		c.ServeAddr = value
	case "session_ttl_min":
		c.SessionTTLMin, err = atoi(key, value)
	case "max_sessions":
		c.MaxSessions, err = atoi(key, value)
	case "sheet_name":
		c.SheetName = value
	case "sheet_index":
		c.SheetIndex, err = atoi(key, value)
	case "s3_endpoint":
		c.S3Endpoint = value
	case "s3_access_key":
		c.S3AccessKey = value
	case "s3_secret_key":
		c.S3SecretKey = value
	case "s3_use_ssl":
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes", "on":
			c.S3UseSSL = true
		case "0", "false", "no", "off":
			c.S3UseSSL = false
		default:
			err = fmt.Errorf("s3_use_ssl: invalid boolean %q", value)
		}
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	if err != nil {
		return err
	}
	return c.Validate()
}

// Get returns the display form of a single key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "link_columns":
		return strings.Join(c.LinkColumns, ","), nil
	case "link_label":
		return c.LinkLabel, nil
	case "option_min_distinct":
		return fmt.Sprint(c.OptionMinDistinct), nil
	case "option_max_distinct":
		return fmt.Sprint(c.OptionMaxDistinct), nil
	case "export_filename":
		return c.ExportFilename, nil
	case "display_max_rows":
		return fmt.Sprint(c.DisplayMaxRows), nil
	case "title":
		return c.Title, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "serve_addr":
		return c.ServeAddr, nil
	case "session_ttl_min":
		return fmt.Sprint(c.SessionTTLMin), nil
	case "max_sessions":
		return fmt.Sprint(c.MaxSessions), nil
	case "sheet_name":
		return c.SheetName, nil
	case "sheet_index":
		return fmt.Sprint(c.SheetIndex), nil
	case "s3_endpoint":
		return c.S3Endpoint, nil
	case "s3_access_key":
		return c.S3AccessKey, nil
	case "s3_secret_key":
		if c.S3SecretKey == "" {
			return "", nil
		}
		return "********", nil
	case "s3_use_ssl":
		return fmt.Sprint(c.S3UseSSL), nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoi(key, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return n, nil
}
