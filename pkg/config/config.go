package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rubiojr/searchfields/pkg/search"
	"github.com/rubiojr/searchfields/pkg/storage"
	"gopkg.in/yaml.v3"
)

//go:embed config.toml.sample
var configTemplate string

const (
	DefaultListen      = "localhost:8080"
	DefaultReadTimeout = 10 * time.Second
)

type Config struct {
	StoragePath string                  `toml:"storage_path" yaml:"storage_path"`
	Listen      string                  `toml:"listen" yaml:"listen"`
	SearchParam string                  `toml:"search_param" yaml:"search_param"`
	ReadTimeout Duration                `toml:"read_timeout" yaml:"read_timeout"`
	Debug       bool                    `toml:"debug" yaml:"debug"`
	Tables      []storage.Table         `toml:"tables" yaml:"tables"`
	Filters     map[string]FilterConfig `toml:"filters" yaml:"filters"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// FilterConfig declares a filter class. A filter without a table can only
// be used as a base.
type FilterConfig struct {
	Table  string        `toml:"table,omitempty" yaml:"table,omitempty"`
	Bases  []string      `toml:"bases,omitempty" yaml:"bases,omitempty"`
	Fields []FieldConfig `toml:"fields" yaml:"fields"`
}

// FieldConfig declares one search field.
type FieldConfig struct {
	// Name is the selector the field is declared under.
	Name string `toml:"name" yaml:"name"`
	// Path is the column path searched. Defaults to Name.
	Path string `toml:"path,omitempty" yaml:"path,omitempty"`
	// Kind is one of fields.Kinds; empty means a plain field.
	Kind      string   `toml:"kind,omitempty" yaml:"kind,omitempty"`
	Lookup    string   `toml:"lookup,omitempty" yaml:"lookup,omitempty"`
	Default   bool     `toml:"default,omitempty" yaml:"default,omitempty"`
	MatchCase *bool    `toml:"match_case,omitempty" yaml:"match_case,omitempty"`
	Aliases   []string `toml:"aliases,omitempty" yaml:"aliases,omitempty"`
	Partial   bool     `toml:"partial,omitempty" yaml:"partial,omitempty"`
}

func GetDefaultConfig() (*Config, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return nil, fmt.Errorf("getting default storage directory: %w", err)
	}
	return &Config{
		StoragePath: filepath.Join(storageDir, "searchfields.db"),
		Listen:      DefaultListen,
		SearchParam: search.DefaultParam,
		ReadTimeout: Duration{DefaultReadTimeout},
		Filters:     make(map[string]FilterConfig),
	}, nil
}

// LoadConfig reads a TOML file, or YAML when the extension is .yaml or
// .yml. A missing file yields the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if isYAML(configPath) {
		err = yaml.Unmarshal(data, &config)
	} else {
		err = toml.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.StoragePath == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return nil, fmt.Errorf("getting default storage directory: %w", err)
		}
		config.StoragePath = filepath.Join(storageDir, "searchfields.db")
	}

	if config.Listen == "" {
		config.Listen = DefaultListen
	}

	if config.SearchParam == "" {
		config.SearchParam = search.DefaultParam
	}

	if config.ReadTimeout.Duration == 0 {
		config.ReadTimeout = Duration{DefaultReadTimeout}
	}

	if config.Filters == nil {
		config.Filters = make(map[string]FilterConfig)
	}

	return &config, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var data []byte
	var err error
	if isYAML(configPath) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = toml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template, err := c.generateConfigTemplate()
	if err != nil {
		return fmt.Errorf("generating config template: %w", err)
	}
	return os.WriteFile(configPath, []byte(template), 0644)
}

func (c *Config) generateConfigTemplate() (string, error) {
	storagePath := c.StoragePath
	if storagePath == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return "", fmt.Errorf("getting default storage directory: %w", err)
		}
		storagePath = filepath.Join(storageDir, "searchfields.db")
	}

	// Replace the placeholder storage_path with the actual path
	template := strings.Replace(configTemplate, "/home/user/.local/share/searchfields/searchfields.db", storagePath, 1)
	return template, nil
}

// Table returns the table definition named name.
func (c *Config) Table(name string) (storage.Table, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return storage.Table{}, false
}

// GetDefaultStorageDir returns the default storage directory for databases
func GetDefaultStorageDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	storageDir := filepath.Join(dataDir, "searchfields")

	if err := os.MkdirAll(storageDir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", storageDir, err)
	}

	return storageDir, nil
}

// GetConfigDir returns the configuration directory
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "searchfields")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
