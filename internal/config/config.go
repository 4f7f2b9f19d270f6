package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/polytyper/internal/errors"
	"github.com/mcncl/polytyper/internal/models"
)

// ConfigNames are the file names FindConfigFile looks for, in order.
var ConfigNames = []string{".polytyper.yml", ".polytyper.yaml", ".polytyper.toml"}

// Config represents the complete configuration for polytyper
type Config struct {
	Target      string       `yaml:"target" toml:"target"`
	Package     string       `yaml:"package" toml:"package"`
	RootName    string       `yaml:"root_name" toml:"root_name"`
	SplitFiles  bool         `yaml:"split_files" toml:"split_files"`
	FieldNaming string       `yaml:"field_naming" toml:"field_naming"`
	Indent      string       `yaml:"indent" toml:"indent"`
	Strict      bool         `yaml:"strict" toml:"strict"`
	MaxDepth    int          `yaml:"max_depth" toml:"max_depth"`
	Naming      NamingConfig `yaml:"naming" toml:"naming"`
	Output      OutputConfig `yaml:"output" toml:"output"`
	Dev         DevConfig    `yaml:"dev" toml:"dev"`
}

// NamingConfig controls type and field naming
type NamingConfig struct {
	FieldMappings    map[string]string `yaml:"field_mappings" toml:"field_mappings"`
	SingularizeNames bool              `yaml:"singularize_names" toml:"singularize_names"`
}

// OutputConfig controls the generated files
type OutputConfig struct {
	FileHeader string `yaml:"file_header" toml:"file_header"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug" toml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Target:      "go",
		RootName:    "Root",
		FieldNaming: string(models.PreserveKeys),
		Naming: NamingConfig{
			FieldMappings:    make(map[string]string),
			SingularizeNames: true,
		},
	}
}

// LoadConfig loads configuration from a YAML or TOML file. The format follows
// the file extension; anything but .toml is read as YAML. Unknown keys are
// rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read config file '%s'", path), err)
	}

	cfg := NewConfig()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, errors.NewConfigError("failed to parse config file", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errors.NewConfigError("failed to parse config file",
				errors.Newf("unknown keys: %s", strings.Join(keys, ", ")))
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF and keeps the defaults.
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, errors.NewConfigError("failed to parse config file", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that have a closed set of choices.
func (c *Config) Validate() error {
	switch models.FieldNaming(c.FieldNaming) {
	case "", models.PreserveKeys, models.Positional:
	default:
		return errors.NewConfigError(
			fmt.Sprintf("field_naming must be %q or %q, got %q", models.PreserveKeys, models.Positional, c.FieldNaming),
			errors.ErrInvalidOption)
	}
	if c.MaxDepth < 0 {
		return errors.NewConfigError(fmt.Sprintf("max_depth must not be negative, got %d", c.MaxDepth), errors.ErrInvalidOption)
	}
	return nil
}

// FindConfigFile searches for a config file in the current directory and its
// parents. It returns "" when none is found.
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return FindConfigFileFrom(currentDir)
}

// FindConfigFileFrom searches dir and its parents.
func FindConfigFileFrom(dir string) string {
	for {
		for _, name := range ConfigNames {
			configPath := filepath.Join(dir, name)
			if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
				return configPath
			}
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			return ""
		}
		dir = parentDir
	}
}

// MergeConfigs merges CLI overrides into a base config. Non-empty strings and
// non-zero numbers from override win. Booleans can only be switched on by
// override since a false flag is indistinguishable from an absent one.
func MergeConfigs(base, override *Config) *Config {
	merged := *base

	if override.Target != "" {
		merged.Target = override.Target
	}
	if override.Package != "" {
		merged.Package = override.Package
	}
	if override.RootName != "" {
		merged.RootName = override.RootName
	}
	if override.FieldNaming != "" {
		merged.FieldNaming = override.FieldNaming
	}
	if override.Indent != "" {
		merged.Indent = override.Indent
	}
	if override.MaxDepth != 0 {
		merged.MaxDepth = override.MaxDepth
	}
	if override.Output.FileHeader != "" {
		merged.Output.FileHeader = override.Output.FileHeader
	}
	merged.SplitFiles = base.SplitFiles || override.SplitFiles
	merged.Strict = base.Strict || override.Strict
	merged.Dev.Debug = base.Dev.Debug || override.Dev.Debug

	merged.Naming.FieldMappings = make(map[string]string, len(base.Naming.FieldMappings)+len(override.Naming.FieldMappings))
	for k, v := range base.Naming.FieldMappings {
		merged.Naming.FieldMappings[k] = v
	}
	for k, v := range override.Naming.FieldMappings {
		merged.Naming.FieldMappings[k] = v
	}

	return &merged
}

// LoadConfigWithCLI loads the config file at configPath, or the defaults
// when configPath is empty, and applies the CLI overrides on top.
func LoadConfigWithCLI(configPath string, cli *Config) (*Config, error) {
	cfg := NewConfig()
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}
	if cli == nil {
		return cfg, nil
	}

	merged := MergeConfigs(cfg, cli)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Request builds a generation request for samples from the config.
func (c *Config) Request(samples []string) models.Request {
	singularize := c.Naming.SingularizeNames
	return models.Request{
		Samples:          samples,
		Target:           c.Target,
		RootName:         c.RootName,
		Namespace:        c.Package,
		SplitFiles:       c.SplitFiles,
		FieldNaming:      models.FieldNaming(c.FieldNaming),
		Indent:           c.Indent,
		Strict:           c.Strict,
		MaxDepth:         c.MaxDepth,
		FieldMappings:    c.Naming.FieldMappings,
		SingularizeNames: &singularize,
		FileHeader:       c.Output.FileHeader,
	}
}

// MappedKeys lists the keys with a field mapping, sorted.
func (c *Config) MappedKeys() []string {
	keys := make([]string, 0, len(c.Naming.FieldMappings))
	for k := range c.Naming.FieldMappings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
