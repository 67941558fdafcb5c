// Package config handles the <cache>/config.yaml configuration file.
//
// The cache directory (.locsync by default) holds the snapshots and a
// config.yaml with the defaults for every translate run. The file is
// created with default values on first use; command-line flags override
// what it says.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/locsync/catalog"
	"github.com/minios-linux/locsync/matcher"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// Config is the top-level config.yaml structure.
type Config struct {
	// InputDir is the directory holding the language directories
	// (default ".").
	InputDir string `yaml:"input,omitempty"`
	// SourceLang is the source language code (default "en").
	SourceLang string `yaml:"source_lang"`
	// Languages restricts the target languages. Empty means every
	// language found in InputDir.
	Languages []string `yaml:"languages,omitempty"`
	// Service is the translation service id (default "google-translate").
	Service string `yaml:"service"`
	// ServiceConfig is the service-specific configuration string, e.g.
	// "key,region" for azure. Prefer the credential store for secrets.
	ServiceConfig string `yaml:"service_config,omitempty"`
	// Model and BaseURL configure the LLM services.
	Model   string `yaml:"model,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	// Matcher is the placeholder family (default "icu").
	Matcher string `yaml:"matcher"`
	// FileType is key-based, natural or auto (default "auto").
	FileType string `yaml:"file_type"`
	// DirStructure is default or ngx-translate (default "default").
	DirStructure string `yaml:"dir_structure"`
	// DecodeEscapes decodes HTML entities in translated strings.
	DecodeEscapes bool `yaml:"decode_escapes"`
	// DeleteUnused removes keys and files with no source counterpart.
	DeleteUnused bool `yaml:"delete_unused,omitempty"`
	// BatchSize is the number of strings per service call (default 50).
	BatchSize int `yaml:"batch_size,omitempty"`
	// MaxConcurrent bounds parallel service calls (default 4).
	MaxConcurrent int `yaml:"max_concurrent,omitempty"`
}

// Directory structures.
const (
	StructureDefault = "default"
	StructureNgx     = "ngx-translate"
)

// FileName is the config file name inside the cache directory.
const FileName = "config.yaml"

// DefaultCacheDir is the cache directory used when none is given.
const DefaultCacheDir = ".locsync"

// Default values.
const (
	DefaultSourceLang    = "en"
	DefaultService       = "google-translate"
	DefaultBatchSize     = 50
	DefaultMaxConcurrent = 4
)

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		InputDir:     ".",
		SourceLang:   DefaultSourceLang,
		Service:      DefaultService,
		Matcher:      matcher.ICU,
		FileType:     string(catalog.ShapeAuto),
		DirStructure: StructureDefault,
	}
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Path returns the config file path for a cache directory.
func Path(cacheDir string) string {
	return filepath.Join(cacheDir, FileName)
}

// Load reads and validates config.yaml from the cache directory.
// Returns nil if no config.yaml exists.
func Load(cacheDir string) (*Config, error) {
	path := Path(cacheDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Init loads config.yaml, creating it with defaults when it does not exist.
// The returned bool reports whether the file was created.
func Init(cacheDir string) (*Config, bool, error) {
	cfg, err := Load(cacheDir)
	if err != nil {
		return nil, false, err
	}
	if cfg != nil {
		return cfg, false, nil
	}
	cfg = Default()
	if err := cfg.Save(cacheDir); err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// Save writes the config to config.yaml in cacheDir.
func (c *Config) Save(cacheDir string) error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", cacheDir, err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := Path(cacheDir)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// applyDefaults fills fields left empty in the file.
func (c *Config) applyDefaults() {
	def := Default()
	if c.InputDir == "" {
		c.InputDir = def.InputDir
	}
	if c.SourceLang == "" {
		c.SourceLang = def.SourceLang
	}
	if c.Service == "" {
		c.Service = def.Service
	}
	if c.Matcher == "" {
		c.Matcher = def.Matcher
	}
	if c.FileType == "" {
		c.FileType = def.FileType
	}
	if c.DirStructure == "" {
		c.DirStructure = def.DirStructure
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate checks field values. Service ids are checked by the caller
// when the service is instantiated.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SourceLang) == "" {
		return fmt.Errorf("source_lang is empty")
	}
	if _, err := matcher.Lookup(c.Matcher); err != nil {
		return fmt.Errorf("matcher: %w", err)
	}
	if _, err := catalog.ParseShape(c.FileType); err != nil {
		return fmt.Errorf("file_type: %w", err)
	}
	if _, err := ParseStructure(c.DirStructure); err != nil {
		return fmt.Errorf("dir_structure: %w", err)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch_size must not be negative, got %d", c.BatchSize)
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("max_concurrent must not be negative, got %d", c.MaxConcurrent)
	}
	for _, lang := range c.Languages {
		if lang == c.SourceLang {
			return fmt.Errorf("languages: %q is the source language", lang)
		}
	}
	return nil
}

// ParseStructure validates a directory structure name. The empty string
// means the default structure.
func ParseStructure(s string) (string, error) {
	switch s {
	case StructureDefault, "":
		return StructureDefault, nil
	case StructureNgx:
		return StructureNgx, nil
	}
	return "", fmt.Errorf("unknown directory structure %q (valid: %s, %s)", s, StructureDefault, StructureNgx)
}

// EffectiveBatchSize returns BatchSize or its default.
func (c *Config) EffectiveBatchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	return DefaultBatchSize
}

// EffectiveMaxConcurrent returns MaxConcurrent or its default.
func (c *Config) EffectiveMaxConcurrent() int {
	if c.MaxConcurrent > 0 {
		return c.MaxConcurrent
	}
	return DefaultMaxConcurrent
}
