// Package config loads the runtime configuration shared by the CLI commands.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-artificial-world/pkg/docstore"
)

const (
	baseDirName         = "ArtificialWorld"
	defaultListenAddr   = "0.0.0.0:5000"
	defaultLogLevel     = "info"
	defaultMaxPasses    = 5
	defaultArchiveCount = docstore.DefaultArchiveCount
)

// Config holds directory locations and service settings. Empty directories
// are derived from MainDir.
type Config struct {
	MainDir      string `yaml:"main_dir" json:"main_dir,omitempty"`
	IndicatorDir string `yaml:"indicator_dir" json:"indicator_dir,omitempty"`
	InputsDir    string `yaml:"inputs_dir" json:"inputs_dir,omitempty"`
	ImagesDir    string `yaml:"images_dir" json:"images_dir,omitempty"`
	ArchiveDir   string `yaml:"archive_dir" json:"archive_dir,omitempty"`
	LoggingDir   string `yaml:"logging_dir" json:"logging_dir,omitempty"`

	// ArchiveCount is the number of archive slots per document. Zero means
	// the default; negative disables rotation.
	ArchiveCount int    `yaml:"archive_count" json:"archive_count,omitempty"`
	ListenAddr   string `yaml:"listen_addr" json:"listen_addr,omitempty"`
	RemoteURL    string `yaml:"remote_url" json:"remote_url,omitempty"`
	LogLevel     string `yaml:"log_level" json:"log_level,omitempty"`
	MaxPasses    int    `yaml:"max_passes" json:"max_passes,omitempty"`
}

// Default returns the configuration used when no file is given. The base
// directory lives under APPDATA when it is set.
func Default() Config {
	return defaultsFor(os.Getenv("APPDATA"))
}

func defaultsFor(appData string) Config {
	base := baseDirName
	if appData != "" {
		base = filepath.Join(appData, baseDirName)
	}
	cfg := Config{MainDir: base}
	cfg.fill()
	return cfg
}

// fill derives every empty field from MainDir and the package defaults.
func (c *Config) fill() {
	if c.MainDir == "" {
		c.MainDir = Default().MainDir
	}
	dirs := []struct {
		target *string
		name   string
	}{
		{&c.IndicatorDir, "indicators"},
		{&c.InputsDir, "inputs"},
		{&c.ImagesDir, "images"},
		{&c.ArchiveDir, "archive"},
		{&c.LoggingDir, "logging"},
	}
	for _, dir := range dirs {
		if *dir.target == "" {
			*dir.target = filepath.Join(c.MainDir, dir.name)
		}
	}
	if c.ArchiveCount == 0 {
		c.ArchiveCount = defaultArchiveCount
	}
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.MaxPasses == 0 {
		c.MaxPasses = defaultMaxPasses
	}
}

// Load reads path (.yaml, .yml or .cue) and fills unset fields with
// defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	case ".cue":
		err = decodeCUE(path, data, &cfg)
	default:
		err = fmt.Errorf("unsupported extension %q", ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}

	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeCUE(path string, data []byte, cfg *Config) error {
	value := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return err
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	raw, err := value.MarshalJSON()
	if err != nil {
		return err
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	return decoder.Decode(cfg)
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.MainDir) == "" {
		errs = append(errs, errors.New("main_dir is required"))
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		errs = append(errs, errors.New("listen_addr is required"))
	}
	if c.MaxPasses < 1 {
		errs = append(errs, fmt.Errorf("max_passes must be at least 1, got %d", c.MaxPasses))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.RemoteURL != "" {
		parsed, err := url.Parse(c.RemoteURL)
		if err != nil || parsed.Host == "" {
			errs = append(errs, fmt.Errorf("remote_url %q is not an absolute URL", c.RemoteURL))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// Layout maps the configured directories onto a document store layout.
func (c Config) Layout() docstore.Layout {
	return docstore.Layout{
		Root:    c.MainDir,
		Inputs:  c.InputsDir,
		Archive: c.ArchiveDir,
	}
}

// ExtraDirs lists the directories created alongside the store layout.
func (c Config) ExtraDirs() []string {
	return []string{c.IndicatorDir, c.ImagesDir, c.LoggingDir}
}

// Level returns LogLevel as a slog.Level, defaulting to Info.
func (c Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: %w", value, err)
	}
	return level, nil
}
