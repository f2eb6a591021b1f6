package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Event contains the source coordinates stamped on every ingested group.
type Event struct {
	Latitude  float64 `toml:"latitude"`
	Longitude float64 `toml:"longitude"`
}

// Inversion contains the derivative parameter list and window defaults.
type Inversion struct {
	// Parameters names the derivative synthetics to load for each group.
	// Every entry must belong to the closed set of known parameters.
	Parameters []string `toml:"parameters"`
	// InitialWeight applies to window rows that omit their weight.
	InitialWeight float64 `toml:"initial_weight"`
	// CalibrateTime shifts legacy relative-time windows onto the loaded
	// waveform's own time base.
	CalibrateTime bool `toml:"calibrate_time"`
}

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for cmtdata.
type Config struct {
	Event     Event     `toml:"event"`
	Inversion Inversion `toml:"inversion"`
	Paths     Paths     `toml:"paths"`
	Logging   Logging   `toml:"logging"`
}

// AllParameters is the closed set of derivative parameter names: the six
// moment-tensor components, the three location parameters, centroid time,
// and half duration.
var AllParameters = []string{
	"Mrr", "Mtt", "Mpp", "Mrt", "Mrp", "Mtp",
	"dep", "lat", "lon", "ctm", "hdr",
}

// KnownParameter reports whether name belongs to the closed parameter set.
func KnownParameter(name string) bool {
	for _, p := range AllParameters {
		if p == name {
			return true
		}
	}
	return false
}

// Default returns the repository default configuration.
func Default() Config {
	return Config{
		Inversion: Inversion{
			Parameters:    []string{"Mrr", "Mtt", "Mpp", "Mrt", "Mrp", "Mtp"},
			InitialWeight: 1.0,
			CalibrateTime: false,
		},
		Paths: Paths{
			OutputDir: "output",
			LogDir:    "logs",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}

// Sample returns the embedded sample configuration text.
func Sample() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. When the path is
// empty and no default file exists, repository defaults are returned.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs("cmtdata.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return projectPath, false, nil
}

func (c *Config) normalize() error {
	for _, dir := range []*string{&c.Paths.OutputDir, &c.Paths.LogDir} {
		expanded, err := expandPath(*dir)
		if err != nil {
			return err
		}
		*dir = expanded
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if len(c.Inversion.Parameters) == 0 {
		return errors.New("config: inversion.parameters must not be empty")
	}
	seen := make(map[string]struct{}, len(c.Inversion.Parameters))
	for _, p := range c.Inversion.Parameters {
		if !KnownParameter(p) {
			return fmt.Errorf("config: unknown derivative parameter %q (known: %s)",
				p, strings.Join(AllParameters, ", "))
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("config: duplicate derivative parameter %q", p)
		}
		seen[p] = struct{}{}
	}
	if c.Inversion.InitialWeight < 0 {
		return fmt.Errorf("config: initial_weight must not be negative, got %g",
			c.Inversion.InitialWeight)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: unsupported log format %q", c.Logging.Format)
	}
	return nil
}

// EnsureDirectories creates the configured output and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure directory %s: %w", dir, err)
		}
	}
	return nil
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return filepath.Abs(path)
}
