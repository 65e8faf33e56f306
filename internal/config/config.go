package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Layout    string  `toml:"layout"`    // FLOORPLAN_LAYOUT (default "layouts/shopfloor.yaml")
	Speed     float64 `toml:"speed"`     // FLOORPLAN_SPEED (default 5.0)
	Heuristic string  `toml:"heuristic"` // FLOORPLAN_HEURISTIC (default "manhattan")
	Workers   int     `toml:"workers"`   // FLOORPLAN_WORKERS (default 4)
	HTTPAddr  string  `toml:"http_addr"` // FLOORPLAN_HTTP_ADDR (default ":8080")
	LogLevel  string  `toml:"log_level"` // FLOORPLAN_LOG_LEVEL (default "info")
	Start     string  `toml:"start"`     // FLOORPLAN_START (default "W")
	End       string  `toml:"end"`       // FLOORPLAN_END (default "D")
	Snapshot  string  `toml:"snapshot"`  // FLOORPLAN_SNAPSHOT (optional, JSON snapshot written on serve)
}

func Default() *Config {
	return &Config{
		Layout:    "layouts/shopfloor.yaml",
		Speed:     5.0,
		Heuristic: "manhattan",
		Workers:   4,
		HTTPAddr:  ":8080",
		LogLevel:  "info",
		Start:     "W",
		End:       "D",
	}
}

// Load applies defaults, then the TOML file at path (skipped when path is
// empty), then FLOORPLAN_* environment variables. The default layout and an
// env override are relative to the working directory; a layout set in the
// file is relative to the file's directory.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, c)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		// A relative layout in the file is relative to the file itself.
		if md.IsDefined("layout") && c.Layout != "" && !filepath.IsAbs(c.Layout) {
			c.Layout = filepath.Join(filepath.Dir(path), c.Layout)
		}
	}

	c.Layout = envOrDefault("FLOORPLAN_LAYOUT", c.Layout)
	c.Heuristic = envOrDefault("FLOORPLAN_HEURISTIC", c.Heuristic)
	c.HTTPAddr = envOrDefault("FLOORPLAN_HTTP_ADDR", c.HTTPAddr)
	c.LogLevel = envOrDefault("FLOORPLAN_LOG_LEVEL", c.LogLevel)
	c.Start = envOrDefault("FLOORPLAN_START", c.Start)
	c.End = envOrDefault("FLOORPLAN_END", c.End)
	c.Snapshot = envOrDefault("FLOORPLAN_SNAPSHOT", c.Snapshot)

	if v := os.Getenv("FLOORPLAN_SPEED"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("FLOORPLAN_SPEED: %w", err)
		}
		c.Speed = f
	}
	if v := os.Getenv("FLOORPLAN_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("FLOORPLAN_WORKERS: %w", err)
		}
		c.Workers = n
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Layout == "" {
		return errors.New("layout is required")
	}
	if c.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %v", c.Speed)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
