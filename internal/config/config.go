package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"squish/internal/planner"
)

const DefaultQuality = 85

type Config struct {
	InputDir  string
	OutputDir string

	Quality    int
	Resize     planner.ResizeSpec
	Format     string // "" keeps each source's own format
	Recursive  bool
	Workers    int
	Plain      bool
	Verbose    bool
	AutoOrient bool
}

func (c Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// Raw carries unmerged command-line inputs. Set reports whether a flag
// was given explicitly.
type Raw struct {
	InputDir  string
	OutputDir string

	Quality    int
	MaxSize    int
	ExactSize  string
	NoAspect   bool
	Format     string
	Recursive  bool
	Workers    int
	Plain      bool
	Verbose    bool
	AutoOrient bool

	ConfigFile string
	Set        func(name string) bool
}

// FileConfig mirrors the optional YAML config file. Pointer fields
// distinguish absent from zero.
type FileConfig struct {
	Quality    *int   `yaml:"quality"`
	MaxSize    *int   `yaml:"max_size"`
	ExactSize  string `yaml:"exact_size"`
	NoAspect   *bool  `yaml:"no_aspect"`
	Format     string `yaml:"format"`
	Recursive  *bool  `yaml:"recursive"`
	Workers    *int   `yaml:"workers"`
	AutoOrient *bool  `yaml:"auto_orient"`
}

var outputFormats = map[string]bool{"jpg": true, "png": true, "webp": true}

// Resolve layers defaults, config file, environment, and explicit flags,
// highest last.
func Resolve(raw Raw) (Config, error) {
	set := raw.Set
	if set == nil {
		set = func(string) bool { return false }
	}

	// Load never overrides variables already exported.
	_ = godotenv.Load()

	var fc FileConfig
	if raw.ConfigFile != "" {
		loaded, err := loadFile(raw.ConfigFile)
		if err != nil {
			return Config{}, err
		}
		fc = loaded
	}

	cfg := Config{
		InputDir:  raw.InputDir,
		OutputDir: raw.OutputDir,
		Quality:   DefaultQuality,
		Verbose:   raw.Verbose,
		Plain:     raw.Plain || raw.Verbose,
	}

	var (
		maxSize   int
		exactSize string
		noAspect  bool
	)

	if fc.Quality != nil {
		cfg.Quality = *fc.Quality
	}
	if fc.Format != "" {
		cfg.Format = fc.Format
	}
	if fc.Workers != nil {
		cfg.Workers = *fc.Workers
	}
	if fc.Recursive != nil {
		cfg.Recursive = *fc.Recursive
	}
	if fc.AutoOrient != nil {
		cfg.AutoOrient = *fc.AutoOrient
	}
	if fc.MaxSize != nil {
		maxSize = *fc.MaxSize
	}
	if fc.ExactSize != "" {
		exactSize = fc.ExactSize
	}
	if fc.NoAspect != nil {
		noAspect = *fc.NoAspect
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if set("quality") {
		cfg.Quality = raw.Quality
	}
	if set("format") {
		cfg.Format = raw.Format
	}
	if set("workers") {
		cfg.Workers = raw.Workers
	}
	if set("recursive") {
		cfg.Recursive = raw.Recursive
	}
	if set("auto-orient") {
		cfg.AutoOrient = raw.AutoOrient
	}
	if set("max-size") {
		maxSize = raw.MaxSize
	}
	if set("exact-size") {
		exactSize = raw.ExactSize
	}
	if set("no-aspect") {
		noAspect = raw.NoAspect
	}

	if err := validate(&cfg, maxSize, exactSize, noAspect); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg *Config, maxSize int, exactSize string, noAspect bool) error {
	if cfg.Format != "" {
		name := strings.ToLower(cfg.Format)
		if !outputFormats[name] {
			return fmt.Errorf("invalid format %q (choose jpg, png, or webp)", cfg.Format)
		}
		cfg.Format = name
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("--workers must be zero or positive")
	}
	if maxSize < 0 {
		return fmt.Errorf("--max-size must be positive")
	}
	if maxSize > 0 && exactSize != "" {
		return fmt.Errorf("--max-size cannot be used with --exact-size")
	}

	switch {
	case exactSize != "":
		w, h, err := ParseExactSize(exactSize)
		if err != nil {
			return err
		}
		cfg.Resize = planner.ResizeSpec{
			Mode:       planner.ResizeExact,
			Width:      w,
			Height:     h,
			KeepAspect: !noAspect,
		}
	case maxSize > 0:
		cfg.Resize = planner.ResizeSpec{Mode: planner.ResizeMaxDimension, MaxDimension: maxSize}
	default:
		cfg.Resize = planner.ResizeSpec{Mode: planner.ResizeNone}
	}
	return nil
}

// ParseExactSize parses a WxH geometry string such as "800x600".
func ParseExactSize(s string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid size %q, expected WxH", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width in %q", s)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height in %q", s)
	}
	if w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("size %q must be positive", s)
	}
	return w, h, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("SQUISH_QUALITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SQUISH_QUALITY %q", v)
		}
		cfg.Quality = n
	}
	if v := os.Getenv("SQUISH_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("SQUISH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SQUISH_WORKERS %q", v)
		}
		cfg.Workers = n
	}
	return nil
}

func loadFile(path string) (FileConfig, error) {
	var fc FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}
