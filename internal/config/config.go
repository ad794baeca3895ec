// Package config parses and validates the parsearch command line.
package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/parsearch/internal/errors"
)

// EnvPrefix prefixes every environment variable read by parsearch.
const EnvPrefix = "PARSEARCH_"

// Dataset patterns accepted by --pattern.
const (
	PatternSequential = "sequential"
	PatternRandom     = "random"
	PatternConstant   = "constant"
)

// Defaults.
const (
	DefaultSize       = 1 << 20
	DefaultTimeout    = 30 * time.Second
	DefaultMaxWorkers = 64
	DefaultAddr       = ":8080"
	DefaultPattern    = PatternSequential
)

// AppConfig holds the fully resolved application configuration.
type AppConfig struct {
	// Targets are the values searched for, one search each.
	Targets []int64
	// Input is a dataset file; when empty a synthetic dataset is generated.
	Input   string
	Size    int
	Pattern string
	Seed    int64
	// Workers is the worker count per search; 0 selects one adaptively.
	Workers    int
	Compare    bool
	MaxWorkers int
	Timeout    time.Duration

	Quiet      bool
	Verbose    bool
	Details    bool
	OutputFile string
	NoColor    bool

	Calibrate          bool
	CalibrationProfile string

	Serve bool
	Addr  string

	ShowVersion bool
}

// ParseConfig parses args (without the program name) into an AppConfig.
// Environment variables fill in flags that were not set explicitly. Usage
// and parse errors are written to errWriter.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	cfg := AppConfig{}
	var targets string

	fs.StringVar(&targets, "target", "", "Comma-separated integer target(s) to search for.")
	fs.StringVar(&targets, "t", "", "Shorthand for --target.")
	fs.StringVar(&cfg.Input, "input", "", "Dataset file (.gz, .zst and .lz4 are decompressed).")
	fs.StringVar(&cfg.Input, "i", "", "Shorthand for --input.")
	fs.IntVar(&cfg.Size, "size", DefaultSize, "Synthetic dataset size when no --input is given.")
	fs.StringVar(&cfg.Pattern, "pattern", DefaultPattern, "Synthetic dataset pattern: sequential, random or constant.")
	fs.Int64Var(&cfg.Seed, "seed", 1, "Seed for the random pattern.")
	fs.IntVar(&cfg.Workers, "workers", 0, "Workers per search (0 = adaptive). Must divide the dataset size; not allowed with --compare.")
	fs.IntVar(&cfg.Workers, "w", 0, "Shorthand for --workers.")
	fs.BoolVar(&cfg.Compare, "compare", false, "Search with every admissible worker count and compare results.")
	fs.IntVar(&cfg.MaxWorkers, "max-workers", DefaultMaxWorkers, "Largest worker count tried by --compare.")
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Maximum time to wait for a search.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Print only the results.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Enable debug logging.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&cfg.Details, "details", false, "Show per-segment statistics and system load.")
	fs.BoolVar(&cfg.Details, "d", false, "Shorthand for --details.")
	fs.StringVar(&cfg.OutputFile, "output", "", "Write a report to this file.")
	fs.StringVar(&cfg.OutputFile, "o", "", "Shorthand for --output.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	fs.BoolVar(&cfg.Calibrate, "calibrate", false, "Benchmark worker counts on a synthetic dataset of --size elements and save the fastest.")
	fs.StringVar(&cfg.CalibrationProfile, "calibration-profile", "", "Calibration profile path.")
	fs.BoolVar(&cfg.Serve, "serve", false, "Run the HTTP search server.")
	fs.StringVar(&cfg.Addr, "addr", DefaultAddr, "Listen address for --serve.")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Print version information and exit.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if !isFlagSetAny(fs, "target", "t") {
		targets = getEnvString("TARGET", targets)
	}
	applyEnvOverrides(&cfg, fs)

	parsed, err := ParseTargets(targets)
	if err != nil {
		return AppConfig{}, err
	}
	cfg.Targets = parsed

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// ParseTargets parses a comma-separated list of integers. An empty string
// yields no targets.
func ParseTargets(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, apperrors.NewConfigError("invalid target %q: not a 64-bit integer", p)
		}
		out = append(out, v)
	}
	return out, nil
}

// Validate checks the configuration for consistency.
func (c AppConfig) Validate() error {
	if c.ShowVersion {
		return nil
	}
	if !c.Serve && len(c.Targets) == 0 && !c.Calibrate {
		return apperrors.NewConfigError("at least one --target is required")
	}
	if c.Workers < 0 {
		return apperrors.NewConfigError("--workers must not be negative, got %d", c.Workers)
	}
	if c.Input == "" {
		if c.Size < 0 {
			return apperrors.NewConfigError("--size must not be negative, got %d", c.Size)
		}
		switch c.Pattern {
		case PatternSequential, PatternRandom, PatternConstant:
		default:
			return apperrors.NewConfigError("unknown --pattern %q (want %s, %s or %s)",
				c.Pattern, PatternSequential, PatternRandom, PatternConstant)
		}
	}
	if c.Compare && c.Workers > 0 {
		return apperrors.NewConfigError("--compare runs every admissible worker count and cannot be combined with --workers %d", c.Workers)
	}
	if c.Calibrate && c.Input != "" {
		return apperrors.NewConfigError("--calibrate benchmarks a synthetic dataset of --size elements and does not read --input")
	}
	if c.Compare && c.MaxWorkers < 1 {
		return apperrors.NewConfigError("--max-workers must be at least 1, got %d", c.MaxWorkers)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("--timeout must be positive, got %s", c.Timeout)
	}
	if c.Serve && c.Addr == "" {
		return apperrors.NewConfigError("--addr must not be empty with --serve")
	}
	return nil
}

// String renders the search-relevant settings on one line.
func (c AppConfig) String() string {
	source := c.Input
	if source == "" {
		source = fmt.Sprintf("%s(%d)", c.Pattern, c.Size)
	}
	workers := "adaptive"
	if c.Workers > 0 {
		workers = strconv.Itoa(c.Workers)
	}
	return fmt.Sprintf("targets=%v dataset=%s workers=%s timeout=%s", c.Targets, source, workers, c.Timeout)
}
