// Package config defines the fibfill configuration and the command-line,
// environment and file layers that populate it.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	apperrors "github.com/agbru/fibfill/internal/errors"
	"github.com/agbru/fibfill/internal/plan"
)

// EnvPrefix is prepended to every environment override key.
const EnvPrefix = "FIBFILL_"

// Defaults mirrored from the classic fibfill behaviour.
const (
	DefaultFile       = "fib.txt"
	DefaultSize       = "1048576"
	DefaultUnit       = "b"
	DefaultBuffer     = "64k"
	DefaultAlgo       = "decimal"
	DefaultLogFormat  = "console"
	DefaultLogLevel   = "info"
	defaultConfigPath = ""
)

// AppConfig aggregates every setting of a fibfill run.
type AppConfig struct {
	// Budget planning.
	File      string
	Size      string
	Unit      string
	Split     int
	SplitSize string
	SplitUnit string
	Stop      bool

	// Execution.
	Parallel int
	Rate     string
	Buffer   string
	Algo     string
	Timeout  time.Duration
	Fsync    bool
	// DropCache advises the kernel to evict written pages on close (Linux).
	DropCache bool
	Verify    bool

	// Output and observability.
	Quiet       bool
	Verbose     bool
	NoColor     bool
	LogFormat   string
	LogLevel    string
	MetricsAddr string
	TUI         bool
	Completion  string
	ConfigFile  string

	// Remote stores.
	S3Region       string
	S3Endpoint     string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioSecure    bool
}

// PlanSettings projects the budget-related fields onto plan.Settings.
func (c AppConfig) PlanSettings() plan.Settings {
	return plan.Settings{
		File:      c.File,
		Size:      c.Size,
		Unit:      c.Unit,
		Split:     c.Split,
		SplitSize: c.SplitSize,
		SplitUnit: c.SplitUnit,
		Stop:      c.Stop,
	}
}

// RateBytes returns the write rate limit in bytes per second, 0 when unlimited.
func (c AppConfig) RateBytes() (int64, error) {
	return parseOptionalSize(c.Rate, "rate")
}

// BufferBytes returns the engine chunk size in bytes. 0 selects unbuffered writes.
func (c AppConfig) BufferBytes() (int, error) {
	n, err := parseOptionalSize(c.Buffer, "buffer")
	if err != nil {
		return 0, err
	}
	if n > 1<<30 {
		return 0, apperrors.NewConfigError("buffer size %s exceeds 1 GiB", c.Buffer)
	}
	return int(n), nil
}

func parseOptionalSize(value, what string) (int64, error) {
	v := strings.TrimSpace(value)
	if v == "" || v == "0" {
		return 0, nil
	}
	return plan.ParseSize(v, "b", what)
}

// Validate checks the semantic consistency of the configuration.
//
// Parameters:
//   - availableAlgos: Names registered in the generator factory.
//
// Returns:
//   - error: An apperrors.ConfigError describing the first problem found.
func (c AppConfig) Validate(availableAlgos []string) error {
	if _, err := plan.Build(c.PlanSettings()); err != nil {
		return err
	}
	if c.Parallel < 0 {
		return apperrors.NewConfigError("parallel must be >= 0, got %d", c.Parallel)
	}
	if c.Timeout < 0 {
		return apperrors.NewConfigError("timeout must be >= 0, got %s", c.Timeout)
	}
	if _, err := c.RateBytes(); err != nil {
		return err
	}
	if _, err := c.BufferBytes(); err != nil {
		return err
	}
	if !slices.Contains(availableAlgos, c.Algo) {
		return apperrors.NewConfigError("unknown algorithm %q (available: %s)", c.Algo, strings.Join(availableAlgos, ", "))
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return apperrors.NewConfigError("log format must be console or json, got %q", c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return apperrors.NewConfigError("unknown log level %q", c.LogLevel)
	}
	if c.Quiet && c.TUI {
		return apperrors.NewConfigError("--quiet and --tui are mutually exclusive")
	}
	return nil
}

// ParseConfig builds the configuration from the command line, environment
// variables and an optional YAML file. The priority is
// flags > environment > file > defaults.
//
// Parameters:
//   - programName: Name used in usage output.
//   - args: Command-line arguments without the program name.
//   - errWriter: Destination for usage and flag errors.
//   - availableAlgos: Generator names accepted by --algo.
//
// Returns:
//   - AppConfig: The validated configuration.
//   - error: flag.ErrHelp when help was requested, otherwise a ConfigError.
func ParseConfig(programName string, args []string, errWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	config := AppConfig{}
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)
	defineFlags(fs, &config, availableAlgos)
	fs.Usage = func() { printUsage(fs, errWriter, programName) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return AppConfig{}, err
		}
		return AppConfig{}, apperrors.NewConfigError("%v", err)
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected argument %q", fs.Arg(0))
	}

	path := config.ConfigFile
	if !isFlagSet(fs, "config") {
		path = getEnvString("CONFIG", path)
	}
	if path != "" {
		fc, err := LoadFile(path)
		if err != nil {
			return AppConfig{}, err
		}
		fc.apply(&config, fs)
		config.ConfigFile = path
	}

	applyEnvOverrides(&config, fs)
	config = ApplyAdaptiveDefaults(config)

	if err := config.Validate(availableAlgos); err != nil {
		return AppConfig{}, err
	}
	return config, nil
}

func defineFlags(fs *flag.FlagSet, c *AppConfig, availableAlgos []string) {
	fs.StringVar(&c.File, "file", DefaultFile, "Output file name (or s3:// / minio:// URL).")
	fs.StringVar(&c.Size, "size", DefaultSize, "Total size to generate, optionally with a unit suffix (10m).")
	fs.StringVar(&c.Unit, "unit", DefaultUnit, "Unit for --size: "+strings.Join(plan.UnitNames, ", ")+".")
	fs.IntVar(&c.Split, "split", 1, "Number of files to split the output into.")
	fs.StringVar(&c.SplitSize, "splitsize", "", "Size of each split file (required when --split > 1).")
	fs.StringVar(&c.SplitUnit, "splitunit", DefaultUnit, "Unit for --splitsize.")
	fs.BoolVar(&c.Stop, "stop", false, "Stop once the total size has been reached.")

	fs.IntVar(&c.Parallel, "parallel", 0, "Destinations generated concurrently (0 = auto).")
	fs.StringVar(&c.Rate, "rate", "", "Write rate limit per destination in bytes per second (e.g. 50m).")
	fs.StringVar(&c.Buffer, "buffer", DefaultBuffer, "Write chunk size (0 = one write per term).")
	fs.StringVar(&c.Algo, "algo", DefaultAlgo, "Generator to use: "+strings.Join(availableAlgos, ", ")+".")
	fs.DurationVar(&c.Timeout, "timeout", 0, "Maximum run time (0 = no limit).")
	fs.BoolVar(&c.Fsync, "fsync", false, "Fsync local files before closing them.")
	fs.BoolVar(&c.DropCache, "drop-cache", true, "Drop written pages from the page cache on close (Linux).")
	fs.BoolVar(&c.Verify, "verify", false, "Re-read every destination and compare it to the generator.")

	fs.BoolVar(&c.Quiet, "quiet", false, "Suppress progress output.")
	fs.BoolVar(&c.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&c.Verbose, "verbose", false, "Log every destination event.")
	fs.BoolVar(&c.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&c.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&c.LogFormat, "log-format", DefaultLogFormat, "Log format: console or json.")
	fs.StringVar(&c.LogLevel, "log-level", DefaultLogLevel, "Log level: trace, debug, info, warn, error, disabled.")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090).")
	fs.BoolVar(&c.TUI, "tui", false, "Show the interactive dashboard.")
	fs.StringVar(&c.Completion, "completion", "", "Print a completion script for bash, zsh or fish.")
	fs.StringVar(&c.ConfigFile, "config", defaultConfigPath, "YAML configuration file.")

	fs.StringVar(&c.S3Region, "s3-region", "", "AWS region for s3:// destinations.")
	fs.StringVar(&c.S3Endpoint, "s3-endpoint", "", "Custom endpoint for s3:// destinations.")
	c.MinioEndpoint = os.Getenv(EnvPrefix + "MINIO_ENDPOINT")
	c.MinioAccessKey = os.Getenv(EnvPrefix + "MINIO_ACCESS_KEY")
	c.MinioSecretKey = os.Getenv(EnvPrefix + "MINIO_SECRET_KEY")
	c.MinioSecure = getEnvBool("MINIO_SECURE", false)
}

func printUsage(fs *flag.FlagSet, w io.Writer, programName string) {
	fmt.Fprintf(w, "Usage: %s [options]\n\n", programName)
	fmt.Fprintln(w, "Writes the Fibonacci sequence, one term per line, into files of a given size.")
	fmt.Fprintln(w, "\nOptions:")
	fs.PrintDefaults()
	fmt.Fprintln(w, "\nExamples:")
	fmt.Fprintf(w, "  %s --file fib.txt --size 10 --unit m\n", programName)
	fmt.Fprintf(w, "  %s --file out --size 1g --split 4 --splitsize 256m --stop\n", programName)
	fmt.Fprintf(w, "  %s --file s3://bucket/data/fib.txt --size 100m --rate 20m\n", programName)
	fmt.Fprintf(w, "\nEvery flag can also be set through %s<NAME> (e.g. %sSIZE=10m).\n", EnvPrefix, EnvPrefix)
}
