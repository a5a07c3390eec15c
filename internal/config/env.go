package config

import (
	"flag"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

func getEnvString(key, def string) string {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	return parseBool(os.Getenv(EnvPrefix+key), def)
}

// isFlagSet reports whether name was given on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) { set = set || f.Name == name })
	return set
}

// parseBool accepts true/1/yes and false/0/no in any case. Anything else,
// including the empty string, yields def.
func parseBool(v string, def bool) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return def
}

// envOverride binds FIBFILL_<key> to the flags it stands in for. The
// override only applies when none of those flags was given.
type envOverride struct {
	key   string
	flags []string
	apply func(c *AppConfig, v string)
}

func str(field func(*AppConfig) *string) func(*AppConfig, string) {
	return func(c *AppConfig, v string) { *field(c) = v }
}

func boolean(field func(*AppConfig) *bool) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		p := field(c)
		*p = parseBool(v, *p)
	}
}

// integer and duration keep the current value when v does not parse.
func integer(field func(*AppConfig) *int) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			*field(c) = n
		}
	}
}

func duration(field func(*AppConfig) *time.Duration) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		if d, err := time.ParseDuration(v); err == nil {
			*field(c) = d
		}
	}
}

// envOverrides lists every flag that has an environment counterpart.
// FIBFILL_CONFIG and the FIBFILL_MINIO_* credentials are read elsewhere.
var envOverrides = []envOverride{
	{"FILE", []string{"file"}, str(func(c *AppConfig) *string { return &c.File })},
	{"SIZE", []string{"size"}, str(func(c *AppConfig) *string { return &c.Size })},
	{"UNIT", []string{"unit"}, str(func(c *AppConfig) *string { return &c.Unit })},
	{"SPLIT", []string{"split"}, integer(func(c *AppConfig) *int { return &c.Split })},
	{"SPLITSIZE", []string{"splitsize"}, str(func(c *AppConfig) *string { return &c.SplitSize })},
	{"SPLITUNIT", []string{"splitunit"}, str(func(c *AppConfig) *string { return &c.SplitUnit })},
	{"STOP", []string{"stop"}, boolean(func(c *AppConfig) *bool { return &c.Stop })},

	{"PARALLEL", []string{"parallel"}, integer(func(c *AppConfig) *int { return &c.Parallel })},
	{"RATE", []string{"rate"}, str(func(c *AppConfig) *string { return &c.Rate })},
	{"BUFFER", []string{"buffer"}, str(func(c *AppConfig) *string { return &c.Buffer })},
	{"ALGO", []string{"algo"}, str(func(c *AppConfig) *string { return &c.Algo })},
	{"TIMEOUT", []string{"timeout"}, duration(func(c *AppConfig) *time.Duration { return &c.Timeout })},
	{"FSYNC", []string{"fsync"}, boolean(func(c *AppConfig) *bool { return &c.Fsync })},
	{"DROP_CACHE", []string{"drop-cache"}, boolean(func(c *AppConfig) *bool { return &c.DropCache })},
	{"VERIFY", []string{"verify"}, boolean(func(c *AppConfig) *bool { return &c.Verify })},

	{"QUIET", []string{"quiet", "q"}, boolean(func(c *AppConfig) *bool { return &c.Quiet })},
	{"VERBOSE", []string{"verbose", "v"}, boolean(func(c *AppConfig) *bool { return &c.Verbose })},
	{"NO_COLOR", []string{"no-color"}, boolean(func(c *AppConfig) *bool { return &c.NoColor })},
	{"LOG_FORMAT", []string{"log-format"}, str(func(c *AppConfig) *string { return &c.LogFormat })},
	{"LOG_LEVEL", []string{"log-level"}, str(func(c *AppConfig) *string { return &c.LogLevel })},
	{"METRICS_ADDR", []string{"metrics-addr"}, str(func(c *AppConfig) *string { return &c.MetricsAddr })},
	{"TUI", []string{"tui"}, boolean(func(c *AppConfig) *bool { return &c.TUI })},

	{"S3_REGION", []string{"s3-region"}, str(func(c *AppConfig) *string { return &c.S3Region })},
	{"S3_ENDPOINT", []string{"s3-endpoint"}, str(func(c *AppConfig) *string { return &c.S3Endpoint })},
}

// applyEnvOverrides fills c from FIBFILL_* variables for every flag that was
// not given explicitly. Empty variables are ignored.
func applyEnvOverrides(c *AppConfig, fs *flag.FlagSet) {
	given := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { given[f.Name] = true })

	for _, o := range envOverrides {
		if slices.ContainsFunc(o.flags, func(name string) bool { return given[name] }) {
			continue
		}
		if v := os.Getenv(EnvPrefix + o.key); v != "" {
			o.apply(c, v)
		}
	}
}
