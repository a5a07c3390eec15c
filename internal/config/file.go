package config

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/fibfill/internal/errors"
)

// FileConfig is the YAML representation of a configuration file. Every field
// is optional; only present keys override the defaults.
type FileConfig struct {
	File      *string `yaml:"file"`
	Size      *string `yaml:"size"`
	Unit      *string `yaml:"unit"`
	Split     *int    `yaml:"split"`
	SplitSize *string `yaml:"splitsize"`
	SplitUnit *string `yaml:"splitunit"`
	Stop      *bool   `yaml:"stop"`

	Parallel  *int    `yaml:"parallel"`
	Rate      *string `yaml:"rate"`
	Buffer    *string `yaml:"buffer"`
	Algo      *string `yaml:"algo"`
	Timeout   *string `yaml:"timeout"`
	Fsync     *bool   `yaml:"fsync"`
	DropCache *bool   `yaml:"drop_cache"`
	Verify    *bool   `yaml:"verify"`

	Logging struct {
		Format *string `yaml:"format"`
		Level  *string `yaml:"level"`
	} `yaml:"logging"`
	MetricsAddr *string `yaml:"metrics_addr"`

	S3 struct {
		Region   *string `yaml:"region"`
		Endpoint *string `yaml:"endpoint"`
	} `yaml:"s3"`
}

// LoadFile reads and decodes a YAML configuration file. Unknown keys are
// rejected so typos surface as configuration errors.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to read config file: %v", err)
	}
	return ParseFile(data)
}

// ParseFile decodes YAML configuration bytes.
func ParseFile(data []byte) (*FileConfig, error) {
	fc := &FileConfig{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.NewConfigError("failed to parse config file: %v", err)
	}
	if fc.Timeout != nil {
		if _, err := time.ParseDuration(*fc.Timeout); err != nil {
			return nil, apperrors.NewConfigError("invalid timeout in config file: %q", *fc.Timeout)
		}
	}
	return fc, nil
}

// apply copies the present keys into c, skipping settings given as flags.
func (fc *FileConfig) apply(c *AppConfig, fs *flag.FlagSet) {
	setString(fs, "file", fc.File, &c.File)
	setString(fs, "size", fc.Size, &c.Size)
	setString(fs, "unit", fc.Unit, &c.Unit)
	if fc.Split != nil && !isFlagSet(fs, "split") {
		c.Split = *fc.Split
	}
	setString(fs, "splitsize", fc.SplitSize, &c.SplitSize)
	setString(fs, "splitunit", fc.SplitUnit, &c.SplitUnit)
	setBool(fs, "stop", fc.Stop, &c.Stop)

	if fc.Parallel != nil && !isFlagSet(fs, "parallel") {
		c.Parallel = *fc.Parallel
	}
	setString(fs, "rate", fc.Rate, &c.Rate)
	setString(fs, "buffer", fc.Buffer, &c.Buffer)
	setString(fs, "algo", fc.Algo, &c.Algo)
	if fc.Timeout != nil && !isFlagSet(fs, "timeout") {
		// Checked in ParseFile.
		c.Timeout, _ = time.ParseDuration(*fc.Timeout)
	}
	setBool(fs, "fsync", fc.Fsync, &c.Fsync)
	setBool(fs, "drop-cache", fc.DropCache, &c.DropCache)
	setBool(fs, "verify", fc.Verify, &c.Verify)

	setString(fs, "log-format", fc.Logging.Format, &c.LogFormat)
	setString(fs, "log-level", fc.Logging.Level, &c.LogLevel)
	setString(fs, "metrics-addr", fc.MetricsAddr, &c.MetricsAddr)
	setString(fs, "s3-region", fc.S3.Region, &c.S3Region)
	setString(fs, "s3-endpoint", fc.S3.Endpoint, &c.S3Endpoint)
}

func setString(fs *flag.FlagSet, flagName string, src *string, dst *string) {
	if src != nil && !isFlagSet(fs, flagName) {
		*dst = *src
	}
}

func setBool(fs *flag.FlagSet, flagName string, src *bool, dst *bool) {
	if src != nil && !isFlagSet(fs, flagName) {
		*dst = *src
	}
}
