// Package config loads settings for the SimpleNEM12 binaries.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// NEM12_* environment variables. The result is validated before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. NEM12_GRPC_ADDR.
const EnvPrefix = "NEM12"

// Leaf fields carry no envconfig tag: a tagged field is also read from the bare
// name when the prefixed variable is unset, so Source.Path would pick up $PATH.
type Config struct {
	Source  SourceConfig  `yaml:"source" envconfig:"SOURCE"`
	GRPC    GRPCConfig    `yaml:"grpc" envconfig:"GRPC"`
	HTTP    HTTPConfig    `yaml:"http" envconfig:"HTTP"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// SourceConfig names the SimpleNEM12 file served by the gRPC server.
type SourceConfig struct {
	Path string `yaml:"path" validate:"required"`
}

type GRPCConfig struct {
	Addr            string        `yaml:"addr" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true" validate:"gt=0"`
}

type HTTPConfig struct {
	Addr              string        `yaml:"addr" validate:"required,hostname_port"`
	GRPCTarget        string        `yaml:"grpc_target" split_words:"true" validate:"required"`
	GRPCWaitTimeout   time.Duration `yaml:"grpc_wait_timeout" split_words:"true" validate:"gte=0"`
	UpstreamTimeout   time.Duration `yaml:"upstream_timeout" split_words:"true" validate:"gt=0"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" split_words:"true" validate:"gt=0"`
	ReadTimeout       time.Duration `yaml:"read_timeout" split_words:"true" validate:"gt=0"`
	WriteTimeout      time.Duration `yaml:"write_timeout" split_words:"true" validate:"gt=0"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" split_words:"true" validate:"gt=0"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" split_words:"true" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		Source: SourceConfig{Path: "meterreads.csv"},
		GRPC: GRPCConfig{
			Addr:            ":9090",
			ShutdownTimeout: 5 * time.Second,
		},
		HTTP: HTTPConfig{
			Addr:              ":8080",
			GRPCTarget:        "127.0.0.1:9090",
			GRPCWaitTimeout:   20 * time.Second,
			UpstreamTimeout:   5 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   5 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when path
// is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- operator-provided config path
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every invalid field as "<yaml path>: failed <rule>".
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("%s: failed %s (value %v)", fieldPath(fe.StructNamespace()), fe.Tag(), fe.Value()))
	}
	return errors.Join(errs...)
}

// fieldPath turns "Config.HTTP.GRPCTarget" into "http.grpctarget".
func fieldPath(ns string) string {
	ns = strings.TrimPrefix(ns, "Config.")
	return strings.ToLower(ns)
}
