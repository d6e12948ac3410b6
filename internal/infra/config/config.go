package config

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// ErrInvalidConfig is returned when the provided config is not a pointer to a struct
// that embeds EnvConfig.
var ErrInvalidConfig = errors.New("config must be a pointer to a struct embedding EnvConfig")

// noDefaultTag disables envDefault handling on the second env pass so that
// defaults never override values read from the config file.
const noDefaultTag = "envDefaultDisabled"

// EnvConfig is a base type that must be embedded in configuration structs
// to enable environment variable parsing.
type EnvConfig struct {
	// ConfigFile optionally names a TOML file that is read before the environment.
	ConfigFile string `env:"CONFIG_FILE" toml:"-"`

	namespace string
}

// Namespace returns the prefix the configuration was parsed with.
func (c EnvConfig) Namespace() string {
	return c.namespace
}

//nolint:varnamelen
func getEnvConfig(cfg any) (*EnvConfig, error) {
	v := reflect.ValueOf(cfg)

	// Ensure cfg is a pointer to a struct
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, ErrInvalidConfig
	}

	v = v.Elem()
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		//nolint:exhaustruct,forcetypeassert
		if field.Anonymous && field.Type == reflect.TypeOf(EnvConfig{}) {
			if ev := v.Field(i); ev.CanAddr() {
				return ev.Addr().Interface().(*EnvConfig), nil
			}
		}
	}

	return nil, ErrInvalidConfig
}

// Parse loads configuration into the provided struct.
// The struct must embed EnvConfig and use `env`, `envDefault` and `envPrefix` tags.
// The namespace is joined with "_" and prepended to every variable name.
//
// Values are resolved in this order, later sources winning:
// envDefault tags, the TOML file named by <NAMESPACE>_CONFIG_FILE, environment variables.
func Parse(ctx context.Context, cfg any, namespace string) error {
	envConfig, err := getEnvConfig(cfg)
	if err != nil {
		return fmt.Errorf("get env config: %w", err)
	}

	prefix := ""
	if namespace != "" {
		prefix = namespace + "_"
	}

	//nolint:exhaustruct
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if path := envConfig.ConfigFile; path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("decode config file %s: %w", path, err)
		}

		//nolint:exhaustruct
		if err := env.ParseWithOptions(cfg, env.Options{
			Prefix:              prefix,
			DefaultValueTagName: noDefaultTag,
		}); err != nil {
			return fmt.Errorf("parse env: %w", err)
		}

		envConfig.ConfigFile = path
	}

	envConfig.namespace = namespace

	return nil
}
