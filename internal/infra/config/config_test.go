package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/mkrupp/homecase-accounts/internal/infra/config"
)

type testConfig struct {
	EnvConfig

	StringValue   string           `env:"STRING_VALUE" envDefault:"default" toml:"string_value"`
	IntValue      int              `env:"INT_VALUE" envDefault:"42" toml:"int_value"`
	BoolValue     bool             `env:"BOOL_VALUE" envDefault:"true" toml:"bool_value"`
	DurationValue time.Duration    `env:"DURATION_VALUE" envDefault:"5s" toml:"duration_value"`
	NoEnvTag      string           `toml:"-"`
	Nested        testNestedConfig `envPrefix:"NESTED_" toml:"nested"`
}

type testNestedConfig struct {
	NestedString string `env:"STRING" envDefault:"nested-default" toml:"string"`
}

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

//nolint:paralleltest
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		envVars map[string]string
		want    testConfig
		wantErr bool
	}{
		{
			name:    "uses default values when env vars not set",
			envVars: map[string]string{},
			want: testConfig{
				StringValue:   "default",
				IntValue:      42,
				BoolValue:     true,
				DurationValue: 5 * time.Second,
				Nested:        testNestedConfig{NestedString: "nested-default"},
			},
		},
		{
			name: "reads environment variables",
			envVars: map[string]string{
				"STRING_VALUE":   "env-value",
				"INT_VALUE":      "123",
				"BOOL_VALUE":     "false",
				"DURATION_VALUE": "1m",
				"NESTED_STRING":  "env-nested",
			},
			want: testConfig{
				StringValue:   "env-value",
				IntValue:      123,
				BoolValue:     false,
				DurationValue: time.Minute,
				Nested:        testNestedConfig{NestedString: "env-nested"},
			},
		},
		{
			name:   "handles prefix correctly",
			prefix: "APP",
			envVars: map[string]string{
				"APP_STRING_VALUE":  "prefixed-value",
				"APP_NESTED_STRING": "prefixed-nested",
				"STRING_VALUE":      "unprefixed",
			},
			want: testConfig{
				StringValue:   "prefixed-value",
				IntValue:      42,
				BoolValue:     true,
				DurationValue: 5 * time.Second,
				Nested:        testNestedConfig{NestedString: "prefixed-nested"},
			},
		},
		{
			name:    "fails on invalid int value",
			envVars: map[string]string{"INT_VALUE": "not-a-number"},
			wantErr: true,
		},
		{
			name:    "fails on invalid bool value",
			envVars: map[string]string{"BOOL_VALUE": "not-a-bool"},
			wantErr: true,
		},
		{
			name:    "fails on invalid duration value",
			envVars: map[string]string{"DURATION_VALUE": "soon"},
			wantErr: true,
		},
	}

	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := &testConfig{}
			err := Parse(ctx, cfg, tt.prefix)

			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want.StringValue, cfg.StringValue)
			assert.Equal(t, tt.want.IntValue, cfg.IntValue)
			assert.Equal(t, tt.want.BoolValue, cfg.BoolValue)
			assert.Equal(t, tt.want.DurationValue, cfg.DurationValue)
			assert.Equal(t, tt.want.NoEnvTag, cfg.NoEnvTag)
			assert.Equal(t, tt.want.Nested, cfg.Nested)
			assert.Equal(t, tt.prefix, cfg.Namespace())
		})
	}
}

//nolint:paralleltest
func TestParseConfigFile(t *testing.T) {
	path := writeFile(t, `
string_value = "from-file"
int_value = 7

[nested]
string = "nested-from-file"
`)

	t.Setenv("APP_CONFIG_FILE", path)
	t.Setenv("APP_INT_VALUE", "8")

	cfg := &testConfig{}
	require.NoError(t, Parse(context.Background(), cfg, "APP"))

	assert.Equal(t, "from-file", cfg.StringValue, "file overrides default")
	assert.Equal(t, 8, cfg.IntValue, "env overrides file")
	assert.True(t, cfg.BoolValue, "default kept when neither file nor env set it")
	assert.Equal(t, "nested-from-file", cfg.Nested.NestedString)
	assert.Equal(t, path, cfg.ConfigFile)
}

//nolint:paralleltest
func TestParseConfigFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("APP_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

		require.Error(t, Parse(context.Background(), &testConfig{}, "APP"))
	})

	t.Run("malformed file", func(t *testing.T) {
		t.Setenv("APP_CONFIG_FILE", writeFile(t, "string_value = "))

		require.Error(t, Parse(context.Background(), &testConfig{}, "APP"))
	})
}

func TestParseInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  any
	}{
		{name: "non-pointer config", cfg: testConfig{}},
		{name: "non-struct pointer", cfg: new(string)},
		{
			name: "missing EnvConfig embedding",
			cfg: &struct {
				Value string `env:"VALUE"`
			}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Parse(context.Background(), tt.cfg, "")
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
