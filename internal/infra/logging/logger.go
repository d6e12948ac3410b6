package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

type (
	Logger  = *slog.Logger
	Handler = slog.Handler
	Level   = slog.Level
)

// LoggerConfig holds configuration parameters for logging.
type LoggerConfig struct {
	// AppName is attached to every entry as "app"; set by Configure
	AppName string `toml:"-"`

	// Output is "stdout", "stderr", "discard" or a file path opened for append
	Output string `env:"OUTPUT" envDefault:"stderr" toml:"output"`

	// Level is the default threshold, parsed by slog ("debug", "info", "warn+2", ...)
	Level string `env:"LEVEL" envDefault:"info" toml:"level"`

	// Filter overrides the threshold per logger name prefix ("svc.authsvc:debug,repo:warn")
	Filter string `env:"FILTER" envDefault:"" toml:"filter"`

	JSON  bool `env:"JSON" envDefault:"false" toml:"json"`
	Color bool `env:"COLOR" envDefault:"true" toml:"color"`

	// OutputHandle, when set, takes precedence over Output
	OutputHandle io.Writer `toml:"-"`
}

//nolint:gochecknoglobals
var (
	Group      = slog.Group
	GroupValue = slog.GroupValue

	current   settings
	currentMu sync.RWMutex
)

// settings is the resolved form of LoggerConfig shared by all GetLogger calls.
type settings struct {
	appName   string
	output    io.Writer
	level     slog.Level
	pkgLevels map[string]slog.Level
	json      bool
	color     bool
}

// Configure resolves cfg and makes it the configuration of every logger
// obtained afterwards. Loggers created before keep their old settings.
// An unusable output falls back to stderr and is reported there.
func Configure(ctx context.Context, cfg LoggerConfig, appName string) {
	resolved, err := resolve(cfg, appName)

	currentMu.Lock()
	current = resolved
	currentMu.Unlock()

	slog.SetLogLoggerLevel(resolved.level)

	log := GetLogger("infra.logging")
	if err != nil {
		log.WarnContext(ctx, "log output unavailable, using stderr", "error", err)
	}

	log.DebugContext(ctx, "logging configured", Group("config",
		"output", cfg.Output,
		"level", resolved.level.String(),
		"filter", cfg.Filter,
		"json", resolved.json,
		"color", resolved.color,
	))
}

func resolve(cfg LoggerConfig, appName string) (settings, error) {
	out := settings{
		appName:   appName,
		output:    cfg.OutputHandle,
		level:     parseLevel(cfg.Level, LevelInfo),
		pkgLevels: parseFilter(cfg.Filter),
		json:      cfg.JSON,
		color:     cfg.Color,
	}

	if out.output != nil {
		return out, nil
	}

	output, err := openOutput(cfg.Output)
	if err != nil {
		out.output = os.Stderr

		return out, err
	}

	out.output = output

	return out, nil
}

func openOutput(name string) (io.Writer, error) {
	switch name {
	case "", "discard":
		return io.Discard, nil
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	file, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return file, nil
}

// GetLogger returns a logger tagged with name under the current configuration.
// Before Configure is called all output is discarded.
func GetLogger(name string) Logger {
	currentMu.RLock()
	cfg := current
	currentMu.RUnlock()

	if cfg.output == nil || cfg.output == io.Discard {
		return NewNopLogger()
	}

	logger := slog.New(NewTracingHandler(newHandler(cfg)))

	if cfg.appName != "" {
		logger = logger.With("app", cfg.appName)
	}

	return logger.With("logger", name)
}

func newHandler(cfg settings) slog.Handler {
	if cfg.json {
		//nolint:exhaustruct
		return slog.NewJSONHandler(cfg.output, &slog.HandlerOptions{
			AddSource: true,
			Level:     cfg.level,
		})
	}

	//nolint:exhaustruct
	return &ConsoleHandler{
		Output:    cfg.output,
		Level:     cfg.level,
		PkgLevels: cfg.pkgLevels,
		Palette:   NewPalette(cfg.color),
	}
}

// GetLogLogger adapts logger for code that wants a *log.Logger, like http.Server.
func GetLogLogger(logger Logger, level Level) *log.Logger {
	return slog.NewLogLogger(logger.With("stdlog", true).Handler(), level)
}

// parseFilter reads "name:level" pairs; malformed pairs are skipped and
// unparseable levels mean debug.
func parseFilter(filter string) map[string]slog.Level {
	levels := make(map[string]slog.Level)

	for pair := range strings.SplitSeq(filter, ",") {
		name, level, ok := strings.Cut(pair, ":")
		if name = strings.TrimSpace(name); !ok || name == "" {
			continue
		}

		levels[name] = parseLevel(level, LevelDebug)
	}

	return levels
}

func parseLevel(text string, fallback Level) Level {
	var level slog.Level

	if err := level.UnmarshalText([]byte(strings.TrimSpace(text))); err != nil {
		return fallback
	}

	return level
}
