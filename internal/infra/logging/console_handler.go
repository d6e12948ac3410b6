package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Palette holds the colors used by ConsoleHandler.
type Palette struct {
	Levels    map[slog.Level]*color.Color
	Muted     *color.Color
	Underline *color.Color
}

// NewPalette returns the default console colors. When enabled is false every
// color renders as plain text, which keeps output readable in files and pipes.
func NewPalette(enabled bool) Palette {
	palette := Palette{
		Levels: map[slog.Level]*color.Color{
			slog.LevelDebug: color.New(color.FgCyan),
			slog.LevelInfo:  color.New(color.FgGreen),
			slog.LevelWarn:  color.New(color.FgYellow),
			slog.LevelError: color.New(color.FgRed, color.Bold),
		},
		Muted:     color.New(color.FgHiBlack),
		Underline: color.New(color.Underline),
	}

	for _, c := range palette.all() {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return palette
}

func (p Palette) all() []*color.Color {
	colors := []*color.Color{p.Muted, p.Underline}
	for _, c := range p.Levels {
		colors = append(colors, c)
	}

	return colors
}

func (p Palette) level(level slog.Level) *color.Color {
	if c, ok := p.Levels[level]; ok {
		return c
	}

	return p.Muted
}

// ConsoleHandler implements slog.Handler to format log records with colors
// and human-readable output suitable for development environments.
type ConsoleHandler struct {
	// Output is the destination for log output (typically os.Stdout or os.Stderr)
	Output io.Writer
	// Level is the minimum level for log records to be processed
	Level slog.Leveler
	// PkgLevels maps logger names to minimum log levels
	PkgLevels map[string]slog.Level
	// Palette selects the colors; the zero value is replaced by NewPalette(false)
	Palette Palette

	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*ConsoleHandler)(nil)

// Handle implements slog.Handler by formatting the log record with colors,
// timestamps, and source file information.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	palette := h.Palette
	if palette.Levels == nil {
		palette = NewPalette(false)
	}

	var attrs []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	attrs = append(attrs, h.attrs...)

	if !h.pkgEnabled(loggerName(attrs), r.Level) {
		return nil
	}

	var msg strings.Builder

	msg.WriteString(palette.Muted.Sprint(r.Time.Format("15:04:05.000000")))
	msg.WriteString(" " + palette.level(r.Level).Sprint("["+r.Level.String()+"]"))
	msg.WriteString(" " + r.Message)

	var prefix string

	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	if len(attrs) > 0 {
		msg.WriteString(" " + palette.Muted.Sprint("|"))
		h.renderAttrs(&msg, palette, prefix, attrs)
	}

	if r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		fn := strings.Split(f.Function, string(os.PathSeparator))

		msg.WriteString("\n-> " + palette.Muted.Sprint(fn[len(fn)-1]+"()"))
		msg.WriteString(" in " + palette.Underline.Sprint(f.File+":"+strconv.Itoa(f.Line)))
	}

	if _, err := fmt.Fprintln(h.Output, msg.String()); err != nil {
		return fmt.Errorf("write log record: %w", err)
	}

	return nil
}

func loggerName(attrs []slog.Attr) string {
	for _, attr := range attrs {
		if attr.Key == "logger" {
			return attr.Value.String()
		}
	}

	return ""
}

// pkgThreshold walks the dotted logger name from most to least specific and
// returns the first matching filter level. The empty key is the catch-all.
func (h *ConsoleHandler) pkgThreshold(name string) (slog.Level, bool) {
	parts := strings.Split(name, ".")

	for i := 0; i <= len(parts); i++ {
		var key string
		if i < len(parts) {
			key = strings.Join(parts[:len(parts)-i], ".")
		}

		if threshold, ok := h.PkgLevels[key]; ok {
			return threshold, true
		}
	}

	return 0, false
}

func (h *ConsoleHandler) pkgEnabled(name string, level slog.Level) bool {
	if threshold, ok := h.pkgThreshold(name); ok {
		return level >= threshold
	}

	return h.Level.Level() <= level
}

func (h *ConsoleHandler) renderAttrs(out *strings.Builder, palette Palette, prefix string, attrs []slog.Attr) {
	for _, attr := range attrs {
		if attr.Value.Kind() == slog.KindGroup {
			h.renderAttrs(out, palette, prefix+attr.Key+".", attr.Value.Group())

			continue
		}

		out.WriteString(" " + prefix + attr.Key)
		out.WriteString("=" + palette.Muted.Sprint(attr.Value.String()))
	}
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) Handler {
	return &ConsoleHandler{
		Output:    h.Output,
		Level:     h.Level,
		PkgLevels: h.PkgLevels,
		Palette:   h.Palette,
		attrs:     append(append([]slog.Attr{}, h.attrs...), attrs...),
		groups:    h.groups,
	}
}

// WithGroup implements slog.Handler.WithGroup.
func (h *ConsoleHandler) WithGroup(name string) Handler {
	return &ConsoleHandler{
		Output:    h.Output,
		Level:     h.Level,
		PkgLevels: h.PkgLevels,
		Palette:   h.Palette,
		attrs:     h.attrs,
		groups:    append(append([]string{}, h.groups...), name),
	}
}

// Enabled implements slog.Handler.Enabled. A filter entry matching the
// logger name overrides Level in either direction.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	if name := loggerName(h.attrs); name != "" {
		return h.pkgEnabled(name, level)
	}

	if len(h.PkgLevels) > 0 {
		// the name may still arrive with the record
		return true
	}

	return h.Level.Level() <= level
}
