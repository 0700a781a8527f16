package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// consoleHidden lists keys the console stream drops; the JSON log file keeps
// them.
var consoleHidden = map[string]bool{
	FieldRunID:     true,
	FieldEventType: true,
}

// prettyHandler writes one line per record:
//
//	15:04:05 WARN  emitter: [AB/21/1] content not in an approved format ext=.doc
type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []field
	prefix    string
	addSource bool
	colorize  bool
}

type field struct {
	key   string
	value slog.Value
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource, colorize bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource, colorize: colorize}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	fields := append([]field(nil), h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendField(fields, h.prefix, attr)
		return true
	})

	var component, root string
	rest := fields[:0]
	for _, f := range fields {
		switch {
		case f.key == FieldComponent:
			component = f.value.String()
		case f.key == FieldRootID:
			root = f.value.String()
		case f.key == FieldExportFile:
			rest = append(rest, field{key: "export", value: slog.StringValue(filepath.Base(f.value.String()))})
		case consoleHidden[f.key]:
		default:
			rest = append(rest, f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var buf bytes.Buffer
	buf.WriteString(ts.Local().Format(time.TimeOnly))
	buf.WriteByte(' ')
	label := fmt.Sprintf("%-5s", levelLabel(record.Level))
	if h.colorize {
		label = levelColor(record.Level).Sprint(label)
	}
	buf.WriteString(label)
	buf.WriteByte(' ')
	if component != "" {
		buf.WriteString(component)
		buf.WriteString(": ")
	}
	if root != "" {
		buf.WriteString("[" + root + "] ")
	}
	if msg := strings.TrimSpace(record.Message); msg != "" {
		buf.WriteString(msg)
	} else {
		buf.WriteString("(no message)")
	}
	for _, f := range rest {
		buf.WriteByte(' ')
		buf.WriteString(f.key)
		buf.WriteByte('=')
		buf.WriteString(formatValue(f.value))
	}
	if h.addSource {
		if src := record.Source(); src != nil {
			fmt.Fprintf(&buf, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]field(nil), h.attrs...)
	for _, attr := range attrs {
		clone.attrs = appendField(clone.attrs, h.prefix, attr)
	}
	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// appendField flattens groups into dotted keys.
func appendField(dst []field, prefix string, attr slog.Attr) []field {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = prefix + attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			dst = appendField(dst, next, member)
		}
		return dst
	}
	return append(dst, field{key: prefix + attr.Key, value: attr.Value})
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			s = x.Error()
		case []string:
			s = strings.Join(x, ",")
		default:
			s = fmt.Sprint(x)
		}
	default:
		s = v.String()
	}
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	return s == "" || strings.ContainsFunc(s, func(r rune) bool {
		return r <= ' ' || r == '=' || r == '"'
	})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func levelColor(level slog.Level) *color.Color {
	var c *color.Color
	switch {
	case level >= slog.LevelError:
		c = color.New(color.FgRed, color.Bold)
	case level >= slog.LevelWarn:
		c = color.New(color.FgYellow)
	case level >= slog.LevelInfo:
		c = color.New(color.FgGreen)
	default:
		c = color.New(color.FgHiBlack)
	}
	c.EnableColor()
	return c
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
