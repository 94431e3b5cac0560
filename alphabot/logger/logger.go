package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeCommand   LogType = "CMD"
	TypeDB        LogType = "DB"
	TypeSystem    LogType = "SYS"
	TypeError     LogType = "ERR"
	TypeWeb       LogType = "WEB"
	TypeTransport LogType = "FCA"
)

// Handler is a colorized terminal slog.Handler shared by the bot and the
// web panel. The tag distinguishes the two processes in combined output.
type Handler struct {
	opts  *slog.HandlerOptions
	tag   string
	attrs []slog.Attr
}

func NewHandler(tag string) *Handler {
	if tag == "" {
		tag = "Alphabot"
	}
	return &Handler{
		opts: &slog.HandlerOptions{Level: slog.LevelDebug},
		tag:  tag,
	}
}

// SetLevel raises or lowers the minimum logged level.
func (h *Handler) SetLevel(level slog.Level) {
	h.opts.Level = level
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		opts:  h.opts,
		tag:   h.tag,
		attrs: append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
	}
}

func (h *Handler) WithGroup(string) slog.Handler { return h }

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	if shouldSkipLog(&r) {
		return nil
	}

	var levelColor, levelText string
	switch r.Level {
	case slog.LevelDebug:
		levelColor, levelText = colorPurple, "DEBUG"
	case slog.LevelInfo:
		levelColor, levelText = colorGreen, "INFO"
	case slog.LevelWarn:
		levelColor, levelText = colorYellow, "WARN"
	default:
		levelColor, levelText = colorRed, "ERROR"
	}

	message := r.Message
	if name, user := attrString(&r, "name"), attrString(&r, "user_id"); name != "" && user != "" {
		message = fmt.Sprintf("%s [%s by %s]", message, name, user)
	}
	if status := attrString(&r, "status"); status != "" {
		message = fmt.Sprintf("%s [Status: %s]", message, status)
	}
	if errText := attrString(&r, "error"); errText != "" && r.Level >= slog.LevelWarn {
		message = fmt.Sprintf("%s: %s", message, errText)
	}

	var attrsStr strings.Builder
	collect := func(a slog.Attr) bool {
		if !isInternalAttr(a.Key) {
			fmt.Fprintf(&attrsStr, " %s=%v", a.Key, a.Value)
		}
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	fmt.Printf("%s[%s] [%s] [%s%s%s] [%s] %s%s%s\n",
		colorWhite,
		h.tag,
		r.Time.Format(time.TimeOnly),
		levelColor,
		levelText,
		colorWhite,
		getLogType(&r),
		message,
		attrsStr.String(),
		colorReset,
	)

	return nil
}

// shouldSkipLog drops high-volume transport chatter that drowns real output.
func shouldSkipLog(r *slog.Record) bool {
	skippedMessages := []string{
		"mqtt ping",
		"mqtt packet received",
		"presence update",
		"typing indicator",
		"delivery receipt",
		"read receipt",
	}

	lower := strings.ToLower(r.Message)
	for _, skip := range skippedMessages {
		if strings.Contains(lower, skip) {
			return true
		}
	}
	return false
}

func getLogType(r *slog.Record) LogType {
	logType := TypeSystem
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "type" {
			switch a.Value.String() {
			case "cmd":
				logType = TypeCommand
			case "db":
				logType = TypeDB
			case "error":
				logType = TypeError
			case "web":
				logType = TypeWeb
			case "fca":
				logType = TypeTransport
			}
			return false
		}
		return true
	})
	return logType
}

func attrString(r *slog.Record, key string) string {
	var v string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			v = a.Value.String()
			return false
		}
		return true
	})
	return v
}

func isInternalAttr(key string) bool {
	switch key {
	case "type", "name", "user_id", "status", "error":
		return true
	}
	return false
}
