// Package handlers provides wrappers applied to plugin handlers at
// registration time.
package handlers

import (
	"log/slog"
	"time"

	"github.com/alphabot-dev/alphabot/alphabot/plugin"
)

const slowThreshold = 2 * time.Second

// WrapWithLogging wraps a handler with start/completion logging. There is no
// hard timeout: long-running handlers are legal and stop cooperatively
// through their cancellation token.
func WrapWithLogging(name string, h plugin.HandlerFunc) plugin.HandlerFunc {
	return func(c *plugin.Ctx) error {
		start := time.Now()

		slog.Debug("Command started",
			slog.String("type", "cmd"),
			slog.String("name", name),
			slog.String("user_id", c.Event.SenderID),
			slog.String("thread_id", c.Event.ThreadID),
		)

		err := h(c)
		duration := time.Since(start)

		attrs := []any{
			slog.String("type", "cmd"),
			slog.String("name", name),
			slog.String("user_id", c.Event.SenderID),
			slog.Duration("took", duration),
		}

		switch {
		case err != nil:
			slog.Error("Command failed", append(attrs,
				slog.Any("error", err),
				slog.String("status", "failed"),
			)...)
		case duration > slowThreshold:
			slog.Warn("Command executed slowly", append(attrs,
				slog.String("status", "slow"),
			)...)
		default:
			slog.Info("Command completed", append(attrs,
				slog.String("status", "success"),
			)...)
		}
		return err
	}
}
