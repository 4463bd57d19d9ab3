package logging

import (
	"context"
	"log/slog"
)

// MultiHandler duplicates every record to a set of underlying handlers,
// so the server can log to stdout and the database at the same time.
// Handlers that report the record's level as disabled are skipped.
type MultiHandler struct {
	targets []slog.Handler
}

func NewMultiHandler(targets ...slog.Handler) *MultiHandler {
	return &MultiHandler{targets: targets}
}

// Enabled reports whether at least one target would accept the level.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, t := range m.targets {
		if t.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle forwards the record to every enabled target. It stops at the
// first target error so a broken sink surfaces instead of being eaten.
func (m *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, t := range m.targets {
		if !t.Enabled(ctx, record.Level) {
			continue
		}
		if err := t.Handle(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MultiHandler{targets: m.fork(func(t slog.Handler) slog.Handler {
		return t.WithAttrs(attrs)
	})}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	return &MultiHandler{targets: m.fork(func(t slog.Handler) slog.Handler {
		return t.WithGroup(name)
	})}
}

func (m *MultiHandler) fork(derive func(slog.Handler) slog.Handler) []slog.Handler {
	out := make([]slog.Handler, len(m.targets))
	for i, t := range m.targets {
		out[i] = derive(t)
	}
	return out
}
