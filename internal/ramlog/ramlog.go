// Package ramlog wraps go.uber.org/zap with the handful of structured
// events the driver (C9) emits when logging is enabled (cmd/ramc enables
// it with the profile option), replacing ad hoc fmt.Println-based
// Database.dump() tracing with structured fields.
package ramlog

import "go.uber.org/zap"

// Logger is the translator's narrow logging surface; callers never touch
// *zap.Logger directly so the dependency stays swappable at this seam.
type Logger struct {
	z *zap.Logger
}

// New builds a Logger. enabled selects a production (info-level) core;
// when false, a no-op logger is used so the profile-off path costs
// nothing.
func New(enabled bool) *Logger {
	if !enabled {
		return &Logger{z: zap.NewNop()}
	}
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

func (l *Logger) SCCStart(index int, recursive bool, relations []string) {
	l.z.Info("scc.start",
		zap.Int("scc", index),
		zap.Bool("recursive", recursive),
		zap.Strings("relations", relations),
	)
}

func (l *Logger) SCCDone(index int) {
	l.z.Info("scc.done", zap.Int("scc", index))
}

func (l *Logger) Round(scc int, iteration int) {
	l.z.Debug("scc.round", zap.Int("scc", scc), zap.Int("iteration", iteration))
}

func (l *Logger) Sync() { _ = l.z.Sync() }
