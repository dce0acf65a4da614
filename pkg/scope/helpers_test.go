package scope

import (
	"log/slog"
	"testing"

	"github.com/funvibe/langkit/pkg/ident"
)

func nm(name string) ident.Identifier { return ident.New(name) }

// newTestLogger routes arena tracing to t.Log so it shows up with -v or on failure.
func newTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}
