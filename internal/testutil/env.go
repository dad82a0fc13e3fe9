// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/l-e-x/leos-sub016/internal/grammar"
	"github.com/l-e-x/leos-sub016/internal/home"
	"github.com/l-e-x/leos-sub016/internal/svcctx"
)

// TestingT is the subset of testing.T the fixtures need.
type TestingT interface {
	Helper()
	Logf(format string, args ...any)
	TempDir() string
	Fatalf(format string, args ...any)
}

// logWriter routes log lines to t.Logf so they only show for failing or
// verbose tests.
type logWriter struct {
	t TestingT
}

func (w logWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// Logger returns a debug-level logger writing through t.
func Logger(t TestingT) *slog.Logger {
	return slog.New(slog.NewTextHandler(logWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Services returns services over a fresh home directory and the built-in
// templates. Extra sources take precedence over the built-ins.
func Services(t TestingT, sources ...fs.FS) *svcctx.Services {
	t.Helper()

	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create home: %v", err)
	}
	if err := h.EnsureExists(); err != nil {
		t.Fatalf("failed to create home: %v", err)
	}

	logger := Logger(t)
	return &svcctx.Services{
		Grammars: grammar.NewRegistry(logger, append(sources, grammar.Builtin())...),
		Logger:   logger,
		Home:     h,
	}
}

// Context returns a background context carrying Services(t).
func Context(t TestingT, sources ...fs.FS) context.Context {
	t.Helper()
	return svcctx.WithServices(context.Background(), Services(t, sources...))
}

// WriteFile writes content under dir, creating parent directories, and
// returns the full path.
func WriteFile(t TestingT, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
