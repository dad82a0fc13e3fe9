package svcctx

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/l-e-x/leos-sub016/internal/grammar"
	"github.com/l-e-x/leos-sub016/internal/home"
)

func TestExtractors_Empty(t *testing.T) {
	ctx := context.Background()

	if ServicesFrom(ctx) != nil {
		t.Error("expected nil services")
	}
	if ConfigFrom(ctx) != nil {
		t.Error("expected nil config")
	}
	if HomeFrom(ctx) != nil {
		t.Error("expected nil home")
	}
	if LoggerFrom(ctx) != slog.Default() {
		t.Error("expected default logger")
	}
	if GrammarsFrom(ctx) != grammar.Global() {
		t.Error("expected global registry")
	}
}

func TestExtractors_WithServices(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := grammar.NewRegistry(logger, grammar.Builtin())
	dir, _ := home.New(t.TempDir())

	ctx := WithServices(context.Background(), &Services{
		Grammars: registry,
		Logger:   logger,
		Home:     dir,
	})

	if LoggerFrom(ctx) != logger {
		t.Error("expected attached logger")
	}
	if GrammarsFrom(ctx) != registry {
		t.Error("expected attached registry")
	}
	if HomeFrom(ctx) != dir {
		t.Error("expected attached home")
	}
}
