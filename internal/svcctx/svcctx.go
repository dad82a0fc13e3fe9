// Package svcctx provides service context for dependency injection via context.
// This package is separate from session to avoid import cycles with the CLI.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/l-e-x/leos-sub016/internal/config"
	"github.com/l-e-x/leos-sub016/internal/grammar"
	"github.com/l-e-x/leos-sub016/internal/home"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Config   *config.Manager
	Grammars *grammar.Registry
	Logger   *slog.Logger
	Home     *home.Dir
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// ConfigFrom extracts the config manager from context.
func ConfigFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Config
	}
	return nil
}

// GrammarsFrom extracts the grammar registry from context, falling back to
// the process-wide registry.
func GrammarsFrom(ctx context.Context) *grammar.Registry {
	if s := ServicesFrom(ctx); s != nil && s.Grammars != nil {
		return s.Grammars
	}
	return grammar.Global()
}

// LoggerFrom extracts the logger from context.
// Returns slog.Default() if none is attached.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
