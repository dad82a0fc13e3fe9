package grammar

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// resourceExt is the file extension of structure-definition resources.
const resourceExt = ".yaml"

// Builtin returns the structure definitions shipped with the binary.
func Builtin() fs.FS {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(fmt.Sprintf("grammar: embedded templates missing: %v", err))
	}
	return sub
}

// Registry resolves template ids to grammars. Each template is parsed once on
// first use and the resulting Grammar is shared from then on. Failed loads
// are not cached, so a fixed resource can be retried.
type Registry struct {
	mu       sync.RWMutex
	grammars map[string]*Grammar
	sources  []fs.FS
	logger   *slog.Logger
}

// NewRegistry creates a registry reading <template>.yaml resources from the
// given sources. Earlier sources take precedence over later ones.
func NewRegistry(logger *slog.Logger, sources ...fs.FS) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		grammars: make(map[string]*Grammar),
		sources:  sources,
		logger:   logger,
	}
}

// Load returns the grammar for a template, parsing it on first use.
func (r *Registry) Load(template string) (*Grammar, error) {
	r.mu.RLock()
	g, ok := r.grammars[template]
	r.mu.RUnlock()
	if ok {
		return g, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have populated it while we waited for the lock.
	if g, ok := r.grammars[template]; ok {
		return g, nil
	}

	data, err := r.read(template)
	if err != nil {
		return nil, err
	}

	g, err = Parse(template, data)
	if err != nil {
		r.logger.Error("structure definition rejected", "template", template, "error", err)
		return nil, err
	}

	r.grammars[template] = g
	r.logger.Info("structure grammar loaded",
		"template", template,
		"types", len(g.types),
		"relations", g.RelationCount())
	return g, nil
}

// Loaded reports whether a template has already been parsed.
func (r *Registry) Loaded(template string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.grammars[template]
	return ok
}

// Templates lists the template ids available across all sources.
func (r *Registry) Templates() ([]string, error) {
	r.mu.RLock()
	sources := r.sources
	r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, src := range sources {
		matches, err := fs.Glob(src, "*"+resourceExt)
		if err != nil {
			return nil, fmt.Errorf("failed to list templates: %w", err)
		}
		for _, m := range matches {
			seen[strings.TrimSuffix(m, resourceExt)] = true
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Reset replaces the sources and drops every cached grammar, so the next
// Load of each template reads it again. Grammars handed out earlier stay
// valid for their holders.
func (r *Registry) Reset(sources ...fs.FS) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = sources
	r.grammars = make(map[string]*Grammar)
	r.logger.Info("structure grammar sources replaced", "sources", len(sources))
}

func (r *Registry) read(template string) ([]byte, error) {
	if template == "" || strings.ContainsAny(template, `/\`) || !fs.ValidPath(template) {
		return nil, definitionError(template, ErrUnknownTemplate, "invalid template id")
	}

	name := path.Clean(template) + resourceExt
	for _, src := range r.sources {
		data, err := fs.ReadFile(src, name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, definitionError(template, err, "failed to read resource")
		}
	}
	return nil, definitionError(template, ErrUnknownTemplate, "no resource found")
}

// Global registry instance and initialization guard.
var (
	globalRegistry *Registry
	globalOnce     sync.Once
)

// Global returns the process-wide registry over the built-in templates.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry(nil, Builtin())
	})
	return globalRegistry
}

// InitGlobal installs a custom process-wide registry.
// Must be called before any call to Global() to take effect.
func InitGlobal(r *Registry) {
	globalOnce.Do(func() {
		globalRegistry = r
	})
}
