// Package session runs document-edit sessions over a table of contents.
//
// A session owns one toc.Tree for the lifetime of an edit. It serializes
// mutations with a per-session lock, so callers on different goroutines can
// share it, and hands the flat structure plus the ids it touched back on
// commit.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/l-e-x/leos-sub016/internal/grammar"
	"github.com/l-e-x/leos-sub016/internal/numbering"
	"github.com/l-e-x/leos-sub016/internal/svcctx"
	"github.com/l-e-x/leos-sub016/internal/toc"
	"github.com/l-e-x/leos-sub016/internal/validator"
)

// ErrClosed is returned by operations on a committed or discarded session.
var ErrClosed = errors.New("session closed")

// ErrNotFound is returned when a session id is unknown to the manager.
var ErrNotFound = errors.New("session not found")

// Result is what a committed session hands back to storage.
type Result struct {
	SessionID string     `yaml:"session" json:"session"`
	Template  string     `yaml:"template" json:"template"`
	Items     []toc.Item `yaml:"items" json:"items"`
	Changed   []string   `yaml:"changed" json:"changed"`
}

// Document returns the committed structure in its stored form.
func (r *Result) Document() *Document {
	return &Document{Template: r.Template, Items: r.Items}
}

// Manager tracks open sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Open resolves the grammar of template, assembles the tree from items and
// registers a new session. Grammar and logger come from the service context.
func (m *Manager) Open(ctx context.Context, template string, items []toc.Item) (*Session, error) {
	logger := svcctx.LoggerFrom(ctx)

	g, err := svcctx.GrammarsFrom(ctx).Load(template)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s document: %w", template, err)
	}
	tree, err := toc.FromFlat(g, items)
	if err != nil {
		logger.Warn("document structure rejected", "template", template, "error", err)
		return nil, fmt.Errorf("failed to build structure: %w", err)
	}

	id := uuid.New().String()
	s := &Session{
		id:      id,
		g:       g,
		tree:    tree,
		engine:  numbering.New(g),
		logger:  logger.With("session", id, "template", template),
		release: m.release,
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	s.logger.Info("edit session opened", "nodes", tree.Len())
	return s, nil
}

// Get returns an open session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Session is one document-edit session.
type Session struct {
	mu      sync.Mutex
	id      string
	g       *grammar.Grammar
	tree    *toc.Tree
	engine  *numbering.Engine
	logger  *slog.Logger
	closed  bool
	release func(string)
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Grammar returns the template grammar of the session.
func (s *Session) Grammar() *grammar.Grammar {
	return s.g
}

// Validator returns the placement validator of the session's grammar.
func (s *Session) Validator() *validator.Validator {
	return s.tree.Validator()
}

// Target describes the node refID as a drop reference.
func (s *Session) Target(refID string) (validator.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Target(refID)
}

// CanPlace answers a live drag query relative to the node refID.
func (s *Session) CanPlace(dragged, refID string, pos validator.Position) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.CanPlace(dragged, refID, pos)
}

// Insert adds a node. An empty node id is replaced by a generated one, which
// is returned.
func (s *Session) Insert(n toc.Node, parentID string, position int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	return s.insert(n, parentID, position)
}

// InsertAt adds a node relative to the reference node refID, with the same
// reference semantics as Drop.
func (s *Session) InsertAt(n toc.Node, refID string, pos validator.Position) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	parentID, position, err := s.dropLocation(n.ID, refID, pos)
	if err != nil {
		s.rejected("insert", n.ID, err)
		return "", err
	}
	return s.insert(n, parentID, position)
}

func (s *Session) insert(n toc.Node, parentID string, position int) (string, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if err := s.tree.Insert(n, parentID, position); err != nil {
		s.rejected("insert", n.ID, err)
		return "", err
	}
	s.logger.Info("structure edit applied", "op", "insert", "node", n.ID, "type", n.Type, "parent", parentID)
	return n.ID, nil
}

// Move re-parents a node.
func (s *Session) Move(id, newParentID string, newPosition int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.move(id, newParentID, newPosition)
}

// Drop moves id relative to the reference node refID, the way a drag
// gesture expresses it: into refID as its last child, or beside it.
func (s *Session) Drop(id, refID string, pos validator.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	parentID, position, err := s.dropLocation(id, refID, pos)
	if err != nil {
		s.rejected("move", id, err)
		return err
	}
	return s.move(id, parentID, position)
}

func (s *Session) move(id, newParentID string, newPosition int) error {
	if err := s.tree.Move(id, newParentID, newPosition); err != nil {
		s.rejected("move", id, err)
		return err
	}
	s.logger.Info("structure edit applied", "op", "move", "node", id, "parent", newParentID, "position", newPosition)
	return nil
}

func (s *Session) dropLocation(id, refID string, pos validator.Position) (string, int, error) {
	if pos == validator.Into {
		return refID, toc.Append, nil
	}
	ref, ok := s.tree.Node(refID)
	if !ok {
		return "", 0, &toc.UnknownNodeError{Op: "drop", ID: refID}
	}
	position := ref.Position
	if pos == validator.After {
		position++
	}
	// Taking id out of the same sibling list shifts later positions down.
	if moving, ok := s.tree.Node(id); ok && moving.ParentID == ref.ParentID && moving.Position < position {
		position--
	}
	return ref.ParentID, position, nil
}

// Remove deletes a node and its subtree.
func (s *Session) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.tree.Remove(id); err != nil {
		s.rejected("remove", id, err)
		return err
	}
	s.logger.Info("structure edit applied", "op", "remove", "node", id)
	return nil
}

// SetNumber changes the explicit number text of a node.
func (s *Session) SetNumber(id, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.tree.SetNumber(id, number); err != nil {
		s.rejected("renumber", id, err)
		return err
	}
	return nil
}

// Labels returns the display label of every node for locale.
func (s *Session) Labels(locale string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.LabelTree(s.tree, locale)
}

// Summary counts nodes per type and renders each count with its
// pluralized type name, e.g. "12 articles".
func (s *Session) Summary(locale string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, it := range s.tree.Flatten() {
		counts[it.Type]++
	}
	out := make(map[string]string, len(counts))
	for typ, n := range counts {
		out[typ] = s.engine.Summary(typ, n, locale)
	}
	return out
}

// Snapshot returns the current flat structure without closing the session.
func (s *Session) Snapshot() []toc.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Flatten()
}

// Commit closes the session and returns the flat structure together with
// the ids touched during the session.
func (s *Session) Commit() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.close()

	res := &Result{
		SessionID: s.id,
		Template:  s.g.Template(),
		Items:     s.tree.Flatten(),
		Changed:   s.tree.Changes(),
	}
	s.logger.Info("edit session committed", "nodes", len(res.Items), "changed", len(res.Changed))
	return res, nil
}

// Discard closes the session without producing a result.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.close()
	s.logger.Info("edit session discarded")
}

func (s *Session) close() {
	s.closed = true
	if s.release != nil {
		s.release(s.id)
	}
}

func (s *Session) rejected(op, id string, err error) {
	s.logger.Warn("structure edit rejected", "op", op, "node", id, "error", err)
}
