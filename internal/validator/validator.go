// Package validator decides whether an element type may be placed at a
// drop location, according to a template's structure grammar.
//
// The same predicate serves live drag feedback and commit-time checks, so it
// is pure: identical arguments against the same grammar always give the same
// answer, and calls may run concurrently.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/l-e-x/leos-sub016/internal/grammar"
)

// ErrPlacement is matched by every *Violation.
var ErrPlacement = errors.New("placement not allowed")

// Position says how a dragged element relates to the drop reference node.
type Position int

const (
	// Into inserts as a child of the reference node.
	Into Position = iota
	// After inserts as the following sibling of the reference node.
	After
	// Before inserts as the preceding sibling of the reference node.
	Before
)

func (p Position) String() string {
	switch p {
	case Into:
		return "into"
	case After:
		return "after"
	case Before:
		return "before"
	default:
		return fmt.Sprintf("position(%d)", int(p))
	}
}

// ParsePosition converts "into", "after" or "before" to a Position.
func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "into", "child":
		return Into, nil
	case "after", "sibling":
		return After, nil
	case "before":
		return Before, nil
	default:
		return Into, fmt.Errorf("unknown drop position %q", s)
	}
}

// Target describes the drop reference node: its own type and the type of its
// parent in the document model. An empty ParentType means the reference sits
// at the top level of the document.
type Target struct {
	Type       string
	ParentType string
}

// Violation explains a rejected placement.
type Violation struct {
	Type     string
	Parent   string
	Position Position
	Allowed  []string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s may not be placed in %s (allowed: %s)",
		v.Type, v.Parent, strings.Join(v.Allowed, ", "))
}

func (v *Violation) Is(target error) bool {
	return target == ErrPlacement
}

// Validator evaluates placements against one grammar.
type Validator struct {
	g *grammar.Grammar
}

// New creates a validator for g.
func New(g *grammar.Grammar) *Validator {
	return &Validator{g: g}
}

// Grammar returns the grammar the validator reads.
func (v *Validator) Grammar() *grammar.Grammar {
	return v.g
}

// ResolveParent returns the type whose allowed-children list governs the
// placement. Dropping into a node is governed by that node's type; dropping
// beside a node is governed by the node's own parent, one level up.
func (v *Validator) ResolveParent(target Target, pos Position) string {
	parent := target.Type
	if pos != Into {
		parent = target.ParentType
	}
	if parent == "" {
		parent = v.g.Root()
	}
	return parent
}

// CanPlace reports whether an element of type dragged may be dropped at
// target with the given position.
func (v *Validator) CanPlace(dragged string, target Target, pos Position) bool {
	parent := v.ResolveParent(target, pos)
	if v.g.IsWildcardRelation(parent) {
		return true
	}
	return v.g.Allows(parent, dragged)
}

// Check is CanPlace with an explanation: it returns nil when the placement is
// allowed and a *Violation otherwise.
func (v *Validator) Check(dragged string, target Target, pos Position) error {
	if v.CanPlace(dragged, target, pos) {
		return nil
	}
	parent := v.ResolveParent(target, pos)
	children := v.g.AllowedChildren(parent)
	allowed := make([]string, 0, len(children))
	for _, c := range children {
		allowed = append(allowed, c.ID)
	}
	return &Violation{
		Type:     dragged,
		Parent:   parent,
		Position: pos,
		Allowed:  allowed,
	}
}

// AllowedAt lists the types that may be dropped at target, in grammar order.
// Wildcard relations return every declared type.
func (v *Validator) AllowedAt(target Target, pos Position) []string {
	parent := v.ResolveParent(target, pos)
	var types []grammar.ElementType
	if v.g.IsWildcardRelation(parent) {
		types = v.g.Types()
	} else {
		types = v.g.AllowedChildren(parent)
	}
	ids := make([]string, 0, len(types))
	for _, t := range types {
		ids = append(ids, t.ID)
	}
	return ids
}
