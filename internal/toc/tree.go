// Package toc holds the in-memory table of contents of one document: an
// arena of nodes keyed by id, with ordered child id lists and parent
// back-references.
//
// A Tree is not safe for concurrent mutation. Callers serialize writers;
// readers may share a tree that is not being mutated.
package toc

import (
	"sort"

	"github.com/l-e-x/leos-sub016/internal/grammar"
	"github.com/l-e-x/leos-sub016/internal/validator"
)

// Append may be passed as a position to place a node after its last sibling.
const Append = -1

// Item is one entry of the flat structure form exchanged with storage.
type Item struct {
	ID       string `yaml:"id" json:"id"`
	Type     string `yaml:"type" json:"type"`
	Number   string `yaml:"number,omitempty" json:"number,omitempty"`
	ParentID string `yaml:"parent,omitempty" json:"parent,omitempty"`
	Position int    `yaml:"position" json:"position"`
	Heading  string `yaml:"heading,omitempty" json:"heading,omitempty"`
}

// Node is a structural element of the document.
type Node struct {
	ID      string
	Type    string
	Number  string // explicit number text as entered by the author
	Heading string

	ParentID string // empty for top-level nodes
	Position int    // 0-based index among siblings
	Children []string
}

func (n *Node) clone() *Node {
	c := *n
	c.Children = append([]string(nil), n.Children...)
	return &c
}

// Tree is the structure of one document.
type Tree struct {
	g       *grammar.Grammar
	v       *validator.Validator
	nodes   map[string]*Node
	roots   []string
	changes map[string]struct{}
}

func newTree(g *grammar.Grammar) *Tree {
	return &Tree{
		g:       g,
		v:       validator.New(g),
		nodes:   make(map[string]*Node),
		changes: make(map[string]struct{}),
	}
}

// FromFlat assembles a tree from its flat form. Siblings are ordered by
// position, ties broken by input order, and renumbered contiguously.
// Every node must be legally nested under its parent.
func FromFlat(g *grammar.Grammar, items []Item) (*Tree, error) {
	t := newTree(g)

	for _, it := range items {
		if it.ID == "" {
			return nil, &UnknownNodeError{Op: "build", ID: it.ID}
		}
		if _, dup := t.nodes[it.ID]; dup {
			return nil, &DuplicateNodeError{Op: "build", ID: it.ID}
		}
		t.nodes[it.ID] = &Node{
			ID:       it.ID,
			Type:     it.Type,
			Number:   it.Number,
			Heading:  it.Heading,
			ParentID: it.ParentID,
			Position: it.Position,
		}
	}

	// Group by parent keeping input order, then sort stably by position.
	for _, it := range items {
		if it.ParentID == "" {
			t.roots = append(t.roots, it.ID)
			continue
		}
		parent, ok := t.nodes[it.ParentID]
		if !ok {
			return nil, &UnknownNodeError{Op: "build", ID: it.ParentID}
		}
		parent.Children = append(parent.Children, it.ID)
	}
	t.sortByPosition(t.roots)
	for _, n := range t.nodes {
		t.sortByPosition(n.Children)
	}

	// Nodes unreachable from the roots sit on a parent cycle.
	reached := 0
	t.walk(t.roots, func(*Node) { reached++ })
	if reached != len(t.nodes) {
		for _, it := range items {
			if _, err := t.AncestorIDs(it.ID); err != nil {
				return nil, &CycleViolation{Op: "build", ID: it.ID, ParentID: it.ParentID}
			}
		}
	}

	for _, it := range items {
		n := t.nodes[it.ID]
		parentType := t.parentType(n.ParentID)
		if err := t.v.Check(n.Type, validator.Target{Type: parentType}, validator.Into); err != nil {
			return nil, &StructuralViolation{
				Op:         "build",
				ID:         n.ID,
				Type:       n.Type,
				ParentID:   n.ParentID,
				ParentType: parentType,
				Position:   it.Position,
				Err:        err,
			}
		}
	}

	t.renumber("")
	for _, n := range t.nodes {
		t.renumber(n.ID)
	}
	t.ResetChanges()
	return t, nil
}

func (t *Tree) sortByPosition(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		return t.nodes[ids[i]].Position < t.nodes[ids[j]].Position
	})
}

// Flatten returns the flat form of the tree in depth-first document order.
func (t *Tree) Flatten() []Item {
	items := make([]Item, 0, len(t.nodes))
	t.walk(t.roots, func(n *Node) {
		items = append(items, Item{
			ID:       n.ID,
			Type:     n.Type,
			Number:   n.Number,
			ParentID: n.ParentID,
			Position: n.Position,
			Heading:  n.Heading,
		})
	})
	return items
}

// walk visits nodes depth-first in document order. Each node is visited at
// most once, so a malformed parent cycle cannot loop forever.
func (t *Tree) walk(ids []string, fn func(*Node)) {
	seen := make(map[string]bool, len(t.nodes))
	var visit func(ids []string)
	visit = func(ids []string) {
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			n := t.nodes[id]
			fn(n)
			visit(n.Children)
		}
	}
	visit(ids)
}

// Grammar returns the grammar the tree is validated against.
func (t *Tree) Grammar() *grammar.Grammar {
	return t.g
}

// Validator returns the validator used for every mutation.
func (t *Tree) Validator() *validator.Validator {
	return t.v
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Has reports whether id is in the tree.
func (t *Tree) Has(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Node returns a copy of the node with the given id.
func (t *Tree) Node(id string) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n.clone(), true
}

// Roots returns the top-level nodes in order.
func (t *Tree) Roots() []Node {
	return t.copies(t.roots)
}

// Children returns the children of id in order. An empty id returns the
// top-level nodes.
func (t *Tree) Children(id string) ([]Node, error) {
	if id == "" {
		return t.Roots(), nil
	}
	n, ok := t.nodes[id]
	if !ok {
		return nil, &UnknownNodeError{Op: "children", ID: id}
	}
	return t.copies(n.Children), nil
}

// Siblings returns every child of id's parent, id included, in order.
func (t *Tree) Siblings(id string) ([]Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, &UnknownNodeError{Op: "siblings", ID: id}
	}
	return t.copies(t.siblingIDs(n.ParentID)), nil
}

// SameTypeSiblings returns the siblings of id that share its type, id
// included, in order.
func (t *Tree) SameTypeSiblings(id string) ([]Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, &UnknownNodeError{Op: "siblings", ID: id}
	}
	var out []Node
	for _, sid := range t.siblingIDs(n.ParentID) {
		if s := t.nodes[sid]; s.Type == n.Type {
			out = append(out, *s.clone())
		}
	}
	return out, nil
}

// SameTypeIndex returns the 1-based index of id among its same-type
// siblings, the position numbering is derived from.
func (t *Tree) SameTypeIndex(id string) (int, error) {
	n, ok := t.nodes[id]
	if !ok {
		return 0, &UnknownNodeError{Op: "siblings", ID: id}
	}
	i := 0
	for _, sid := range t.siblingIDs(n.ParentID) {
		if t.nodes[sid].Type == n.Type {
			i++
		}
		if sid == id {
			break
		}
	}
	return i, nil
}

// AncestorIDs returns the ids from the top-level ancestor down to id's
// parent. Top-level nodes have no ancestors.
func (t *Tree) AncestorIDs(id string) ([]string, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, &UnknownNodeError{Op: "ancestors", ID: id}
	}
	var ids []string
	seen := map[string]bool{id: true}
	for p := n.ParentID; p != ""; {
		if seen[p] {
			return nil, &CycleViolation{Op: "ancestors", ID: id, ParentID: n.ParentID}
		}
		seen[p] = true
		ids = append(ids, p)
		parent, ok := t.nodes[p]
		if !ok {
			return nil, &UnknownNodeError{Op: "ancestors", ID: p}
		}
		p = parent.ParentID
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids, nil
}

// Target describes id as a drop reference for the validator. The parent type
// is taken from the document model, not from any visual nesting.
func (t *Tree) Target(id string) (validator.Target, error) {
	if id == "" {
		return validator.Target{Type: t.g.Root()}, nil
	}
	n, ok := t.nodes[id]
	if !ok {
		return validator.Target{}, &UnknownNodeError{Op: "target", ID: id}
	}
	return validator.Target{Type: n.Type, ParentType: t.parentType(n.ParentID)}, nil
}

// CanPlace reports whether an element of type dragged may be dropped
// relative to the node refID. An empty refID with validator.Into targets the
// document itself.
func (t *Tree) CanPlace(dragged, refID string, pos validator.Position) bool {
	target, err := t.Target(refID)
	if err != nil {
		return false
	}
	return t.v.CanPlace(dragged, target, pos)
}

// Changes returns the sorted ids touched since the tree was built or the
// change set was last reset. Removed ids are included.
func (t *Tree) Changes() []string {
	ids := make([]string, 0, len(t.changes))
	for id := range t.changes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResetChanges clears the change set.
func (t *Tree) ResetChanges() {
	t.changes = make(map[string]struct{})
}

// Clone returns a deep copy sharing only the immutable grammar.
func (t *Tree) Clone() *Tree {
	c := newTree(t.g)
	for id, n := range t.nodes {
		c.nodes[id] = n.clone()
	}
	c.roots = append([]string(nil), t.roots...)
	for id := range t.changes {
		c.changes[id] = struct{}{}
	}
	return c
}

func (t *Tree) copies(ids []string) []Node {
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, *t.nodes[id].clone())
	}
	return out
}

// parentType returns the type governing children of parentID; the grammar
// root governs top-level nodes.
func (t *Tree) parentType(parentID string) string {
	if parentID == "" {
		return t.g.Root()
	}
	if p, ok := t.nodes[parentID]; ok {
		return p.Type
	}
	return ""
}

func (t *Tree) siblingIDs(parentID string) []string {
	if parentID == "" {
		return t.roots
	}
	return t.nodes[parentID].Children
}

func (t *Tree) setSiblingIDs(parentID string, ids []string) {
	if parentID == "" {
		t.roots = ids
		return
	}
	t.nodes[parentID].Children = ids
}

// renumber assigns contiguous positions to the children of parentID and
// records every node whose position moved.
func (t *Tree) renumber(parentID string) {
	for i, id := range t.siblingIDs(parentID) {
		n := t.nodes[id]
		if n.Position != i {
			n.Position = i
			t.touch(id)
		}
	}
}

func (t *Tree) touch(ids ...string) {
	for _, id := range ids {
		if id != "" {
			t.changes[id] = struct{}{}
		}
	}
}
