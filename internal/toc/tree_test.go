package toc

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/l-e-x/leos-sub016/internal/grammar"
	"github.com/l-e-x/leos-sub016/internal/validator"
)

func billGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, err := grammar.NewRegistry(nil, grammar.Builtin()).Load("bill")
	if err != nil {
		t.Fatalf("failed to load bill grammar: %v", err)
	}
	return g
}

// sampleItems is a small regulation:
//
//	ch1 chapter
//	  art1 article
//	    p1 paragraph
//	    p2 paragraph
//	      l1 list
//	        pt1 point (a)
//	        pt2 point
//	  art2 article
//	ch2 chapter
//	  art3 article
//	anx1 annex
func sampleItems() []Item {
	return []Item{
		{ID: "ch1", Type: "chapter", Position: 0, Heading: "General provisions"},
		{ID: "art1", Type: "article", ParentID: "ch1", Position: 0, Heading: "Subject matter"},
		{ID: "p1", Type: "paragraph", ParentID: "art1", Position: 0},
		{ID: "p2", Type: "paragraph", ParentID: "art1", Position: 1},
		{ID: "l1", Type: "list", ParentID: "p2", Position: 0},
		{ID: "pt1", Type: "point", ParentID: "l1", Position: 0, Number: "(a)"},
		{ID: "pt2", Type: "point", ParentID: "l1", Position: 1},
		{ID: "art2", Type: "article", ParentID: "ch1", Position: 1},
		{ID: "ch2", Type: "chapter", Position: 1},
		{ID: "art3", Type: "article", ParentID: "ch2", Position: 0},
		{ID: "anx1", Type: "annex", Position: 2},
	}
}

func sampleTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := FromFlat(billGrammar(t), sampleItems())
	if err != nil {
		t.Fatalf("failed to build tree: %v", err)
	}
	return tree
}

func sortedByID(items []Item) []Item {
	out := append([]Item(nil), items...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func childIDs(t *testing.T, tree *Tree, id string) []string {
	t.Helper()
	children, err := tree.Children(id)
	if err != nil {
		t.Fatalf("children of %q: %v", id, err)
	}
	ids := make([]string, 0, len(children))
	for _, c := range children {
		ids = append(ids, c.ID)
	}
	return ids
}

func assertContiguous(t *testing.T, tree *Tree) {
	t.Helper()
	check := func(parent string) {
		children, _ := tree.Children(parent)
		for i, c := range children {
			if c.Position != i {
				t.Errorf("node %s under %q has position %d, want %d", c.ID, parent, c.Position, i)
			}
		}
	}
	check("")
	for _, it := range tree.Flatten() {
		check(it.ID)
	}
}

func TestFromFlat_RoundTrip(t *testing.T) {
	items := sampleItems()
	tree := sampleTree(t)

	got := sortedByID(tree.Flatten())
	want := sortedByID(items)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
	if tree.Len() != len(items) {
		t.Errorf("expected %d nodes, got %d", len(items), tree.Len())
	}
	if len(tree.Changes()) != 0 {
		t.Errorf("expected empty change set after build, got %v", tree.Changes())
	}
}

func TestFromFlat_DocumentOrder(t *testing.T) {
	tree := sampleTree(t)

	var ids []string
	for _, it := range tree.Flatten() {
		ids = append(ids, it.ID)
	}
	want := []string{"ch1", "art1", "p1", "p2", "l1", "pt1", "pt2", "art2", "ch2", "art3", "anx1"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("expected %v, got %v", want, ids)
	}
}

func TestFromFlat_NormalizesPositions(t *testing.T) {
	items := []Item{
		{ID: "a3", Type: "article", Position: 10},
		{ID: "a1", Type: "article", Position: 0},
		{ID: "a2", Type: "article", Position: 5},
		{ID: "a4", Type: "article", Position: 10},
	}
	tree, err := FromFlat(billGrammar(t), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := childIDs(t, tree, ""); !reflect.DeepEqual(got, []string{"a1", "a2", "a3", "a4"}) {
		t.Errorf("unexpected order: %v", got)
	}
	assertContiguous(t, tree)
}

func TestFromFlat_Errors(t *testing.T) {
	g := billGrammar(t)

	tests := []struct {
		name  string
		items []Item
		want  error
	}{
		{
			name:  "duplicate id",
			items: []Item{{ID: "a", Type: "article"}, {ID: "a", Type: "article"}},
			want:  ErrDuplicateNode,
		},
		{
			name:  "empty id",
			items: []Item{{Type: "article"}},
			want:  ErrUnknownNode,
		},
		{
			name:  "unknown parent",
			items: []Item{{ID: "p", Type: "paragraph", ParentID: "missing"}},
			want:  ErrUnknownNode,
		},
		{
			name: "parent cycle",
			items: []Item{
				{ID: "l", Type: "list", ParentID: "pt"},
				{ID: "pt", Type: "point", ParentID: "l"},
			},
			want: ErrCycle,
		},
		{
			name:  "self parent",
			items: []Item{{ID: "l", Type: "list", ParentID: "l"}},
			want:  ErrCycle,
		},
		{
			name:  "paragraph at top level",
			items: []Item{{ID: "p", Type: "paragraph"}},
			want:  ErrStructuralViolation,
		},
		{
			name: "article inside paragraph",
			items: []Item{
				{ID: "a", Type: "article"},
				{ID: "p", Type: "paragraph", ParentID: "a"},
				{ID: "a2", Type: "article", ParentID: "p"},
			},
			want: ErrStructuralViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := FromFlat(g, tt.items)
			if err == nil {
				t.Fatal("expected error")
			}
			if tree != nil {
				t.Error("expected nil tree on error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestTree_AncestorIDs(t *testing.T) {
	tree := sampleTree(t)

	got, err := tree.AncestorIDs("pt1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"ch1", "art1", "p2", "l1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	roots, err := tree.AncestorIDs("ch2")
	if err != nil || len(roots) != 0 {
		t.Errorf("expected no ancestors for top-level node, got %v (%v)", roots, err)
	}

	if _, err := tree.AncestorIDs("nope"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}
}

func TestTree_Children(t *testing.T) {
	tree := sampleTree(t)

	if got := childIDs(t, tree, ""); !reflect.DeepEqual(got, []string{"ch1", "ch2", "anx1"}) {
		t.Errorf("unexpected roots: %v", got)
	}
	if got := childIDs(t, tree, "art1"); !reflect.DeepEqual(got, []string{"p1", "p2"}) {
		t.Errorf("unexpected children: %v", got)
	}
	if _, err := tree.Children("nope"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}

	// Returned nodes are copies.
	children, _ := tree.Children("ch1")
	children[0].Children = nil
	if got := childIDs(t, tree, "art1"); len(got) != 2 {
		t.Error("mutating a returned node changed the tree")
	}
}

func TestTree_SameTypeSiblings(t *testing.T) {
	tree := sampleTree(t)

	sibs, err := tree.SameTypeSiblings("ch2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sibs) != 2 || sibs[0].ID != "ch1" || sibs[1].ID != "ch2" {
		t.Errorf("unexpected siblings: %+v", sibs)
	}
}

func TestTree_SameTypeIndex(t *testing.T) {
	tree := sampleTree(t)

	tests := map[string]int{"ch1": 1, "ch2": 2, "anx1": 1, "art3": 1, "p2": 2}
	for id, want := range tests {
		got, err := tree.SameTypeIndex(id)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", id, err)
		}
		if got != want {
			t.Errorf("%s: expected %d, got %d", id, want, got)
		}
	}

	if _, err := tree.SameTypeIndex("missing"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}
}

func TestTree_CanPlace(t *testing.T) {
	tree := sampleTree(t)

	tests := []struct {
		dragged string
		ref     string
		pos     validator.Position
		want    bool
	}{
		{"paragraph", "p1", validator.After, true},
		{"article", "p1", validator.After, false},
		{"list", "p1", validator.Into, true},
		{"chapter", "ch1", validator.After, true},
		{"article", "art3", validator.Before, true},
		{"point", "pt1", validator.After, true},
		{"point", "pt1", validator.Into, false},
		{"annex", "", validator.Into, true},
		{"article", "missing", validator.Into, false},
	}
	for _, tt := range tests {
		if got := tree.CanPlace(tt.dragged, tt.ref, tt.pos); got != tt.want {
			t.Errorf("CanPlace(%s %s %q) = %v, want %v", tt.dragged, tt.pos, tt.ref, got, tt.want)
		}
	}
}

func TestTree_Clone(t *testing.T) {
	tree := sampleTree(t)
	c := tree.Clone()

	if err := c.Remove("ch1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tree.Has("ch1") || tree.Len() != len(sampleItems()) {
		t.Error("mutating the clone changed the original")
	}
}
