// Package grammar defines per-template structure rules for legal documents:
// the catalog of element types, their numbering style, and which types may
// nest inside which others.
//
// A Grammar is immutable once built. It is safe to share one instance across
// any number of goroutines without locking.
package grammar

// NumberingStyle classifies how an unnumbered element's sequential position
// is rendered.
type NumberingStyle string

const (
	// NumberingNone marks types rendered with an ordinal spellout when unnumbered.
	NumberingNone NumberingStyle = "none"
	// NumberingArabic marks types rendered as 1, 2, 3...
	NumberingArabic NumberingStyle = "arabic"
	// NumberingRoman marks types rendered as I, II, III...
	NumberingRoman NumberingStyle = "roman"
)

// ParseNumberingStyle converts a string to a NumberingStyle.
// Returns false if the string is not recognized.
func ParseNumberingStyle(s string) (NumberingStyle, bool) {
	switch NumberingStyle(s) {
	case NumberingArabic:
		return NumberingArabic, true
	case NumberingRoman:
		return NumberingRoman, true
	case NumberingNone, "":
		return NumberingNone, true
	default:
		return NumberingNone, false
	}
}

// Names holds the singular and plural display forms of a type in one language.
type Names struct {
	One   string `yaml:"one" json:"one"`
	Other string `yaml:"other" json:"other"`
}

// ElementType is a structural element kind such as "article" or "point".
// Behavior that differs per type is expressed as data on this record.
type ElementType struct {
	ID          string           `yaml:"id" json:"id"`
	Name        string           `yaml:"name" json:"name"`
	Plural      string           `yaml:"plural,omitempty" json:"plural,omitempty"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty"`
	Numbering   NumberingStyle   `yaml:"numbering" json:"numbering"`
	Placeholder string           `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Names       map[string]Names `yaml:"names,omitempty" json:"names,omitempty"`
}

// DisplayName returns the singular display name, falling back to the id.
func (t ElementType) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// Grammar is the immutable structure rule set of one template.
type Grammar struct {
	template string
	root     string

	types []ElementType
	index map[string]int

	// parents keeps relation declaration order for stable iteration.
	parents   []string
	relations map[string][]string
	wildcard  map[string]bool

	arabic []string
	roman  []string
}

// Template returns the template id the grammar was loaded for.
func (g *Grammar) Template() string {
	return g.template
}

// Root returns the type that governs top-level nodes of a document.
func (g *Grammar) Root() string {
	return g.root
}

// Types returns all declared element types in declaration order.
func (g *Grammar) Types() []ElementType {
	out := make([]ElementType, len(g.types))
	copy(out, g.types)
	return out
}

// Type looks up an element type by id.
func (g *Grammar) Type(id string) (ElementType, bool) {
	i, ok := g.index[id]
	if !ok {
		return ElementType{}, false
	}
	return g.types[i], true
}

// HasType reports whether id is a declared element type.
func (g *Grammar) HasType(id string) bool {
	_, ok := g.index[id]
	return ok
}

// AllowedChildren returns the ordered child types permitted under parent.
// An undeclared parent yields an empty slice, not an error.
func (g *Grammar) AllowedChildren(parent string) []ElementType {
	ids := g.relations[parent]
	out := make([]ElementType, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.types[g.index[id]])
	}
	return out
}

// Allows reports whether child is listed under parent. Wildcard relations are
// not consulted here; see IsWildcardRelation.
func (g *Grammar) Allows(parent, child string) bool {
	for _, id := range g.relations[parent] {
		if id == child {
			return true
		}
	}
	return false
}

// Parents returns every type that declares a relation, in declaration order.
func (g *Grammar) Parents() []string {
	out := make([]string, len(g.parents))
	copy(out, g.parents)
	return out
}

// RelationCount returns the number of declared parent/child nesting pairs.
func (g *Grammar) RelationCount() int {
	n := 0
	for _, children := range g.relations {
		n += len(children)
	}
	return n
}

// NumberingStyle returns the numbering style of a type. Unknown types are
// treated as unnumbered.
func (g *Grammar) NumberingStyle(id string) NumberingStyle {
	t, ok := g.Type(id)
	if !ok {
		return NumberingNone
	}
	return t.Numbering
}

// IsWildcardRelation reports whether parent's relation is a flat ANY
// association, which nesting validation must skip.
func (g *Grammar) IsWildcardRelation(parent string) bool {
	return g.wildcard[parent]
}

// ArabicTypes returns the ids of arabic-numbered types.
func (g *Grammar) ArabicTypes() []string {
	out := make([]string, len(g.arabic))
	copy(out, g.arabic)
	return out
}

// RomanTypes returns the ids of roman-numbered types.
func (g *Grammar) RomanTypes() []string {
	out := make([]string, len(g.roman))
	copy(out, g.roman)
	return out
}
