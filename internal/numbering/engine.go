// Package numbering computes display labels for table-of-contents nodes:
// explicit numbers, sequential arabic or Roman numerals, ordinal spellouts
// for unnumbered elements, and pluralized type names.
//
// Every function is a pure function of its inputs. Nothing is cached, so
// labels can be recomputed after any tree mutation.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gertd/go-pluralize"
	"golang.org/x/text/cases"

	"github.com/l-e-x/leos-sub016/internal/grammar"
	"github.com/l-e-x/leos-sub016/internal/toc"
)

// plurals pluralizes English type names that declare no plural form.
var plurals = pluralize.NewClient()

// Engine formats numbers and labels using a template's type metadata.
type Engine struct {
	g *grammar.Grammar
}

// New creates an engine for g.
func New(g *grammar.Grammar) *Engine {
	return &Engine{g: g}
}

// IsUnnumbered reports whether n has no explicit number. Blank text always
// counts as unnumbered; types with a placeholder (such as "-" for points)
// also count as unnumbered when the text is exactly that placeholder.
func (e *Engine) IsUnnumbered(n toc.Node) bool {
	text := strings.TrimSpace(n.Number)
	if text == "" {
		return true
	}
	if t, ok := e.g.Type(n.Type); ok && t.Placeholder != "" {
		return text == t.Placeholder
	}
	return false
}

// FormatNumber returns the number shown for n. siblings are the nodes of the
// same type under the same parent, in order, n included.
//
// Author-entered numbers are returned verbatim. Otherwise the number is
// derived from n's 1-based position among siblings according to the type's
// numbering style.
func (e *Engine) FormatNumber(n toc.Node, siblings []toc.Node, locale string) string {
	return e.formatAt(n, positionOf(n, siblings), locale)
}

func (e *Engine) formatAt(n toc.Node, position int, locale string) string {
	if !e.IsUnnumbered(n) {
		return n.Number
	}
	if e.g.NumberingStyle(n.Type) == grammar.NumberingNone {
		return e.FormatUnnumbered(n, position, locale)
	}
	return e.FormatPosition(n.Type, position, locale)
}

// FormatPosition renders a 1-based position in the numbering style of typ.
// A roman-styled type at position 0 renders as its bare label, e.g. "Annex".
// Arabic-styled types at position 0 render as the empty string.
func (e *Engine) FormatPosition(typ string, position int, locale string) string {
	switch e.g.NumberingStyle(typ) {
	case grammar.NumberingArabic:
		if position <= 0 {
			return ""
		}
		return strconv.Itoa(position)
	case grammar.NumberingRoman:
		if position <= 0 {
			return e.bareLabel(typ, locale)
		}
		return Roman(position)
	default:
		return FormatterFor(locale).Spell(position)
	}
}

// FormatUnnumbered spells a 1-based position for an unnumbered element,
// e.g. "third" in English. Position 0 renders as the bare label, e.g.
// "Paragraph".
func (e *Engine) FormatUnnumbered(n toc.Node, position int, locale string) string {
	if position <= 0 {
		return e.bareLabel(n.Type, locale)
	}
	return FormatterFor(locale).Spell(position)
}

// FormatPlural returns the display name of typ in the form matching count:
// singular for exactly one, plural otherwise (including zero).
func (e *Engine) FormatPlural(typ string, count int, locale string) string {
	one, other := e.names(typ, locale)
	if count == 1 {
		return one
	}
	return other
}

// Summary renders a count with its pluralized type name, e.g. "3 paragraphs".
func (e *Engine) Summary(typ string, count int, locale string) string {
	return fmt.Sprintf("%d %s", count, e.FormatPlural(typ, count, locale))
}

// Label returns the full display label of n, such as "Article 4",
// "Annex II", "Annex" or "Third paragraph".
func (e *Engine) Label(n toc.Node, siblings []toc.Node, locale string) string {
	return e.labelAt(n, positionOf(n, siblings), locale)
}

func (e *Engine) labelAt(n toc.Node, position int, locale string) string {
	tag, _ := parseLocale(locale)
	one, _ := e.names(n.Type, locale)
	number := e.formatAt(n, position, locale)

	if e.IsUnnumbered(n) {
		switch e.g.NumberingStyle(n.Type) {
		case grammar.NumberingNone:
			if position <= 0 {
				return number
			}
			phrase := FormatterFor(locale).Phrase(one, number)
			return upperFirst(cases.Upper(tag), phrase)
		case grammar.NumberingRoman:
			if position <= 0 {
				return number
			}
		}
	}
	if number == "" {
		return cases.Title(tag).String(one)
	}
	return cases.Title(tag).String(one) + " " + number
}

// LabelTree computes the label of every node in tree, keyed by node id.
func (e *Engine) LabelTree(tree *toc.Tree, locale string) map[string]string {
	labels := make(map[string]string, tree.Len())
	for _, it := range tree.Flatten() {
		n, _ := tree.Node(it.ID)
		position, err := tree.SameTypeIndex(it.ID)
		if err != nil {
			continue
		}
		labels[it.ID] = e.labelAt(n, position, locale)
	}
	return labels
}

func (e *Engine) bareLabel(typ, locale string) string {
	tag, _ := parseLocale(locale)
	one, _ := e.names(typ, locale)
	return cases.Title(tag).String(one)
}

// names returns the singular and plural display names of typ in locale.
// Languages without declared names use the type's default names, pluralized
// with English rules when no plural is declared.
func (e *Engine) names(typ, locale string) (string, string) {
	t, ok := e.g.Type(typ)
	if !ok {
		return typ, plurals.Plural(typ)
	}
	_, lang := parseLocale(locale)
	if n, ok := t.Names[lang]; ok {
		if n.Other == "" {
			return n.One, n.One
		}
		return n.One, n.Other
	}
	one := t.DisplayName()
	if t.Plural != "" {
		return one, t.Plural
	}
	return one, plurals.Plural(one)
}

func positionOf(n toc.Node, siblings []toc.Node) int {
	for i, s := range siblings {
		if s.ID == n.ID {
			return i + 1
		}
	}
	return 0
}

// upperFirst upper-cases the first rune of s with the given caser.
func upperFirst(c cases.Caser, s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return c.String(string(r)) + s[size:]
}
