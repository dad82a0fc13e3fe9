package grammar

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *Grammar {
	t.Helper()
	data, err := os.ReadFile("testdata/fixture.yaml")
	require.NoError(t, err)
	g, err := Parse("fixture", data)
	require.NoError(t, err)
	return g
}

func TestParse_Fixture(t *testing.T) {
	g := loadFixture(t)

	assert.Equal(t, "fixture", g.Template())
	assert.Equal(t, "doc", g.Root())
	assert.Len(t, g.Types(), 5)
	assert.Equal(t, []string{"article"}, g.ArabicTypes())
	assert.Equal(t, []string{"chapter"}, g.RomanTypes())
}

func TestParse_RelationTotals(t *testing.T) {
	g := loadFixture(t)

	total := 0
	for _, parent := range g.Parents() {
		total += len(g.AllowedChildren(parent))
	}
	assert.Equal(t, 5, total)
	assert.Equal(t, 5, g.RelationCount())
}

func TestGrammar_AllowedChildren(t *testing.T) {
	g := loadFixture(t)

	t.Run("keeps declaration order", func(t *testing.T) {
		children := g.AllowedChildren("doc")
		require.Len(t, children, 2)
		assert.Equal(t, "chapter", children[0].ID)
		assert.Equal(t, "article", children[1].ID)
	})

	t.Run("unknown parent yields empty set", func(t *testing.T) {
		children := g.AllowedChildren("nonexistent")
		assert.NotNil(t, children)
		assert.Empty(t, children)
	})

	t.Run("declared type without relation yields empty set", func(t *testing.T) {
		assert.Empty(t, g.AllowedChildren("related"))
	})
}

func TestGrammar_NumberingStyle(t *testing.T) {
	g := loadFixture(t)

	tests := []struct {
		typ  string
		want NumberingStyle
	}{
		{"chapter", NumberingRoman},
		{"article", NumberingArabic},
		{"point", NumberingNone},
		{"doc", NumberingNone},
		{"unknown", NumberingNone},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.want, g.NumberingStyle(tt.typ))
		})
	}
}

func TestGrammar_IsWildcardRelation(t *testing.T) {
	g := loadFixture(t)

	assert.True(t, g.IsWildcardRelation("related"))
	assert.False(t, g.IsWildcardRelation("doc"))
	assert.False(t, g.IsWildcardRelation("unknown"))
}

func TestParse_DefaultPlaceholder(t *testing.T) {
	g := loadFixture(t)

	point, ok := g.Type("point")
	require.True(t, ok)
	assert.Equal(t, "-", point.Placeholder)

	article, ok := g.Type("article")
	require.True(t, ok)
	assert.Empty(t, article.Placeholder)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ``},
		{"not yaml", "root: [unclosed"},
		{"missing root", "types: [{id: a}]\nrelations: []\n"},
		{"no types", "root: a\ntypes: []\nrelations: []\n"},
		{"unknown numbering", "root: a\ntypes: [{id: a, numbering: greek}]\nrelations: []\n"},
		{"unknown field", "root: a\ntypes: [{id: a, colour: red}]\nrelations: []\n"},
		{"root not declared", "root: b\ntypes: [{id: a}]\nrelations: []\n"},
		{"duplicate type", "root: a\ntypes: [{id: a}, {id: a}]\nrelations: []\n"},
		{"undeclared parent", "root: a\ntypes: [{id: a}]\nrelations: [{parent: x, children: [a]}]\n"},
		{"undeclared child", "root: a\ntypes: [{id: a}]\nrelations: [{parent: a, children: [x]}]\n"},
		{"duplicate child", "root: a\ntypes: [{id: a}, {id: b}]\nrelations: [{parent: a, children: [b]}, {parent: a, children: [b]}]\n"},
		{"template mismatch", "template: other\nroot: a\ntypes: [{id: a}]\nrelations: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse("sample", []byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, g)
			assert.True(t, errors.Is(err, ErrStructureDefinition), "expected ErrStructureDefinition, got %v", err)

			var defErr *StructureDefinitionError
			require.True(t, errors.As(err, &defErr))
			assert.Equal(t, "sample", defErr.Template)
		})
	}
}

func TestBuiltinTemplates(t *testing.T) {
	r := NewRegistry(nil, Builtin())

	ids, err := r.Templates()
	require.NoError(t, err)
	assert.Equal(t, []string{"annex", "bill", "memorandum"}, ids)

	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			g, err := r.Load(id)
			require.NoError(t, err)
			assert.True(t, g.HasType(g.Root()))
			assert.NotEmpty(t, g.AllowedChildren(g.Root()))
		})
	}
}

func TestBillTemplate(t *testing.T) {
	g, err := NewRegistry(nil, Builtin()).Load("bill")
	require.NoError(t, err)

	assert.True(t, g.Allows("article", "paragraph"))
	assert.True(t, g.Allows("list", "point"))
	assert.False(t, g.Allows("paragraph", "article"))
	assert.Equal(t, NumberingRoman, g.NumberingStyle("annex"))
	assert.Equal(t, NumberingArabic, g.NumberingStyle("article"))
	assert.Equal(t, NumberingNone, g.NumberingStyle("paragraph"))

	annex, ok := g.Type("annex")
	require.True(t, ok)
	assert.Equal(t, "annexes", annex.Plural)
	assert.Equal(t, Names{One: "annexe", Other: "annexes"}, annex.Names["fr"])
}
