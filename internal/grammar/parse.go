package grammar

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var definitionSchema []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// defaultPlaceholders lists list-item-style types whose placeholder number
// means "unnumbered" when the resource does not declare one.
var defaultPlaceholders = map[string]string{
	"point": "-",
}

// definition is the on-disk shape of a structure-definition resource.
type definition struct {
	Template    string        `yaml:"template"`
	Description string        `yaml:"description"`
	Root        string        `yaml:"root"`
	Types       []ElementType `yaml:"types"`
	Relations   []relation    `yaml:"relations"`
}

type relation struct {
	Parent   string   `yaml:"parent"`
	Any      bool     `yaml:"any"`
	Children []string `yaml:"children"`
}

// Parse builds a Grammar from a YAML structure-definition resource.
// Any problem yields a *StructureDefinitionError and a nil grammar.
func Parse(template string, data []byte) (*Grammar, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, definitionError(template, err, "malformed resource")
	}
	if raw == nil {
		return nil, definitionError(template, nil, "empty resource")
	}
	if err := validateShape(raw); err != nil {
		return nil, definitionError(template, err, "resource does not match schema")
	}

	var def definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, definitionError(template, err, "malformed resource")
	}
	if def.Template != "" && def.Template != template {
		return nil, definitionError(template, nil, "resource declares template %q", def.Template)
	}

	return build(template, &def)
}

// validateShape checks the decoded resource against the embedded JSON Schema.
// YAML is converted to its JSON form first so numbers and maps have the
// types the validator expects.
func validateShape(raw any) error {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("structure.json", bytes.NewReader(definitionSchema)); err != nil {
			schemaErr = fmt.Errorf("failed to load structure schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("structure.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile structure schema: %w", schemaErr)
		}
	})
	if schemaErr != nil {
		return schemaErr
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to convert resource to JSON: %w", err)
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return fmt.Errorf("failed to decode resource JSON: %w", err)
	}
	return compiledSchema.Validate(doc)
}

func build(template string, def *definition) (*Grammar, error) {
	g := &Grammar{
		template:  template,
		root:      def.Root,
		index:     make(map[string]int, len(def.Types)),
		relations: make(map[string][]string),
		wildcard:  make(map[string]bool),
	}

	for _, t := range def.Types {
		if _, dup := g.index[t.ID]; dup {
			return nil, definitionError(template, nil, "duplicate type %q", t.ID)
		}
		style, ok := ParseNumberingStyle(string(t.Numbering))
		if !ok {
			return nil, definitionError(template, nil, "type %q has unknown numbering %q", t.ID, t.Numbering)
		}
		t.Numbering = style
		if t.Placeholder == "" {
			t.Placeholder = defaultPlaceholders[t.ID]
		}
		g.index[t.ID] = len(g.types)
		g.types = append(g.types, t)

		switch style {
		case NumberingArabic:
			g.arabic = append(g.arabic, t.ID)
		case NumberingRoman:
			g.roman = append(g.roman, t.ID)
		}
	}

	if !g.HasType(def.Root) {
		return nil, definitionError(template, nil, "root type %q is not declared", def.Root)
	}

	seenParent := make(map[string]bool)
	for _, rel := range def.Relations {
		if !g.HasType(rel.Parent) {
			return nil, definitionError(template, nil, "relation parent %q is not declared", rel.Parent)
		}
		if !seenParent[rel.Parent] {
			seenParent[rel.Parent] = true
			g.parents = append(g.parents, rel.Parent)
		}
		if rel.Any {
			g.wildcard[rel.Parent] = true
		}
		for _, child := range rel.Children {
			if !g.HasType(child) {
				return nil, definitionError(template, nil, "relation %s -> %s references undeclared type", rel.Parent, child)
			}
			if g.Allows(rel.Parent, child) {
				return nil, definitionError(template, nil, "relation %s -> %s declared twice", rel.Parent, child)
			}
			g.relations[rel.Parent] = append(g.relations[rel.Parent], child)
		}
	}

	return g, nil
}
