package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l-e-x/leos-sub016/internal/grammar"
	"github.com/l-e-x/leos-sub016/internal/svcctx"
)

var grammarCmd = &cobra.Command{
	Use:   "grammar",
	Short: "Inspect template structure grammars",
}

var grammarListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := svcctx.GrammarsFrom(cmd.Context()).Templates()
		if err != nil {
			return err
		}
		return printer(cmd).Print(templateList(ids))
	},
}

var grammarShowCmd = &cobra.Command{
	Use:   "show <template>",
	Short: "Show the element types and nesting rules of a template",
	Example: `  leostoc grammar show bill
  leostoc grammar show annex -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := svcctx.GrammarsFrom(cmd.Context()).Load(args[0])
		if err != nil {
			return err
		}
		return printer(cmd).Print(newGrammarView(g))
	},
}

func init() {
	grammarCmd.AddCommand(grammarListCmd)
	grammarCmd.AddCommand(grammarShowCmd)
}

type templateList []string

func (l templateList) Text() string {
	return strings.Join(l, "\n") + "\n"
}

// typeView is one element type as printed by grammar show.
type typeView struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Numbering string   `yaml:"numbering" json:"numbering"`
	Children  []string `yaml:"children,omitempty" json:"children,omitempty"`
	AnyChild  bool     `yaml:"any_child,omitempty" json:"any_child,omitempty"`
}

// relationView is one declared nesting relation.
type relationView struct {
	Parent   string   `yaml:"parent" json:"parent"`
	Children []string `yaml:"children,omitempty" json:"children,omitempty"`
	Any      bool     `yaml:"any,omitempty" json:"any,omitempty"`
}

type grammarView struct {
	Template  string         `yaml:"template" json:"template"`
	Root      string         `yaml:"root" json:"root"`
	TopLevel  []string       `yaml:"top_level" json:"top_level"`
	Types     []typeView     `yaml:"types" json:"types"`
	Relations []relationView `yaml:"relations" json:"relations"`
}

func newGrammarView(g *grammar.Grammar) *grammarView {
	v := &grammarView{Template: g.Template(), Root: g.Root()}
	for _, c := range g.AllowedChildren(g.Root()) {
		v.TopLevel = append(v.TopLevel, c.ID)
	}
	for _, t := range g.Types() {
		tv := typeView{
			ID:        t.ID,
			Name:      t.DisplayName(),
			Numbering: string(t.Numbering),
			AnyChild:  g.IsWildcardRelation(t.ID),
		}
		if !tv.AnyChild {
			for _, c := range g.AllowedChildren(t.ID) {
				tv.Children = append(tv.Children, c.ID)
			}
		}
		v.Types = append(v.Types, tv)
	}
	for _, parent := range g.Parents() {
		rv := relationView{Parent: parent, Any: g.IsWildcardRelation(parent)}
		for _, c := range g.AllowedChildren(parent) {
			rv.Children = append(rv.Children, c.ID)
		}
		v.Relations = append(v.Relations, rv)
	}
	return v
}

func (v *grammarView) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (root: %s, top level: %s)\n", v.Template, v.Root, strings.Join(v.TopLevel, ", "))
	for _, t := range v.Types {
		children := strings.Join(t.Children, ", ")
		if t.AnyChild {
			children = "*"
		}
		if children == "" {
			children = "-"
		}
		fmt.Fprintf(&b, "  %-14s %-7s %s\n", t.ID, t.Numbering, children)
	}
	return b.String()
}
