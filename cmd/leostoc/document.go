package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l-e-x/leos-sub016/internal/session"
	"github.com/l-e-x/leos-sub016/internal/svcctx"
	"github.com/l-e-x/leos-sub016/internal/toc"
	"github.com/l-e-x/leos-sub016/internal/validator"
)

var sessions = session.NewManager()

var dryRun bool

// openDocument loads the document named by arg and opens an edit session
// over it.
func openDocument(cmd *cobra.Command, arg string) (*session.Session, string, error) {
	path, err := resolveDocument(cmd, arg)
	if err != nil {
		return nil, "", err
	}
	doc, err := session.LoadDocument(path)
	if err != nil {
		return nil, "", err
	}
	template := doc.Template
	if template == "" {
		template = defaultTemplate(cmd)
	}
	s, err := sessions.Open(cmd.Context(), template, doc.Items)
	if err != nil {
		return nil, "", err
	}
	return s, path, nil
}

// commit closes s and, unless --dry-run is set, writes the result back to
// path. The result is printed either way.
func commit(cmd *cobra.Command, s *session.Session, path string) error {
	res, err := s.Commit()
	if err != nil {
		return err
	}
	if !dryRun {
		if err := session.SaveDocument(path, res.Document()); err != nil {
			return err
		}
		svcctx.LoggerFrom(cmd.Context()).Info("document saved", "path", path, "changed", len(res.Changed))
	}
	return printer(cmd).Print(editView{Path: path, Saved: !dryRun, Changed: res.Changed})
}

type editView struct {
	Path    string   `yaml:"path" json:"path"`
	Saved   bool     `yaml:"saved" json:"saved"`
	Changed []string `yaml:"changed" json:"changed"`
}

func (v editView) Text() string {
	verb := "would change"
	if v.Saved {
		verb = "changed"
	}
	return fmt.Sprintf("%s: %s %d nodes (%s)\n", v.Path, verb, len(v.Changed), strings.Join(v.Changed, ", "))
}

var placeCmd = &cobra.Command{
	Use:   "place <document> <type> <into|after|before> [reference]",
	Short: "Ask whether an element type may be dropped at a place",
	Long: `Answer the drag-and-drop question: may an element of <type> be dropped
into, after or before the reference node of a document?

Without a reference, "into" targets the top level of the document.`,
	Example: `  leostoc place doc.yaml paragraph into art2
  leostoc place doc.yaml article after p1 -o text`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := validator.ParsePosition(args[2])
		if err != nil {
			return err
		}
		var ref string
		if len(args) == 4 {
			ref = args[3]
		}

		s, _, err := openDocument(cmd, args[0])
		if err != nil {
			return err
		}
		defer s.Discard()

		target, err := s.Target(ref)
		if err != nil {
			return err
		}
		v := s.Validator()
		return printer(cmd).Print(placeView{
			Type:       args[1],
			Reference:  ref,
			Position:   pos.String(),
			Parent:     v.ResolveParent(target, pos),
			Allowed:    s.CanPlace(args[1], ref, pos),
			Candidates: v.AllowedAt(target, pos),
		})
	},
}

type placeView struct {
	Type       string   `yaml:"type" json:"type"`
	Reference  string   `yaml:"reference,omitempty" json:"reference,omitempty"`
	Position   string   `yaml:"position" json:"position"`
	Parent     string   `yaml:"parent" json:"parent"`
	Allowed    bool     `yaml:"allowed" json:"allowed"`
	Candidates []string `yaml:"candidates" json:"candidates"`
}

func (v placeView) Text() string {
	verdict := "not allowed"
	if v.Allowed {
		verdict = "allowed"
	}
	return fmt.Sprintf("%s %s %s: %s (parent %s accepts: %s)\n",
		v.Type, v.Position, v.Reference, verdict, v.Parent, strings.Join(v.Candidates, ", "))
}

var checkCmd = &cobra.Command{
	Use:   "check <document>",
	Short: "Validate a document structure against its template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, path, err := openDocument(cmd, args[0])
		if err != nil {
			return err
		}
		defer s.Discard()

		return printer(cmd).Print(checkView{
			Path:     path,
			Template: s.Grammar().Template(),
			Nodes:    len(s.Snapshot()),
			Summary:  s.Summary(locale(cmd)),
		})
	},
}

type checkView struct {
	Path     string            `yaml:"path" json:"path"`
	Template string            `yaml:"template" json:"template"`
	Nodes    int               `yaml:"nodes" json:"nodes"`
	Summary  map[string]string `yaml:"summary" json:"summary"`
}

func (v checkView) Text() string {
	return fmt.Sprintf("%s: valid %s structure, %d nodes\n", v.Path, v.Template, v.Nodes)
}

var labelsCmd = &cobra.Command{
	Use:   "labels <document>",
	Short: "Render the display label of every node",
	Example: `  leostoc labels doc.yaml -o text
  leostoc labels doc.yaml --locale fr`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openDocument(cmd, args[0])
		if err != nil {
			return err
		}
		defer s.Discard()

		items := s.Snapshot()
		return printer(cmd).Print(newLabelList(items, s.Labels(locale(cmd))))
	},
}

type labelView struct {
	ID    string `yaml:"id" json:"id"`
	Type  string `yaml:"type" json:"type"`
	Depth int    `yaml:"depth" json:"depth"`
	Label string `yaml:"label" json:"label"`
}

type labelList []labelView

// newLabelList pairs pre-order items with their labels.
func newLabelList(items []toc.Item, labels map[string]string) labelList {
	depth := make(map[string]int, len(items))
	out := make(labelList, 0, len(items))
	for _, it := range items {
		d := 0
		if it.ParentID != "" {
			d = depth[it.ParentID] + 1
		}
		depth[it.ID] = d
		out = append(out, labelView{ID: it.ID, Type: it.Type, Depth: d, Label: labels[it.ID]})
	}
	return out
}

func (l labelList) Text() string {
	var b strings.Builder
	for _, v := range l {
		label := v.Label
		if label == "" {
			label = v.Type
		}
		fmt.Fprintf(&b, "%s%s  [%s]\n", strings.Repeat("  ", v.Depth), label, v.ID)
	}
	return b.String()
}

var moveCmd = &cobra.Command{
	Use:   "move <document> <id> <into|after|before> [reference]",
	Short: "Move a node and its subtree",
	Long: `Move a node relative to a reference node. The edit is validated against
the template grammar and rejected if it would break the nesting rules or
place a node under its own descendant.`,
	Example: `  leostoc move doc.yaml art3 before art1
  leostoc move doc.yaml p2 into art2 --dry-run`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := validator.ParsePosition(args[2])
		if err != nil {
			return err
		}
		var ref string
		if len(args) == 4 {
			ref = args[3]
		}

		s, path, err := openDocument(cmd, args[0])
		if err != nil {
			return err
		}
		if err := s.Drop(args[1], ref, pos); err != nil {
			s.Discard()
			return err
		}
		return commit(cmd, s, path)
	},
}

var (
	insertID      string
	insertNumber  string
	insertHeading string
)

var insertCmd = &cobra.Command{
	Use:   "insert <document> <type> <into|after|before> [reference]",
	Short: "Insert a new element",
	Example: `  leostoc insert doc.yaml article after art2 --heading "Entry into force"
  leostoc insert doc.yaml paragraph into art1 --number 3.`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := validator.ParsePosition(args[2])
		if err != nil {
			return err
		}
		var ref string
		if len(args) == 4 {
			ref = args[3]
		}

		s, path, err := openDocument(cmd, args[0])
		if err != nil {
			return err
		}
		n := toc.Node{ID: insertID, Type: args[1], Number: insertNumber, Heading: insertHeading}
		if _, err := s.InsertAt(n, ref, pos); err != nil {
			s.Discard()
			return err
		}
		return commit(cmd, s, path)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <document> <id>",
	Short: "Remove a node and its subtree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, path, err := openDocument(cmd, args[0])
		if err != nil {
			return err
		}
		if err := s.Remove(args[1]); err != nil {
			s.Discard()
			return err
		}
		return commit(cmd, s, path)
	},
}

func init() {
	for _, c := range []*cobra.Command{moveCmd, insertCmd, removeCmd} {
		c.Flags().BoolVar(&dryRun, "dry-run", false, "validate and report the edit without saving")
	}
	insertCmd.Flags().StringVar(&insertID, "id", "", "node id (default: generated)")
	insertCmd.Flags().StringVar(&insertNumber, "number", "", "explicit number text")
	insertCmd.Flags().StringVar(&insertHeading, "heading", "", "heading text")
}
