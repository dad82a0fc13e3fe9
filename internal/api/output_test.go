package api

import (
	"bytes"
	"strings"
	"testing"
)

type placement struct {
	Allowed bool   `json:"allowed" yaml:"allowed"`
	Parent  string `json:"parent" yaml:"parent"`
}

func (p placement) Text() string {
	if p.Allowed {
		return "allowed in " + p.Parent + "\n"
	}
	return "rejected in " + p.Parent + "\n"
}

func TestParseOutputFormat(t *testing.T) {
	for _, f := range []string{"yaml", "json", "text"} {
		got, err := ParseOutputFormat(f)
		if err != nil || string(got) != f {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", f, got, err)
		}
	}
	if got, _ := ParseOutputFormat(""); got != DefaultOutput {
		t.Errorf("expected default format, got %q", got)
	}
	if _, err := ParseOutputFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestPrinter_Print(t *testing.T) {
	data := placement{Allowed: true, Parent: "article"}

	tests := []struct {
		format OutputFormat
		want   string
	}{
		{OutputFormatJSON, `"parent": "article"`},
		{OutputFormatYAML, "parent: article"},
		{OutputFormatText, "allowed in article"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewPrinter(&buf, tt.format).Print(data); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected %q in output, got %s", tt.want, buf.String())
			}
		})
	}
}

func TestPrinter_TextFallsBackToYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, OutputFormatText).Print(map[string]int{"articles": 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "articles: 3" {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
