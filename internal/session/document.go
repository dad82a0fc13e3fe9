package session

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/l-e-x/leos-sub016/internal/toc"
)

// Document is the flat structure form of one document as stored on disk.
type Document struct {
	Template string     `yaml:"template" json:"template"`
	Items    []toc.Item `yaml:"items" json:"items"`
}

// ReadDocument decodes a YAML (or JSON) document from r.
func ReadDocument(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return &doc, nil
		}
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

// LoadDocument reads a document file.
func LoadDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()
	return ReadDocument(f)
}

// WriteDocument encodes doc as YAML to w.
func WriteDocument(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return enc.Close()
}

// SaveDocument writes doc to path, replacing any existing file.
func SaveDocument(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	if err := WriteDocument(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
