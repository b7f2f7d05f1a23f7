// Package codec converts logical graphs to and from their file formats.
//
// Both formats carry the same document, {nodes, edges}. Parsing is strict:
// anything that does not describe a well-formed graph is rejected with
// ErrMalformed and no partial graph is returned.
package codec

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cloudsketch/internal/domain"
)

var (
	// ErrMalformed is returned for input that is not a valid sketch document
	ErrMalformed = errors.New("malformed topology document")

	// ErrUnsupportedFormat is returned for unknown format names
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Importer interface for importing graph data from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Graph, error)
	Format() string
}

// Exporter interface for exporting graph data to various formats
type Exporter interface {
	Export(g *domain.Graph, w io.Writer) error
	Format() string
	ContentType() string
}

// Codec both imports and exports one format
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec for a format name ("json", "yaml" or "yml")
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// ForPath picks the codec from a file extension
func ForPath(path string) (Codec, error) {
	return ForFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// document is the on-disk shape. Pointers let validation tell a missing
// array apart from an empty one.
type document struct {
	Nodes *[]domain.Node `json:"nodes" yaml:"nodes" validate:"required,dive"`
	Edges *[]domain.Edge `json:"edges" yaml:"edges" validate:"required,dive"`
}

func newDocument(g *domain.Graph) *document {
	nodes := g.Nodes
	if nodes == nil {
		nodes = []domain.Node{}
	}
	edges := g.Edges
	if edges == nil {
		edges = []domain.Edge{}
	}
	return &document{Nodes: &nodes, Edges: &edges}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
