// Package loader reads and writes sketch files on disk. The format is
// picked from the file extension.
package loader

import (
	"fmt"
	"os"

	"cloudsketch/internal/codec"
	"cloudsketch/internal/domain"
)

// LoadFile parses the sketch stored at path
func LoadFile(path string) (*domain.Graph, error) {
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	g, err := c.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// SaveFile writes g to path in the format named by its extension
func SaveFile(g *domain.Graph, path string) error {
	c, err := codec.ForPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := c.Export(g, f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Audit re-validates every edge of g against rules. Files may be edited by
// hand, so edges that the editor would have refused can be present.
func Audit(g *domain.Graph, rules domain.Rulebook) []*domain.ConnectionError {
	var rejected []*domain.ConnectionError
	for _, e := range g.Edges {
		if err := rules.Validate(e.Source, e.Target, g.Nodes); err != nil {
			if connErr, ok := err.(*domain.ConnectionError); ok {
				rejected = append(rejected, connErr)
			}
		}
	}
	return rejected
}
