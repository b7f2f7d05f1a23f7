package codec

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"cloudsketch/internal/domain"

	"github.com/go-playground/validator/v10"
)

// documentValidate checks struct tags on imported documents.
// Field names in messages follow the JSON names.
var documentValidate *validator.Validate

func init() {
	documentValidate = validator.New()
	documentValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = documentValidate.RegisterValidation("nodekind", func(fl validator.FieldLevel) bool {
		return domain.NodeKind(fl.Field().String()).Valid()
	})
	_ = documentValidate.RegisterValidation("zone", func(fl validator.FieldLevel) bool {
		return domain.Zone(fl.Field().String()).Valid()
	})
}

// build validates a decoded document and turns it into a graph
func build(doc *document) (*domain.Graph, error) {
	if doc.Nodes == nil {
		return nil, malformed("missing nodes array")
	}
	if doc.Edges == nil {
		return nil, malformed("missing edges array")
	}

	if err := documentValidate.Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, malformed("validation error: %v", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, formatFieldError(e))
		}
		return nil, malformed("%s", strings.Join(msgs, "; "))
	}

	g := &domain.Graph{
		Nodes: make([]domain.Node, 0, len(*doc.Nodes)),
		Edges: make([]domain.Edge, 0, len(*doc.Edges)),
	}

	seen := make(map[string]bool, len(*doc.Nodes))
	for _, node := range *doc.Nodes {
		if seen[node.ID] {
			return nil, malformed("duplicate node id %q", node.ID)
		}
		seen[node.ID] = true

		if node.Zone == "" {
			node.Zone = domain.DefaultZoneFor(node.Kind)
		}
		if node.Label == "" {
			node.Label = string(node.Kind)
		}
		node.Normalize()
		g.AddNode(node)
	}

	edgeIDs := make(map[string]bool, len(*doc.Edges))
	for i, edge := range *doc.Edges {
		if !seen[edge.Source] {
			return nil, malformed("edges[%d]: unknown source node %q", i, edge.Source)
		}
		if !seen[edge.Target] {
			return nil, malformed("edges[%d]: unknown target node %q", i, edge.Target)
		}
		if edge.ID == "" {
			edge.ID = edge.GenerateID()
		}
		if edgeIDs[edge.ID] {
			return nil, malformed("duplicate edge id %q", edge.ID)
		}
		edgeIDs[edge.ID] = true
		g.AddEdge(edge)
	}

	return g, nil
}

// formatFieldError renders a field error with its document path
func formatFieldError(e validator.FieldError) string {
	path := strings.TrimPrefix(e.Namespace(), "document.")

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "nodekind":
		return fmt.Sprintf("%s: unknown node type %q", path, e.Value())
	case "zone":
		return fmt.Sprintf("%s: unknown availability zone %q", path, e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", path, e.Param(), e.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s", path, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", path, e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", path, e.Tag())
	}
}
