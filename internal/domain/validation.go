package domain

import "fmt"

// ValidateConnection checks a proposed edge against the default rulebook.
// It returns nil when the edge is accepted and a *ConnectionError otherwise.
func ValidateConnection(source, target string, nodes []Node) error {
	return defaultRules.Validate(source, target, nodes)
}

// Validate checks a proposed edge source -> target against the rulebook and the
// kind-specific attribute constraints. It has no side effects.
func (r Rulebook) Validate(source, target string, nodes []Node) error {
	src := findNode(nodes, source)
	tgt := findNode(nodes, target)
	if src == nil || tgt == nil {
		return &ConnectionError{
			Source: source,
			Target: target,
			Reason: "node not found",
			err:    ErrNodeNotFound,
		}
	}

	if !r.Allows(src.Kind, tgt.Kind) {
		return &ConnectionError{
			Source: source,
			Target: target,
			Reason: fmt.Sprintf("connection forbidden: %s cannot connect to %s", src.Kind, tgt.Kind),
		}
	}

	if src.Kind == KindIGW && tgt.Kind == KindEC2 && !tgt.HasPublicIP() {
		return &ConnectionError{
			Source: source,
			Target: target,
			Reason: "connection blocked: EC2 must have public IP enabled to connect to Internet Gateway",
		}
	}

	return nil
}

func findNode(nodes []Node, id string) *Node {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i]
		}
	}
	return nil
}
