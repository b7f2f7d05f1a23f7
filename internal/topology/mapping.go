package topology

// LogicalID returns the logical node that physicalID was expanded from
func (e *Expansion) LogicalID(physicalID string) (string, bool) {
	id, ok := e.owner[physicalID]
	return id, ok
}

// MapCritical folds physical ids flagged critical back to logical ids. A logical
// node is critical when at least one of its physical instances is. The result is
// distinct and follows logical declaration order; unknown ids are ignored.
func (e *Expansion) MapCritical(criticalIDs []string) []string {
	hit := make(map[string]bool, len(criticalIDs))
	for _, id := range criticalIDs {
		if logical, ok := e.owner[id]; ok {
			hit[logical] = true
		}
	}

	out := make([]string, 0, len(hit))
	for _, id := range e.order {
		if hit[id] {
			out = append(out, id)
		}
	}
	return out
}
