package domain

// Position is the canvas position of a node. The backend stores it so an
// exported sketch reopens with the same layout, but never interprets it.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NewPosition creates a new position
func NewPosition(x, y float64) *Position {
	return &Position{X: x, Y: y}
}
