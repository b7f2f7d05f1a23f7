package domain

import "errors"

var (
	ErrNodeNotFound = errors.New("node not found")
	ErrEdgeNotFound = errors.New("edge not found")
)

// ConnectionError is returned when a proposed edge is rejected
type ConnectionError struct {
	Source string
	Target string
	Reason string
	err    error
}

func (e *ConnectionError) Error() string {
	return e.Reason
}

func (e *ConnectionError) Unwrap() error {
	return e.err
}
