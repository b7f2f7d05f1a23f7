package service

import "errors"

var (
	// ErrInvalidInput is returned for requests that name unknown kinds or values
	ErrInvalidInput = errors.New("invalid input")

	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrNotChaosMode is returned when killing nodes outside chaos mode
	ErrNotChaosMode = errors.New("node life can only be toggled in chaos mode")

	// ErrAnalysisInProgress is returned when a second analysis overlaps a running one
	ErrAnalysisInProgress = errors.New("analysis already in progress")

	// ErrAnalysisStale is returned when the sketch was reset while the scorer ran
	ErrAnalysisStale = errors.New("sketch changed during analysis, result discarded")
)
