package theory

import "errors"

// Failure kinds reported by the theory package. Callers match them with errors.Is.
var (
	// ErrUnresolvedPitch is returned when a pitch-class name cannot be parsed
	// or is not present in the scale it is looked up in.
	ErrUnresolvedPitch = errors.New("unresolved pitch")

	// ErrUnresolvedChord is returned when a symbol is not a playable chord or note.
	ErrUnresolvedChord = errors.New("unrecognized chord")

	// ErrMissingFrequency is returned when a note has no computable frequency.
	ErrMissingFrequency = errors.New("missing frequency")
)
