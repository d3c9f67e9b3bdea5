package theory

import "fmt"

// DefaultOctaveBase is the octave chords are voiced in before any offset.
const DefaultOctaveBase = 3

// ResolveOctaveOffset returns 0 when chordRoot sits at or above scaleRoot in
// ReferenceScale order and 1 when it wraps below, so that chords stay within an
// octave above the scale root. Both arguments must already be flat-spelled
// (see ToFlatEnharmonic).
//
// If either pitch class is missing from ReferenceScale the offset is 0 and the
// returned error wraps ErrUnresolvedPitch.
func ResolveOctaveOffset(scaleRoot, chordRoot PitchClass) (int, error) {
	scaleIdx := IndexInChromaticScale(scaleRoot, ReferenceScale)
	if scaleIdx < 0 {
		return 0, fmt.Errorf("scale root %q: %w", scaleRoot, ErrUnresolvedPitch)
	}
	chordIdx := IndexInChromaticScale(chordRoot, ReferenceScale)
	if chordIdx < 0 {
		return 0, fmt.Errorf("chord root %q: %w", chordRoot, ErrUnresolvedPitch)
	}

	if chordIdx >= scaleIdx {
		return 0, nil
	}
	return 1, nil
}
