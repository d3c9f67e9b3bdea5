// Package theory provides pitch-class arithmetic, mode derivation and chord resolution
package theory

import (
	"fmt"
	"slices"
	"strings"
)

// PitchClass is a note name without octave, e.g. "C", "F#", "Bb"
type PitchClass string

const (
	sharp = '#'
	flat  = 'b'
)

const letters = "CDEFGAB"

// semitones above C for each natural letter
var letterChroma = [7]int{0, 2, 4, 5, 7, 9, 11}

// pitch is a parsed pitch class: a letter step (0 = C .. 6 = B) and an
// accidental offset in semitones.
type pitch struct {
	step int
	alt  int
}

func parsePitch(s string) (pitch, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pitch{}, fmt.Errorf("empty pitch class: %w", ErrUnresolvedPitch)
	}

	step := strings.IndexByte(letters, upper(s[0]))
	if step < 0 {
		return pitch{}, fmt.Errorf("invalid letter in %q: %w", s, ErrUnresolvedPitch)
	}

	alt, ok := parseAccidentals(s[1:])
	if !ok {
		return pitch{}, fmt.Errorf("invalid accidentals in %q: %w", s, ErrUnresolvedPitch)
	}
	return pitch{step: step, alt: alt}, nil
}

// parseAccidentals reads a run of sharps or a run of flats. Mixed runs are rejected.
func parseAccidentals(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	mark := s[0]
	if mark != sharp && mark != flat {
		return 0, false
	}
	for i := 1; i < len(s); i++ {
		if s[i] != mark {
			return 0, false
		}
	}
	if mark == sharp {
		return len(s), true
	}
	return -len(s), true
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func (p pitch) chroma() int {
	return mod(letterChroma[p.step]+p.alt, 12)
}

func (p pitch) pitchClass() PitchClass {
	var b strings.Builder
	b.WriteByte(letters[p.step])
	mark := byte(sharp)
	n := p.alt
	if n < 0 {
		mark = flat
		n = -n
	}
	for i := 0; i < n; i++ {
		b.WriteByte(mark)
	}
	return PitchClass(b.String())
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}

// ParsePitchClass validates a note name and returns it in canonical spelling
// (upper-case letter followed by accidentals).
func ParsePitchClass(s string) (PitchClass, error) {
	p, err := parsePitch(s)
	if err != nil {
		return "", err
	}
	return p.pitchClass(), nil
}

// Chroma returns the pitch-class number (0 = C .. 11 = B)
func Chroma(pc PitchClass) (int, error) {
	p, err := parsePitch(string(pc))
	if err != nil {
		return 0, err
	}
	return p.chroma(), nil
}

// Transpose moves a pitch class by an interval, spelling the result by letter
// so that D + 3m is F and C# + 3M is E#.
func Transpose(pc PitchClass, iv Interval) (PitchClass, error) {
	p, err := parsePitch(string(pc))
	if err != nil {
		return "", err
	}
	step := mod(p.step+iv.Number-1, 7)
	alt := mod(p.chroma()+iv.Semitones-letterChroma[step], 12)
	if alt > 6 {
		alt -= 12
	}
	return pitch{step: step, alt: alt}.pitchClass(), nil
}

var chromaticIntervals = mustIntervals("1P", "2m", "2M", "3m", "3M", "4P", "5d", "5P", "6m", "6M", "7m", "7M")

// BuildChromaticScale transposes root through the 12 chromatic intervals in
// ascending order. The first entry is always root.
func BuildChromaticScale(root PitchClass) ([]PitchClass, error) {
	scale := make([]PitchClass, 0, len(chromaticIntervals))
	for _, iv := range chromaticIntervals {
		pc, err := Transpose(root, iv)
		if err != nil {
			return nil, fmt.Errorf("chromatic scale from %q: %w", root, err)
		}
		scale = append(scale, pc)
	}
	return scale, nil
}

// ReferenceScale is the flat-spelled chromatic scale anchored at C that
// pitch-class indices are compared against.
var ReferenceScale = mustChromaticScale("C")

func mustChromaticScale(root PitchClass) []PitchClass {
	scale, err := BuildChromaticScale(root)
	if err != nil {
		panic(err)
	}
	return scale
}

// ToFlatEnharmonic returns note unchanged when it has no sharp, otherwise the
// flat (or natural) spelling of the same pitch from ReferenceScale.
// Unparseable input is returned as is; the index lookup downstream reports it.
func ToFlatEnharmonic(note PitchClass) PitchClass {
	if !strings.ContainsRune(string(note), sharp) {
		return note
	}
	p, err := parsePitch(string(note))
	if err != nil {
		return note
	}
	return ReferenceScale[p.chroma()]
}

// IndexInChromaticScale returns the position of note in scale, or -1.
func IndexInChromaticScale(note PitchClass, scale []PitchClass) int {
	return slices.Index(scale, note)
}
