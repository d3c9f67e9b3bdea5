package theory

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Note is a pitch class placed in an octave, ready for synthesis.
// Octaves follow scientific pitch notation: C4 is middle C, A4 is 440 Hz.
type Note struct {
	Pitch  PitchClass
	Octave int
}

func (n Note) String() string {
	return string(n.Pitch) + strconv.Itoa(n.Octave)
}

// ParseNote parses a note name with octave such as "D3", "Bb4" or "C#-1".
func ParseNote(s string) (Note, error) {
	s = strings.TrimSpace(s)
	i := 1
	for i < len(s) && (s[i] == sharp || s[i] == flat) {
		i++
	}
	if len(s) < 2 || i == len(s) {
		return Note{}, fmt.Errorf("note %q has no octave: %w", s, ErrUnresolvedPitch)
	}
	pc, err := ParsePitchClass(s[:i])
	if err != nil {
		return Note{}, err
	}
	oct, err := strconv.Atoi(s[i:])
	if err != nil {
		return Note{}, fmt.Errorf("note %q has invalid octave: %w", s, ErrUnresolvedPitch)
	}
	return Note{Pitch: pc, Octave: oct}, nil
}

// Transpose moves the note by an interval, carrying into the next octave
// when the letter wraps past B.
func (n Note) Transpose(iv Interval) (Note, error) {
	p, err := parsePitch(string(n.Pitch))
	if err != nil {
		return Note{}, err
	}
	absStep := p.step + 7*n.Octave + iv.Number - 1
	octave := floorDiv(absStep, 7)
	step := absStep - 7*octave

	semis := 12*n.Octave + letterChroma[p.step] + p.alt + iv.Semitones
	alt := semis - (12*octave + letterChroma[step])
	return Note{Pitch: pitch{step: step, alt: alt}.pitchClass(), Octave: octave}, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// MIDI returns the MIDI key number (C4 = 60).
func (n Note) MIDI() (int, error) {
	p, err := parsePitch(string(n.Pitch))
	if err != nil {
		return 0, err
	}
	return 12*(n.Octave+1) + letterChroma[p.step] + p.alt, nil
}

// Frequency maps the note to Hz with A4 = 440 and equal temperament.
func (n Note) Frequency() (float64, error) {
	key, err := n.MIDI()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", n, ErrMissingFrequency)
	}
	return MIDIToFrequency(float64(key)), nil
}

// MIDIToFrequency converts a (possibly fractional) MIDI key number to Hz.
func MIDIToFrequency(key float64) float64 {
	return 440 * math.Pow(2, (key-69)/12)
}
