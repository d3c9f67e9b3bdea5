package theory

import (
	"fmt"
	"strings"
)

// ChordType is a named interval structure and the suffixes that spell it.
type ChordType struct {
	Name      string
	Symbols   []string
	Intervals []Interval
}

func chordType(name string, symbols []string, intervals ...string) ChordType {
	return ChordType{Name: name, Symbols: symbols, Intervals: mustIntervals(intervals...)}
}

// ChordTypes lists every chord structure ResolveChord understands.
// The first symbol of each entry is the preferred spelling.
var ChordTypes = []ChordType{
	chordType("major", []string{"", "M", "maj", "Δ"}, "1P", "3M", "5P"),
	chordType("minor", []string{"m", "min", "-"}, "1P", "3m", "5P"),
	chordType("diminished", []string{"dim", "°", "o"}, "1P", "3m", "5d"),
	chordType("augmented", []string{"aug", "+"}, "1P", "3M", "5A"),
	chordType("suspended second", []string{"sus2"}, "1P", "2M", "5P"),
	chordType("suspended fourth", []string{"sus4", "sus"}, "1P", "4P", "5P"),
	chordType("fifth", []string{"5"}, "1P", "5P"),
	chordType("dominant seventh", []string{"7", "dom"}, "1P", "3M", "5P", "7m"),
	chordType("major seventh", []string{"maj7", "M7", "Maj7", "Δ7"}, "1P", "3M", "5P", "7M"),
	chordType("minor seventh", []string{"m7", "min7", "-7"}, "1P", "3m", "5P", "7m"),
	chordType("half-diminished", []string{"m7b5", "ø", "ø7", "-7b5"}, "1P", "3m", "5d", "7m"),
	chordType("diminished seventh", []string{"dim7", "°7", "o7"}, "1P", "3m", "5d", "7d"),
	chordType("minor/major seventh", []string{"mMaj7", "mM7", "m/ma7"}, "1P", "3m", "5P", "7M"),
	chordType("augmented major seventh", []string{"maj7#5", "M7#5", "+maj7"}, "1P", "3M", "5A", "7M"),
	chordType("suspended fourth seventh", []string{"7sus4", "7sus"}, "1P", "4P", "5P", "7m"),
	chordType("sixth", []string{"6"}, "1P", "3M", "5P", "6M"),
	chordType("minor sixth", []string{"m6"}, "1P", "3m", "5P", "6M"),
}

var chordSuffixes = func() map[string]ChordType {
	m := make(map[string]ChordType)
	for _, ct := range ChordTypes {
		for _, s := range ct.Symbols {
			m[s] = ct
		}
	}
	return m
}()

// ChordSpec is a resolved chord: a tonic and the intervals stacked on it.
type ChordSpec struct {
	Symbol    string     `json:"symbol"`
	Type      string     `json:"type"`
	Tonic     PitchClass `json:"tonic"`
	Intervals []Interval `json:"-"`
}

// IntervalNames returns the intervals in number-quality form
func (c ChordSpec) IntervalNames() []string {
	out := make([]string, len(c.Intervals))
	for i, iv := range c.Intervals {
		out[i] = iv.String()
	}
	return out
}

// PitchClasses spells each chord member
func (c ChordSpec) PitchClasses() []PitchClass {
	out := make([]PitchClass, 0, len(c.Intervals))
	for _, iv := range c.Intervals {
		pc, err := Transpose(c.Tonic, iv)
		if err != nil {
			continue
		}
		out = append(out, pc)
	}
	return out
}

// ResolveChord parses a chord symbol ("Dm7", "Bdim", "F#maj7") or a bare note
// name, which resolves to its major triad. Text whose tonic cannot be read,
// such as a mode name, fails with ErrUnresolvedChord.
func ResolveChord(symbol string) (ChordSpec, error) {
	text := strings.TrimSpace(symbol)
	if text == "" || strings.IndexByte(letters, text[0]) < 0 {
		return ChordSpec{}, fmt.Errorf("%q: %w", symbol, ErrUnresolvedChord)
	}

	i := 1
	for i < len(text) && (text[i] == sharp || text[i] == flat) {
		i++
	}
	tonic, err := ParsePitchClass(text[:i])
	if err != nil {
		return ChordSpec{}, fmt.Errorf("%q: %w", symbol, ErrUnresolvedChord)
	}

	ct, ok := chordSuffixes[text[i:]]
	if !ok {
		return ChordSpec{}, fmt.Errorf("%q: unknown chord suffix %q: %w", symbol, text[i:], ErrUnresolvedChord)
	}

	return ChordSpec{
		Symbol:    text,
		Type:      ct.Name,
		Tonic:     tonic,
		Intervals: ct.Intervals,
	}, nil
}

// ExpandChordToNotes places the chord's tonic at octave and transposes it by
// each interval in order, root first. A ChordSpec with an unparseable tonic yields nil.
func ExpandChordToNotes(spec ChordSpec, octave int) []Note {
	root := Note{Pitch: spec.Tonic, Octave: octave}
	notes := make([]Note, 0, len(spec.Intervals))
	for _, iv := range spec.Intervals {
		n, err := root.Transpose(iv)
		if err != nil {
			return nil
		}
		notes = append(notes, n)
	}
	return notes
}
