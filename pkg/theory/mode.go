package theory

import (
	"fmt"
	"strings"
)

// DegreeCount is the number of scale degrees in every mode (I..VII)
const DegreeCount = 7

// ModeSource derives degree-aligned data for one named mode.
// Every method returns DegreeCount entries; an entry that cannot be derived is "".
type ModeSource interface {
	Name() string
	Notes(root PitchClass) []string
	Triads(root PitchClass) []string
	Sevenths(root PitchClass) []string
}

// Catalog is a fixed, ordered set of modes.
type Catalog interface {
	Modes() []ModeSource
}

// Mode is one row of derived data for a mode rooted at Root.
type Mode struct {
	Name     string   `json:"name"`
	Root     string   `json:"root"`
	Notes    []string `json:"notes"`
	Triads   []string `json:"triads"`
	Sevenths []string `json:"sevenths"`
}

// Degrees returns the sequence matching kind.
func (m Mode) Degrees(kind DisplayKind) []string {
	switch kind {
	case DisplayTriads:
		return m.Triads
	case DisplaySevenths:
		return m.Sevenths
	default:
		return m.Notes
	}
}

var (
	majorTriads   = []string{"", "m", "m", "", "", "m", "dim"}
	majorSevenths = []string{"maj7", "m7", "m7", "maj7", "7", "m7", "m7b5"}
)

// DiatonicMode is a rotation of the major scale.
type DiatonicMode struct {
	name      string
	number    int // 1 = Ionian .. 7 = Locrian
	aliases   []string
	intervals []Interval
}

// NewDiatonicMode builds the mode starting on the given degree (1..7) of the major scale.
func NewDiatonicMode(name string, number int, aliases ...string) DiatonicMode {
	ivs := make([]Interval, DegreeCount)
	start := majorSemitones[number-1]
	for i := range ivs {
		ivs[i] = Interval{
			Number:    i + 1,
			Semitones: mod(majorSemitones[(number-1+i)%DegreeCount]-start, 12),
		}
	}
	return DiatonicMode{name: name, number: number, aliases: aliases, intervals: ivs}
}

// Name returns the display name
func (d DiatonicMode) Name() string { return d.name }

// Intervals returns the mode's intervals from its root
func (d DiatonicMode) Intervals() []Interval { return d.intervals }

// Matches reports whether text names this mode, ignoring case.
func (d DiatonicMode) Matches(text string) bool {
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, d.name) {
		return true
	}
	for _, a := range d.aliases {
		if strings.EqualFold(text, a) {
			return true
		}
	}
	return false
}

// Notes returns the pitch of each degree
func (d DiatonicMode) Notes(root PitchClass) []string {
	notes := make([]string, DegreeCount)
	for i, iv := range d.intervals {
		pc, err := Transpose(root, iv)
		if err != nil {
			continue
		}
		notes[i] = string(pc)
	}
	return notes
}

// Triads returns the triad symbol built on each degree
func (d DiatonicMode) Triads(root PitchClass) []string {
	return d.chords(root, majorTriads)
}

// Sevenths returns the seventh-chord symbol built on each degree
func (d DiatonicMode) Sevenths(root PitchClass) []string {
	return d.chords(root, majorSevenths)
}

func (d DiatonicMode) chords(root PitchClass, qualities []string) []string {
	notes := d.Notes(root)
	out := make([]string, DegreeCount)
	for i, n := range notes {
		if n == "" {
			continue
		}
		out[i] = n + qualities[(d.number-1+i)%DegreeCount]
	}
	return out
}

type diatonicCatalog []DiatonicMode

func (c diatonicCatalog) Modes() []ModeSource {
	out := make([]ModeSource, len(c))
	for i, m := range c {
		out[i] = m
	}
	return out
}

// DefaultCatalog holds the seven diatonic modes in their conventional order.
var DefaultCatalog Catalog = diatonicCatalog{
	NewDiatonicMode("Ionian", 1, "major"),
	NewDiatonicMode("Dorian", 2),
	NewDiatonicMode("Phrygian", 3),
	NewDiatonicMode("Lydian", 4),
	NewDiatonicMode("Mixolydian", 5),
	NewDiatonicMode("Aeolian", 6, "minor"),
	NewDiatonicMode("Locrian", 7),
}

// Engine derives modes from a catalog.
type Engine struct {
	catalog Catalog
}

// NewEngine creates an Engine; a nil catalog selects DefaultCatalog.
func NewEngine(catalog Catalog) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog
	}
	return &Engine{catalog: catalog}
}

var defaultEngine = NewEngine(nil)

// DeriveAllModes computes notes, triads and sevenths of every catalog mode for root.
func (e *Engine) DeriveAllModes(root PitchClass) ([]Mode, error) {
	canonical, err := ParsePitchClass(string(root))
	if err != nil {
		return nil, fmt.Errorf("derive modes: %w", err)
	}

	sources := e.catalog.Modes()
	modes := make([]Mode, 0, len(sources))
	for _, src := range sources {
		modes = append(modes, Mode{
			Name:     src.Name(),
			Root:     string(canonical),
			Notes:    src.Notes(canonical),
			Triads:   src.Triads(canonical),
			Sevenths: src.Sevenths(canonical),
		})
	}
	return modes, nil
}

// ModeNames returns the catalog names in order
func (e *Engine) ModeNames() []string {
	sources := e.catalog.Modes()
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name()
	}
	return names
}

// IsModeName reports whether text is the name (or an alias) of a catalog mode.
// Such cells are labels, not chords.
func (e *Engine) IsModeName(text string) bool {
	for _, src := range e.catalog.Modes() {
		if matchesName(src, text) {
			return true
		}
	}
	return false
}

// Mode derives the catalog mode named text (or an alias of it) for root.
func (e *Engine) Mode(root PitchClass, text string) (Mode, error) {
	modes, err := e.DeriveAllModes(root)
	if err != nil {
		return Mode{}, err
	}
	for i, src := range e.catalog.Modes() {
		if matchesName(src, text) {
			return modes[i], nil
		}
	}
	return Mode{}, fmt.Errorf("unknown mode %q (choose from %s)", text, strings.Join(e.ModeNames(), ", "))
}

func matchesName(src ModeSource, text string) bool {
	if m, ok := src.(interface{ Matches(string) bool }); ok {
		return m.Matches(text)
	}
	return strings.EqualFold(strings.TrimSpace(text), src.Name())
}

// DeriveAllModes derives modes for root from DefaultCatalog
func DeriveAllModes(root PitchClass) ([]Mode, error) {
	return defaultEngine.DeriveAllModes(root)
}

// IsModeName checks text against DefaultCatalog
func IsModeName(text string) bool {
	return defaultEngine.IsModeName(text)
}
