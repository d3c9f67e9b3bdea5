package theory

import (
	"fmt"
	"strings"
)

// DisplayKind selects which degree data a mode table shows.
type DisplayKind string

const (
	DisplayNotes    DisplayKind = "notes"
	DisplayTriads   DisplayKind = "triads"
	DisplaySevenths DisplayKind = "sevenths"
)

// DisplayKinds lists the kinds in selector order
var DisplayKinds = []DisplayKind{DisplayTriads, DisplayNotes, DisplaySevenths}

// Placeholder is rendered for cells with no value.
const Placeholder = "-"

// TableHeaders are the column titles of a mode table
var TableHeaders = []string{"name", "I", "II", "III", "IV", "V", "VI", "VII"}

// ParseDisplayKind accepts a kind name in any case.
func ParseDisplayKind(s string) (DisplayKind, error) {
	k := DisplayKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case DisplayNotes, DisplayTriads, DisplaySevenths:
		return k, nil
	}
	return "", fmt.Errorf("unknown display kind %q (want notes, triads or sevenths)", s)
}

// Label returns the capitalized kind name used in selectors.
func (k DisplayKind) Label() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Next cycles through DisplayKinds
func (k DisplayKind) Next() DisplayKind {
	for i, dk := range DisplayKinds {
		if dk == k {
			return DisplayKinds[(i+1)%len(DisplayKinds)]
		}
	}
	return DisplayKinds[0]
}

// Table renders one row per mode: the mode name followed by seven degree
// cells. Empty cells become Placeholder.
func (e *Engine) Table(root PitchClass, kind DisplayKind) ([][]string, error) {
	modes, err := e.DeriveAllModes(root)
	if err != nil {
		return nil, err
	}
	return TableRows(modes, kind), nil
}

// TableRows lays out already derived modes.
func TableRows(modes []Mode, kind DisplayKind) [][]string {
	rows := make([][]string, 0, len(modes))
	for _, m := range modes {
		row := make([]string, len(TableHeaders))
		row[0] = m.Name
		degrees := m.Degrees(kind)
		for i := 1; i < len(row); i++ {
			cell := ""
			if i-1 < len(degrees) {
				cell = degrees[i-1]
			}
			if cell == "" {
				cell = Placeholder
			}
			row[i] = cell
		}
		rows = append(rows, row)
	}
	return rows
}

// Table renders the DefaultCatalog table for root
func Table(root PitchClass, kind DisplayKind) ([][]string, error) {
	return defaultEngine.Table(root, kind)
}
