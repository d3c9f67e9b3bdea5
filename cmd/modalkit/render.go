package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/james-see/modalkit/pkg/explorer"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#39FF14")).Bold(true).Padding(0, 1)
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C0C0C0")).Padding(0, 1)
)

// renderTable draws a bordered table on terminals and tab-separated lines otherwise
func renderTable(headers []string, rows [][]string, styled bool) string {
	if !styled {
		var s strings.Builder
		s.WriteString(strings.Join(headers, "\t"))
		for _, row := range rows {
			s.WriteString("\n")
			s.WriteString(strings.Join(row, "\t"))
		}
		return s.String()
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#39FF14"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return nameStyle
			default:
				return cellStyle
			}
		}).
		String()
}

func describePlan(p explorer.Plan) string {
	var s strings.Builder
	fmt.Fprintf(&s, "%s (%s)\n", p.Chord.Symbol, p.Chord.Type)
	fmt.Fprintf(&s, "  intervals  %s\n", strings.Join(p.Chord.IntervalNames(), " "))

	spelled := make([]string, 0, len(p.Chord.Intervals))
	for _, pc := range p.Chord.PitchClasses() {
		spelled = append(spelled, string(pc))
	}
	fmt.Fprintf(&s, "  spelled    %s\n", strings.Join(spelled, " "))
	fmt.Fprintf(&s, "  octave     %d (offset %d from root %s)\n", p.Octave, p.Offset, p.Root)

	notes := make([]string, 0, len(p.Notes))
	for _, n := range p.Notes {
		if f, err := n.Frequency(); err == nil {
			notes = append(notes, fmt.Sprintf("%s %.2f Hz", n, f))
		}
	}
	fmt.Fprintf(&s, "  notes      %s\n", strings.Join(notes, ", "))
	return s.String()
}
