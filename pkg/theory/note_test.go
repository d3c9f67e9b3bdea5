package theory

import (
	"errors"
	"math"
	"testing"
)

func TestNoteFrequency(t *testing.T) {
	tests := []struct {
		note     Note
		expected float64
	}{
		{Note{"A", 4}, 440},
		{Note{"A", 3}, 220},
		{Note{"C", 4}, 261.6256},
		{Note{"D", 3}, 146.8324},
		{Note{"B#", 3}, 261.6256},
	}

	for _, tt := range tests {
		t.Run(tt.note.String(), func(t *testing.T) {
			got, err := tt.note.Frequency()
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.expected) > 0.001 {
				t.Errorf("Frequency() = %f, want %f", got, tt.expected)
			}
		})
	}
}

func TestNoteFrequencyMissing(t *testing.T) {
	_, err := Note{Pitch: "", Octave: 3}.Frequency()
	if !errors.Is(err, ErrMissingFrequency) {
		t.Errorf("error = %v, want ErrMissingFrequency", err)
	}
}

func TestNoteMIDI(t *testing.T) {
	tests := []struct {
		note     Note
		expected int
	}{
		{Note{"C", 4}, 60},
		{Note{"C", -1}, 0},
		{Note{"G", 9}, 127},
		{Note{"Cb", 4}, 59},
		{Note{"D", 3}, 50},
	}
	for _, tt := range tests {
		got, err := tt.note.MIDI()
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.expected {
			t.Errorf("%s.MIDI() = %d, want %d", tt.note, got, tt.expected)
		}
	}
}

func TestNoteTransposeCarriesOctave(t *testing.T) {
	tests := []struct {
		from     Note
		interval string
		expected string
	}{
		{Note{"B", 3}, "2m", "C4"},
		{Note{"A", 3}, "3m", "C4"},
		{Note{"D", 3}, "7m", "C4"},
		{Note{"G", 3}, "5P", "D4"},
		{Note{"C", 3}, "9M", "D4"},
	}
	for _, tt := range tests {
		iv, err := ParseInterval(tt.interval)
		if err != nil {
			t.Fatal(err)
		}
		got, err := tt.from.Transpose(iv)
		if err != nil {
			t.Fatal(err)
		}
		if got.String() != tt.expected {
			t.Errorf("%s + %s = %s, want %s", tt.from, tt.interval, got, tt.expected)
		}
	}
}

func TestParseNote(t *testing.T) {
	tests := []struct {
		input    string
		expected Note
	}{
		{"D3", Note{"D", 3}},
		{"bb4", Note{"Bb", 4}},
		{"C#-1", Note{"C#", -1}},
	}
	for _, tt := range tests {
		got, err := ParseNote(tt.input)
		if err != nil {
			t.Fatalf("ParseNote(%q) error = %v", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("ParseNote(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}

	for _, bad := range []string{"", "C", "H3", "C#x"} {
		if _, err := ParseNote(bad); err == nil {
			t.Errorf("ParseNote(%q) should fail", bad)
		}
	}
}
