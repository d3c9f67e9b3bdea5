package theory

import (
	"fmt"
	"strconv"
)

// Interval is a diatonic number (1 = unison, 3 = third, 9 = ninth, ...)
// together with its size in semitones.
type Interval struct {
	Number    int
	Semitones int
}

// semitones of the major/perfect interval for each simple number 1..7
var majorSemitones = [7]int{0, 2, 4, 5, 7, 9, 11}

func isPerfect(simple int) bool {
	return simple == 0 || simple == 3 || simple == 4
}

func (iv Interval) base() int {
	simple := (iv.Number - 1) % 7
	return majorSemitones[simple] + 12*((iv.Number-1)/7)
}

// String returns the interval in number-quality form, e.g. "3m" or "5P".
func (iv Interval) String() string {
	if iv.Number < 1 {
		return "?"
	}
	diff := iv.Semitones - iv.base()
	var q string
	if isPerfect((iv.Number - 1) % 7) {
		switch {
		case diff == 0:
			q = "P"
		case diff > 0:
			q = repeat('A', diff)
		default:
			q = repeat('d', -diff)
		}
	} else {
		switch {
		case diff == 0:
			q = "M"
		case diff == -1:
			q = "m"
		case diff > 0:
			q = repeat('A', diff)
		default:
			q = repeat('d', -diff-1)
		}
	}
	return strconv.Itoa(iv.Number) + q
}

func repeat(c byte, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = c
	}
	return string(b)
}

// ParseInterval parses the number-quality form produced by String.
func ParseInterval(s string) (Interval, error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i == len(s) {
		return Interval{}, fmt.Errorf("invalid interval %q", s)
	}
	num, err := strconv.Atoi(s[:i])
	if err != nil || num < 1 {
		return Interval{}, fmt.Errorf("invalid interval number in %q", s)
	}

	iv := Interval{Number: num}
	base := iv.base()
	perfect := isPerfect((num - 1) % 7)
	quality := s[i:]

	switch {
	case quality == "P" && perfect:
		iv.Semitones = base
	case quality == "M" && !perfect:
		iv.Semitones = base
	case quality == "m" && !perfect:
		iv.Semitones = base - 1
	case allOf(quality, 'A'):
		iv.Semitones = base + len(quality)
	case allOf(quality, 'd') && perfect:
		iv.Semitones = base - len(quality)
	case allOf(quality, 'd'):
		iv.Semitones = base - 1 - len(quality)
	default:
		return Interval{}, fmt.Errorf("invalid interval quality in %q", s)
	}
	return iv, nil
}

func allOf(s string, c byte) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != c {
			return false
		}
	}
	return true
}

func mustIntervals(names ...string) []Interval {
	out := make([]Interval, len(names))
	for i, name := range names {
		iv, err := ParseInterval(name)
		if err != nil {
			panic(err)
		}
		out[i] = iv
	}
	return out
}
