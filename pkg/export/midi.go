// Package export writes chords as Standard MIDI Files.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/modalkit/pkg/theory"
)

// ErrNoChords is returned when there is nothing to write
var ErrNoChords = errors.New("no chords to export")

// Exporter generates single-track SMF data, one chord per beat count.
type Exporter struct {
	ticksPerQuarter uint16
	tempo           float64
	velocity        uint8
	channel         uint8
	beats           uint32
}

// Option configures an Exporter
type Option func(*Exporter)

// WithTempo sets the tempo in BPM
func WithTempo(bpm float64) Option {
	return func(x *Exporter) { x.tempo = bpm }
}

// WithVelocity sets the note-on velocity (1-127)
func WithVelocity(v uint8) Option {
	return func(x *Exporter) { x.velocity = v }
}

// WithBeats sets how many quarter notes each chord is held
func WithBeats(n uint32) Option {
	return func(x *Exporter) { x.beats = n }
}

// WithChannel sets the MIDI channel (0-15)
func WithChannel(ch uint8) Option {
	return func(x *Exporter) { x.channel = ch }
}

// New creates an Exporter: 480 ticks per quarter, 120 BPM, velocity 100, one beat per chord.
func New(opts ...Option) *Exporter {
	x := &Exporter{
		ticksPerQuarter: 480,
		tempo:           120.0,
		velocity:        100,
		beats:           1,
	}
	for _, opt := range opts {
		opt(x)
	}
	if x.tempo <= 0 {
		x.tempo = 120.0
	}
	if x.velocity == 0 || x.velocity > 127 {
		x.velocity = 100
	}
	if x.beats == 0 {
		x.beats = 1
	}
	x.channel &= 0x0F
	return x
}

// Generate renders the chords back to back. An empty chord is a rest.
func (x *Exporter) Generate(chords ...[]theory.Note) ([]byte, error) {
	if len(chords) == 0 {
		return nil, ErrNoChords
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(x.ticksPerQuarter)

	var track smf.Track
	track.Add(0, smf.MetaTempo(x.tempo))
	track.Add(0, smf.MetaMeter(4, 4))

	length := uint32(x.ticksPerQuarter) * x.beats
	var pending uint32 // ticks since the last event

	for i, chord := range chords {
		keys, err := midiKeys(chord)
		if err != nil {
			return nil, fmt.Errorf("chord %d: %w", i+1, err)
		}
		if len(keys) == 0 {
			pending += length
			continue
		}

		for j, key := range keys {
			delta := uint32(0)
			if j == 0 {
				delta = pending
			}
			track.Add(delta, midi.NoteOn(x.channel, key, x.velocity))
		}
		for j, key := range keys {
			delta := uint32(0)
			if j == 0 {
				delta = length
			}
			track.Add(delta, midi.NoteOff(x.channel, key))
		}
		pending = 0
	}

	track.Close(pending)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the generated MIDI data to filename
func (x *Exporter) WriteFile(filename string, chords ...[]theory.Note) error {
	data, err := x.Generate(chords...)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

func midiKeys(notes []theory.Note) ([]uint8, error) {
	keys := make([]uint8, 0, len(notes))
	for _, n := range notes {
		key, err := n.MIDI()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n, err)
		}
		if key < 0 || key > 127 {
			return nil, fmt.Errorf("%s is outside the MIDI key range", n)
		}
		keys = append(keys, uint8(key))
	}
	return keys, nil
}

// Chord is a group of keys starting on the same tick
type Chord struct {
	Tick uint64
	Keys []uint8
}

// Parse reads MIDI data back into chords (note-ons grouped by start tick,
// keys ascending) and the file tempo.
func Parse(data []byte) ([]Chord, float64, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	tempo := 120.0
	byTick := make(map[uint64][]uint8)
	for _, track := range s.Tracks {
		var tick uint64
		for _, ev := range track {
			tick += uint64(ev.Delta)
			msg := ev.Message

			// tempo meta: FF 51 03 tt tt tt
			if len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
				usPerBeat := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
				if usPerBeat > 0 {
					tempo = 60000000.0 / float64(usPerBeat)
				}
				continue
			}
			// note on with non-zero velocity
			if len(msg) >= 3 && msg[0]&0xF0 == 0x90 && msg[2] > 0 {
				byTick[tick] = append(byTick[tick], msg[1])
			}
		}
	}

	chords := make([]Chord, 0, len(byTick))
	for tick, keys := range byTick {
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		chords = append(chords, Chord{Tick: tick, Keys: keys})
	}
	sort.Slice(chords, func(i, j int) bool { return chords[i].Tick < chords[j].Tick })
	return chords, tempo, nil
}
