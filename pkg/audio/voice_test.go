package audio

import (
	"errors"
	"math"
	"testing"

	"github.com/james-see/modalkit/pkg/theory"
)

// recordingBackend counts the nodes created through the Backend interface
type recordingBackend struct {
	*Context
	oscillators []*Oscillator
	filters     []*BiquadFilter
	gains       []*Gain
}

func newRecordingBackend(sampleRate int) *recordingBackend {
	return &recordingBackend{Context: NewContext(sampleRate)}
}

func (r *recordingBackend) CreateOscillator() *Oscillator {
	o := r.Context.CreateOscillator()
	r.oscillators = append(r.oscillators, o)
	return o
}

func (r *recordingBackend) CreateBiquadFilter() *BiquadFilter {
	f := r.Context.CreateBiquadFilter()
	r.filters = append(r.filters, f)
	return f
}

func (r *recordingBackend) CreateGain() *Gain {
	g := r.Context.CreateGain()
	r.gains = append(r.gains, g)
	return g
}

func TestNormalizeGain(t *testing.T) {
	tests := []struct {
		velocity int
		expected float64
	}{
		{127, 0.6},
		{0, 0},
		{40, 40.0 / 127 * 0.6},
	}
	for _, tt := range tests {
		got := NormalizeGain(tt.velocity, DefaultMaxGain)
		if math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("NormalizeGain(%d) = %f, want %f", tt.velocity, got, tt.expected)
		}
	}
}

func TestBuildVoiceDefaults(t *testing.T) {
	ctx := NewContext(44100)
	v := BuildVoice(ctx)

	if v.Oscillator.Type != Triangle {
		t.Errorf("waveform = %q, want triangle", v.Oscillator.Type)
	}
	if v.Filter.Type != Lowpass || v.Filter.Frequency != 1500 || v.Filter.Q != 1 {
		t.Errorf("filter = %s %.0f Hz Q %.1f, want lowpass 1500 Hz Q 1", v.Filter.Type, v.Filter.Frequency, v.Filter.Q)
	}
	if math.Abs(v.Gain.Gain-NormalizeGain(40, 0.6)) > 1e-12 {
		t.Errorf("gain = %f", v.Gain.Gain)
	}
	if v.Oscillator.out != AudioNode(v.Filter) || v.Filter.out != AudioNode(v.Gain) || v.Gain.out != AudioNode(ctx.Destination()) {
		t.Error("chain is not oscillator -> filter -> gain -> destination")
	}
	if ctx.Active() != 0 {
		t.Errorf("BuildVoice started %d oscillators", ctx.Active())
	}
}

func TestBuildVoiceOptions(t *testing.T) {
	ctx := NewContext(44100)
	v := BuildVoice(ctx, WithVelocity(127), WithWaveform(Square))
	if v.Oscillator.Type != Square {
		t.Errorf("waveform = %q, want square", v.Oscillator.Type)
	}
	if math.Abs(v.Gain.Gain-0.6) > 1e-12 {
		t.Errorf("gain = %f, want 0.6", v.Gain.Gain)
	}
}

func TestBuildVoiceChainsAreIndependent(t *testing.T) {
	ctx := NewContext(44100)
	a := BuildVoice(ctx)
	b := BuildVoice(ctx)
	if a.Oscillator == b.Oscillator || a.Filter == b.Filter || a.Gain == b.Gain {
		t.Error("voices share nodes")
	}
}

func chordNotes(t *testing.T, symbol string, octave int) []theory.Note {
	t.Helper()
	spec, err := theory.ResolveChord(symbol)
	if err != nil {
		t.Fatal(err)
	}
	return theory.ExpandChordToNotes(spec, octave)
}

func TestTriggerChord(t *testing.T) {
	b := newRecordingBackend(1000)
	notes := chordNotes(t, "Dm7", 3)

	started, err := TriggerChord(b, notes)
	if err != nil {
		t.Fatalf("TriggerChord() error = %v", err)
	}
	if started != 4 {
		t.Fatalf("started = %d, want 4", started)
	}
	if len(b.oscillators) != 4 || len(b.filters) != 4 || len(b.gains) != 4 {
		t.Fatalf("created %d/%d/%d nodes, want 4 of each", len(b.oscillators), len(b.filters), len(b.gains))
	}
	for i, o := range b.oscillators {
		expected, _ := notes[i].Frequency()
		if o.Frequency != expected {
			t.Errorf("oscillator %d frequency = %f, want %f", i, o.Frequency, expected)
		}
		if o.startAt != 0 || o.stopAt != DefaultNoteDuration {
			t.Errorf("oscillator %d scheduled %f..%f, want 0..0.5", i, o.startAt, o.stopAt)
		}
	}
	if b.Active() != 4 {
		t.Errorf("Active() = %d, want 4", b.Active())
	}
}

func TestTriggerChordSkipsMissingFrequency(t *testing.T) {
	b := newRecordingBackend(1000)
	notes := []theory.Note{{Pitch: "C", Octave: 3}, {Pitch: "", Octave: 3}, {Pitch: "G", Octave: 3}}

	started, err := TriggerChord(b, notes)
	if started != 2 {
		t.Errorf("started = %d, want 2", started)
	}
	if !errors.Is(err, theory.ErrMissingFrequency) {
		t.Errorf("error = %v, want ErrMissingFrequency", err)
	}
	if len(b.oscillators) != 2 {
		t.Errorf("created %d oscillators, want 2", len(b.oscillators))
	}
}

func TestTriggerChordReleasesVoicesAfterDuration(t *testing.T) {
	b := newRecordingBackend(1000)
	ended := 0

	if _, err := TriggerChord(b, chordNotes(t, "C", 4)); err != nil {
		t.Fatal(err)
	}
	for _, o := range b.oscillators {
		o.OnEnded = func() { ended++ }
	}

	buf := make([]float32, 500)
	b.Render(buf)
	if b.Active() != 3 {
		t.Fatalf("Active() before stop = %d, want 3", b.Active())
	}
	if peak(buf) == 0 {
		t.Error("no signal while the chord sounds")
	}

	b.Render(make([]float32, 1))
	if b.Active() != 0 {
		t.Errorf("Active() after stop = %d, want 0", b.Active())
	}
	if ended != 3 {
		t.Errorf("OnEnded called %d times, want 3", ended)
	}
	for i, o := range b.oscillators {
		if !o.Ended() || o.out != nil || b.filters[i].out != nil || b.gains[i].out != nil {
			t.Errorf("voice %d not torn down", i)
		}
	}

	b.Render(buf)
	if peak(buf) != 0 {
		t.Error("signal after every voice stopped")
	}
}

func TestTriggerChordOverlaps(t *testing.T) {
	b := newRecordingBackend(1000)
	if _, err := TriggerChord(b, chordNotes(t, "C", 4)); err != nil {
		t.Fatal(err)
	}
	b.Render(make([]float32, 250))
	if _, err := TriggerChord(b, chordNotes(t, "G", 4)); err != nil {
		t.Fatal(err)
	}
	if b.Active() != 6 {
		t.Errorf("Active() = %d, want 6 overlapping voices", b.Active())
	}
	b.Render(make([]float32, 251))
	if b.Active() != 3 {
		t.Errorf("Active() = %d, want the 3 later voices", b.Active())
	}
}

func peak(buf []float32) float64 {
	var p float64
	for _, s := range buf {
		p = math.Max(p, math.Abs(float64(s)))
	}
	return p
}
