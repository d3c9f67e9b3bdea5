package audio

import (
	"errors"
	"fmt"

	"github.com/james-see/modalkit/pkg/theory"
)

// Voice defaults
const (
	DefaultVelocity        = 40
	DefaultWaveform        = Triangle
	DefaultMaxGain         = 0.6
	DefaultFilterFrequency = 1500.0
	DefaultFilterQ         = 1.0
	DefaultNoteDuration    = 0.5 // seconds
	MaxVelocity            = 127
)

// VoiceOptions holds the per-voice synthesis parameters
type VoiceOptions struct {
	Velocity        int
	Waveform        Waveform
	MaxGain         float64
	FilterFrequency float64
	FilterQ         float64
	Duration        float64
}

// VoiceOption modifies VoiceOptions
type VoiceOption func(*VoiceOptions)

// WithVelocity sets the MIDI-style velocity (0-127)
func WithVelocity(v int) VoiceOption {
	return func(o *VoiceOptions) { o.Velocity = v }
}

// WithWaveform sets the oscillator waveform
func WithWaveform(w Waveform) VoiceOption {
	return func(o *VoiceOptions) { o.Waveform = w }
}

// WithDuration sets how long each triggered note sounds, in seconds
func WithDuration(seconds float64) VoiceOption {
	return func(o *VoiceOptions) { o.Duration = seconds }
}

// WithMaxGain sets the gain reached at velocity 127
func WithMaxGain(g float64) VoiceOption {
	return func(o *VoiceOptions) { o.MaxGain = g }
}

func applyVoiceOptions(opts []VoiceOption) VoiceOptions {
	o := VoiceOptions{
		Velocity:        DefaultVelocity,
		Waveform:        DefaultWaveform,
		MaxGain:         DefaultMaxGain,
		FilterFrequency: DefaultFilterFrequency,
		FilterQ:         DefaultFilterQ,
		Duration:        DefaultNoteDuration,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NormalizeGain maps a velocity to a linear gain: (velocity/127) * maxGain.
func NormalizeGain(velocity int, maxGain float64) float64 {
	return float64(velocity) / MaxVelocity * maxGain
}

// Voice is one note's signal chain: oscillator -> lowpass -> gain -> destination.
type Voice struct {
	Oscillator *Oscillator
	Filter     *BiquadFilter
	Gain       *Gain
}

// BuildVoice creates and wires a new, unstarted chain. Chains never share nodes.
func BuildVoice(b Backend, opts ...VoiceOption) *Voice {
	o := applyVoiceOptions(opts)

	filter := b.CreateBiquadFilter()
	filter.Type = Lowpass
	filter.Frequency = o.FilterFrequency
	filter.Q = o.FilterQ

	gain := b.CreateGain()
	filter.Connect(gain)
	gain.Connect(b.Destination())

	osc := b.CreateOscillator()
	osc.Type = o.Waveform
	osc.Connect(filter)

	gain.Gain = NormalizeGain(o.Velocity, o.MaxGain)

	return &Voice{Oscillator: osc, Filter: filter, Gain: gain}
}

// TriggerChord starts one voice per note immediately and schedules each to
// stop Duration seconds after its start. Notes without a frequency are
// skipped; their errors are joined in the returned error while the other
// voices still sound. It returns the number of voices started.
func TriggerChord(b Backend, notes []theory.Note, opts ...VoiceOption) (int, error) {
	o := applyVoiceOptions(opts)

	var errs []error
	started := 0
	for _, note := range notes {
		freq, err := note.Frequency()
		if err != nil {
			errs = append(errs, err)
			continue
		}

		v := BuildVoice(b, opts...)
		v.Oscillator.Frequency = freq
		now := b.CurrentTime()
		if err := v.Oscillator.Start(now); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", note, err))
			continue
		}
		if err := v.Oscillator.Stop(now + o.Duration); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", note, err))
			continue
		}
		started++
	}
	return started, errors.Join(errs...)
}
