package audio

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidState is returned when an oscillator is started twice or stopped before starting.
var ErrInvalidState = errors.New("invalid oscillator state")

// AudioNode is a node a signal can be connected into.
type AudioNode interface {
	process(x float64) float64
	downstream() AudioNode
	disconnect()
}

// Waveform selects the oscillator shape
type Waveform string

const (
	Sine     Waveform = "sine"
	Square   Waveform = "square"
	Sawtooth Waveform = "sawtooth"
	Triangle Waveform = "triangle"
)

// ParseWaveform validates a waveform name
func ParseWaveform(s string) (Waveform, error) {
	switch w := Waveform(s); w {
	case Sine, Square, Sawtooth, Triangle:
		return w, nil
	}
	return "", fmt.Errorf("unknown waveform %q", s)
}

// Oscillator is a scheduled tone source. Set Type and Frequency before Start.
type Oscillator struct {
	Type      Waveform
	Frequency float64
	// OnEnded runs once after the oscillator stops and its chain is released.
	OnEnded func()

	ctx     *Context
	out     AudioNode
	phase   float64
	started bool
	ended   bool
	startAt float64
	stopAt  float64
}

// Connect routes the oscillator into n
func (o *Oscillator) Connect(n AudioNode) {
	o.out = n
}

// Start schedules the oscillator to sound from when (seconds on the context
// clock). A time in the past starts it immediately.
func (o *Oscillator) Start(when float64) error {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()

	if o.started {
		return fmt.Errorf("start: %w", ErrInvalidState)
	}
	o.started = true
	o.startAt = when
	o.ctx.schedule(o)
	return nil
}

// Stop schedules the end of the tone at when.
func (o *Oscillator) Stop(when float64) error {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()

	if !o.started {
		return fmt.Errorf("stop: %w", ErrInvalidState)
	}
	o.stopAt = when
	return nil
}

// Ended reports whether the context has released the oscillator
func (o *Oscillator) Ended() bool {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.ended
}

func (o *Oscillator) next(sampleRate int) float64 {
	var s float64
	switch o.Type {
	case Square:
		if o.phase < 0.5 {
			s = 1
		} else {
			s = -1
		}
	case Sawtooth:
		s = 2*o.phase - 1
	case Triangle:
		s = 1 - 4*math.Abs(o.phase-0.5)
	default:
		s = math.Sin(2 * math.Pi * o.phase)
	}

	o.phase += o.Frequency / float64(sampleRate)
	o.phase -= math.Floor(o.phase)
	return s
}

// teardown disconnects the whole chain below the oscillator.
func (o *Oscillator) teardown() {
	n := o.out
	o.out = nil
	for n != nil {
		next := n.downstream()
		n.disconnect()
		n = next
	}
}

// FilterType selects the biquad response
type FilterType string

const (
	Lowpass  FilterType = "lowpass"
	Highpass FilterType = "highpass"
	Bandpass FilterType = "bandpass"
)

// BiquadFilter is a second-order IIR filter (RBJ cookbook coefficients).
type BiquadFilter struct {
	Type      FilterType
	Frequency float64
	Q         float64

	ctx *Context
	out AudioNode

	// coefficients and the parameters they were computed for
	b0, b1, b2, a1, a2 float64
	forType            FilterType
	forFreq, forQ      float64

	x1, x2, y1, y2 float64
}

// Connect routes the filter output into n
func (f *BiquadFilter) Connect(n AudioNode) {
	f.out = n
}

func (f *BiquadFilter) downstream() AudioNode { return f.out }

func (f *BiquadFilter) disconnect() { f.out = nil }

func (f *BiquadFilter) process(x float64) float64 {
	if f.forType != f.Type || f.forFreq != f.Frequency || f.forQ != f.Q {
		f.computeCoefficients()
	}
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

func (f *BiquadFilter) computeCoefficients() {
	f.forType, f.forFreq, f.forQ = f.Type, f.Frequency, f.Q

	q := f.Q
	if q <= 0 {
		q = 1e-4
	}
	nyquist := float64(f.ctx.sampleRate) / 2
	freq := clamp(f.Frequency, 1, nyquist*0.999)

	w0 := 2 * math.Pi * freq / float64(f.ctx.sampleRate)
	cos, sin := math.Cos(w0), math.Sin(w0)
	alpha := sin / (2 * q)

	var b0, b1, b2 float64
	switch f.Type {
	case Highpass:
		b0 = (1 + cos) / 2
		b1 = -(1 + cos)
		b2 = (1 + cos) / 2
	case Bandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	default:
		b0 = (1 - cos) / 2
		b1 = 1 - cos
		b2 = (1 - cos) / 2
	}
	a0 := 1 + alpha
	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = -2*cos/a0, (1-alpha)/a0
}

// Gain scales the signal
type Gain struct {
	Gain float64
	out  AudioNode
}

// Connect routes the gain output into n
func (g *Gain) Connect(n AudioNode) {
	g.out = n
}

func (g *Gain) downstream() AudioNode { return g.out }

func (g *Gain) disconnect() { g.out = nil }

func (g *Gain) process(x float64) float64 { return x * g.Gain }

// Destination is the context output; the signals reaching it are summed.
type Destination struct {
	ctx *Context
}

func (d *Destination) downstream() AudioNode { return nil }

func (d *Destination) disconnect() {}

func (d *Destination) process(x float64) float64 { return x }
