// Package audio provides a small software audio graph (oscillator, biquad
// filter, gain, destination) clocked in samples, the voice and chord trigger
// built on it, and the output device that plays it.
package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

// DefaultSampleRate is used when no sample rate is configured.
const DefaultSampleRate = 44100

// Backend is the capability set voices are built from.
type Backend interface {
	CreateOscillator() *Oscillator
	CreateBiquadFilter() *BiquadFilter
	CreateGain() *Gain
	Destination() *Destination
	CurrentTime() float64
}

// Context owns the sample clock, the destination mixer and every scheduled
// oscillator. Triggering and rendering may run on different goroutines.
type Context struct {
	mu         sync.Mutex
	sampleRate int
	frame      int64
	dest       *Destination
	scheduled  []*Oscillator

	readBuf []float32 // only touched by Read
}

var _ Backend = (*Context)(nil)

// NewContext creates a Context; a non-positive rate selects DefaultSampleRate.
func NewContext(sampleRate int) *Context {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	c := &Context{sampleRate: sampleRate}
	c.dest = &Destination{ctx: c}
	return c
}

// SampleRate returns the rendering rate in Hz
func (c *Context) SampleRate() int {
	return c.sampleRate
}

// CurrentTime returns the clock position in seconds.
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeAt(c.frame)
}

func (c *Context) timeAt(frame int64) float64 {
	return float64(frame) / float64(c.sampleRate)
}

// CreateOscillator returns an unstarted sine oscillator at 440 Hz.
func (c *Context) CreateOscillator() *Oscillator {
	return &Oscillator{
		ctx:       c,
		Type:      Sine,
		Frequency: 440,
		stopAt:    math.Inf(1),
	}
}

// CreateBiquadFilter returns a lowpass filter at 350 Hz, Q 1.
func (c *Context) CreateBiquadFilter() *BiquadFilter {
	return &BiquadFilter{
		ctx:       c,
		Type:      Lowpass,
		Frequency: 350,
		Q:         1,
	}
}

// CreateGain returns a unity gain node.
func (c *Context) CreateGain() *Gain {
	return &Gain{Gain: 1}
}

// Destination returns the mixer every audible chain ends in.
func (c *Context) Destination() *Destination {
	return c.dest
}

// Active returns the number of oscillators that are scheduled and not yet ended.
func (c *Context) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.scheduled)
}

func (c *Context) schedule(o *Oscillator) {
	c.scheduled = append(c.scheduled, o)
}

// Render mixes the next len(out) frames into out and advances the clock.
// Oscillators whose stop time has passed are removed and their chains
// disconnected before Render returns.
func (c *Context) Render(out []float32) {
	c.mu.Lock()

	var ended []*Oscillator
	for i := range out {
		t := c.timeAt(c.frame)
		var sum float64
		for _, o := range c.scheduled {
			if o.ended || t < o.startAt {
				continue
			}
			if t >= o.stopAt {
				o.ended = true
				ended = append(ended, o)
				continue
			}
			sum += c.pull(o)
		}
		out[i] = float32(clamp(sum, -1, 1))
		c.frame++
	}

	if len(ended) > 0 {
		live := c.scheduled[:0]
		for _, o := range c.scheduled {
			if !o.ended {
				live = append(live, o)
			}
		}
		for i := len(live); i < len(c.scheduled); i++ {
			c.scheduled[i] = nil
		}
		c.scheduled = live
		for _, o := range ended {
			o.teardown()
		}
	}
	c.mu.Unlock()

	for _, o := range ended {
		if o.OnEnded != nil {
			o.OnEnded()
		}
	}
}

// pull generates one sample from o and runs it down its chain. Chains that do
// not reach the destination are silent.
func (c *Context) pull(o *Oscillator) float64 {
	s := o.next(c.sampleRate)
	for n := o.out; n != nil; n = n.downstream() {
		if n == AudioNode(c.dest) {
			return s
		}
		s = n.process(s)
	}
	return 0
}

// Read renders mono float32 little-endian samples, making the Context an
// endless io.Reader for the output device.
func (c *Context) Read(p []byte) (int, error) {
	n := len(p) / 4
	if cap(c.readBuf) < n {
		c.readBuf = make([]float32, n)
	}
	samples := c.readBuf[:n]
	c.Render(samples)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return n * 4, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
