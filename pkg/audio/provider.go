package audio

import (
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Sink is an output device consuming the context's sample stream.
type Sink interface {
	Start()
	Close() error
}

// SinkFactory opens a Sink reading from src.
type SinkFactory func(src io.Reader, sampleRate int) (Sink, error)

// DeviceSink opens the system audio device.
func DeviceSink(src io.Reader, sampleRate int) (Sink, error) {
	out, err := NewOutput(src, sampleRate)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ErrClosed is returned by Provider.Get after Close.
var ErrClosed = errors.New("audio provider closed")

// Provider owns the process-wide Context. The Context is created on the
// first Get and never replaced afterwards.
type Provider struct {
	mu         sync.Mutex
	ctx        *Context
	sink       Sink
	closed     bool
	sampleRate int
	newSink    SinkFactory
	logger     *zap.Logger
}

// ProviderOption configures a Provider
type ProviderOption func(*Provider)

// WithSampleRate sets the context and device sample rate
func WithSampleRate(rate int) ProviderOption {
	return func(p *Provider) { p.sampleRate = rate }
}

// WithSink replaces the device sink, e.g. with a headless one
func WithSink(f SinkFactory) ProviderOption {
	return func(p *Provider) { p.newSink = f }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) ProviderOption {
	return func(p *Provider) { p.logger = l }
}

// NewProvider creates a Provider. Nothing is opened until Get.
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{
		sampleRate: DefaultSampleRate,
		newSink:    DeviceSink,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the shared Context, creating it and starting the sink if absent.
func (p *Provider) Get() (*Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if p.ctx != nil {
		return p.ctx, nil
	}

	ctx := NewContext(p.sampleRate)
	sink, err := p.newSink(ctx, ctx.SampleRate())
	if err != nil {
		return nil, err
	}
	sink.Start()

	p.ctx = ctx
	p.sink = sink
	p.logger.Info("audio context created", zap.Int("sample_rate", ctx.SampleRate()))
	return p.ctx, nil
}

// Close releases the sink. The provider cannot be reused.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.sink == nil {
		return nil
	}
	err := p.sink.Close()
	p.sink = nil
	return err
}
