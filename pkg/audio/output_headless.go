//go:build headless

package audio

import "io"

// Output discards audio in headless builds.
type Output struct {
	started bool
}

func NewOutput(src io.Reader, sampleRate int) (*Output, error) {
	return &Output{}, nil
}

func (o *Output) Start() {
	o.started = true
}

func (o *Output) Close() error {
	o.started = false
	return nil
}
