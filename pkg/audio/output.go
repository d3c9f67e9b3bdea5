//go:build !headless

package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Output plays a sample stream on the system audio device through oto.
// oto allows a single context per process, so create at most one Output.
type Output struct {
	ctx     *oto.Context
	player  *oto.Player
	started bool
	mutex   sync.Mutex
}

// NewOutput opens the device for mono float32 samples read from src.
func NewOutput(src io.Reader, sampleRate int) (*Output, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   40 * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	return &Output{
		ctx:    ctx,
		player: ctx.NewPlayer(src),
	}, nil
}

// Start begins playback
func (o *Output) Start() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if !o.started && o.player != nil {
		o.player.Play()
		o.started = true
	}
}

// Close stops playback and releases the player.
func (o *Output) Close() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	o.started = false
	return err
}
