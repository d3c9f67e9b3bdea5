// Package explorer turns a clicked table cell into sound: chord resolution,
// octave placement, rate limiting and the audio trigger.
package explorer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/james-see/modalkit/pkg/audio"
	"github.com/james-see/modalkit/pkg/theory"
	"github.com/james-see/modalkit/pkg/throttle"
)

// ContextSource hands out the audio context chords are played on.
// *audio.Provider satisfies it.
type ContextSource interface {
	Get() (*audio.Context, error)
}

// Plan is a resolved cell: the chord and the notes it will sound.
type Plan struct {
	Root   theory.PitchClass `json:"root"`
	Cell   string            `json:"cell"`
	Chord  theory.ChordSpec  `json:"chord"`
	Offset int               `json:"octave_offset"`
	Octave int               `json:"octave"`
	Notes  []theory.Note     `json:"-"`
}

// NoteNames returns the notes as "D3", "F3", ...
func (p Plan) NoteNames() []string {
	names := make([]string, len(p.Notes))
	for i, n := range p.Notes {
		names[i] = n.String()
	}
	return names
}

// Trigger describes one accepted click
type Trigger struct {
	ID       uuid.UUID
	Plan     Plan
	Voices   int
	Duration time.Duration
}

// Explorer runs the click pipeline. Safe for concurrent use.
type Explorer struct {
	engine     *theory.Engine
	source     ContextSource
	limiter    *throttle.Limiter
	octaveBase int
	voiceOpts  []audio.VoiceOption
	duration   time.Duration
	logger     *zap.Logger
}

// Option configures an Explorer
type Option func(*Explorer)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Explorer) { e.logger = l }
}

// WithOctaveBase sets the octave chords are voiced in before the offset
func WithOctaveBase(base int) Option {
	return func(e *Explorer) { e.octaveBase = base }
}

// WithLimiter replaces the default 500ms limiter
func WithLimiter(l *throttle.Limiter) Option {
	return func(e *Explorer) { e.limiter = l }
}

// WithEngine replaces the default mode catalog engine
func WithEngine(engine *theory.Engine) Option {
	return func(e *Explorer) { e.engine = engine }
}

// WithVoiceOptions sets the synthesis parameters of every voice
func WithVoiceOptions(opts ...audio.VoiceOption) Option {
	return func(e *Explorer) { e.voiceOpts = append(e.voiceOpts, opts...) }
}

// New creates an Explorer playing through source.
func New(source ContextSource, opts ...Option) *Explorer {
	e := &Explorer{
		engine:     theory.NewEngine(nil),
		source:     source,
		limiter:    throttle.New(throttle.DefaultWindow),
		octaveBase: theory.DefaultOctaveBase,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	var vo audio.VoiceOptions
	vo.Duration = audio.DefaultNoteDuration
	for _, opt := range e.voiceOpts {
		opt(&vo)
	}
	e.duration = time.Duration(vo.Duration * float64(time.Second))
	return e
}

// Engine returns the derivation engine the explorer resolves cells against
func (e *Explorer) Engine() *theory.Engine {
	return e.engine
}

// Limiter returns the click limiter
func (e *Explorer) Limiter() *throttle.Limiter {
	return e.limiter
}

// Plan resolves cell against the selected root without playing anything.
// Mode names, placeholders and unparseable text fail with
// theory.ErrUnresolvedChord. An unresolvable octave placement is logged and
// the chord is voiced at the base octave.
func (e *Explorer) Plan(root theory.PitchClass, cell string) (Plan, error) {
	text := strings.TrimSpace(cell)
	if text == "" || text == theory.Placeholder || e.engine.IsModeName(text) {
		return Plan{}, fmt.Errorf("cell %q: %w", cell, theory.ErrUnresolvedChord)
	}

	spec, err := theory.ResolveChord(text)
	if err != nil {
		return Plan{}, err
	}

	scaleRoot := theory.ToFlatEnharmonic(root)
	chordRoot := theory.ToFlatEnharmonic(spec.Tonic)
	offset, err := theory.ResolveOctaveOffset(scaleRoot, chordRoot)
	if err != nil {
		e.logger.Warn("octave placement unresolved, using base octave",
			zap.String("root", string(root)),
			zap.String("cell", text),
			zap.Error(err),
		)
	}

	octave := e.octaveBase + offset
	return Plan{
		Root:   root,
		Cell:   text,
		Chord:  spec,
		Offset: offset,
		Octave: octave,
		Notes:  theory.ExpandChordToNotes(spec, octave),
	}, nil
}

// Click plays cell. Ignored clicks return theory.ErrUnresolvedChord or
// throttle.ErrRateLimited; neither should be shown to the user.
func (e *Explorer) Click(root theory.PitchClass, cell string) (Trigger, error) {
	plan, err := e.Plan(root, cell)
	if err != nil {
		e.logger.Debug("cell ignored", zap.String("cell", cell), zap.Error(err))
		return Trigger{}, err
	}

	if !e.limiter.Attempt() {
		e.logger.Debug("click rate limited", zap.String("cell", plan.Cell))
		return Trigger{Plan: plan}, throttle.ErrRateLimited
	}

	ctx, err := e.source.Get()
	if err != nil {
		return Trigger{Plan: plan}, fmt.Errorf("audio context: %w", err)
	}

	voices, err := audio.TriggerChord(ctx, plan.Notes, e.voiceOpts...)
	if err != nil {
		e.logger.Warn("voices skipped", zap.String("cell", plan.Cell), zap.Error(err))
	}

	t := Trigger{
		ID:       uuid.New(),
		Plan:     plan,
		Voices:   voices,
		Duration: e.duration,
	}
	e.logger.Info("chord triggered",
		zap.String("id", t.ID.String()),
		zap.String("root", string(root)),
		zap.String("chord", plan.Chord.Symbol),
		zap.Strings("notes", plan.NoteNames()),
		zap.Int("voices", voices),
	)
	return t, nil
}
