// Package piece runs chains of analyzers over whole scores, one at a time or
// across a collection.
package piece

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/jsphweid/polyindex/midi"
	"github.com/jsphweid/polyindex/model"
	"github.com/jsphweid/polyindex/result"
)

type Piece struct {
	Name     string
	Metadata *model.Metadata

	parts    []model.Sequence
	registry Registry
	log      logr.Logger

	mu       sync.Mutex
	noteRest *result.Table
}

type Option func(*Piece)

func WithRegistry(r Registry) Option {
	return func(p *Piece) {
		p.registry = r
	}
}

func WithLogger(log logr.Logger) Option {
	return func(p *Piece) {
		p.log = log
	}
}

func WithMetadata(m *model.Metadata) Option {
	return func(p *Piece) {
		p.Metadata = m
	}
}

// FromParts wraps parts that were already imported.
func FromParts(name string, parts []model.Sequence, opts ...Option) *Piece {
	p := &Piece{
		Name:     name,
		parts:    parts,
		registry: DefaultRegistry(),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.WithValues("piece", name)
	return p
}

// Load imports a MIDI file. The piece is named after the file.
func Load(path string, opts ...Option) (*Piece, error) {
	s, err := midi.ReadMidiFile(path)
	if err != nil {
		return nil, err
	}
	parts, err := midi.Parts(s)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return FromParts(name, parts, opts...), nil
}

func (p *Piece) Parts() []model.Sequence {
	res := make([]model.Sequence, len(p.parts))
	copy(res, p.parts)
	return res
}

// NoteRest returns the note/rest index of the piece, computing it once.
func (p *Piece) NoteRest(ctx context.Context) (*result.Table, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.noteRest != nil {
		return p.noteRest, nil
	}
	t, err := p.run(ctx, model.Step{Analyzer: NoteRest}, p.parts)
	if err != nil {
		return nil, err
	}
	p.noteRest = t
	return t, nil
}

// GetData runs steps in order, each receiving the previous step's columns as
// its parts. The chain starts from the note/rest index, which is also the
// result when no steps are given.
func (p *Piece) GetData(ctx context.Context, steps ...model.Step) (*result.Table, error) {
	if err := p.registry.Validate(steps); err != nil {
		return nil, err
	}
	if len(steps) > 0 && steps[0].Analyzer == NoteRest && len(steps[0].Settings) > 0 {
		t, err := p.run(ctx, steps[0], p.parts)
		if err != nil {
			return nil, err
		}
		return p.chain(ctx, t, steps[1:])
	}

	t, err := p.NoteRest(ctx)
	if err != nil {
		return nil, err
	}
	if len(steps) > 0 && steps[0].Analyzer == NoteRest {
		steps = steps[1:]
	}
	return p.chain(ctx, t, steps)
}

func (p *Piece) chain(ctx context.Context, t *result.Table, steps []model.Step) (*result.Table, error) {
	var err error
	for _, step := range steps {
		t, err = p.run(ctx, step, t.Sequences())
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (p *Piece) run(ctx context.Context, step model.Step, parts []model.Sequence) (*result.Table, error) {
	construct, err := p.registry.Lookup(step.Analyzer)
	if err != nil {
		return nil, err
	}
	r, err := construct(parts, step.Settings, p.log)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", p.Name, err)
	}
	t, err := r.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", p.Name, err)
	}
	p.log.V(1).Info("ran analyzer", "analyzer", step.Analyzer, "columns", t.Width(), "rows", t.Len())
	return t, nil
}
