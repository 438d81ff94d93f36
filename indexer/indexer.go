// Package indexer applies pluggable index functions to aligned part
// combinations.
//
// Every concrete indexer is described by a Spec: the kind of input it
// accepts, the settings it recognises, which part combinations it analyses and
// the index function it applies to each aligned row. New validates input and
// settings up front; Run aligns each combination, applies the function row by
// row and labels the output with the indexer's name and the combination.
//
//	idx, err := indexer.New(spec, parts, model.Settings{"directed": false})
//	if err != nil {
//		return err
//	}
//	table, err := idx.Run(ctx)
package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/jsphweid/polyindex/align"
	"github.com/jsphweid/polyindex/constants"
	"github.com/jsphweid/polyindex/metrics"
	"github.com/jsphweid/polyindex/model"
	"github.com/jsphweid/polyindex/parallel"
	"github.com/jsphweid/polyindex/result"
)

var ErrCombination = errors.New("combination names a missing part")

// Func maps one simultaneity to a value. Returning false drops the row.
type Func func(row []model.Cell) (string, bool)

// FuncFactory builds the index function from validated settings.
type FuncFactory func(settings model.Settings) Func

// Static wraps a function that ignores settings.
func Static(fn Func) FuncFactory {
	return func(model.Settings) Func { return fn }
}

type Spec struct {
	Name         string
	RequiredKind model.Kind
	Settings     []SettingSpec
	Policy       Policy
	Func         FuncFactory
}

// Prepare performs the checks every indexer runs at construction: input kind,
// required settings and setting rules. It returns the merged settings.
func Prepare(spec Spec, parts []model.Sequence, settings model.Settings) (model.Settings, error) {
	for i, p := range parts {
		if p.Kind != spec.RequiredKind {
			return nil, &TypeError{Indexer: spec.Name, Expected: spec.RequiredKind, Actual: p.Kind, Position: i}
		}
	}
	return ValidateSettings(spec.Name, spec.Settings, settings)
}

type Indexer struct {
	spec     Spec
	parts    []model.Sequence
	settings model.Settings
	fn       Func
	workers  int
	log      logr.Logger
}

type Option func(*Indexer)

func WithWorkers(n int) Option {
	return func(i *Indexer) {
		i.workers = n
	}
}

func WithLogger(log logr.Logger) Option {
	return func(i *Indexer) {
		i.log = log
	}
}

func New(spec Spec, parts []model.Sequence, settings model.Settings, opts ...Option) (*Indexer, error) {
	merged, err := Prepare(spec, parts, settings)
	if err != nil {
		return nil, err
	}
	if spec.Policy == nil || spec.Func == nil {
		return nil, fmt.Errorf("%v: spec needs a policy and an index function", spec.Name)
	}

	i := &Indexer{
		spec:     spec,
		parts:    parts,
		settings: merged,
		workers:  constants.GetMaxWorkers(),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if _, ok := merged[MP.Name]; ok && !GetBool(merged, MP.Name) {
		i.workers = 1
	}
	i.fn = spec.Func(merged)
	i.log = i.log.WithValues("indexer", spec.Name)
	return i, nil
}

func (i *Indexer) Name() string {
	return i.spec.Name
}

// Settings returns a copy of the validated settings.
func (i *Indexer) Settings() model.Settings {
	res := make(model.Settings, len(i.settings))
	for k, v := range i.settings {
		res[k] = v
	}
	return res
}

func (i *Indexer) Combinations() []model.Combination {
	return i.spec.Policy.Combinations(len(i.parts))
}

// Run indexes every combination and returns one labelled column per
// combination, in combination order.
func (i *Indexer) Run(ctx context.Context) (*result.Table, error) {
	combos := i.Combinations()
	for _, c := range combos {
		for _, p := range c {
			if p < 0 || p >= len(i.parts) {
				return nil, fmt.Errorf("%w: %v has %d parts, got %v", ErrCombination, i.spec.Name, len(i.parts), c)
			}
		}
	}
	i.log.V(1).Info("indexing", "parts", len(i.parts), "combinations", len(combos), "workers", i.workers)

	seqs, err := parallel.Map(ctx, len(combos), i.workers, func(_ context.Context, n int) (model.Sequence, error) {
		voices := make([]model.Sequence, len(combos[n]))
		for j, p := range combos[n] {
			voices[j] = i.parts[p]
		}
		return Apply(voices, i.fn), nil
	})
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(combos))
	var rows int
	for n, c := range combos {
		labels[n] = model.CombinationLabel(c)
		rows += seqs[n].Len()
	}
	metrics.IndexerRuns.WithLabelValues(i.spec.Name).Inc()
	metrics.IndexedRows.WithLabelValues(i.spec.Name).Add(float64(rows))
	i.log.V(1).Info("indexed", "rows", rows)

	return result.MakeReturn(i.spec.Name, labels, seqs)
}

// Apply aligns voices and maps fn over every row, keeping the rows fn accepts.
func Apply(voices []model.Sequence, fn Func) model.Sequence {
	table := align.Align(voices)
	res := model.Sequence{Kind: model.KindSeries}
	for r := 0; r < table.Len(); r++ {
		if v, ok := fn(table.Row(r)); ok {
			res.Events = append(res.Events, model.Event{Offset: table.Offsets[r], Value: v})
		}
	}
	return res
}
