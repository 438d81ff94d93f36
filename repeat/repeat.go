// Package repeat filters consecutive identical events, keeping the onset of
// every run.
package repeat

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/jsphweid/polyindex/indexer"
	"github.com/jsphweid/polyindex/metrics"
	"github.com/jsphweid/polyindex/model"
	"github.com/jsphweid/polyindex/result"
)

type Indexer struct {
	parts []model.Sequence
	log   logr.Logger
}

var Spec = indexer.Spec{
	Name:         indexer.QualifiedName(Indexer{}),
	RequiredKind: model.KindSeries,
}

func New(parts []model.Sequence, settings model.Settings, log logr.Logger) (*Indexer, error) {
	if _, err := indexer.Prepare(Spec, parts, settings); err != nil {
		return nil, err
	}
	return &Indexer{parts: parts, log: log.WithValues("indexer", Spec.Name)}, nil
}

// Filter drops every event equal to the one before it. The result never
// shares storage with s.
func Filter(s model.Sequence) model.Sequence {
	if s.Len() < 2 {
		return s.Clone()
	}
	res := model.Sequence{Kind: s.Kind, Label: s.Label, Events: make([]model.Event, 0, s.Len())}
	for n, e := range s.Events {
		if n > 0 && e.Value == s.Events[n-1].Value {
			continue
		}
		res.Events = append(res.Events, e)
	}
	return res
}

func (i *Indexer) Run(ctx context.Context) (*result.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	post := make([]model.Sequence, len(i.parts))
	var dropped int
	for n, p := range i.parts {
		post[n] = Filter(p)
		dropped += p.Len() - post[n].Len()
	}
	metrics.IndexerRuns.WithLabelValues(Spec.Name).Inc()
	i.log.V(1).Info("filtered repeats", "parts", len(i.parts), "dropped", dropped)
	return result.MakeReturn(Spec.Name, result.PartLabels(i.parts), post)
}

// labels keeps the input labels when they are usable as column names and
// falls back to part positions otherwise.
