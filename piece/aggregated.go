package piece

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/jsphweid/polyindex/constants"
	"github.com/jsphweid/polyindex/experiment"
	"github.com/jsphweid/polyindex/metrics"
	"github.com/jsphweid/polyindex/model"
	"github.com/jsphweid/polyindex/parallel"
	"github.com/jsphweid/polyindex/result"
)

// Aggregated runs the same analyzer chain over many pieces.
type Aggregated struct {
	Pieces  []*Piece
	Workers int
	Log     logr.Logger
}

func NewAggregated(pieces []*Piece) *Aggregated {
	return &Aggregated{
		Pieces:  pieces,
		Workers: constants.GetMaxWorkers(),
		Log:     logr.Discard(),
	}
}

// Run returns one table per piece, in piece order. The first failing piece
// stops the run.
func (a *Aggregated) Run(ctx context.Context, steps ...model.Step) ([]*result.Table, error) {
	a.Log.Info("running analyzers", "pieces", len(a.Pieces), "chain", model.ChainName(steps))
	return parallel.Map(ctx, len(a.Pieces), a.Workers, func(ctx context.Context, i int) (*result.Table, error) {
		t, err := a.Pieces[i].GetData(ctx, steps...)
		if err != nil {
			metrics.PieceFailures.Inc()
			a.Log.Error(err, "analysis failed", "piece", a.Pieces[i].Name)
			return nil, err
		}
		metrics.PiecesIndexed.Inc()
		return t, nil
	})
}

// Frequency counts tokens of the chain's output across every piece.
func (a *Aggregated) Frequency(ctx context.Context, steps ...model.Step) (*experiment.FrequencyTable, error) {
	tables, err := a.Run(ctx, steps...)
	if err != nil {
		return nil, err
	}
	freqs := make([]*experiment.FrequencyTable, len(tables))
	for i, t := range tables {
		freqs[i] = experiment.Frequency(t)
	}
	return experiment.Aggregate(freqs...), nil
}
