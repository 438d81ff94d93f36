// Package offset regularizes observations onto a fixed grid of offsets.
//
// Events that fall between grid points only survive if nothing else happens
// before the next grid point; events that last several steps are repeated at
// each. Every part's grid starts at the earliest offset in the piece and runs
// one step past its own final event when that event is off-grid, so the last
// observation of every part appears exactly once.
package offset

import (
	"context"
	"math"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/jsphweid/polyindex/align"
	"github.com/jsphweid/polyindex/constants"
	"github.com/jsphweid/polyindex/indexer"
	"github.com/jsphweid/polyindex/metrics"
	"github.com/jsphweid/polyindex/model"
	"github.com/jsphweid/polyindex/result"
)

type Indexer struct {
	parts    []model.Sequence
	step     int64
	method   align.Method
	settings model.Settings
	log      logr.Logger
}

const (
	QuarterLength = "quarterLength"
	Method        = "method"
)

var Spec = indexer.Spec{
	Name:         indexer.QualifiedName(Indexer{}),
	RequiredKind: model.KindSeries,
	Settings: []indexer.SettingSpec{
		{Name: QuarterLength, Kind: indexer.Float, Required: true, Rule: "gte=0.001"},
		{Name: Method, Kind: indexer.String, Default: "ffill", Rule: "oneof=ffill none"},
		indexer.MP,
	},
}

func New(parts []model.Sequence, settings model.Settings, log logr.Logger) (*Indexer, error) {
	merged, err := indexer.Prepare(Spec, parts, settings)
	if err != nil {
		return nil, err
	}
	i := &Indexer{
		parts:    parts,
		step:     toMillis(indexer.GetFloat(merged, QuarterLength)),
		method:   align.FFill,
		settings: merged,
		log:      log.WithValues("indexer", Spec.Name),
	}
	if indexer.GetString(merged, Method) == "none" {
		i.method = align.Exact
	}
	return i, nil
}

func toMillis(o model.Offset) int64 {
	return int64(math.Round(o * constants.OffsetPrecision))
}

func fromMillis(m int64) model.Offset {
	return model.Offset(m) / constants.OffsetPrecision
}

// slack absorbs float error when comparing a grid point with an offset.
const slack = 1e-9

// Grid lists start, start+step, ... while below end+step. Steps are counted in
// milliseconds from start; if rounding leaves the last point short of end, one
// more step is added so end is always covered.
func Grid(start, end model.Offset, step int64) []model.Offset {
	span := toMillis(end - start)
	var res []model.Offset
	for m := int64(0); m < span+step; m += step {
		res = append(res, start+fromMillis(m))
	}
	if last := res[len(res)-1]; end-last > slack {
		res = append(res, last+fromMillis(step))
	}
	return res
}

func (i *Indexer) start() (model.Offset, bool) {
	var start model.Offset
	found := false
	for _, p := range i.parts {
		if p.Len() == 0 {
			continue
		}
		first := p.Events[0].Offset
		if !found || first < start {
			start = first
			found = true
		}
	}
	return start, found
}

func (i *Indexer) Run(ctx context.Context) (*result.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	labels := make([]string, len(i.parts))
	post := make([]model.Sequence, len(i.parts))
	for n := range labels {
		labels[n] = strconv.Itoa(n)
	}

	start, found := i.start()
	for n, p := range i.parts {
		if !found || p.Len() == 0 {
			post[n] = p
			continue
		}
		end := p.Events[p.Len()-1].Offset
		grid := Grid(start, end, i.step)
		post[n] = fill(grid, align.Reindex(p, grid, i.method))
	}
	metrics.IndexerRuns.WithLabelValues(Spec.Name).Inc()
	i.log.V(1).Info("regularized", "parts", len(i.parts), "step", i.step)
	return result.MakeReturn(Spec.Name, labels, post)
}

func fill(grid []model.Offset, cells []model.Cell) model.Sequence {
	s := model.Sequence{Kind: model.KindSeries}
	for n, c := range cells {
		if c.Valid {
			s.Events = append(s.Events, model.Event{Offset: grid[n], Value: c.Value})
		}
	}
	return s
}
