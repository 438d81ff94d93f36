package interval

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/jsphweid/polyindex/constants"
	"github.com/jsphweid/polyindex/indexer"
	"github.com/jsphweid/polyindex/metrics"
	"github.com/jsphweid/polyindex/model"
	"github.com/jsphweid/polyindex/parallel"
	"github.com/jsphweid/polyindex/result"
)

type HorizontalIndexer struct {
	parts       []model.Sequence
	fn          indexer.Func
	attachLater bool
	workers     int
	log         logr.Logger
}

var HorizontalSpec = indexer.Spec{
	Name:         indexer.QualifiedName(HorizontalIndexer{}),
	RequiredKind: model.KindSeries,
	Settings: append(append([]indexer.SettingSpec{}, CommonSettings...),
		indexer.SettingSpec{Name: HorizAttachLater, Kind: indexer.Bool, Default: false}),
	Policy: indexer.EachPart,
	Func:   measureFunc,
}

func NewHorizontal(parts []model.Sequence, settings model.Settings, log logr.Logger) (*HorizontalIndexer, error) {
	merged, err := indexer.Prepare(HorizontalSpec, parts, settings)
	if err != nil {
		return nil, err
	}
	h := &HorizontalIndexer{
		parts:       parts,
		fn:          HorizontalSpec.Func(merged),
		attachLater: indexer.GetBool(merged, HorizAttachLater),
		workers:     constants.GetMaxWorkers(),
		log:         log.WithValues("indexer", HorizontalSpec.Name),
	}
	if !indexer.GetBool(merged, indexer.MP.Name) {
		h.workers = 1
	}
	return h, nil
}

// shifted pairs each event with the one after it: the first sequence holds
// the later values, the second the earlier ones, both at the offset the
// interval is attached to.
func shifted(s model.Sequence, attachLater bool) (later, earlier model.Sequence) {
	later = model.Sequence{Kind: model.KindSeries}
	earlier = model.Sequence{Kind: model.KindSeries}
	for n := 1; n < s.Len(); n++ {
		at := s.Events[n-1].Offset
		if attachLater {
			at = s.Events[n].Offset
		}
		later.Events = append(later.Events, model.Event{Offset: at, Value: s.Events[n].Value})
		earlier.Events = append(earlier.Events, model.Event{Offset: at, Value: s.Events[n-1].Value})
	}
	return later, earlier
}

// Run measures the melodic interval between consecutive events of every
// part. A part with fewer than two events gives an empty column.
func (h *HorizontalIndexer) Run(ctx context.Context) (*result.Table, error) {
	post, err := parallel.Map(ctx, len(h.parts), h.workers, func(_ context.Context, n int) (model.Sequence, error) {
		later, earlier := shifted(h.parts[n], h.attachLater)
		return indexer.Apply([]model.Sequence{later, earlier}, h.fn), nil
	})
	if err != nil {
		return nil, err
	}

	var rows int
	for _, p := range post {
		rows += p.Len()
	}
	metrics.IndexerRuns.WithLabelValues(HorizontalSpec.Name).Inc()
	metrics.IndexedRows.WithLabelValues(HorizontalSpec.Name).Add(float64(rows))
	h.log.V(1).Info("indexed", "parts", len(h.parts), "rows", rows)
	return result.MakeReturn(HorizontalSpec.Name, result.PartLabels(h.parts), post)
}
