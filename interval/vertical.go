package interval

import (
	"github.com/jsphweid/polyindex/indexer"
	"github.com/jsphweid/polyindex/model"
)

type VerticalIndexer struct{}

// VerticalSpec pairs every two parts, the higher-numbered part being the
// lower voice. Rows where either part has not started yet are dropped.
var VerticalSpec = indexer.Spec{
	Name:         indexer.QualifiedName(VerticalIndexer{}),
	RequiredKind: model.KindSeries,
	Settings:     CommonSettings,
	Policy:       indexer.AllPairs,
	Func:         measureFunc,
}

func NewVertical(parts []model.Sequence, settings model.Settings, opts ...indexer.Option) (*indexer.Indexer, error) {
	return indexer.New(VerticalSpec, parts, settings, opts...)
}
