package repeat

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/go-logr/logr"
	"github.com/jsphweid/polyindex/indexer"
	"github.com/jsphweid/polyindex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(label string, values ...string) model.Sequence {
	s := model.Sequence{Kind: model.KindSeries, Label: label}
	for i, v := range values {
		s.Events = append(s.Events, model.Event{Offset: model.Offset(i), Value: v})
	}
	return s
}

func TestFilterKeepsOnsets(t *testing.T) {
	got := Filter(series("0", "a", "a", "b", "b", "c"))
	assert.Equal(t, []model.Offset{0, 2, 4}, got.Offsets())
	assert.Equal(t, []string{"a", "b", "c"}, got.Values())
}

func TestFilterShortSequences(t *testing.T) {
	assert.Equal(t, 0, Filter(series("0")).Len())
	one := series("0", "a")
	assert.Equal(t, one, Filter(one))
}

func TestFilterDoesNotAliasInput(t *testing.T) {
	in := series("0", "a", "a", "b")
	before := in.Clone()
	got := Filter(in)
	got.Events[0].Value = "changed"
	assert.Equal(t, before, in)

	single := series("0", "a")
	copied := Filter(single)
	copied.Events[0].Value = "changed"
	assert.Equal(t, "a", single.Events[0].Value)
}

func TestFilterIsIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for n := 0; n < 100; n++ {
		values := make([]string, r.Intn(20))
		for i := range values {
			values[i] = string(rune('a' + r.Intn(3)))
		}
		once := Filter(series("0", values...))
		assert.Equal(t, once, Filter(once))
	}
}

func TestRunLabelsColumns(t *testing.T) {
	idx, err := New([]model.Sequence{
		series("0,1", "3", "3", "5"),
		series("0,2", "8", "8"),
	}, nil, logr.Discard())
	require.NoError(t, err)
	table, err := idx.Run(context.Background())
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal([]model.Offset{0, 2}, table.Offsets)
	assert.Equal("repeat.Indexer", Spec.Name)
	col, ok := table.Column(Spec.Name, "0,1")
	require.True(t, ok)
	assert.Equal([]model.Cell{model.Some("3"), model.Some("5")}, col)
	col, ok = table.Column(Spec.Name, "0,2")
	require.True(t, ok)
	assert.Equal([]model.Cell{model.Some("8"), model.None}, col)
}

func TestRunFallsBackToPositions(t *testing.T) {
	idx, err := New([]model.Sequence{series("x", "a"), series("x", "b")}, nil, logr.Discard())
	require.NoError(t, err)
	table, err := idx.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0", table.Labels[0].Part)
	assert.Equal(t, "1", table.Labels[1].Part)
}

func TestRequiresSeries(t *testing.T) {
	_, err := New([]model.Sequence{model.NewSequence(model.KindPart, "")}, nil, logr.Discard())
	var typeErr *indexer.TypeError
	require.True(t, errors.As(err, &typeErr))
}
