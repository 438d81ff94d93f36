package offset

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/jsphweid/polyindex/indexer"
	"github.com/jsphweid/polyindex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ev(off model.Offset, v string) model.Event {
	return model.Event{Offset: off, Value: v}
}

func series(events ...model.Event) model.Sequence {
	return model.NewSequence(model.KindSeries, "", events...)
}

func run(t *testing.T, ql any, parts ...model.Sequence) []model.Sequence {
	t.Helper()
	idx, err := New(parts, model.Settings{QuarterLength: ql}, logr.Discard())
	require.NoError(t, err)
	table, err := idx.Run(context.Background())
	require.NoError(t, err)
	return table.Sequences()
}

func TestRegularizeExamples(t *testing.T) {
	cases := []struct {
		name        string
		in          model.Sequence
		wantOffsets []model.Offset
		wantValues  []string
	}{
		{
			name:        "already regular",
			in:          series(ev(0, "a"), ev(1, "b"), ev(2, "c")),
			wantOffsets: []model.Offset{0, 1, 2},
			wantValues:  []string{"a", "b", "c"},
		},
		{
			name:        "extra event between observations",
			in:          series(ev(0, "a"), ev(0.5, "A"), ev(1, "b"), ev(2, "c")),
			wantOffsets: []model.Offset{0, 1, 2},
			wantValues:  []string{"a", "b", "c"},
		},
		{
			name:        "long event repeats",
			in:          series(ev(0, "a"), ev(2, "c")),
			wantOffsets: []model.Offset{0, 1, 2},
			wantValues:  []string{"a", "a", "c"},
		},
		{
			name:        "most recent event wins",
			in:          series(ev(0, "a"), ev(0.25, "z"), ev(0.5, "A"), ev(2, "c")),
			wantOffsets: []model.Offset{0, 1, 2},
			wantValues:  []string{"a", "A", "c"},
		},
		{
			name:        "final off-grid event moves to next observation",
			in:          series(ev(0, "a"), ev(1, "b"), ev(1.5, "d")),
			wantOffsets: []model.Offset{0, 1, 2},
			wantValues:  []string{"a", "b", "d"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := run(t, 1.0, c.in)
			require.Len(t, got, 1)
			assert.Equal(t, c.wantOffsets, got[0].Offsets())
			assert.Equal(t, c.wantValues, got[0].Values())
		})
	}
}

func TestRegularizePadsOneStepPastLastEvent(t *testing.T) {
	got := run(t, 0.5, series(ev(0, "a"), ev(0.7, "b"), ev(1.3, "c")))
	assert.Equal(t, []model.Offset{0, 0.5, 1.0, 1.5}, got[0].Offsets())
	assert.Equal(t, []string{"a", "a", "b", "c"}, got[0].Values())
}

func TestRegularizeMultiplePartsEndingAtDifferentTimes(t *testing.T) {
	idx, err := New([]model.Sequence{
		series(ev(410, "2"), ev(411, "1")),
		series(ev(410, "7"), ev(411, "5")),
		series(ev(410, "4"), ev(411.5, "3")),
		series(ev(410, "5"), ev(411, "1")),
	}, model.Settings{QuarterLength: 1}, logr.Discard())
	require.NoError(t, err)
	table, err := idx.Run(context.Background())
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal([]model.Offset{410, 411, 412}, table.Offsets)
	tenor, ok := table.Column(Spec.Name, "2")
	require.True(t, ok)
	assert.Equal([]model.Cell{model.Some("4"), model.Some("4"), model.Some("3")}, tenor)
	// the soprano's final note is only counted once
	soprano, _ := table.Column(Spec.Name, "0")
	assert.Equal([]model.Cell{model.Some("2"), model.Some("1"), model.None}, soprano)
}

func TestRegularizeStartsAtEarliestOffset(t *testing.T) {
	got := run(t, 1.0, series(ev(2, "late")), series(ev(0.5, "early"), ev(1.5, "x")))
	assert.Equal(t, []model.Offset{2.5}, got[0].Offsets())
	assert.Equal(t, []model.Offset{0.5, 1.5}, got[1].Offsets())
	assert.Equal(t, []string{"early", "x"}, got[1].Values())
}

func TestRegularizeOffGridStart(t *testing.T) {
	got := run(t, 1.0, series(ev(1.0/3, "a")))
	require.Len(t, got, 1)
	assert.Equal(t, []model.Offset{1.0 / 3}, got[0].Offsets())
	assert.Equal(t, []string{"a"}, got[0].Values())

	got = run(t, 1.0, series(ev(1.0/3, "a"), ev(4.0/3, "b")), series(ev(2.0/3, "c")))
	assert.Equal(t, []string{"a", "b"}, got[0].Values())
	assert.Equal(t, []string{"c"}, got[1].Values())
}

func TestRegularizeKeepsLastEventWhenStepRounds(t *testing.T) {
	got := run(t, 0.333, series(ev(0, "a"), ev(1.0/3, "b")))
	values := got[0].Values()
	require.NotEmpty(t, values)
	assert.Equal(t, "b", values[len(values)-1])
	assert.GreaterOrEqual(t, got[0].Offsets()[len(values)-1], 1.0/3)
}

func TestGridCoversEnd(t *testing.T) {
	assert.Equal(t, []model.Offset{0, 1, 2}, Grid(0, 1.5, 1000))
	assert.Equal(t, []model.Offset{410, 411}, Grid(410, 411, 1000))
	grid := Grid(0, 1.0/3, 333)
	assert.GreaterOrEqual(t, grid[len(grid)-1], 1.0/3)
}

func TestRegularizeMethodNone(t *testing.T) {
	idx, err := New([]model.Sequence{series(ev(0, "a"), ev(0.5, "b"), ev(2, "c"))},
		model.Settings{QuarterLength: 1.0, Method: "none"}, logr.Discard())
	require.NoError(t, err)
	table, err := idx.Run(context.Background())
	require.NoError(t, err)
	seq := table.Sequence(0)
	assert.Equal(t, []model.Offset{0, 2}, seq.Offsets())
	assert.Equal(t, []string{"a", "c"}, seq.Values())
}

func TestRegularizeEmptyParts(t *testing.T) {
	t.Run("no parts", func(t *testing.T) {
		got := run(t, 1.0)
		assert.Empty(t, got)
	})

	t.Run("all parts empty", func(t *testing.T) {
		got := run(t, 1.0, series(), series())
		require.Len(t, got, 2)
		assert.Equal(t, 0, got[0].Len())
		assert.Equal(t, 0, got[1].Len())
	})

	t.Run("one empty part passes through", func(t *testing.T) {
		got := run(t, 1.0, series(), series(ev(0, "a"), ev(1, "b")))
		assert.Equal(t, 0, got[0].Len())
		assert.Equal(t, []string{"a", "b"}, got[1].Values())
	})
}

func TestRegularizeAvoidsFloatDrift(t *testing.T) {
	got := run(t, 0.1, series(ev(0, "a"), ev(0.3, "b")))
	assert.Equal(t, []model.Offset{0, 0.1, 0.2, 0.3}, got[0].Offsets())
	assert.Equal(t, []string{"a", "a", "a", "b"}, got[0].Values())
}

func TestSettingsErrors(t *testing.T) {
	cases := []struct {
		name     string
		settings model.Settings
	}{
		{"missing quarterLength", model.Settings{}},
		{"nil settings", nil},
		{"quarterLength too small", model.Settings{QuarterLength: 0.0001}},
		{"negative quarterLength", model.Settings{QuarterLength: -1.0}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(nil, c.settings, logr.Discard())
			var settingsErr *indexer.SettingsError
			require.True(t, errors.As(err, &settingsErr))
			assert.Equal(t, QuarterLength, settingsErr.Setting)
			assert.Contains(t, err.Error(), "quarterLength")
		})
	}
}

func TestRequiresSeries(t *testing.T) {
	_, err := New([]model.Sequence{model.NewSequence(model.KindPart, "")}, model.Settings{QuarterLength: 1.0}, logr.Discard())
	var typeErr *indexer.TypeError
	require.True(t, errors.As(err, &typeErr))
}
