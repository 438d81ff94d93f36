package piece

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jsphweid/polyindex/experiment"
	"github.com/jsphweid/polyindex/indexer"
	"github.com/jsphweid/polyindex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func part(values ...string) model.Sequence {
	s := model.Sequence{Kind: model.KindPart}
	for i, v := range values {
		s.Events = append(s.Events, model.Event{Offset: model.Offset(i), Value: v})
	}
	return s
}

func twoVoices() *Piece {
	return FromParts("two", []model.Sequence{
		part("72", "76", model.RestToken),
		part("60", "67", model.RestToken),
	})
}

func TestGetDataDefaultsToNoteRest(t *testing.T) {
	p := twoVoices()
	table, err := p.GetData(context.Background())
	require.NoError(t, err)

	got := table.Sequences()
	require.Len(t, got, 2)
	assert.Equal(t, []string{"C5", "E5", "Rest"}, got[0].Values())
	assert.Equal(t, []string{"C4", "G4", "Rest"}, got[1].Values())
	assert.Equal(t, "noterest.Indexer", table.Labels[0].Indexer)
}

func TestNoteRestIsCached(t *testing.T) {
	p := twoVoices()
	first, err := p.NoteRest(context.Background())
	require.NoError(t, err)
	second, err := p.GetData(context.Background(), model.Step{Analyzer: NoteRest})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestGetDataChains(t *testing.T) {
	p := twoVoices()
	ctx := context.Background()

	cases := []struct {
		name  string
		steps []model.Step
		want  [][]string
	}{
		{
			name:  "vertical",
			steps: []model.Step{{Analyzer: VerticalInterval}},
			want:  [][]string{{"12", "9", "Rest"}},
		},
		{
			name:  "horizontal",
			steps: []model.Step{{Analyzer: HorizontalInterval}},
			want:  [][]string{{"4", "Rest"}, {"7", "Rest"}},
		},
		{
			name: "offset",
			steps: []model.Step{
				{Analyzer: Offset, Settings: model.Settings{"quarterLength": 0.5}},
			},
			want: [][]string{
				{"C5", "C5", "E5", "E5", "Rest"},
				{"C4", "C4", "G4", "G4", "Rest"},
			},
		},
		{
			name:  "ngram",
			steps: []model.Step{{Analyzer: NGram, Settings: model.Settings{"n": 2}}},
			want:  [][]string{{"[12] (7) [9]", "[9] (Rest) [Rest]"}},
		},
		{
			name: "offset then repeat",
			steps: []model.Step{
				{Analyzer: NoteRest},
				{Analyzer: Offset, Settings: model.Settings{"quarterLength": 0.5}},
				{Analyzer: Repeat},
			},
			want: [][]string{{"C5", "E5", "Rest"}, {"C4", "G4", "Rest"}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			table, err := p.GetData(ctx, c.steps...)
			require.NoError(t, err)
			got := table.Sequences()
			require.Len(t, got, len(c.want))
			for i := range c.want {
				assert.Equal(t, c.want[i], got[i].Values())
			}
		})
	}
}

func TestGetDataErrors(t *testing.T) {
	p := twoVoices()
	ctx := context.Background()

	_, err := p.GetData(ctx, model.Step{Analyzer: "chords"})
	assert.True(t, errors.Is(err, ErrUnknownAnalyzer))

	_, err = p.GetData(ctx, model.Step{Analyzer: Offset})
	var se *indexer.SettingsError
	assert.True(t, errors.As(err, &se))

	// noterest only accepts imported parts
	_, err = p.GetData(ctx, model.Step{Analyzer: Repeat}, model.Step{Analyzer: NoteRest})
	var te *indexer.TypeError
	assert.True(t, errors.As(err, &te))
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{HorizontalInterval, NGram, NoteRest, Offset, Repeat, VerticalInterval}, r.Names())
	assert.NoError(t, r.Validate([]model.Step{{Analyzer: Offset}, {Analyzer: Repeat}}))
	assert.ErrorIs(t, r.Validate([]model.Step{{Analyzer: "nope"}}), ErrUnknownAnalyzer)
}

func TestAggregatedFrequency(t *testing.T) {
	other := FromParts("other", []model.Sequence{part("64"), part("60")})
	agg := NewAggregated([]*Piece{twoVoices(), other})
	agg.Workers = 2

	tables, err := agg.Run(context.Background(), model.Step{Analyzer: VerticalInterval})
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, []string{"4"}, tables[1].Sequences()[0].Values())

	f, err := agg.Frequency(context.Background(), model.Step{Analyzer: VerticalInterval})
	require.NoError(t, err)
	assert.Equal(t, []string{"0,1", experiment.All}, f.Columns)
	assert.Equal(t, []string{"12", "4", "9", "Rest"}, f.Tokens)
	assert.Equal(t, 1, f.Count(experiment.All, "4"))
}

func TestAggregatedStopsOnFailure(t *testing.T) {
	agg := NewAggregated([]*Piece{twoVoices(), twoVoices()})
	_, err := agg.Run(context.Background(), model.Step{Analyzer: Offset})
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(96)
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 90))
	tr.Add(96, midi.NoteOff(0, 60))
	tr.Add(0, midi.NoteOn(0, 62, 90))
	tr.Add(96, midi.NoteOff(0, 62))
	tr.Close(0)
	require.NoError(t, s.Add(tr))

	path := filepath.Join(t.TempDir(), "scale.mid")
	require.NoError(t, s.WriteFile(path))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "scale", p.Name)

	table, err := p.GetData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"C4", "D4", "Rest"}, table.Sequences()[0].Values())

	_, err = Load(filepath.Join(t.TempDir(), "missing.mid"))
	assert.Error(t, err)
}
