package midi

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/polyindex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const resolution = 480

type note struct {
	start, end uint32
	key        uint8
}

// track writes notes (sorted by start, non overlapping) on channel 0
func track(notes ...note) smf.Track {
	var tr smf.Track
	var at uint32
	for _, n := range notes {
		tr.Add(n.start-at, gomidi.NoteOn(0, n.key, 100))
		tr.Add(n.end-n.start, gomidi.NoteOff(0, n.key))
		at = n.end
	}
	tr.Close(0)
	return tr
}

func newSMF(t *testing.T, tracks ...smf.Track) *smf.SMF {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(resolution)
	for _, tr := range tracks {
		require.NoError(t, s.Add(tr))
	}
	return s
}

func roundTrip(t *testing.T, s *smf.SMF) *smf.SMF {
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	parsed, err := Parse(&buf)
	require.NoError(t, err)
	return parsed
}

func TestPartsFromTwoTracks(t *testing.T) {
	s := newSMF(t,
		track(note{0, 480, 67}),
		track(note{0, 120, 55}, note{240, 480, 57}),
	)

	parts, err := Parts(roundTrip(t, s))
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert := assert.New(t)
	assert.Equal(model.KindPart, parts[0].Kind)
	assert.Equal("0", parts[0].Label)
	assert.Equal([]model.Offset{0, 1}, parts[0].Offsets())
	assert.Equal([]string{"67", model.RestToken}, parts[0].Values())

	assert.Equal("1", parts[1].Label)
	assert.Equal([]model.Offset{0, 0.25, 0.5, 1}, parts[1].Offsets())
	assert.Equal([]string{"55", model.RestToken, "57", model.RestToken}, parts[1].Values())
}

func TestLegatoNotesDoNotProduceRests(t *testing.T) {
	s := newSMF(t, track(note{0, 480, 60}, note{480, 960, 62}))

	parts, err := Parts(roundTrip(t, s))
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, []model.Offset{0, 1, 2}, parts[0].Offsets())
	assert.Equal(t, []string{"60", "62", model.RestToken}, parts[0].Values())
}

func TestTracksWithoutNotesAreSkipped(t *testing.T) {
	var empty smf.Track
	empty.Close(0)
	s := newSMF(t, empty, track(note{0, 480, 60}))

	parts, err := Parts(roundTrip(t, s))
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "0", parts[0].Label)
}

func TestChannelsSplitIntoParts(t *testing.T) {
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(1, 48, 100))
	tr.Add(0, gomidi.NoteOn(0, 72, 100))
	tr.Add(480, gomidi.NoteOff(0, 72))
	tr.Add(0, gomidi.NoteOff(1, 48))
	tr.Close(0)

	parts, err := Parts(roundTrip(t, newSMF(t, tr)))
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, []string{"72", model.RestToken}, parts[0].Values())
	assert.Equal(t, []string{"48", model.RestToken}, parts[1].Values())
}

func TestReduceOrdering(t *testing.T) {
	// a note starting where another ends replaces the rest
	seq := reduce([]reducedEvent{
		{Ticks: 480, IsNoteOff: false, Note: 64},
		{Ticks: 480, IsNoteOff: true, Note: 60},
		{Ticks: 0, IsNoteOff: false, Note: 60},
		{Ticks: 960, IsNoteOff: true, Note: 64},
	}, resolution)
	assert.Equal(t, []model.Offset{0, 1, 2}, seq.Offsets())
	assert.Equal(t, []string{"60", "64", model.RestToken}, seq.Values())

	// the first of two simultaneous onsets wins
	seq = reduce([]reducedEvent{
		{Ticks: 0, Note: 60},
		{Ticks: 0, Note: 64},
		{Ticks: 480, IsNoteOff: true, Note: 60},
		{Ticks: 480, IsNoteOff: true, Note: 64},
	}, resolution)
	assert.Equal(t, []string{"60", model.RestToken}, seq.Values())
}

func TestReadMidiFile(t *testing.T) {
	s := newSMF(t, track(note{0, 480, 60}))
	path := filepath.Join(t.TempDir(), "piece.mid")
	require.NoError(t, s.WriteFile(path))

	parsed, err := ReadMidiFile(path)
	require.NoError(t, err)
	parts, err := Parts(parsed)
	require.NoError(t, err)
	assert.Len(t, parts, 1)

	_, err = ReadMidiFile(filepath.Join(t.TempDir(), "missing.mid"))
	assert.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "garbage.mid")
	require.NoError(t, os.WriteFile(garbage, []byte("not a midi file"), 0666))
	_, err = ReadMidiFile(garbage)
	assert.Error(t, err)
}

func TestExcerpt(t *testing.T) {
	s := newSMF(t,
		track(note{0, 480, 60}, note{480, 960, 62}, note{960, 1440, 64}),
		track(note{0, 1440, 48}),
	)

	ex, err := Excerpt(roundTrip(t, s), 1, 1)
	require.NoError(t, err)

	parts, err := Parts(roundTrip(t, ex))
	require.NoError(t, err)
	// the held bass note started before the excerpt, so it is dropped
	require.Len(t, parts, 1)
	assert.Equal(t, []model.Offset{0, 1}, parts[0].Offsets())
	assert.Equal(t, []string{"62", model.RestToken}, parts[0].Values())
}

func TestExcerptReleasesHangingNotes(t *testing.T) {
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(240, gomidi.NoteOn(0, 64, 100))
	tr.Add(240, gomidi.NoteOff(0, 60))
	tr.Add(0, gomidi.NoteOff(0, 64))
	tr.Close(0)

	ex, err := Excerpt(newSMF(t, tr), 0, 1)
	require.NoError(t, err)
	parts, err := Parts(roundTrip(t, ex))
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, []model.Offset{0, 0.5}, parts[0].Offsets())
	assert.Equal(t, []string{"60", model.RestToken}, parts[0].Values())
}
