package midi

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/jsphweid/polyindex/model"
	"gitlab.com/gomidi/midi/v2/smf"
)

type reducedEvent struct {
	Ticks     int64
	IsNoteOff bool
	Note      uint8
}

type voice struct {
	track   int
	channel uint8
}

// Parts turns every (track, channel) that plays notes into one part. Values
// are MIDI key numbers, or model.RestToken once the part falls silent;
// offsets are in quarter notes.
func Parts(s *smf.SMF) ([]model.Sequence, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || ticks == 0 {
		return nil, fmt.Errorf("unsupported midi time format %v", s.TimeFormat)
	}
	perQuarter := float64(ticks)

	voices := make(map[voice][]reducedEvent)
	for i, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				v := voice{track: i, channel: channel}
				voices[v] = append(voices[v], reducedEvent{Ticks: absTicks, IsNoteOff: velocity == 0, Note: key})
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				v := voice{track: i, channel: channel}
				voices[v] = append(voices[v], reducedEvent{Ticks: absTicks, IsNoteOff: true, Note: key})
			}
		}
	}

	keys := make([]voice, 0, len(voices))
	for v := range voices {
		keys = append(keys, v)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].track != keys[j].track {
			return keys[i].track < keys[j].track
		}
		return keys[i].channel < keys[j].channel
	})

	parts := make([]model.Sequence, 0, len(keys))
	for _, v := range keys {
		if seq := reduce(voices[v], perQuarter); seq.Len() > 0 {
			parts = append(parts, seq)
		}
	}
	for i := range parts {
		parts[i].Label = strconv.Itoa(i)
	}
	return parts, nil
}

func reduce(events []reducedEvent, perQuarter float64) model.Sequence {
	// prioritize smaller offset values then note off
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Ticks != events[j].Ticks {
			return events[i].Ticks < events[j].Ticks
		}
		return events[i].IsNoteOff && !events[j].IsNoteOff
	})

	seq := model.Sequence{Kind: model.KindPart}
	sounding := make(map[uint8]int)
	for _, evt := range events {
		offset := float64(evt.Ticks) / perQuarter
		if evt.IsNoteOff {
			if sounding[evt.Note] == 0 {
				continue
			}
			sounding[evt.Note]--
			if sounding[evt.Note] == 0 {
				delete(sounding, evt.Note)
			}
			if len(sounding) == 0 {
				seq.Events = emit(seq.Events, offset, model.RestToken)
			}
			continue
		}
		sounding[evt.Note]++
		seq.Events = emit(seq.Events, offset, strconv.Itoa(int(evt.Note)))
	}
	return seq
}

// emit keeps one event per offset: a note replaces a rest at the same offset,
// otherwise the first event there wins.
func emit(events []model.Event, offset model.Offset, value string) []model.Event {
	if n := len(events); n > 0 && events[n-1].Offset == offset {
		if events[n-1].Value == model.RestToken && value != model.RestToken {
			events[n-1].Value = value
		}
		return events
	}
	return append(events, model.Event{Offset: offset, Value: value})
}
