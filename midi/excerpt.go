package midi

import (
	"fmt"
	"math"

	"github.com/jsphweid/polyindex/model"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func isEndOfTrack(m smf.Message) bool {
	return len(m) >= 2 && m[0] == 0xFF && m[1] == 0x2F
}

// Excerpt copies up to maxNotes notes of every track starting at offset from,
// so the excerpt starts at offset 0. Other events before from are kept at the
// start; notes still sounding when the excerpt ends are released.
func Excerpt(s *smf.SMF, from model.Offset, maxNotes int) (*smf.SMF, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || ticks == 0 {
		return nil, fmt.Errorf("unsupported midi time format %v", s.TimeFormat)
	}
	fromTicks := uint64(math.Round(from * float64(ticks)))

	res := smf.New()
	res.TimeFormat = s.TimeFormat
	for _, track := range s.Tracks {
		var newTrack smf.Track
		var absTicks, lastTicks uint64
		var numNotes int
		sounding := make(map[[2]uint8]bool)
		lastTicks = fromTicks

	TrackEventLoop:
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			if isEndOfTrack(evt.Message) {
				continue
			}
			var channel, key, velocity uint8
			isOn := evt.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0
			isOff := !isOn && (evt.Message.GetNoteOff(&channel, &key, &velocity) || evt.Message.GetNoteOn(&channel, &key, &velocity))
			switch {
			case absTicks < fromTicks:
				if !isOn && !isOff {
					newTrack = append(newTrack, smf.Event{Delta: 0, Message: evt.Message})
				}
			case isOn:
				if numNotes >= maxNotes {
					break TrackEventLoop
				}
				numNotes++
				sounding[[2]uint8{channel, key}] = true
				newTrack = append(newTrack, smf.Event{Delta: uint32(absTicks - lastTicks), Message: evt.Message})
				lastTicks = absTicks
			case isOff:
				if !sounding[[2]uint8{channel, key}] {
					continue
				}
				delete(sounding, [2]uint8{channel, key})
				newTrack = append(newTrack, smf.Event{Delta: uint32(absTicks - lastTicks), Message: evt.Message})
				lastTicks = absTicks
			default:
				newTrack = append(newTrack, smf.Event{Delta: uint32(absTicks - lastTicks), Message: evt.Message})
				lastTicks = absTicks
			}
		}

		// release whatever the cut left hanging
		var release uint32
		if len(sounding) > 0 && absTicks > lastTicks {
			release = uint32(absTicks - lastTicks)
		}
		for k := range sounding {
			newTrack.Add(release, gomidi.NoteOff(k[0], k[1]))
			release = 0
		}
		newTrack.Close(0)
		if err := res.Add(newTrack); err != nil {
			return nil, err
		}
	}
	return res, nil
}
