package noterest

import (
	"fmt"
	"strconv"
	"strings"
)

const Rest = "Rest"

var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var letterSemitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// Name spells a MIDI key with its octave, middle C (60) being "C4".
func Name(key uint8) string {
	return pitchClasses[key%12] + strconv.Itoa(int(key)/12-1)
}

// ParseName turns a name such as "C4", "F#3", "Bb2" or "C-1" back into a MIDI
// key number. Any number of '#' or 'b' accidentals is accepted; '-' only ever
// signs the octave.
func ParseName(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("empty note name")
	}
	base, ok := letterSemitones[strings.ToUpper(name)[0]]
	if !ok {
		return 0, fmt.Errorf("bad note name %q", name)
	}
	rest := name[1:]
	for len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		if rest[0] == '#' {
			base++
		} else {
			base--
		}
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("bad octave in note name %q", name)
	}
	return (octave+1)*12 + base, nil
}
