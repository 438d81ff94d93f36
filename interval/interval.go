// Package interval measures the distance in semitones between notes, either
// between two parts sounding together (vertical) or between consecutive notes
// of one part (horizontal).
package interval

import (
	"strconv"

	"github.com/jsphweid/polyindex/indexer"
	"github.com/jsphweid/polyindex/model"
	"github.com/jsphweid/polyindex/noterest"
)

const (
	Directed         = "directed"
	SimpleOrCompound = "simple or compound"
	HorizAttachLater = "horiz_attach_later"

	Simple   = "simple"
	Compound = "compound"
)

// CommonSettings are recognised by both interval indexers.
var CommonSettings = []indexer.SettingSpec{
	{Name: Directed, Kind: indexer.Bool, Default: true},
	{Name: SimpleOrCompound, Kind: indexer.String, Default: Compound, Rule: "oneof=simple compound"},
	indexer.MP,
}

// Measure gives the interval from lower to upper. Either part resting, or a
// name that is not a note, gives noterest.Rest.
func Measure(upper, lower string, directed, simple bool) string {
	if upper == noterest.Rest || lower == noterest.Rest {
		return noterest.Rest
	}
	hi, err := noterest.ParseName(upper)
	if err != nil {
		return noterest.Rest
	}
	lo, err := noterest.ParseName(lower)
	if err != nil {
		return noterest.Rest
	}

	semitones := hi - lo
	sign := 1
	if semitones < 0 {
		sign = -1
		semitones = -semitones
	}
	if simple {
		semitones %= 12
	}
	if directed {
		semitones *= sign
	}
	return strconv.Itoa(semitones)
}

func measureFunc(settings model.Settings) indexer.Func {
	directed := indexer.GetBool(settings, Directed)
	simple := indexer.GetString(settings, SimpleOrCompound) == Simple
	return func(row []model.Cell) (string, bool) {
		upper, lower := row[0], row[1]
		if !upper.Valid || !lower.Valid {
			return "", false
		}
		return Measure(upper.Value, lower.Value, directed, simple), true
	}
}
