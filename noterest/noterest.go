// Package noterest indexes the notes and rests of imported parts, spelling
// notes with their octave ("C4") and silence as "Rest".
package noterest

import (
	"strconv"

	"github.com/jsphweid/polyindex/indexer"
	"github.com/jsphweid/polyindex/model"
)

type Indexer struct{}

var Spec = indexer.Spec{
	Name:         indexer.QualifiedName(Indexer{}),
	RequiredKind: model.KindPart,
	Settings:     []indexer.SettingSpec{indexer.MP},
	Policy:       indexer.EachPart,
	Func:         indexer.Static(indexFunc),
}

func indexFunc(row []model.Cell) (string, bool) {
	c := row[0]
	if !c.Valid {
		return "", false
	}
	if c.Value == model.RestToken {
		return Rest, true
	}
	key, err := strconv.Atoi(c.Value)
	if err != nil || key < 0 || key > 127 {
		return "", false
	}
	return Name(uint8(key)), true
}

func New(parts []model.Sequence, settings model.Settings, opts ...indexer.Option) (*indexer.Indexer, error) {
	return indexer.New(Spec, parts, settings, opts...)
}
