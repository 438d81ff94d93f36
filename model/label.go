package model

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ColumnLabel is the two-level name of a result column: the producing
// indexer, then the part or combination it describes.
type ColumnLabel struct {
	Indexer string
	Part    string
}

func (l ColumnLabel) ID() uint64 {
	return xxhash.Sum64String(l.Indexer + "\x00" + l.Part)
}

func (l ColumnLabel) String() string {
	return fmt.Sprintf("(%v, %v)", l.Indexer, l.Part)
}
