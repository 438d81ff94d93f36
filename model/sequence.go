package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Offset is a position in quarter-note lengths from the start of a piece.
type Offset = float64

// RestToken is the value the import stage uses for silence in a part.
const RestToken = "rest"

type Kind uint8

const (
	// raw parts straight from the import stage
	KindPart Kind = iota
	// the output of a previous indexer
	KindSeries
)

func (k Kind) String() string {
	switch k {
	case KindPart:
		return "part"
	case KindSeries:
		return "series"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

type Event struct {
	Offset Offset
	Value  string
}

// Sequence is a step function: each value holds from its offset until the
// next event. Offsets are strictly increasing.
type Sequence struct {
	Kind   Kind
	Label  string
	Events []Event
}

func NewSequence(kind Kind, label string, events ...Event) Sequence {
	return Sequence{Kind: kind, Label: label, Events: events}
}

func (s Sequence) Len() int {
	return len(s.Events)
}

func (s Sequence) Offsets() []Offset {
	res := make([]Offset, len(s.Events))
	for i, e := range s.Events {
		res[i] = e.Offset
	}
	return res
}

func (s Sequence) Values() []string {
	res := make([]string, len(s.Events))
	for i, e := range s.Events {
		res[i] = e.Value
	}
	return res
}

// Clone copies the events so the result never aliases s.
func (s Sequence) Clone() Sequence {
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	s.Events = events
	return s
}

// Cell is one (offset, part) slot of a table. Valid is false before a part's
// first event.
type Cell struct {
	Value string
	Valid bool
}

func Some(v string) Cell {
	return Cell{Value: v, Valid: true}
}

var None = Cell{}

func (c Cell) String() string {
	if !c.Valid {
		return "NaN"
	}
	return c.Value
}

// Combination names the parts grouped into one simultaneity, in order.
type Combination = []int

func CombinationLabel(c Combination) string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
