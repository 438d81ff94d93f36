// Package align reconciles per-part event sequences onto a shared timeline.
//
// A sequence is a step function: every value holds from its offset until the
// part's next event. Align computes the union of every offset at which any part
// changes and reports, for each part, the value holding at each of them.
// Forward fill has no expiry, so a part that ends early keeps reporting its
// last value.
package align

import (
	"sort"

	"github.com/jsphweid/polyindex/model"
)

type Method uint8

const (
	// FFill carries the most recent value forward.
	FFill Method = iota
	// Exact only reports values whose event lies on the grid offset.
	Exact
)

// Offsets returns the sorted union of every offset in seqs.
func Offsets(seqs ...model.Sequence) []model.Offset {
	seen := make(map[model.Offset]struct{})
	var res []model.Offset
	for _, s := range seqs {
		for _, e := range s.Events {
			if _, ok := seen[e.Offset]; ok {
				continue
			}
			seen[e.Offset] = struct{}{}
			res = append(res, e.Offset)
		}
	}
	sort.Float64s(res)
	return res
}

// Reindex resamples seq onto grid, which must be sorted ascending.
func Reindex(seq model.Sequence, grid []model.Offset, method Method) []model.Cell {
	res := make([]model.Cell, len(grid))
	events := seq.Events
	next := 0
	for i, off := range grid {
		// advance past every event at or before off
		for next < len(events) && events[next].Offset <= off {
			next++
		}
		if next == 0 {
			continue
		}
		last := events[next-1]
		if method == Exact && last.Offset != off {
			continue
		}
		res[i] = model.Some(last.Value)
	}
	return res
}

// Align builds the joint table of seqs over the union of their offsets.
func Align(seqs []model.Sequence) *model.JointTable {
	return AlignOn(Offsets(seqs...), seqs, FFill)
}

// AlignOn reindexes every sequence onto a caller supplied grid.
func AlignOn(grid []model.Offset, seqs []model.Sequence, method Method) *model.JointTable {
	t := &model.JointTable{Offsets: grid, Columns: make([][]model.Cell, len(seqs))}
	for i, s := range seqs {
		t.Columns[i] = Reindex(s, grid, method)
	}
	return t
}
