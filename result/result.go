// Package result assembles indexer output into tables whose columns carry a
// two-level label, so tables from different indexers can be concatenated
// without ambiguity.
package result

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jsphweid/polyindex/align"
	"github.com/jsphweid/polyindex/model"
)

var (
	ErrShape           = errors.New("label count does not match sequence count")
	ErrDuplicateColumn = errors.New("duplicate column label")
)

// Table is the labelled output of an indexer. Offsets are the union of every
// column's offsets; a cell is invalid where its column has no event.
type Table struct {
	Labels  []model.ColumnLabel
	Offsets []model.Offset
	Cells   [][]model.Cell

	ids map[uint64]int
}

// MakeReturn labels seqs with (indexerName, labels[i]) and assembles them into
// a single table.
func MakeReturn(indexerName string, labels []string, seqs []model.Sequence) (*Table, error) {
	if len(labels) != len(seqs) {
		return nil, fmt.Errorf("%w: %d labels for %d sequences", ErrShape, len(labels), len(seqs))
	}
	cols := make([]model.ColumnLabel, len(labels))
	for i, l := range labels {
		cols[i] = model.ColumnLabel{Indexer: indexerName, Part: l}
	}
	return Build(cols, seqs)
}

// PartLabels reuses the labels of parts when every part has a distinct,
// non-empty one, and falls back to positions otherwise.
func PartLabels(parts []model.Sequence) []string {
	res := make([]string, len(parts))
	seen := make(map[string]bool, len(parts))
	for n, p := range parts {
		if p.Label == "" || seen[p.Label] {
			return Positions(len(parts))
		}
		seen[p.Label] = true
		res[n] = p.Label
	}
	return res
}

// Positions labels n columns "0", "1", ...
func Positions(n int) []string {
	res := make([]string, n)
	for i := range res {
		res[i] = strconv.Itoa(i)
	}
	return res
}

// Build assembles labelled sequences into a table over the union of their
// offsets.
func Build(labels []model.ColumnLabel, seqs []model.Sequence) (*Table, error) {
	offsets := align.Offsets(seqs...)
	t := &Table{
		Labels:  labels,
		Offsets: offsets,
		Cells:   align.AlignOn(offsets, seqs, align.Exact).Columns,
	}
	if err := t.index(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) index() error {
	tracker := newTracker()
	for i, l := range t.Labels {
		if err := tracker.track(l, i); err != nil {
			return err
		}
	}
	t.ids = tracker.ids
	return nil
}

func (t *Table) Len() int {
	return len(t.Offsets)
}

func (t *Table) Width() int {
	return len(t.Labels)
}

// Column returns the cells of the (indexer, part) column.
func (t *Table) Column(indexer, part string) ([]model.Cell, bool) {
	i, ok := t.lookup(model.ColumnLabel{Indexer: indexer, Part: part})
	if !ok {
		return nil, false
	}
	return t.Cells[i], true
}

func (t *Table) lookup(l model.ColumnLabel) (int, bool) {
	if t.ids == nil {
		if err := t.index(); err != nil {
			return 0, false
		}
	}
	i, ok := t.ids[l.ID()]
	if !ok || t.Labels[i] != l {
		// hash collision, fall back to a scan
		for j, other := range t.Labels {
			if other == l {
				return j, true
			}
		}
		return 0, false
	}
	return i, true
}

// Indexers lists the distinct first-level labels in column order.
func (t *Table) Indexers() []string {
	var res []string
	seen := make(map[string]bool)
	for _, l := range t.Labels {
		if !seen[l.Indexer] {
			seen[l.Indexer] = true
			res = append(res, l.Indexer)
		}
	}
	return res
}

// Sequence slices column i back into an event sequence, dropping the gaps.
func (t *Table) Sequence(i int) model.Sequence {
	s := model.Sequence{Kind: model.KindSeries, Label: t.Labels[i].Part}
	for r, c := range t.Cells[i] {
		if c.Valid {
			s.Events = append(s.Events, model.Event{Offset: t.Offsets[r], Value: c.Value})
		}
	}
	return s
}

// Sequences slices every column back into sequences, in column order, ready
// to feed into another indexer.
func (t *Table) Sequences() []model.Sequence {
	res := make([]model.Sequence, t.Width())
	for i := range t.Labels {
		res[i] = t.Sequence(i)
	}
	return res
}

// Select returns the sequences of the columns produced by indexer.
func (t *Table) Select(indexer string) []model.Sequence {
	var res []model.Sequence
	for i, l := range t.Labels {
		if l.Indexer == indexer {
			res = append(res, t.Sequence(i))
		}
	}
	return res
}

// Concat joins tables column-wise over the union of their offsets. Any label
// appearing twice is an error.
func Concat(tables ...*Table) (*Table, error) {
	var labels []model.ColumnLabel
	var seqs []model.Sequence
	for _, t := range tables {
		labels = append(labels, t.Labels...)
		seqs = append(seqs, t.Sequences()...)
	}
	return Build(labels, seqs)
}
