// Package experiment summarises index tables.
package experiment

import (
	"sort"

	"github.com/jsphweid/polyindex/result"
)

// All is the column summing every other column of a FrequencyTable.
const All = "all"

// FrequencyTable counts how often each token occurs per column. Columns ends
// with All; Tokens is sorted.
type FrequencyTable struct {
	Tokens  []string                  `json:"tokens"`
	Columns []string                  `json:"columns"`
	Counts  map[string]map[string]int `json:"counts"`
}

func newFrequencyTable() *FrequencyTable {
	return &FrequencyTable{Counts: make(map[string]map[string]int)}
}

func (f *FrequencyTable) add(column, token string, n int) {
	counts, ok := f.Counts[column]
	if !ok {
		counts = make(map[string]int)
		f.Counts[column] = counts
		if column != All {
			f.Columns = append(f.Columns, column)
		}
	}
	counts[token] += n
}

func (f *FrequencyTable) finish() {
	if _, ok := f.Counts[All]; !ok {
		f.Counts[All] = make(map[string]int)
	}
	f.Columns = append(f.Columns, All)

	f.Tokens = f.Tokens[:0]
	for tok := range f.Counts[All] {
		f.Tokens = append(f.Tokens, tok)
	}
	sort.Strings(f.Tokens)
}

func (f *FrequencyTable) Count(column, token string) int {
	return f.Counts[column][token]
}

// Ranked lists the tokens of column from most to least frequent, ties broken
// by token.
func (f *FrequencyTable) Ranked(column string) []string {
	counts := f.Counts[column]
	res := make([]string, 0, len(counts))
	for tok := range counts {
		res = append(res, tok)
	}
	sort.Slice(res, func(i, j int) bool {
		if counts[res[i]] != counts[res[j]] {
			return counts[res[i]] > counts[res[j]]
		}
		return res[i] < res[j]
	})
	return res
}

// Frequency counts the valid cells of every column. Columns are named by part
// when the table holds a single indexer's output and by full label otherwise.
func Frequency(t *result.Table) *FrequencyTable {
	f := newFrequencyTable()
	byPart := len(t.Indexers()) <= 1
	for i, l := range t.Labels {
		column := l.String()
		if byPart {
			column = l.Part
		}
		if _, ok := f.Counts[column]; !ok {
			f.Counts[column] = make(map[string]int)
			f.Columns = append(f.Columns, column)
		}
		for _, c := range t.Cells[i] {
			if !c.Valid {
				continue
			}
			f.add(column, c.Value, 1)
			f.add(All, c.Value, 1)
		}
	}
	f.finish()
	return f
}

// Aggregate sums tables by column and token. Columns keep the order in which
// they are first seen.
func Aggregate(tables ...*FrequencyTable) *FrequencyTable {
	f := newFrequencyTable()
	for _, t := range tables {
		for _, column := range t.Columns {
			if column == All {
				continue
			}
			if _, ok := f.Counts[column]; !ok {
				f.Counts[column] = make(map[string]int)
				f.Columns = append(f.Columns, column)
			}
			for tok, n := range t.Counts[column] {
				f.add(column, tok, n)
				f.add(All, tok, n)
			}
		}
	}
	f.finish()
	return f
}
