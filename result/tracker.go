package result

import (
	"fmt"

	"github.com/jsphweid/polyindex/model"
)

// tracker maps label hashes to column positions and rejects repeated labels.
// Distinct labels sharing a hash are tolerated; lookups confirm the label.
type tracker struct {
	ids    map[uint64]int
	labels map[model.ColumnLabel]struct{}
}

func newTracker() *tracker {
	return &tracker{
		ids:    make(map[uint64]int),
		labels: make(map[model.ColumnLabel]struct{}),
	}
}

func (t *tracker) track(l model.ColumnLabel, pos int) error {
	if _, exists := t.labels[l]; exists {
		return fmt.Errorf("%w: %v", ErrDuplicateColumn, l)
	}
	t.labels[l] = struct{}{}
	if _, exists := t.ids[l.ID()]; !exists {
		t.ids[l.ID()] = pos
	}
	return nil
}
