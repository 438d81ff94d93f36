package model

// JointTable holds the value of every part at every offset. Columns are
// indexed by part position, each holding one Cell per offset.
type JointTable struct {
	Offsets []Offset
	Columns [][]Cell
}

func (t *JointTable) Len() int {
	return len(t.Offsets)
}

func (t *JointTable) Width() int {
	return len(t.Columns)
}

// Row returns a fresh slice with the simultaneity at row i.
func (t *JointTable) Row(i int) []Cell {
	row := make([]Cell, len(t.Columns))
	for j, col := range t.Columns {
		row[j] = col[i]
	}
	return row
}

type Settings = map[string]any

type Metadata struct {
	Title    string `json:"title"`
	Composer string `json:"composer"`
	Year     uint   `json:"year,omitempty"`
}
