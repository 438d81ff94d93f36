package file

import (
	"path/filepath"

	"github.com/jsphweid/polyindex/model"
)

// CreatePieceNumMap numbers paths in the order given.
func CreatePieceNumMap(paths []string) model.PieceNumToPath {
	res := make(model.PieceNumToPath)
	for i, v := range paths {
		res[model.PieceNum(i)] = v
	}
	return res
}

// Filenames maps each path to the base name used as its metadata key.
func Filenames(m model.PieceNumToPath) map[model.PieceNum]string {
	res := make(map[model.PieceNum]string, len(m))
	for k, v := range m {
		res[k] = filepath.Base(v)
	}
	return res
}
