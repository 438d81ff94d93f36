package util

import (
	"bytes"
	"encoding/gob"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

func RecreateOutputDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0777)
}

func IsMidiPath(s string) bool {
	return strings.HasSuffix(s, ".mid") || strings.HasSuffix(s, ".midi")
}

// GatherAllMidiPaths walks path and returns up to maxNum midi files, or all
// of them when maxNum is 0.
func GatherAllMidiPaths(path string, maxNum int) ([]string, error) {
	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsMidiPath(s) {
			if maxNum == 0 || len(res) < maxNum {
				res = append(res, s)
			}
		}
		return nil
	}
	if err := filepath.WalkDir(path, walk); err != nil {
		return nil, err
	}
	sort.Strings(res)
	return res, nil
}

// GetKeys returns the keys of m in ascending order.
func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

// CreateBinary gob encodes data into filename.
func CreateBinary(filename string, data any) error {
	buf := new(bytes.Buffer)
	if err := gob.NewEncoder(buf).Encode(data); err != nil {
		return errors.Wrapf(err, "Could not encode %v", filename)
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0666); err != nil {
		return errors.Wrapf(err, "Write failed for file %v", filename)
	}
	return nil
}

func ReadBinary[A any](path string) (A, error) {
	var res A
	dat, err := os.ReadFile(path)
	if err != nil {
		return res, errors.Wrapf(err, "Could not read %v", path)
	}
	if err := gob.NewDecoder(bytes.NewReader(dat)).Decode(&res); err != nil {
		return res, errors.Wrapf(err, "Could not decode %v", path)
	}
	return res, nil
}

func Min[A constraints.Ordered](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

func Sum[A constraints.Integer](nums []A) uint64 {
	var total uint64
	for _, v := range nums {
		total += uint64(v)
	}
	return total
}
