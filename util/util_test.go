package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKeysIsSorted(t *testing.T) {
	m := map[string]int{"b": 1, "c": 2, "a": 3}
	assert.Equal(t, []string{"a", "b", "c"}, GetKeys(m))
}

func TestMinSum(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(2, Min(2, 5))
	assert.Equal(0.5, Min(1.5, 0.5))
	assert.Equal(uint64(10), Sum([]int{1, 2, 3, 4}))
	assert.Equal(uint64(0), Sum([]uint8{}))
}

func TestGatherAllMidiPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mid", "a.midi", "notes.txt", "sub/c.mid"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0777))
		require.NoError(t, os.WriteFile(path, []byte{}, 0666))
	}

	all, err := GatherAllMidiPaths(dir, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.midi"),
		filepath.Join(dir, "b.mid"),
		filepath.Join(dir, "sub/c.mid"),
	}, all)

	some, err := GatherAllMidiPaths(dir, 2)
	require.NoError(t, err)
	assert.Len(t, some, 2)
}

func TestRecreateOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(dir, 0777))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.dat"), []byte("x"), 0666))

	require.NoError(t, RecreateOutputDir(dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBinaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nums.dat")
	m := map[uint32]string{0: "a.mid", 1: "b.mid"}
	require.NoError(t, CreateBinary(path, m))

	got, err := ReadBinary[map[uint32]string](path)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	_, err = ReadBinary[map[uint32]string](filepath.Join(t.TempDir(), "missing.dat"))
	assert.Error(t, err)
}
