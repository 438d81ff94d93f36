// Package store persists result tables as zstd-compressed gob files named by
// UUID, with a catalog mapping pieces to their files.
package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/jsphweid/polyindex/model"
	"github.com/jsphweid/polyindex/result"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

const Ext = ".dat"

var decoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder: %v", err))
		}
		return decoder
	},
}

var encoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder: %v", err))
		}
		return encoder
	},
}

// record is the on-disk form of a table: its columns as sequences.
type record struct {
	Entry   model.CatalogEntry
	Labels  []model.ColumnLabel
	Columns []model.Sequence
}

func NewFilename() string {
	return uuid.New().String() + Ext
}

// Save writes t under dir. The entry's Filename is filled in when empty and
// the completed entry is returned.
func Save(dir string, entry model.CatalogEntry, t *result.Table) (model.CatalogEntry, error) {
	if entry.Filename == "" {
		entry.Filename = NewFilename()
	}
	rec := record{Entry: entry, Labels: t.Labels, Columns: t.Sequences()}

	buf := new(bytes.Buffer)
	if err := gob.NewEncoder(buf).Encode(rec); err != nil {
		return entry, errors.Wrap(err, "Could not encode result table")
	}

	encoder := encoderPool.Get().(*zstd.Encoder)
	defer encoderPool.Put(encoder)
	compressed := encoder.EncodeAll(buf.Bytes(), nil)

	path := filepath.Join(dir, entry.Filename)
	if err := os.WriteFile(path, compressed, 0666); err != nil {
		return entry, errors.Wrapf(err, "Write failed for %v", path)
	}
	return entry, nil
}

// Load reads back a table written by Save along with its catalog entry.
func Load(dir, filename string) (*result.Table, model.CatalogEntry, error) {
	path := filepath.Join(dir, filepath.Base(filename))
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, model.CatalogEntry{}, errors.Wrapf(err, "Could not read %v", path)
	}

	decoder := decoderPool.Get().(*zstd.Decoder)
	defer decoderPool.Put(decoder)
	raw, err := decoder.DecodeAll(dat, nil)
	if err != nil {
		return nil, model.CatalogEntry{}, errors.Wrapf(err, "Could not decompress %v", path)
	}

	var rec record
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&rec); err != nil {
		return nil, model.CatalogEntry{}, errors.Wrapf(err, "Could not decode %v", path)
	}
	t, err := result.Build(rec.Labels, rec.Columns)
	if err != nil {
		return nil, rec.Entry, err
	}
	return t, rec.Entry, nil
}
