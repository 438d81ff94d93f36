package store

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jsphweid/polyindex/constants"
	"github.com/jsphweid/polyindex/model"
	"github.com/jsphweid/polyindex/util"
)

// Catalog lists every stored table. It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	entries []model.CatalogEntry
}

func NewCatalog(entries ...model.CatalogEntry) *Catalog {
	c := &Catalog{}
	for _, e := range entries {
		c.Add(e)
	}
	return c
}

// Add records e, replacing any entry stored under the same filename.
func (c *Catalog) Add(e model.CatalogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.entries {
		if c.entries[i].Filename == e.Filename {
			c.entries[i] = e
			return
		}
	}
	c.entries = append(c.entries, e)
}

// Entries returns a copy of the catalog ordered by piece number.
func (c *Catalog) Entries() []model.CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res := make([]model.CatalogEntry, len(c.entries))
	copy(res, c.entries)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].PieceNum < res[j].PieceNum
	})
	return res
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Catalog) Lookup(filename string) (model.CatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if e.Filename == filename {
			return e, true
		}
	}
	return model.CatalogEntry{}, false
}

// ForPiece lists the entries stored for one piece.
func (c *Catalog) ForPiece(num model.PieceNum) []model.CatalogEntry {
	var res []model.CatalogEntry
	for _, e := range c.Entries() {
		if e.PieceNum == num {
			res = append(res, e)
		}
	}
	return res
}

func CatalogPath(dir string) string {
	return filepath.Join(dir, constants.CatalogFilename)
}

func (c *Catalog) Save(dir string) error {
	return util.CreateBinary(CatalogPath(dir), c.Entries())
}

// LoadCatalog reads the catalog of dir. A directory without one has an empty
// catalog.
func LoadCatalog(dir string) (*Catalog, error) {
	path := CatalogPath(dir)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewCatalog(), nil
	}
	entries, err := util.ReadBinary[[]model.CatalogEntry](path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(entries...), nil
}
