package model

type PieceNum = uint32
type PieceNumToPath = map[PieceNum]string

// CatalogEntry points at one stored result table.
type CatalogEntry struct {
	PieceNum PieceNum
	Path     string
	Filename string
	Chain    string
	Steps    []string
	Metadata *Metadata
}
