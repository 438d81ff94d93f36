package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/polyindex/constants"
	"github.com/jsphweid/polyindex/experiment"
	"github.com/jsphweid/polyindex/model"
	"github.com/jsphweid/polyindex/store"
	"github.com/jsphweid/polyindex/util"
	"github.com/spf13/cobra"
)

var topTokens int

func init() {
	reportCmd.Flags().IntVar(&topTokens, "top", 10, "tokens listed per frequency table")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Creates a report",
	Long:  `Summarises the index in INDEX_PATH: stored tables per chain and the most frequent tokens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := analyzeIndex(constants.GetIndexDir())
		if err != nil {
			return err
		}
		r.print(cmd.OutOrStdout(), topTokens)
		return nil
	},
}

type chainReport struct {
	numTables int
	sizes     []int64
}

func (c *chainReport) numBytes() uint64 {
	return util.Sum(c.sizes)
}

type indexReport struct {
	numPieces   int
	numTables   int
	totalBytes  uint64
	chains      map[string]*chainReport
	frequencies map[string]*experiment.FrequencyTable
}

func analyzeIndex(dir string) (*indexReport, error) {
	catalog, err := store.LoadCatalog(dir)
	if err != nil {
		return nil, err
	}
	r := &indexReport{
		chains:      make(map[string]*chainReport),
		frequencies: make(map[string]*experiment.FrequencyTable),
	}

	pieces := make(map[model.PieceNum]bool)
	for _, e := range catalog.Entries() {
		pieces[e.PieceNum] = true
		c, ok := r.chains[e.Chain]
		if !ok {
			c = &chainReport{}
			r.chains[e.Chain] = c
		}
		c.numTables++
		if stats, err := os.Stat(filepath.Join(dir, e.Filename)); err == nil {
			c.sizes = append(c.sizes, stats.Size())
		}
	}
	for _, c := range r.chains {
		r.totalBytes += c.numBytes()
	}
	r.numPieces = len(pieces)
	r.numTables = catalog.Len()

	matches, err := filepath.Glob(filepath.Join(dir, "*"+constants.FrequencyExt))
	if err != nil {
		return nil, err
	}
	for _, path := range matches {
		f, err := util.ReadBinary[*experiment.FrequencyTable](path)
		if err != nil {
			return nil, err
		}
		r.frequencies[strings.TrimSuffix(filepath.Base(path), constants.FrequencyExt)] = f
	}
	return r, nil
}

func (r *indexReport) print(w io.Writer, top int) {
	fmt.Fprintf(w, "pieces: %v\n", r.numPieces)
	fmt.Fprintf(w, "tables: %v (%v bytes)\n", r.numTables, r.totalBytes)
	for _, name := range util.GetKeys(r.chains) {
		c := r.chains[name]
		fmt.Fprintf(w, "  %v: %v tables, %v bytes\n", name, c.numTables, c.numBytes())
	}

	for _, name := range util.GetKeys(r.frequencies) {
		f := r.frequencies[name]
		fmt.Fprintf(w, "most frequent in %v:\n", name)
		ranked := f.Ranked(experiment.All)
		for _, tok := range ranked[:util.Min(top, len(ranked))] {
			fmt.Fprintf(w, "  %v\t%v\n", tok, f.Count(experiment.All, tok))
		}
	}
}
