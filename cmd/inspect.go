package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/polyindex/midi"
	"github.com/jsphweid/polyindex/result"
	"github.com/jsphweid/polyindex/store"
	"github.com/jsphweid/polyindex/util"
	"github.com/spf13/cobra"
)

var (
	excerptFrom  float64
	excerptNotes int
	excerptOut   string
)

func init() {
	inspectCmd.Flags().Float64Var(&excerptFrom, "from", 0, "excerpt start offset in quarter notes (midi files)")
	inspectCmd.Flags().IntVar(&excerptNotes, "notes", 10, "notes per track in the excerpt")
	inspectCmd.Flags().StringVarP(&excerptOut, "out", "o", "", "write an excerpt of the midi file here")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Inspects a stored table or a midi file",
	Long: `Prints a stored result table (.dat) row by row, or the parts imported
from a midi file. With --out, also writes an excerpt of the midi file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if util.IsMidiPath(path) {
			return inspectMidi(cmd.OutOrStdout(), path)
		}
		return inspectTable(cmd.OutOrStdout(), path)
	},
}

func inspectTable(w io.Writer, path string) error {
	table, entry, err := store.Load(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "piece: %v (%v)\n", entry.PieceNum, entry.Path)
	if entry.Metadata != nil {
		fmt.Fprintf(w, "title: %v, composer: %v\n", entry.Metadata.Title, entry.Metadata.Composer)
	}
	fmt.Fprintf(w, "chain: %v\n", strings.Join(entry.Steps, " > "))
	printTable(w, table)
	return nil
}

func printTable(w io.Writer, t *result.Table) {
	header := []string{"offset"}
	for _, l := range t.Labels {
		header = append(header, l.String())
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for r, off := range t.Offsets {
		row := []string{fmt.Sprint(off)}
		for c := range t.Labels {
			row = append(row, t.Cells[c][r].String())
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
}

func inspectMidi(w io.Writer, path string) error {
	s, err := midi.ReadMidiFile(path)
	if err != nil {
		return err
	}
	parts, err := midi.Parts(s)
	if err != nil {
		return err
	}
	for _, p := range parts {
		fmt.Fprintf(w, "part %v: %d events\n", p.Label, p.Len())
		for _, e := range p.Events {
			fmt.Fprintf(w, "  %v\t%v\n", e.Offset, e.Value)
		}
	}
	if excerptOut == "" {
		return nil
	}

	ex, err := midi.Excerpt(s, excerptFrom, excerptNotes)
	if err != nil {
		return err
	}
	f, err := os.Create(excerptOut)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = ex.WriteTo(f)
	return err
}
