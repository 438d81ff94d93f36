package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/jsphweid/polyindex/config"
	"github.com/jsphweid/polyindex/constants"
	"github.com/jsphweid/polyindex/db"
	"github.com/jsphweid/polyindex/experiment"
	"github.com/jsphweid/polyindex/file"
	"github.com/jsphweid/polyindex/metrics"
	"github.com/jsphweid/polyindex/model"
	"github.com/jsphweid/polyindex/piece"
	"github.com/jsphweid/polyindex/store"
	"github.com/jsphweid/polyindex/util"
	"github.com/spf13/cobra"
)

var (
	runFile      string
	withMetadata bool
)

func init() {
	indexCmd.Flags().StringVarP(&runFile, "run", "r", "", "YAML run file describing the analyzer chains")
	indexCmd.Flags().BoolVar(&withMetadata, "metadata", false, "look up piece metadata in DynamoDB")
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index [maxNum]",
	Short: "Creates index",
	Long: `Runs every analyzer chain of the run file over the MIDI files in
MEDIA_PATH and stores the results in INDEX_PATH.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var maxNum int
		if len(args) == 1 {
			arg1, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			maxNum = arg1
		}
		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}
		_, err = Index(cmd.Context(), cfg, maxNum)
		return err
	},
}

func loadRunConfig() (*config.RunConfig, error) {
	if runFile == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	return config.Load(runFile)
}

type loaded struct {
	num   model.PieceNum
	path  string
	piece *piece.Piece
}

// Index rebuilds the index directory from scratch.
func Index(ctx context.Context, cfg *config.RunConfig, maxNum int) (*store.Catalog, error) {
	registry := piece.DefaultRegistry()
	for _, chain := range cfg.Chains {
		if err := registry.Validate(chain.Steps); err != nil {
			return nil, fmt.Errorf("chain %v: %w", chain.Name, err)
		}
	}

	mediaDir := cfg.MediaDir
	if mediaDir == "" {
		mediaDir = constants.GetMediaDir()
	}
	outDir := cfg.IndexDir
	if outDir == "" {
		outDir = constants.GetIndexDir()
	}
	if maxNum == 0 {
		maxNum = cfg.MaxPieces
	}

	if err := util.RecreateOutputDir(outDir); err != nil {
		return nil, err
	}
	paths, err := util.GatherAllMidiPaths(mediaDir, maxNum)
	if err != nil {
		return nil, err
	}
	nums := file.CreatePieceNumMap(paths)

	metadatas := make(map[string]model.Metadata)
	if withMetadata {
		m, err := db.New(constants.GetDynamoEndpoint())
		if err != nil {
			return nil, err
		}
		var filenames []string
		for _, name := range file.Filenames(nums) {
			filenames = append(filenames, name)
		}
		if metadatas, err = m.GetMetadatas(ctx, filenames); err != nil {
			return nil, err
		}
	}

	var pieces []loaded
	keys := util.GetKeys(nums)
	for i, num := range keys {
		path := nums[num]
		logger.V(1).Info("loading midi file", "n", i+1, "of", len(keys), "path", path)
		var opts []piece.Option
		opts = append(opts, piece.WithLogger(logger), piece.WithRegistry(registry))
		if meta, ok := metadatas[filepath.Base(path)]; ok {
			opts = append(opts, piece.WithMetadata(&meta))
		}
		p, err := piece.Load(path, opts...)
		if err != nil {
			metrics.PieceFailures.Inc()
			logger.Info("skipping midi file", "path", path, "reason", err.Error())
			continue
		}
		pieces = append(pieces, loaded{num: num, path: path, piece: p})
	}

	all := make([]*piece.Piece, len(pieces))
	for i, l := range pieces {
		all[i] = l.piece
	}
	agg := piece.NewAggregated(all)
	agg.Log = logger
	if cfg.Workers > 0 {
		agg.Workers = cfg.Workers
	}

	catalog := store.NewCatalog()
	for _, chain := range cfg.Chains {
		tables, err := agg.Run(ctx, chain.Steps...)
		if err != nil {
			return nil, fmt.Errorf("chain %v: %w", chain.Name, err)
		}
		for i, t := range tables {
			entry, err := store.Save(outDir, model.CatalogEntry{
				PieceNum: pieces[i].num,
				Path:     pieces[i].path,
				Chain:    chain.Name,
				Steps:    model.StepNames(chain.Steps),
				Metadata: pieces[i].piece.Metadata,
			}, t)
			if err != nil {
				return nil, err
			}
			catalog.Add(entry)
		}
		if chain.Frequency {
			freqs := make([]*experiment.FrequencyTable, len(tables))
			for i, t := range tables {
				freqs[i] = experiment.Frequency(t)
			}
			path := filepath.Join(outDir, chain.Name+constants.FrequencyExt)
			if err := util.CreateBinary(path, experiment.Aggregate(freqs...)); err != nil {
				return nil, err
			}
		}
		logger.Info("indexed chain", "chain", chain.Name, "pieces", len(tables))
	}

	if err := catalog.Save(outDir); err != nil {
		return nil, err
	}
	if err := util.CreateBinary(filepath.Join(outDir, constants.PiecesFilename), nums); err != nil {
		return nil, err
	}
	return catalog, nil
}
