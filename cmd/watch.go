package cmd

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/jsphweid/polyindex/constants"
	"github.com/jsphweid/polyindex/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var quietPeriod time.Duration

func init() {
	watchCmd.Flags().StringVarP(&runFile, "run", "r", "", "YAML run file describing the analyzer chains")
	watchCmd.Flags().BoolVar(&withMetadata, "metadata", false, "look up piece metadata in DynamoDB")
	watchCmd.Flags().DurationVar(&quietPeriod, "quiet", 2*time.Second, "wait this long after the last change before re-indexing")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-indexes whenever the media directory changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}
		mediaDir := cfg.MediaDir
		if mediaDir == "" {
			mediaDir = constants.GetMediaDir()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var mu sync.Mutex
		reindex := func() {
			mu.Lock()
			defer mu.Unlock()
			if _, err := Index(ctx, cfg, 0); err != nil {
				logger.Error(err, "re-indexing failed")
			}
		}
		reindex()
		return watchMedia(ctx, mediaDir, quietPeriod, reindex)
	},
}

// watchMedia calls onChange once things have been quiet for the given period
// after any midi file under dir is created, written, removed or renamed. It
// returns when ctx is done.
func watchMedia(ctx context.Context, dir string, quiet time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer watcher.Close()

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "watching %v", dir)
	}

	debounced := debounce.New(quiet)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				// new directories need their own watch
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err == nil {
						logger.V(1).Info("watching new directory", "path", event.Name)
					}
				}
			}
			if !util.IsMidiPath(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.V(1).Info("media changed", "path", event.Name, "op", event.Op.String())
			debounced(onChange)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Info("file watcher error", "error", err.Error())
		}
	}
}
