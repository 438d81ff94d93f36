package cmd

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbosity int
	logger    = logr.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "polyindex",
	Short: "Indexes and analyses polyphonic scores",
	Long: `polyindex turns the parts of MIDI scores into aligned note, rest and
interval indices, stores them and counts what they contain.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbosity)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "more logging (repeat for debug output)")
}

func newLogger(v int) (logr.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-v))
	z, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(z).WithName("polyindex"), nil
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
