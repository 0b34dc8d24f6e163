// Command memlog drives the memlog writers from the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newLogger returns a development logger at debug level when verbose is set.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newRootCmd builds a fresh command tree; flag state is not shared between
// trees.
func newRootCmd() *cobra.Command {
	var verbose bool
	c := &cobra.Command{
		Use:           "memlog",
		Short:         "Write fixed-capacity memory-mapped logs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = zap.L().Sync()
		},
	}
	c.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	c.AddCommand(newStreamCmd())
	c.AddCommand(newTableCmd())
	return c
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		zap.S().Errorf("memlog: %v", err)
		_ = zap.L().Sync()
		os.Exit(1)
	}
}
