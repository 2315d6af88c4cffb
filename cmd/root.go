package cmd

import (
	"context"
	"log/slog"

	"github.com/newhook/tasklog/internal/logging"
	tlsignal "github.com/newhook/tasklog/internal/signal"
	"github.com/spf13/cobra"
)

var (
	// rootCtx is cancelled on SIGINT/SIGTERM.
	rootCtx    context.Context
	rootCancel context.CancelFunc

	flagProject string
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:   "tasklog",
	Short: "Turn build task parameter messages into XML",
	Long: `tasklog reads build logs, picks out task parameter messages
(task inputs, task outputs and item group changes) and renders them as XML
or as a tree.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		rootCtx, rootCancel = tlsignal.WithSignalCancel(context.Background())
		if flagDebug {
			logging.SetLogger(logging.NewStderr(slog.LevelDebug))
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rootCancel != nil {
			rootCancel()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetContext returns the root context that is cancelled on SIGINT/SIGTERM.
func GetContext() context.Context {
	if rootCtx == nil {
		return context.Background()
	}
	return rootCtx
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProject, "project", "", "project directory (default: auto-detect from cwd)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "log to stderr at debug level")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(initCmd)
}
