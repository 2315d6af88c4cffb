package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/newhook/tasklog/internal/logging"
	"github.com/newhook/tasklog/internal/logscan"
	"github.com/newhook/tasklog/internal/pipeline"
	"github.com/newhook/tasklog/internal/project"
	"github.com/newhook/tasklog/internal/taskparam"
	"github.com/newhook/tasklog/internal/watcher"
	"github.com/spf13/cobra"
)

var (
	watchOpts     outputOptions
	flagFromStart bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Follow a build log and print task parameters as they appear",
	Long: `Follow a build log as it is written. Appended lines are scanned for
task parameter messages and each parameter is printed as soon as its message
is complete, or once the log has been quiet for a moment. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	addOutputFlags(watchCmd.Flags(), &watchOpts)
	watchCmd.Flags().BoolVar(&flagFromStart, "from-start", false, "process the existing content first")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := watchOpts.validate(); err != nil {
		return err
	}
	ctx := GetContext()

	proj, err := project.FindOrDefault(flagProject)
	if err != nil {
		return err
	}
	defer proj.Close()

	proc, err := newProcessor(ctx, proj, &watchOpts, args[0])
	if err != nil {
		return err
	}

	f := &follower{
		ctx:     ctx,
		proc:    proc,
		scanner: logscan.NewScanner(),
		errOut:  cmd.ErrOrStderr(),
		write: func(params []*taskparam.Parameter) error {
			return writeParameters(cmd.OutOrStdout(), proj, &watchOpts, params)
		},
	}

	cfg := watcher.DefaultConfig(args[0])
	cfg.Debounce = proj.Config.Watch.GetDebounce()
	cfg.FromStart = flagFromStart
	// A message may span several writes, so it ends only once the log goes quiet.
	cfg.OnIdle = f.flush
	cfg.OnReset = f.reset

	w, err := watcher.New(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl-C to stop)\n", args[0])
	if err := w.Run(ctx, f.lines); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// follower feeds watched lines through the scanner and prints parameters as
// their messages complete.
type follower struct {
	ctx     context.Context
	proc    *pipeline.Processor
	scanner *logscan.Scanner
	errOut  io.Writer
	write   func([]*taskparam.Parameter) error
}

func (f *follower) lines(lines []string) {
	var messages []logscan.Message
	for _, line := range lines {
		if msg, ok := f.scanner.Feed(line); ok {
			messages = append(messages, msg)
		}
	}
	f.process(messages)
}

// flush emits the message still being accumulated, if any.
func (f *follower) flush() {
	if msg, ok := f.scanner.Flush(); ok {
		f.process([]logscan.Message{msg})
	}
}

// reset runs when the log starts over.
func (f *follower) reset() {
	f.flush()
	if err := f.proc.Reset(f.ctx); err != nil {
		logging.Warn("failed to reset parse cache", "error", err)
	}
}

func (f *follower) process(messages []logscan.Message) {
	if len(messages) == 0 {
		return
	}
	result, err := f.proc.Process(f.ctx, messages)
	if err != nil {
		return
	}
	for _, failure := range result.Failures {
		fmt.Fprintf(f.errOut, "error: %v\n", failure)
	}
	if len(result.Parsed) > 0 {
		if err := f.write(result.Parameters()); err != nil {
			logging.Error("failed to write parameters", "error", err)
		}
	}
}
