package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/newhook/tasklog/internal/logging"
	"github.com/newhook/tasklog/internal/logscan"
	"github.com/newhook/tasklog/internal/project"
	"github.com/spf13/cobra"
)

var parseOpts outputOptions

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse task parameter messages from a build log",
	Long: `Read a build log (or stdin when no file or "-" is given), find every
task parameter message in it and print the result as XML or a tree.

Messages that cannot be parsed are reported on stderr and the command exits
non-zero, but every other message is still printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	addOutputFlags(parseCmd.Flags(), &parseOpts)
}

func runParse(cmd *cobra.Command, args []string) error {
	if err := parseOpts.validate(); err != nil {
		return err
	}
	ctx := GetContext()

	proj, err := project.FindOrDefault(flagProject)
	if err != nil {
		return err
	}
	defer proj.Close()

	source := "-"
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		source = args[0]
		f, err := os.Open(source)
		if err != nil {
			return fmt.Errorf("failed to open log: %w", err)
		}
		defer f.Close()
		in = f
	}

	messages, err := logscan.Scan(in)
	if err != nil {
		return fmt.Errorf("failed to read log: %w", err)
	}
	logging.Info("scanned log", "source", source, "messages", len(messages))

	proc, err := newProcessor(ctx, proj, &parseOpts, source)
	if err != nil {
		return err
	}
	result, err := proc.Process(ctx, messages)
	if err != nil {
		return err
	}

	if err := writeParameters(cmd.OutOrStdout(), proj, &parseOpts, result.Parameters()); err != nil {
		return err
	}
	return reportFailures(cmd.ErrOrStderr(), result.Failures)
}
