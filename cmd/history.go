package cmd

import (
	"errors"
	"fmt"

	"github.com/newhook/tasklog/internal/archive"
	"github.com/newhook/tasklog/internal/project"
	"github.com/newhook/tasklog/internal/taskparam"
	"github.com/spf13/cobra"
)

var (
	flagHistoryKind  string
	flagHistoryName  string
	flagHistoryLimit int
	historyShowOpts  outputOptions
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived task parameters",
	Long:  `List task parameters stored by 'parse --archive' or 'watch --archive', newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Render an archived task parameter",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an archived task parameter",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyCmd.Flags().StringVarP(&flagHistoryKind, "kind", "k", "", "filter by kind (InputParameter, OutputItem, OutputProperty, ItemGroup)")
	historyCmd.Flags().StringVarP(&flagHistoryName, "name", "n", "", "filter by parameter name")
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "l", 50, "maximum number of entries (0 for all)")

	historyShowCmd.Flags().StringVarP(&historyShowOpts.format, "format", "f", formatXML, "output format (xml, tree)")
	historyShowCmd.Flags().StringVar(&historyShowOpts.root, "root", "", "root element name (default from config: Task)")
	historyShowCmd.Flags().IntVar(&historyShowOpts.indent, "indent", -1, "spaces per XML nesting level (default from config: 2)")
	historyShowCmd.Flags().BoolVar(&historyShowOpts.declaration, "declaration", false, "start XML output with an <?xml ...?> declaration")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
}

func openArchive() (*project.Project, *archive.DB, error) {
	proj, err := project.Find(flagProject)
	if err != nil {
		return nil, nil, fmt.Errorf("not in a project directory: %w", err)
	}
	db, err := proj.Archive(GetContext())
	if err != nil {
		proj.Close()
		return nil, nil, err
	}
	return proj, db, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	filter := archive.ListFilter{Name: flagHistoryName, Limit: flagHistoryLimit}
	if flagHistoryKind != "" {
		filter.Kind = taskparam.ParseKind(flagHistoryKind)
		if filter.Kind == taskparam.KindUnknown {
			return fmt.Errorf("unknown kind %q", flagHistoryKind)
		}
	}

	proj, db, err := openArchive()
	if err != nil {
		return err
	}
	defer proj.Close()

	records, err := db.ListParameters(GetContext(), filter)
	if err != nil {
		return fmt.Errorf("failed to list parameters: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No archived parameters")
		return nil
	}

	fmt.Fprintf(out, "%-36s %-15s %-30s %5s  %s\n", "ID", "KIND", "NAME", "ITEMS", "SOURCE")
	fmt.Fprintf(out, "%-36s %-15s %-30s %5s  %s\n", "--", "----", "----", "-----", "------")
	for _, rec := range records {
		name := rec.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		source := "-"
		if rec.Source != "" {
			source = fmt.Sprintf("%s:%d", rec.Source, rec.Line)
		}
		fmt.Fprintf(out, "%-36s %-15s %-30s %5d  %s\n", rec.ID, rec.Kind, name, rec.ItemCount, source)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if err := historyShowOpts.validate(); err != nil {
		return err
	}
	proj, db, err := openArchive()
	if err != nil {
		return err
	}
	defer proj.Close()

	p, err := db.LoadParameter(GetContext(), args[0])
	if errors.Is(err, archive.ErrNotFound) {
		return fmt.Errorf("no archived parameter with id %s", args[0])
	}
	if err != nil {
		return err
	}
	return writeParameters(cmd.OutOrStdout(), proj, &historyShowOpts, []*taskparam.Parameter{p})
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	proj, db, err := openArchive()
	if err != nil {
		return err
	}
	defer proj.Close()

	if err := db.DeleteParameter(GetContext(), args[0]); err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			return fmt.Errorf("no archived parameter with id %s", args[0])
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}
