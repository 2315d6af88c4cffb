package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/newhook/tasklog/internal/project"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a .tasklog directory with a documented config",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		proj, err := project.Create(dir)
		if err != nil {
			return err
		}
		defer proj.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", filepath.Join(proj.Root, project.ConfigDir, project.ConfigFile))
		return nil
	},
}
