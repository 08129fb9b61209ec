package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/overssh/overssh/internal/config"
	"github.com/overssh/overssh/internal/errors"
)

var initForceFlag bool

// initCmd writes the defaults file with its built-in values so users have
// something concrete to edit.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the defaults file",
	Long: `Write ~/.config/overssh/config.yaml with the built-in defaults.

The file supplies defaults for ping (count, interval, timeout) and names
the external diff tool chain. Command-line flags always override it.

Examples:
  overssh init
  overssh init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand()
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForceFlag, "force", "f", false, "overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}

func initCommand() error {
	path, err := config.DefaultPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !initForceFlag {
		return errors.New(errors.ErrConfig,
			"Config file already exists: "+path,
			"Use --force to overwrite it.")
	}

	if err := config.Save(path, config.Default()); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}
