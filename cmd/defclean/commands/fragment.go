package commands

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/defclean/internal/logger"
	"github.com/jmylchreest/defclean/pkg/cleaner/markup"
)

var fragmentCmd = &cobra.Command{
	Use:   "fragment [file]",
	Short: "Clean a single markup fragment",
	Long: `Clean one markup fragment read from a file (or stdin) and print the
result. Useful for checking how a single definition will be rewritten.

Examples:
  defclean fragment definition.html
  pbpaste | defclean fragment --stats`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFragment,
}

func init() {
	rootCmd.AddCommand(fragmentCmd)
	fragmentCmd.Flags().Bool("stats", false, "print cleaning stats to stderr")
}

func runFragment(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = afero.ReadFile(fsys, args[0])
		if err != nil {
			return fmt.Errorf("reading file %s: %w", args[0], err)
		}
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	result, err := markup.New().CleanWithStats(string(data))
	if err != nil {
		logger.Error("fragment failed", "error", err)
		return err
	}
	logger.Debug("cleaned fragment",
		"flavor", result.Flavor,
		"in", result.Stats.InputBytes,
		"out", result.Stats.OutputBytes,
	)

	if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
		fmt.Fprintf(cmd.ErrOrStderr(), "Flavor: %s\n%s", result.Flavor, result.Stats.String())
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Content)
	return err
}
