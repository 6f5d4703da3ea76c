// Package commands implements the CLI commands for defclean.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/defclean/internal/logger"
)

// fsys is the filesystem commands read from and write to.
var fsys = afero.NewOsFs()

var rootCmd = &cobra.Command{
	Use:   "defclean",
	Short: "Normalize the markup stored in keyword database definitions",
	Long: `Defclean rewrites the "definition" field of every entry in a keyword
database export. Markup pasted from Microsoft Word is collapsed to span, div
and p elements; all other markup loses its class and id attributes and any
mso-* inline style declarations.

Examples:
  # Clean keyword-database-export.json into keyword-database-cleaned.json
  defclean clean

  # Explicit paths with a YAML run report
  defclean clean -i export.json -o cleaned.json --report run.yaml

  # See what would change without writing anything
  defclean clean --dry-run --debug`,
	SilenceUsage:     true,
	PersistentPreRun: initLogger,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.defclean.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().Bool("log-json", false, "write logs as JSON")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".defclean")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("DEFCLEAN")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// initLogger configures logging from the global flags for every subcommand.
func initLogger(cmd *cobra.Command, _ []string) {
	logger.Init(logger.Options{
		Debug:  viper.GetBool("debug"),
		Quiet:  viper.GetBool("quiet"),
		JSON:   viper.GetBool("log_json"),
		Output: cmd.ErrOrStderr(),
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
