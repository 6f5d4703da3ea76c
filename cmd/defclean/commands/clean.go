package commands

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/defclean/internal/logger"
	"github.com/jmylchreest/defclean/internal/report"
	"github.com/jmylchreest/defclean/pkg/cleaner/markup"
	"github.com/jmylchreest/defclean/pkg/keyword"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean every definition in a keyword database export",
	Long: `Read a keyword database export, clean the markup in each entry's
"definition" field, and write the result as indented JSON.

Entries without a definition, and definitions that are not strings, are
copied through unchanged. Key order is preserved. The first markup parse
failure aborts the run and nothing is written.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	flags := cleanCmd.Flags()
	flags.StringP("input", "i", keyword.DefaultInput, "keyword database export to read")
	flags.StringP("output", "o", keyword.DefaultOutput, "file to write the cleaned export to")
	flags.String("report", "", "write a run report to this file")
	flags.String("report-format", "", "report format: json, yaml (default: from --report extension)")
	flags.Bool("dry-run", false, "clean without writing the output file")

	_ = viper.BindPFlag("input", flags.Lookup("input"))
	_ = viper.BindPFlag("output", flags.Lookup("output"))
	_ = viper.BindPFlag("report", flags.Lookup("report"))
	_ = viper.BindPFlag("report_format", flags.Lookup("report-format"))
	_ = viper.BindPFlag("dry_run", flags.Lookup("dry-run"))
}

func runClean(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := keyword.Options{
		Input:  viper.GetString("input"),
		Output: viper.GetString("output"),
		DryRun: viper.GetBool("dry_run"),
	}

	// Resolve the report format before doing any work so a typo fails fast.
	reportPath := viper.GetString("report")
	var reportFormat report.Format
	if reportPath != "" {
		reportFormat = report.FormatFromPath(reportPath)
		if f := strings.TrimSpace(viper.GetString("report_format")); f != "" {
			parsed, err := report.ParseFormat(f)
			if err != nil {
				logger.Error("invalid report format", "value", f, "error", err)
				return err
			}
			reportFormat = parsed
		}
	}

	c := markup.New()
	log := logger.With("input", opts.Input, "cleaner", c.Name())
	log.Debug("clean command starting", "output", opts.Output, "dry_run", opts.DryRun)

	summary, err := keyword.Run(ctx, fsys, opts, c)
	if err != nil {
		log.Error("clean failed", "error", err)
		return err
	}

	if reportPath != "" {
		if err := report.WriteFile(fsys, reportPath, reportFormat, report.New(opts, summary)); err != nil {
			log.Error("failed to write report", "path", reportPath, "error", err)
			return err
		}
		log.Debug("wrote report", "path", reportPath, "format", reportFormat)
	}

	logInfo("%s", strings.TrimRight(summary.String(), "\n"))
	if viper.GetBool("debug") {
		logInfo("%s", strings.TrimRight(summary.Markup.String(), "\n"))
	}
	return nil
}
