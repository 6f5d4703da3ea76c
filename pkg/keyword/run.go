package keyword

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"

	"github.com/jmylchreest/defclean/internal/logger"
	"github.com/jmylchreest/defclean/pkg/cleaner"
)

// Default file names used by the export tooling.
const (
	DefaultInput  = "keyword-database-export.json"
	DefaultOutput = "keyword-database-cleaned.json"
)

// Options configures a file-to-file run.
type Options struct {
	// Input is the export to read.
	Input string `validate:"required"`

	// Output is the file to write. It may be empty for a dry run and must
	// never point at Input.
	Output string `validate:"required_unless=DryRun true,nefield=Input"`

	// DryRun cleans everything but writes nothing.
	DryRun bool
}

var validate = validator.New()

// Validate checks the options for missing or conflicting paths.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]error, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Errorf("%s %s", e.Field(), formatValidationError(e)))
	}
	return fmt.Errorf("invalid options: %w", errors.Join(msgs...))
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_unless":
		return "is required"
	case "nefield":
		return fmt.Sprintf("must differ from %s", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}

// Run reads opts.Input from fs, cleans it, and writes opts.Output.
func Run(ctx context.Context, fs afero.Fs, opts Options, c cleaner.Cleaner) (*Summary, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(fs, opts.Input)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", opts.Input, err)
	}
	logger.Debug("read export", "path", opts.Input, "size", humanize.Bytes(uint64(len(data))))

	out, summary, err := Process(ctx, data, c)
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", opts.Input, err)
	}

	if opts.DryRun {
		logger.Info("dry run, output not written", "entries", summary.Entries, "cleaned", summary.Cleaned)
		return summary, nil
	}

	if err := afero.WriteFile(fs, opts.Output, out, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", opts.Output, err)
	}
	logger.Info("wrote cleaned export",
		"path", opts.Output,
		"entries", summary.Entries,
		"cleaned", summary.Cleaned,
		"size", humanize.Bytes(uint64(len(out))),
	)
	return summary, nil
}
