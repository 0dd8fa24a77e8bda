package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/engine"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/observability"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/store"
)

// FilterOptions holds flags for the filter command.
type FilterOptions struct {
	*RootOptions
	ExprOptions
	Source        string // records path, "-" for stdin
	Table         string // SQLite table
	RecordsFormat string // json | ndjson | yaml, auto-detected when empty
	BatchSize     int
	ProgramID     string // fixed program ID, for reproducible output
	Output        string // write matching records here instead of stdout
	Compress      string // gzip | zstd, applies to Output
}

// FilterOutput is the JSON payload of the filter command.
type FilterOutput struct {
	ProgramID string `json:"program_id"`
	Scanned   int    `json:"scanned"`
	Matched   []int  `json:"matched"`
	Anomalies int    `json:"anomalies"`
	Records   []any  `json:"records,omitempty"`
	Output    string `json:"output,omitempty"`
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "filter [records]",
		Short: "Print the records an expression selects",
		Long: `Load a record collection, evaluate an expression against every record
and print the matching records in input order.

Records may be a JSON array, NDJSON, YAML, optionally gzip or zstd
compressed, or a SQLite database (pick the table with --table). Text
output prints one canonical JSON record per line.

Example:
  jsonfilter filter people.json --expr '[{key: age, op: ">", val: 20}]'
  jsonfilter filter people.db --table people --expr-file adults.cue
  cat people.ndjson | jsonfilter filter - --expr-file expr.yaml --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if opts.Source != "" {
					return NewExitError(ExitCommandError, "records given both as argument and --source")
				}
				opts.Source = args[0]
			}
			return runFilter(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Expr, "expr", "", "inline expression (JSON or YAML)")
	cmd.Flags().StringVar(&opts.ExprFile, "expr-file", "", "expression file (.json, .yaml, .cue)")
	cmd.Flags().StringVar(&opts.Source, "source", "", "records path (\"-\" for stdin)")
	cmd.Flags().StringVar(&opts.Table, "table", "", "SQLite table to read")
	cmd.Flags().StringVar(&opts.RecordsFormat, "records-format", "", "records format (json|ndjson|yaml)")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", engine.DefaultBatchSize, "records evaluated between cancellation checks")
	cmd.Flags().StringVar(&opts.ProgramID, "program-id", "", "fixed program ID")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write matching records to a file")
	cmd.Flags().StringVar(&opts.Compress, "compress", "", "compress --output (gzip|zstd|none)")

	return cmd
}

func runFilter(opts *FilterOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Source == "" {
		return formatter.Fail(ExitCommandError, ErrCodeUsage, errors.New("records are required (argument or --source)"))
	}
	switch store.Compression(opts.Compress) {
	case "", store.CompressionNone:
		opts.Compress = ""
	case store.CompressionGzip, store.CompressionZstd:
		if opts.Output == "" {
			return formatter.Fail(ExitCommandError, ErrCodeUsage, errors.New("--compress requires --output"))
		}
	default:
		return formatter.Fail(ExitCommandError, ErrCodeUsage,
			fmt.Errorf("unknown compression %q: must be gzip, zstd or none", opts.Compress))
	}

	expr, err := LoadExpression(opts.ExprOptions)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeParseFailed, err)
	}

	format, err := store.ParseFormat(opts.RecordsFormat)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeUsage, err)
	}

	// Interrupts cancel the run between batches
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, err := store.Load(ctx, store.Source{
		Path:   opts.Source,
		Table:  opts.Table,
		Format: format,
		Stdin:  cmd.InOrStdin(),
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeRecordsFailed, err)
	}
	formatter.VerboseLog("Loaded %d record(s) from %s", len(records), opts.Source)

	runnerOpts := []engine.RunnerOption{
		engine.WithLogger(slog.Default()),
		engine.WithBatchSize(opts.BatchSize),
		engine.WithMetrics(observability.NewMetricsRecorder()),
		engine.WithSpans(observability.NewSpanManager()),
	}
	if opts.ProgramID != "" {
		runnerOpts = append(runnerOpts, engine.WithIDGenerator(fixedID(opts.ProgramID)))
	}
	runner := engine.NewRunner(runnerOpts...)

	res, err := runner.Run(ctx, records, expr)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return formatter.Fail(ExitCommandError, ErrCodeCancelled, err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeCompileFailed, err)
	}
	matched := engine.Select(res, records)
	formatter.VerboseLog("Program %s: %d of %d record(s) matched, %d anomalies",
		res.ProgramID, len(res.Matched), res.Scanned, res.Anomalies)

	out := FilterOutput{
		ProgramID: res.ProgramID,
		Scanned:   res.Scanned,
		Matched:   res.Matched,
		Anomalies: res.Anomalies,
	}

	if opts.Output != "" {
		if err := writeOutputFile(opts.Output, opts.Compress, matched); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err)
		}
		out.Output = opts.Output
		if formatter.Format == "json" {
			return formatter.Success(out)
		}
		fmt.Fprintf(formatter.Writer, "Wrote %d record(s) to %s\n", len(matched), opts.Output)
		return nil
	}

	if formatter.Format == "json" {
		out.Records = matched
		return formatter.Success(out)
	}
	if err := WriteRecords(formatter.Writer, matched); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err)
	}
	return nil
}

// writeOutputFile writes records as canonical NDJSON, optionally compressed.
func writeOutputFile(path, compression string, records []any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close output: %w", closeErr)
		}
	}()

	var w io.Writer = f
	if compression != "" {
		zw, zerr := store.Compress(f, store.Compression(compression))
		if zerr != nil {
			return zerr
		}
		defer func() {
			if closeErr := zw.Close(); err == nil && closeErr != nil {
				err = fmt.Errorf("flush %s stream: %w", compression, closeErr)
			}
		}()
		w = zw
	}

	return WriteRecords(w, records)
}

// fixedID is an IDGenerator that always returns the same ID.
type fixedID string

func (id fixedID) Generate() string { return string(id) }
