package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/compiler"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Tokens int                        `json:"tokens"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExprOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Lint an expression without evaluating it",
		Long: `Check an expression for problems the evaluator would silently absorb:
unbalanced brackets, leading, trailing or doubled connectors, empty groups,
empty keys, unknown operators, connectives or brackets, and values that
cannot be compared.

Every problem is reported, not just the first. Expressions with findings
still compile and evaluate (fail-closed) unless a value is not a scalar.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, *opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Expr, "expr", "", "inline expression (JSON or YAML)")
	cmd.Flags().StringVar(&opts.ExprFile, "expr-file", "", "expression file (.json, .yaml, .cue)")

	return cmd
}

func runValidate(opts *RootOptions, exprOpts ExprOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	expr, err := LoadExpression(exprOpts)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeParseFailed, err)
	}
	formatter.VerboseLog("Validating %d token(s)", len(expr))

	errs := compiler.Validate(expr)
	if len(errs) > 0 {
		return outputValidationErrors(formatter, expr, errs)
	}
	return outputValidateSuccess(formatter, expr)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, expr ir.Expression) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Tokens: len(expr)})
	}

	fmt.Fprintf(formatter.Writer, "✓ Expression valid (%d token(s))\n", len(expr))
	return nil
}

// outputValidationErrors outputs every finding.
func outputValidationErrors(formatter *OutputFormatter, expr ir.Expression, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Tokens: len(expr),
				Errors: errs,
			},
			Error: &CLIError{
				Code:    ErrCodeInvalid,
				Message: fmt.Sprintf("%d problem(s) found", len(errs)),
			},
		}
		if err := formatter.encode(response); err != nil {
			return err
		}

		// Lint findings = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "%s\n", err.Field)
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
