package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/compiler"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/queryir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	ExprOptions
	ProgramID string // fixed program ID
}

// CompilationResult describes a compiled program.
type CompilationResult struct {
	ProgramID      string   `json:"program_id"`
	ExpressionHash string   `json:"expression_hash"`
	Instructions   []string `json:"instructions"`
	Conditions     int      `json:"conditions"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile an expression and print its program",
		Long: `Compile an expression to the instruction list the evaluator replays
for every record. Implicit AND connectors appear as explicit AND
instructions; unknown brackets are dropped.

Example:
  jsonfilter compile --expr '[{key: age, op: ">", val: 20}, {key: name, op: sw, val: I}]'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Expr, "expr", "", "inline expression (JSON or YAML)")
	cmd.Flags().StringVar(&opts.ExprFile, "expr-file", "", "expression file (.json, .yaml, .cue)")
	cmd.Flags().StringVar(&opts.ProgramID, "program-id", "", "fixed program ID")

	return cmd
}

func runCompile(opts *CompileOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	expr, err := LoadExpression(opts.ExprOptions)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeParseFailed, err)
	}
	formatter.VerboseLog("Loaded %d token(s)", len(expr))

	var compilerOpts []compiler.Option
	if opts.ProgramID != "" {
		compilerOpts = append(compilerOpts, compiler.WithIDGenerator(fixedID(opts.ProgramID)))
	}
	prog, err := compiler.New(compilerOpts...).Compile(expr)
	if err != nil {
		var compileErr *compiler.CompileError
		if errors.As(err, &compileErr) {
			formatter.VerboseLog("Token %d rejected", compileErr.Index)
		}
		return formatter.Fail(ExitCommandError, ErrCodeCompileFailed, err)
	}

	result := newCompilationResult(prog)
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled program %s: %d instruction(s), %d condition(s)\n",
		result.ProgramID, len(result.Instructions), result.Conditions)
	fmt.Fprintf(formatter.Writer, "  expression: %s\n", result.ExpressionHash)
	if len(result.Instructions) == 0 {
		fmt.Fprintln(formatter.Writer, "\n(empty program, every record matches)")
		return nil
	}
	fmt.Fprintln(formatter.Writer)
	for i, in := range result.Instructions {
		fmt.Fprintf(formatter.Writer, "%4d  %s\n", i, in)
	}
	return nil
}

func newCompilationResult(prog *queryir.Program) CompilationResult {
	instructions := []string{}
	if !prog.Empty() {
		instructions = strings.Split(prog.String(), "\n")
	}
	return CompilationResult{
		ProgramID:      prog.ID,
		ExpressionHash: prog.ExpressionHash,
		Instructions:   instructions,
		Conditions:     prog.Conditions(),
	}
}
