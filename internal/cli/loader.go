package cli

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/ir"
)

//go:embed schema/expression.cue
var expressionSchema string

// ExpressionField is the top-level field a CUE document defines.
const ExpressionField = "expression"

// ExprOptions are the flags that name an expression.
type ExprOptions struct {
	Expr     string // inline JSON or YAML
	ExprFile string // .json, .yaml, .yml or .cue
}

// LoadError represents an error that occurred while loading an expression.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadExpression reads the expression named by opts. Exactly one of Expr
// and ExprFile must be set.
func LoadExpression(opts ExprOptions) (ir.Expression, error) {
	switch {
	case opts.Expr != "" && opts.ExprFile != "":
		return nil, &LoadError{Code: ErrCodeUsage, Message: "--expr and --expr-file are mutually exclusive"}
	case opts.Expr != "":
		return parseInline(opts.Expr)
	case opts.ExprFile != "":
		return loadExpressionFile(opts.ExprFile)
	default:
		return nil, &LoadError{Code: ErrCodeUsage, Message: "an expression is required (--expr or --expr-file)"}
	}
}

// parseInline decodes an inline expression. YAML is a superset of JSON, so
// both forms are accepted.
func parseInline(text string) (ir.Expression, error) {
	var expr ir.Expression
	if err := yaml.Unmarshal([]byte(text), &expr); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing --expr: %v", err)}
	}
	return expr, nil
}

func loadExpressionFile(path string) (ir.Expression, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("expression file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading expression file: %v", err)}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return LoadCUEExpression(path, data)
	case ".json":
		expr, err := ir.ParseExpression(data)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("%s: %v", path, err)}
		}
		return expr, nil
	default:
		var expr ir.Expression
		if err := yaml.Unmarshal(data, &expr); err != nil {
			return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("%s: %v", path, err)}
		}
		return expr, nil
	}
}

// LoadCUEExpression evaluates a CUE document and decodes its expression
// field after checking it against the #Expression schema.
func LoadCUEExpression(filename string, data []byte) (ir.Expression, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(expressionSchema, cue.Filename("expression.cue"))
	if err := schema.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building schema: %v", err)}
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err, ErrCodeBuildFailed)
	}

	exprVal := value.LookupPath(cue.ParsePath(ExpressionField))
	if !exprVal.Exists() {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("%s: no %q field", filename, ExpressionField)}
	}

	checked := schema.LookupPath(cue.ParsePath("#Expression")).Unify(exprVal)
	if err := checked.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err, ErrCodeSchemaViolation)
	}

	var raw any
	if err := checked.Decode(&raw); err != nil {
		return nil, formatCUEError(err, ErrCodeBuildFailed)
	}

	expr, err := ir.ExpressionFromAny(raw)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("%s: %v", filename, err)}
	}
	return expr, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error, code string) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	// Return first error with position info
	firstErr := errs[0]
	loadErr := &LoadError{Code: code, Message: firstErr.Error()}
	if positions := errors.Positions(firstErr); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeScanError       = "E002" // Directory scan error
	ErrCodeUsage           = "E003" // Invalid flag combination
	ErrCodeParseFailed     = "E004" // Expression document malformed
	ErrCodeNotFound        = "E005" // Path not found
	ErrCodeBuildFailed     = "E006" // CUE build failed
	ErrCodeWriteFailed     = "E007" // File write error
	ErrCodeSchemaViolation = "E008" // CUE document violates #Expression
	ErrCodeRecordsFailed   = "E009" // Records could not be loaded
	ErrCodeCompileFailed   = "E010" // Expression did not compile
	ErrCodeCancelled       = "E011" // Run interrupted
	ErrCodeInvalid         = "E012" // Lint found problems
)
