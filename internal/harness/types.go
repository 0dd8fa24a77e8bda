package harness

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if the expectation and all assertions hold.
	Pass bool `json:"pass"`

	// ProgramID identifies the compiled program.
	ProgramID string `json:"program_id,omitempty"`

	// Program is the instruction listing, one instruction per line.
	Program []string `json:"program"`

	// Matched holds the indexes of matching records, ascending.
	Matched []int `json:"matched"`

	// Records holds the matching records, in input order.
	Records []any `json:"records"`

	// Anomalies counts records that evaluated fail-closed.
	Anomalies int `json:"anomalies"`

	// CompileError is set when the expression did not compile.
	CompileError string `json:"compile_error,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Program: []string{},
		Matched: []int{},
		Records: []any{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
