package harness

// QueryTrace records what one query step actually produced.
type QueryTrace struct {
	Name      string   `json:"name"`
	Mode      string   `json:"mode,omitempty"`
	Predicate string   `json:"predicate,omitempty"`
	IDs       []string `json:"ids,omitempty"`
	Count     *int64   `json:"count,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every query met its expect clause.
	Pass bool `json:"pass"`

	// Trace contains one entry per query, in scenario order.
	Trace []QueryTrace `json:"trace"`

	// Errors contains expectation mismatches.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []QueryTrace{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a query trace entry.
func (r *Result) AddTrace(qt QueryTrace) {
	r.Trace = append(r.Trace, qt)
}
