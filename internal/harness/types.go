package harness

import (
	"github.com/roach88/pgsearch/internal/ir"
)

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Fragment is the compiled fragment, nil when compilation failed.
	Fragment *ir.Fragment `json:"fragment,omitempty"`

	// Statement is the SELECT built around Fragment.
	Statement string `json:"statement,omitempty"`

	// Err is the compile error, nil on success.
	Err error `json:"-"`

	// Errors holds one message per failed assertion.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// section returns the text of one fragment section.
func (r *Result) section(name string) string {
	if r.Fragment == nil {
		return ""
	}
	switch name {
	case SectionCondition:
		return r.Fragment.Condition
	case SectionRank:
		return r.Fragment.Rank
	case SectionOrderBy:
		return r.Fragment.OrderBy
	case SectionJoins:
		return r.Fragment.JoinSQL()
	case SectionStatement:
		return r.Statement
	default:
		return ""
	}
}
