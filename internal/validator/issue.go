// Package validator statically checks a strategy graph before it is
// interpreted or compiled. Every check runs on every call; validity means the
// result holds no error-severity issue.
package validator

import (
	"fmt"
	"strings"

	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// IssueCategory groups issues by the kind of check that raised them.
type IssueCategory string

const (
	CategoryStructure   IssueCategory = "structure"
	CategoryConnection  IssueCategory = "connection"
	CategoryParameter   IssueCategory = "parameter"
	CategoryLogic       IssueCategory = "logic"
	CategoryPerformance IssueCategory = "performance"
)

// Issue is one finding. NodeIDs is set for findings spanning several nodes,
// such as the members of a cycle in traversal order.
type Issue struct {
	Severity Severity      `json:"severity" yaml:"severity"`
	Category IssueCategory `json:"category" yaml:"category"`
	Message  string        `json:"message" yaml:"message"`
	NodeID   string        `json:"nodeId,omitempty" yaml:"node_id,omitempty"`
	NodeIDs  []string      `json:"nodeIds,omitempty" yaml:"node_ids,omitempty"`
	EdgeID   string        `json:"edgeId,omitempty" yaml:"edge_id,omitempty"`
}

// Result is the outcome of Validate.
type Result struct {
	Valid  bool    `json:"valid" yaml:"valid"`
	Issues []Issue `json:"issues" yaml:"issues"`
}

func (r Result) filter(s Severity) []Issue {
	var out []Issue

	for _, issue := range r.Issues {
		if issue.Severity == s {
			out = append(out, issue)
		}
	}

	return out
}

func (r Result) Errors() []Issue {
	return r.filter(SeverityError)
}

func (r Result) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r Result) Info() []Issue {
	return r.filter(SeverityInfo)
}

// Err returns a *ValidationError when the result is not valid, nil otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}

	return &ValidationError{Issues: r.Errors()}
}

// ValidationError is returned by the interpreter and the code generator when
// they refuse a strategy. It carries the blocking issues and unwraps to an
// ErrCodeStrategyInvalid error.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Message
	}

	return fmt.Sprintf("strategy failed validation with %d error(s): %s", len(e.Issues), strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error {
	return errors.Newf(errors.ErrCodeStrategyInvalid, "strategy failed validation with %d error(s)", len(e.Issues))
}
