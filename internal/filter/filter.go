// Package filter holds the trade-admission gates consulted before an action
// node may open a position. Each gate is usable on its own; Manager combines
// them and reports every blocking reason at once.
package filter

import "fmt"

// Result is the outcome of one gate.
type Result struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

func pass() Result {
	return Result{Passed: true}
}

func fail(format string, args ...any) Result {
	return Result{Passed: false, Reason: fmt.Sprintf(format, args...)}
}
