package validator

import (
	"fmt"
	"strings"

	"github.com/rxtech-lab/argo-strategy/internal/graph"
	"github.com/rxtech-lab/argo-strategy/internal/indicator"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

// Thresholds of the parameter and performance checks.
const (
	MaxIndicatorPeriod = 500
	MaxRiskPips        = 1000
	MaxRiskPerTrade    = 5
	MaxDailyLoss       = 10
	MaxIndicatorNodes  = 20
	MaxNodes           = 100
	MaxMTFNodes        = 5
)

var periodKeys = []string{"period", "fastPeriod", "slowPeriod", "signalPeriod", "kPeriod", "dPeriod"}

// Validator checks strategies against the indicators known to its registry.
type Validator struct {
	registry indicator.IndicatorRegistry
}

// New creates a validator backed by the built-in indicators.
func New() *Validator {
	return &Validator{registry: indicator.NewDefaultRegistry()}
}

// NewWithRegistry creates a validator that accepts the indicators of registry.
func NewWithRegistry(registry indicator.IndicatorRegistry) *Validator {
	return &Validator{registry: registry}
}

// Validate runs every check with the built-in indicator registry.
func Validate(s *graph.Strategy) Result {
	return New().Validate(s)
}

type run struct {
	strategy *graph.Strategy
	index    *graph.Index
	issues   []Issue
}

func (r *run) add(issue Issue) {
	r.issues = append(r.issues, issue)
}

func (v *Validator) Validate(s *graph.Strategy) Result {
	r := &run{strategy: s, index: graph.NewIndex(s)}

	v.checkStructure(r)
	v.checkConnections(r)
	v.checkConnectivity(r)
	v.checkCycles(r)
	v.checkReachability(r)

	for _, n := range s.Nodes {
		r.issues = append(r.issues, v.ValidateNode(n)...)
	}

	v.checkPerformance(r)

	result := Result{Valid: true, Issues: r.issues}
	for _, issue := range r.issues {
		if issue.Severity == SeverityError {
			result.Valid = false
			break
		}
	}

	if result.Issues == nil {
		result.Issues = []Issue{}
	}

	return result
}

func (v *Validator) checkStructure(r *run) {
	s := r.strategy

	if len(s.Nodes) == 0 {
		r.add(Issue{Severity: SeverityError, Category: CategoryStructure, Message: "Strategy has no nodes"})
	}

	seen := make(map[string]bool, len(s.Nodes))
	events, buys, sells, actions := 0, 0, 0, 0

	for _, n := range s.Nodes {
		if seen[n.ID] {
			r.add(Issue{
				Severity: SeverityError, Category: CategoryStructure, NodeID: n.ID,
				Message: fmt.Sprintf("Duplicate node id %q", n.ID),
			})
		}

		seen[n.ID] = true

		if !n.Category.Valid() {
			r.add(Issue{
				Severity: SeverityError, Category: CategoryStructure, NodeID: n.ID,
				Message: fmt.Sprintf("Node %q has unknown category %q", n.Label(), n.Category),
			})
		}

		switch n.Category {
		case graph.CategoryEvent:
			events++
		case graph.CategoryAction:
			actions++

			switch n.ActionType() {
			case "buy":
				buys++
			case "sell":
				sells++
			}
		}
	}

	if events == 0 {
		r.add(Issue{
			Severity: SeverityError, Category: CategoryStructure,
			Message: "Strategy must have at least one event node (OnTick, OnBar, etc.)",
		})
	}

	if actions == 0 {
		r.add(Issue{
			Severity: SeverityWarning, Category: CategoryStructure,
			Message: "Strategy has no action nodes - no trades will be executed",
		})
	}

	switch {
	case buys > 0 && sells == 0:
		r.add(Issue{
			Severity: SeverityInfo, Category: CategoryStructure,
			Message: "Strategy only has buy actions - consider adding sell actions for balanced trading",
		})
	case sells > 0 && buys == 0:
		r.add(Issue{
			Severity: SeverityInfo, Category: CategoryStructure,
			Message: "Strategy only has sell actions - consider adding buy actions for balanced trading",
		})
	}
}

func (v *Validator) checkConnections(r *run) {
	pairs := make(map[[2]string]bool, len(r.strategy.Edges))

	for _, e := range r.strategy.Edges {
		src, okSrc := r.index.Node(e.Source)
		dst, okDst := r.index.Node(e.Target)

		if !okSrc {
			r.add(Issue{
				Severity: SeverityError, Category: CategoryConnection, EdgeID: e.ID,
				Message: fmt.Sprintf("Edge references non-existent source node: %s", e.Source),
			})
		}

		if !okDst {
			r.add(Issue{
				Severity: SeverityError, Category: CategoryConnection, EdgeID: e.ID,
				Message: fmt.Sprintf("Edge references non-existent target node: %s", e.Target),
			})
		}

		if e.Source == e.Target {
			r.add(Issue{
				Severity: SeverityError, Category: CategoryConnection, EdgeID: e.ID, NodeID: e.Source,
				Message: fmt.Sprintf("Edge %s connects node %s to itself", e.ID, e.Source),
			})
		}

		key := [2]string{e.Source, e.Target}
		if pairs[key] {
			r.add(Issue{
				Severity: SeverityError, Category: CategoryConnection, EdgeID: e.ID,
				Message: fmt.Sprintf("Duplicate edge from %s to %s", e.Source, e.Target),
			})
		}

		pairs[key] = true

		if !okSrc || !okDst || !src.Category.Valid() || !dst.Category.Valid() {
			continue
		}

		if err := graph.CheckConnection(src.Category, dst.Category); err != nil {
			msg := err.Error()

			var coded *errors.Error
			if errors.As(err, &coded) {
				msg = coded.Message
			}

			r.add(Issue{
				Severity: SeverityError, Category: CategoryConnection, EdgeID: e.ID,
				NodeIDs: []string{e.Source, e.Target},
				Message: msg,
			})
		}

		from, to := src.OutputPortType(e.SourceHandle), dst.InputPortType(e.TargetHandle)
		if !graph.PortTypesCompatible(from, to) {
			r.add(Issue{
				Severity: SeverityError, Category: CategoryConnection, EdgeID: e.ID,
				NodeIDs: []string{e.Source, e.Target},
				Message: fmt.Sprintf("Type mismatch: %s cannot connect to %s (%s)", from, to, graph.CoercionHint(from, to)),
			})
		}
	}
}

func (v *Validator) checkConnectivity(r *run) {
	for _, id := range r.index.NodeIDs() {
		n, _ := r.index.Node(id)
		in, out := len(r.index.Inputs(id)), len(r.index.Outputs(id))

		if n.Category != graph.CategoryEvent && in == 0 && out == 0 {
			r.add(Issue{
				Severity: SeverityWarning, Category: CategoryConnection, NodeID: id,
				Message: fmt.Sprintf("Node %q is not connected", n.Label()),
			})
		}

		switch n.Category {
		case graph.CategoryCondition:
			if in == 0 {
				r.add(Issue{
					Severity: SeverityWarning, Category: CategoryConnection, NodeID: id,
					Message: fmt.Sprintf("Condition node %q has no input connections", n.Label()),
				})
			}

			if out == 0 {
				r.add(Issue{
					Severity: SeverityWarning, Category: CategoryConnection, NodeID: id,
					Message: fmt.Sprintf("Condition %q is not connected to any actions", n.Label()),
				})
			}
		case graph.CategoryAction:
			if in == 0 {
				r.add(Issue{
					Severity: SeverityWarning, Category: CategoryConnection, NodeID: id,
					Message: fmt.Sprintf("Action node %q has no input connections - may execute unconditionally or never fire", n.Label()),
				})
			}
		case graph.CategoryIndicator:
			if out == 0 {
				r.add(Issue{
					Severity: SeverityInfo, Category: CategoryConnection, NodeID: id,
					Message: fmt.Sprintf("Indicator %q is not used by any other nodes", n.Label()),
				})
			}
		}
	}
}

// checkCycles runs a depth-first search with an explicit recursion stack and
// reports every back edge with the path that closes it.
func (v *Validator) checkCycles(r *run) {
	const (
		unvisited = iota
		onStack
		done
	)

	state := make(map[string]int, len(r.index.NodeIDs()))

	var stack []string

	var visit func(id string)
	visit = func(id string) {
		state[id] = onStack
		stack = append(stack, id)

		for _, next := range r.index.Outputs(id) {
			switch state[next] {
			case unvisited:
				visit(next)
			case onStack:
				start := len(stack) - 1
				for stack[start] != next {
					start--
				}

				cycle := append([]string{}, stack[start:]...)
				r.add(Issue{
					Severity: SeverityError, Category: CategoryLogic, NodeID: next, NodeIDs: cycle,
					Message: fmt.Sprintf("Circular dependency detected: %s → %s", strings.Join(cycle, " → "), next),
				})
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = done
	}

	for _, id := range r.index.NodeIDs() {
		if state[id] == unvisited {
			visit(id)
		}
	}
}

func (v *Validator) checkReachability(r *run) {
	var roots []string
	for _, n := range r.index.NodesByCategory(graph.CategoryEvent) {
		roots = append(roots, n.ID)
	}

	reached := r.index.Reachable(roots)

	for _, id := range r.index.NodeIDs() {
		if reached[id] {
			continue
		}

		n, _ := r.index.Node(id)

		switch n.Category {
		case graph.CategoryAction:
			r.add(Issue{
				Severity: SeverityError, Category: CategoryLogic, NodeID: id,
				Message: fmt.Sprintf("Action node %q is not reachable from any event (dead code)", n.Label()),
			})
		case graph.CategoryCondition:
			r.add(Issue{
				Severity: SeverityWarning, Category: CategoryLogic, NodeID: id,
				Message: fmt.Sprintf("Condition %q is not reachable from any event and is unused", n.Label()),
			})
		case graph.CategoryIndicator:
			r.add(Issue{
				Severity: SeverityInfo, Category: CategoryLogic, NodeID: id,
				Message: fmt.Sprintf("Indicator %q is not reachable from any event and is unused", n.Label()),
			})
		}
	}

	for _, root := range roots {
		leadsToAction := false

		for id := range r.index.Reachable([]string{root}) {
			if n, _ := r.index.Node(id); n.Category == graph.CategoryAction {
				leadsToAction = true
				break
			}
		}

		if !leadsToAction {
			n, _ := r.index.Node(root)
			r.add(Issue{
				Severity: SeverityWarning, Category: CategoryLogic, NodeID: root,
				Message: fmt.Sprintf("Event %q does not lead to any action nodes", n.Label()),
			})
		}
	}
}

func (v *Validator) checkPerformance(r *run) {
	indicators := len(r.index.NodesByCategory(graph.CategoryIndicator))
	if indicators > MaxIndicatorNodes {
		r.add(Issue{
			Severity: SeverityWarning, Category: CategoryPerformance,
			Message: fmt.Sprintf("Strategy has %d indicators - may impact performance", indicators),
		})
	}

	if n := len(r.strategy.Nodes); n > MaxNodes {
		r.add(Issue{
			Severity: SeverityInfo, Category: CategoryPerformance,
			Message: fmt.Sprintf("Strategy has %d nodes - consider simplifying for better maintainability", n),
		})
	}

	if mtf := len(r.index.NodesByCategory(graph.CategoryMTF)); mtf > MaxMTFNodes {
		r.add(Issue{
			Severity: SeverityWarning, Category: CategoryPerformance,
			Message: fmt.Sprintf("Strategy has %d multi-timeframe nodes - may significantly impact performance", mtf),
		})
	}
}
