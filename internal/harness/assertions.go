package harness

import (
	"fmt"

	"github.com/rowgraph/rowgraph/internal/depgraph"
	"github.com/rowgraph/rowgraph/internal/rowset"
)

// AssertionError reports one failed scenario assertion.
type AssertionError struct {
	Scenario string
	Index    int
	Message  string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("scenario %s: assertion %d failed: %s", e.Scenario, e.Index, e.Message)
}

// Check verifies every scenario assertion against the run result,
// returning the first failure.
func Check(s *Scenario, result *Result) error {
	for i, assertion := range s.Assertions {
		if err := checkOne(s, i, &assertion, result); err != nil {
			return err
		}
	}
	return nil
}

func checkOne(s *Scenario, index int, a *Assertion, result *Result) error {
	fail := func(format string, args ...any) error {
		return &AssertionError{
			Scenario: s.Name,
			Index:    index,
			Message:  fmt.Sprintf(format, args...),
		}
	}

	switch a.Type {
	case AssertRowsEqual:
		node := depgraph.NewNode(a.Node.Table, a.Node.Column)
		got := result.Recompute.Rows(node)
		if got == nil {
			return fail("%s is not scheduled for recomputation", a.Node)
		}
		want := rowset.FromSlice(a.Rows)
		if !got.Equal(want) {
			return fail("%s rows: got %s, want %s", a.Node, got, want)
		}

	case AssertAllRows:
		node := depgraph.NewNode(a.Node.Table, a.Node.Column)
		got := result.Recompute.Rows(node)
		if got == nil {
			return fail("%s is not scheduled for recomputation", a.Node)
		}
		if !got.IsAll() {
			return fail("%s rows: got %s, want all rows", a.Node, got)
		}

	case AssertAbsent:
		node := depgraph.NewNode(a.Node.Table, a.Node.Column)
		if got := result.Recompute.Rows(node); got != nil {
			return fail("%s is scheduled with rows %s, want absent", a.Node, got)
		}

	case AssertEdgeCount:
		got := len(result.Graph.Dump())
		if got != a.Count {
			return fail("surviving edges: got %d, want %d", got, a.Count)
		}

	default:
		// LoadScenario validates types; this is the defensive path.
		return fail("unknown assertion type %q", a.Type)
	}

	return nil
}
