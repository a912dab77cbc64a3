package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/rowgraph/rowgraph/internal/canon"
)

// Snapshot renders a run result as a canonical JSON document: the
// scenario name, the final recompute map and the surviving edges.
// Canonical encoding keeps goldens byte-stable across runs.
func Snapshot(s *Scenario, result *Result) ([]byte, error) {
	edges := make([]any, 0, 4)
	for _, e := range result.Graph.Dump() {
		edges = append(edges, map[string]any{
			"id":       int64(e.ID),
			"out":      e.Out,
			"in":       e.In,
			"relation": e.Relation,
		})
	}

	data, err := canon.MarshalIndent(map[string]any{
		"scenario":  s.Name,
		"recompute": result.Recompute.Canonical(),
		"edges":     edges,
	})
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// AssertGolden runs a scenario file end to end: load, run, check
// assertions, then compare the snapshot against the golden fixture
// named after the scenario. Update fixtures with `go test -update`.
func AssertGolden(t *testing.T, scenarioPath string) {
	t.Helper()

	scenario, err := LoadScenario(scenarioPath)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}

	if err := Check(scenario, result); err != nil {
		t.Fatal(err)
	}

	snapshot, err := Snapshot(scenario, result)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)
}
