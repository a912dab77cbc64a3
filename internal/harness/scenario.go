package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rowgraph/rowgraph/internal/relation"
)

// Scenario defines one invalidation test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario (also the golden file name).
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Graph declares the dependency edges to register, in order.
	Graph []EdgeDecl `yaml:"graph"`

	// Events is the sequence of invalidation events to apply. All
	// events accumulate into one shared recompute map.
	Events []EventStep `yaml:"events"`

	// Assertions validate the final recompute map and graph.
	Assertions []Assertion `yaml:"assertions"`
}

// NodeRef names a column as (table, column).
type NodeRef struct {
	Table  string `yaml:"table"`
	Column string `yaml:"column"`
}

func (n NodeRef) String() string { return n.Table + "." + n.Column }

// EdgeDecl declares one dependency edge: Out's formula reads In.
type EdgeDecl struct {
	Out      NodeRef `yaml:"out"`
	In       NodeRef `yaml:"in"`
	Relation string  `yaml:"relation"`

	// Links seeds per-row links for reference relations:
	// out_row read in_row.
	Links []LinkDecl `yaml:"links,omitempty"`
}

// LinkDecl is one reference link.
type LinkDecl struct {
	OutRow int64 `yaml:"out_row"`
	InRow  int64 `yaml:"in_row"`
}

// EventStep is one invalidation event.
type EventStep struct {
	// Node is the dirty node.
	Node NodeRef `yaml:"node"`

	// Rows lists the dirty row ids. Mutually exclusive with All.
	Rows []int64 `yaml:"rows,omitempty"`

	// All marks the whole column dirty (ALL_ROWS).
	All bool `yaml:"all,omitempty"`

	// IncludeSelf controls whether the dirty node itself is scheduled.
	// Defaults to true (formula edit); raw data edits set false.
	IncludeSelf *bool `yaml:"include_self,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type selects the check:
	// - "rows_equal": node's recompute rows equal Rows exactly
	// - "all_rows":   node's recompute entry is ALL
	// - "absent":     node is not in the recompute map
	// - "edge_count": exactly Count edges survive in the graph
	Type string `yaml:"type"`

	// Node is the checked node (rows_equal, all_rows, absent).
	Node *NodeRef `yaml:"node,omitempty"`

	// Rows is the expected row set (rows_equal).
	Rows []int64 `yaml:"rows,omitempty"`

	// Count is the expected surviving edge count (edge_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertRowsEqual = "rows_equal"
	AssertAllRows   = "all_rows"
	AssertAbsent    = "absent"
	AssertEdgeCount = "edge_count"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected (catches typos like "assertion:" vs "assertions:").
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Graph) == 0 {
		return fmt.Errorf("graph list is required and must be non-empty")
	}
	if len(s.Events) == 0 {
		return fmt.Errorf("events list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, edge := range s.Graph {
		if err := validateNodeRef(edge.Out); err != nil {
			return fmt.Errorf("graph[%d].out: %w", i, err)
		}
		if err := validateNodeRef(edge.In); err != nil {
			return fmt.Errorf("graph[%d].in: %w", i, err)
		}
		if !relation.ValidKinds[relation.Kind(edge.Relation)] {
			return fmt.Errorf("graph[%d]: unknown relation kind %q", i, edge.Relation)
		}
		if len(edge.Links) > 0 && relation.Kind(edge.Relation) != relation.KindReference {
			return fmt.Errorf("graph[%d]: links are only valid on reference relations", i)
		}
	}

	for i, event := range s.Events {
		if err := validateNodeRef(event.Node); err != nil {
			return fmt.Errorf("events[%d].node: %w", i, err)
		}
		if event.All && len(event.Rows) > 0 {
			return fmt.Errorf("events[%d]: rows and all are mutually exclusive", i)
		}
		if !event.All && len(event.Rows) == 0 {
			return fmt.Errorf("events[%d]: either rows or all is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateNodeRef(n NodeRef) error {
	if n.Table == "" || n.Column == "" {
		return fmt.Errorf("table and column are required")
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertRowsEqual:
		if a.Node == nil {
			return fmt.Errorf("assertions[%d]: node is required for rows_equal", index)
		}
	case AssertAllRows, AssertAbsent:
		if a.Node == nil {
			return fmt.Errorf("assertions[%d]: node is required for %s", index, a.Type)
		}
		if len(a.Rows) > 0 {
			return fmt.Errorf("assertions[%d]: rows is not valid for %s", index, a.Type)
		}
	case AssertEdgeCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
