package compiler

import (
	"fmt"
	"strings"

	"github.com/rowgraph/rowgraph/internal/schema"
)

// CycleWarning reports a cycle among a catalog's declared reads.
//
// Cycles are warnings, not errors, because the invalidation engine
// handles them safely at runtime: the merge rule stops re-propagation
// once a node's row set no longer grows. A cycle usually still signals
// a formula design worth a second look (iterative formulas converge or
// they don't).
type CycleWarning struct {
	Path    []string `json:"path"`    // cycle path: ["t.a", "t.b", "t.a"]
	Message string   `json:"message"` // human-readable description
}

// AnalyzeCycles performs static cycle analysis on a document catalog.
//
// It builds the column dependency graph from declared reads and finds
// strongly connected components with Tarjan's algorithm. Each SCC of
// size > 1, and each self-reading column, yields one warning. A DAG
// returns an empty list.
func AnalyzeCycles(spec *schema.DocumentSpec) []CycleWarning {
	graph := buildReadGraph(spec)
	if len(graph) == 0 {
		return []CycleWarning{}
	}

	sccs := tarjanSCC(graph)

	var warnings []CycleWarning
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			warnings = append(warnings, sccToWarning(scc, graph))
		}
	}

	return warnings
}

// readGraph maps "table.column" → the columns its formula reads.
type readGraph map[string][]string

// buildReadGraph constructs the column dependency graph from the
// catalog's declared reads.
func buildReadGraph(spec *schema.DocumentSpec) readGraph {
	graph := make(readGraph)

	for _, table := range spec.Tables {
		for _, col := range table.Columns {
			if len(col.Reads) == 0 {
				continue
			}
			node := table.Name + "." + col.Name
			for _, read := range col.Reads {
				graph[node] = append(graph[node], read.Table+"."+read.Column)
			}
		}
	}

	return graph
}

// hasSelfLoop checks if a node reads itself.
func hasSelfLoop(node string, graph readGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Returns a list of SCCs, where each SCC is a list of column names.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(graph readGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and emit an SCC.
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for node := range graph {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// sccToWarning converts an SCC to a CycleWarning.
//
// For self-loops the path is [col, col]; for multi-node cycles the path
// shows one traversal around the cycle.
func sccToWarning(scc []string, graph readGraph) CycleWarning {
	if len(scc) == 1 {
		col := scc[0]
		return CycleWarning{
			Path:    []string{col, col},
			Message: fmt.Sprintf("column reads itself: %s -> %s", col, col),
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("formula cycle detected: %s", strings.Join(path, " -> ")),
	}
}

// reconstructCyclePath builds a cycle path from an SCC by following
// edges between SCC members until the walk returns to its start.
func reconstructCyclePath(scc []string, graph readGraph) []string {
	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
