package depgraph

import (
	"errors"
	"fmt"
)

// NodeError reports a malformed node identifier at the graph boundary.
//
// Per the error model, this is the only failure the graph raises in
// normal operation: a node with an empty table or column id is a
// contract violation by the caller and is rejected at edge insertion
// rather than absorbed silently elsewhere. Missing relations, unknown
// nodes and duplicate edges are all tolerated, never errors.
type NodeError struct {
	Node    Node
	Message string
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("invalid node %q: %s", e.Node.String(), e.Message)
}

// IsNodeError reports whether err is a NodeError.
// Uses errors.As to handle wrapped errors.
func IsNodeError(err error) bool {
	var ne *NodeError
	return errors.As(err, &ne)
}

func newNodeError(n Node) *NodeError {
	return &NodeError{
		Node:    n,
		Message: "table and column ids must be non-empty",
	}
}
