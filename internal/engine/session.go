package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/rowgraph/rowgraph/internal/depgraph"
	"github.com/rowgraph/rowgraph/internal/rowset"
	"github.com/rowgraph/rowgraph/internal/store"
)

// Session owns a document's dependency graph and applies invalidation
// passes one at a time. When a journal is attached, every pass is
// recorded with its recompute map before Apply returns.
type Session struct {
	mu      sync.Mutex
	graph   *depgraph.Graph
	clock   *Clock
	tokens  store.TokenGenerator
	journal *store.Store
}

// Option configures a Session.
type Option func(*Session)

// WithJournal attaches a pass journal. The session stamps passes with
// seq values continuing from the journal's existing pass count.
func WithJournal(st *store.Store) Option {
	return func(s *Session) { s.journal = st }
}

// WithTokenGenerator overrides the pass token source. Tests use
// store.NewFixedGenerator for deterministic journals.
func WithTokenGenerator(gen store.TokenGenerator) Option {
	return func(s *Session) { s.tokens = gen }
}

// WithClock overrides the logical clock, e.g. NewClockAt(n) when
// resuming a journal.
func WithClock(c *Clock) Option {
	return func(s *Session) { s.clock = c }
}

// NewSession wraps a graph in a single-writer session.
func NewSession(g *depgraph.Graph, opts ...Option) *Session {
	s := &Session{
		graph:  g,
		clock:  NewClock(),
		tokens: store.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PassResult is the outcome of one applied invalidation pass.
type PassResult struct {
	Recompute depgraph.RecomputeMap
	Seq       int64
	Token     string // empty when no journal is attached
}

// Apply marks rows of node dirty, runs one invalidation pass and
// journals it if a journal is attached. includeSelf=false models a raw
// data edit whose column is never itself recomputed.
//
// Passes are serialized: concurrent callers block until the graph is
// free. The context only bounds the journal write; the in-memory
// traversal itself is not cancellable.
func (s *Session) Apply(ctx context.Context, node depgraph.Node, rows *rowset.Set, includeSelf bool) (PassResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recompute := depgraph.NewRecomputeMap()
	s.graph.Invalidate(node, rows, recompute, includeSelf)

	result := PassResult{
		Recompute: recompute,
		Seq:       s.clock.Next(),
	}

	if s.journal == nil {
		return result, nil
	}

	token := s.tokens.Generate()
	pass, err := store.NewPass(token, node, rows, includeSelf, result.Seq, recompute)
	if err != nil {
		return PassResult{}, fmt.Errorf("apply pass: %w", err)
	}
	if _, err := s.journal.WritePass(ctx, pass); err != nil {
		return PassResult{}, fmt.Errorf("apply pass: %w", err)
	}
	result.Token = token

	return result, nil
}

// Graph exposes the underlying graph for read-only inspection (dumps).
// Callers must not mutate it outside Apply.
func (s *Session) Graph() *depgraph.Graph {
	return s.graph
}
