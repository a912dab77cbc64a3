// Package harness runs declarative invalidation scenarios.
//
// A scenario YAML file declares a dependency graph (edges with relation
// kinds, plus per-row links for reference relations), a sequence of
// invalidation events, and assertions over the final recompute map and
// the surviving edges. The harness builds the graph, applies the
// events into one shared recompute map - matching how a document
// engine batches invalidations between recomputes - and verifies the
// assertions.
//
// Golden comparison serializes the final recompute map and edge dump
// as canonical JSON and checks it against testdata/golden via goldie.
package harness
