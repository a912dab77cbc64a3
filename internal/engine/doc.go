// Package engine serializes invalidation passes over one document's
// dependency graph.
//
// ARCHITECTURE:
//
// Single-Writer Session:
// The graph is not thread-safe, so a Session wraps it behind a mutex
// and applies one invalidation pass at a time. This ensures:
// - Deterministic pass ordering (no interleaved graph mutation)
// - A journal that replays in the order passes actually ran
// - Simple reasoning about which pass dropped which edges
//
// Pass Processing Flow:
//  1. Apply marks the dirty node and runs the worklist traversal
//  2. The pass is stamped with the next logical clock value
//  3. If a journal is attached, the pass and its recompute map are
//     written in one transaction, keyed by a fresh UUIDv7 token
//
// The session is designed for correctness and determinism, not
// throughput: formula recomputation may be parallelized downstream,
// but graph mutation is strictly serialized.
//
// CRITICAL PATTERNS:
//
// CP-2: Logical Clock
// All passes stamped with monotonic seq counter from Clock.Next().
// NEVER use wall-clock timestamps for ordering.
package engine
