// Package rowset implements the row-set lattice used by the dependency
// graph: a value is either a finite set of row ids or the ALL sentinel,
// the top element (ALL ⊇ any finite set).
//
// Sets report growth on every mutation. The invalidation engine's
// termination argument rests on this: a node is only re-propagated from
// when its recorded set strictly grew, and every set is bounded above
// by ALL.
package rowset
