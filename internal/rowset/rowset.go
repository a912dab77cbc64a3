package rowset

import (
	"fmt"
	"sort"
	"strings"
)

// Set is a set of row ids, or the ALL sentinel covering every row of a
// column. The zero value and nil are both the empty set for queries;
// mutators require a non-nil receiver (use New).
//
// Sets are not safe for concurrent use. Callers that hand a Set to the
// graph must not mutate it afterwards.
type Set struct {
	all  bool
	rows map[int64]struct{}
}

// New returns an empty finite set.
func New() *Set {
	return &Set{rows: make(map[int64]struct{})}
}

// Of returns a finite set containing the given row ids.
func Of(ids ...int64) *Set {
	s := New()
	for _, id := range ids {
		s.rows[id] = struct{}{}
	}
	return s
}

// FromSlice returns a finite set containing the given row ids.
func FromSlice(ids []int64) *Set {
	return Of(ids...)
}

// All returns the ALL sentinel, the top element of the lattice.
func All() *Set {
	return &Set{all: true}
}

// IsAll reports whether the set is the ALL sentinel.
func (s *Set) IsAll() bool {
	return s != nil && s.all
}

// IsEmpty reports whether the set contains no rows. ALL is never empty.
func (s *Set) IsEmpty() bool {
	if s == nil {
		return true
	}
	return !s.all && len(s.rows) == 0
}

// Len returns the number of rows in a finite set. Len of ALL is
// undefined and returns -1.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	if s.all {
		return -1
	}
	return len(s.rows)
}

// Contains reports whether the set covers the given row id.
// ALL contains every id.
func (s *Set) Contains(id int64) bool {
	if s == nil {
		return false
	}
	if s.all {
		return true
	}
	_, ok := s.rows[id]
	return ok
}

// Sorted returns the row ids of a finite set in ascending order.
// Returns nil for ALL and for the empty set.
func (s *Set) Sorted() []int64 {
	if s == nil || s.all || len(s.rows) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Add inserts a single row id. Reports whether the set grew.
// Adding to ALL never grows.
func (s *Set) Add(id int64) bool {
	if s.all {
		return false
	}
	if s.rows == nil {
		s.rows = make(map[int64]struct{})
	}
	if _, ok := s.rows[id]; ok {
		return false
	}
	s.rows[id] = struct{}{}
	return true
}

// SetAll promotes the set to ALL, discarding any finite rows.
// Reports whether the set grew (false if already ALL).
func (s *Set) SetAll() bool {
	if s.all {
		return false
	}
	s.all = true
	s.rows = nil
	return true
}

// UnionInPlace merges other into s and reports whether s grew.
// Merging ALL promotes s to ALL. other is not mutated.
func (s *Set) UnionInPlace(other *Set) bool {
	if other == nil {
		return false
	}
	if s.all {
		return false
	}
	if other.all {
		return s.SetAll()
	}
	grew := false
	for id := range other.rows {
		if s.Add(id) {
			grew = true
		}
	}
	return grew
}

// Clone returns an independent copy. Relations use this to keep
// GetAffectedRows pure.
func (s *Set) Clone() *Set {
	if s == nil {
		return New()
	}
	if s.all {
		return All()
	}
	c := &Set{rows: make(map[int64]struct{}, len(s.rows))}
	for id := range s.rows {
		c.rows[id] = struct{}{}
	}
	return c
}

// Equal reports whether two sets cover exactly the same rows.
func (s *Set) Equal(other *Set) bool {
	if s.IsAll() || other.IsAll() {
		return s.IsAll() == other.IsAll()
	}
	if s.Len() != other.Len() {
		return false
	}
	if s == nil {
		return true
	}
	for id := range s.rows {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// Canonical returns the set's canonical representation: the string "*"
// for ALL, otherwise a sorted []any of row ids. Used by dump, golden
// and journal surfaces.
func (s *Set) Canonical() any {
	if s.IsAll() {
		return "*"
	}
	ids := s.Sorted()
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// String renders the set for logs and error messages.
func (s *Set) String() string {
	if s.IsAll() {
		return "*"
	}
	ids := s.Sorted()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
