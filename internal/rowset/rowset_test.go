package rowset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_Of(t *testing.T) {
	s := Of(3, 1, 2, 2)
	require.NotNil(t, s)
	assert.False(t, s.IsAll())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []int64{1, 2, 3}, s.Sorted())
}

func TestSet_All(t *testing.T) {
	s := All()
	assert.True(t, s.IsAll())
	assert.False(t, s.IsEmpty())
	assert.True(t, s.Contains(42), "ALL contains every row id")
	assert.Nil(t, s.Sorted())
}

func TestSet_NilQueries(t *testing.T) {
	var s *Set
	assert.False(t, s.IsAll())
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains(1))
	assert.Nil(t, s.Sorted())
}

func TestSet_Add_ReportsGrowth(t *testing.T) {
	s := New()
	assert.True(t, s.Add(5))
	assert.False(t, s.Add(5), "re-adding an existing row must not grow")
	assert.True(t, s.Add(6))
	assert.Equal(t, []int64{5, 6}, s.Sorted())
}

func TestSet_Add_OnAllNeverGrows(t *testing.T) {
	s := All()
	assert.False(t, s.Add(1))
	assert.True(t, s.IsAll())
}

func TestSet_SetAll(t *testing.T) {
	s := Of(1, 2)
	assert.True(t, s.SetAll())
	assert.True(t, s.IsAll())
	assert.False(t, s.SetAll(), "promoting ALL again must not grow")
}

func TestSet_UnionInPlace_Finite(t *testing.T) {
	s := Of(1, 2)

	grew := s.UnionInPlace(Of(2, 3))
	assert.True(t, grew)
	assert.Equal(t, []int64{1, 2, 3}, s.Sorted())

	grew = s.UnionInPlace(Of(1, 3))
	assert.False(t, grew, "already-covered rows must not grow the set")
}

func TestSet_UnionInPlace_PromotesToAll(t *testing.T) {
	s := Of(1)
	assert.True(t, s.UnionInPlace(All()))
	assert.True(t, s.IsAll())

	// ALL is absorbing: nothing grows it further.
	assert.False(t, s.UnionInPlace(Of(9)))
	assert.False(t, s.UnionInPlace(All()))
}

func TestSet_UnionInPlace_Nil(t *testing.T) {
	s := Of(1)
	assert.False(t, s.UnionInPlace(nil))
	assert.Equal(t, []int64{1}, s.Sorted())
}

func TestSet_Clone_Independent(t *testing.T) {
	s := Of(1, 2)
	c := s.Clone()
	c.Add(3)
	assert.Equal(t, []int64{1, 2}, s.Sorted())
	assert.Equal(t, []int64{1, 2, 3}, c.Sorted())

	assert.True(t, All().Clone().IsAll())
}

func TestSet_Equal(t *testing.T) {
	assert.True(t, Of(1, 2).Equal(Of(2, 1)))
	assert.False(t, Of(1).Equal(Of(1, 2)))
	assert.True(t, All().Equal(All()))
	assert.False(t, All().Equal(Of(1)))
	assert.True(t, New().Equal(nil))
}

func TestSet_Canonical(t *testing.T) {
	assert.Equal(t, "*", All().Canonical())
	assert.Equal(t, []any{int64(1), int64(5)}, Of(5, 1).Canonical())
	assert.Equal(t, []any{}, New().Canonical())
}

func TestSet_String(t *testing.T) {
	assert.Equal(t, "*", All().String())
	assert.Equal(t, "{1,2,10}", Of(10, 1, 2).String())
	assert.Equal(t, "{}", New().String())
}
