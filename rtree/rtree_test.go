package rtree

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-ecs/lattice/types"
)

func ent(id uint32) types.Entity {
	return types.Entity{ID: types.EntityID(id)}
}

func TestInsertAndQuerySingleEntry(t *testing.T) {
	tr := New[int](2, 4)
	tr.Insert([]int{3, 4}, ent(1))

	got := tr.Query(NewRect([]int{0, 0}, []int{10, 10}))
	require.Len(t, got, 1)
	assert.Equal(t, ent(1), got[0])

	assert.Empty(t, tr.Query(NewRect([]int{5, 5}, []int{10, 10})))
	assert.Equal(t, 1, tr.Len())
}

func TestQueryBoundaryIsInclusive(t *testing.T) {
	tr := New[int](2, 4)
	tr.Insert([]int{5, 5}, ent(1))

	assert.Len(t, tr.Query(NewRect([]int{5, 5}, []int{5, 5})), 1)
	assert.Len(t, tr.Query(NewRect([]int{0, 0}, []int{5, 5})), 1)
	assert.Len(t, tr.Query(NewRect([]int{5, 5}, []int{9, 9})), 1)
	assert.Empty(t, tr.Query(NewRect([]int{6, 6}, []int{9, 9})))
}

// Structural check: MBRs tight, leaf entries within MBRs, uniform leaf depth,
// fanout bound respected.
func checkTree[K Num](t *testing.T, tr *RTree[K]) int {
	t.Helper()
	if tr.root == nil {
		return 0
	}
	leafDepth := -1
	count := 0
	var walk func(n *node[K], depth int)
	walk = func(n *node[K], depth int) {
		if n.leaf {
			require.NotEmpty(t, n.entries)
			require.LessOrEqual(t, len(n.entries), tr.maxChildren)
			require.Equal(t, boundEntries(n.entries), n.mbr)
			if leafDepth == -1 {
				leafDepth = depth
			}
			require.Equal(t, leafDepth, depth)
			count += len(n.entries)
			return
		}
		require.NotEmpty(t, n.children)
		require.LessOrEqual(t, len(n.children), tr.maxChildren)
		require.Equal(t, boundChildren(n.children), n.mbr)
		for _, c := range n.children {
			walk(c, depth+1)
		}
	}
	walk(tr.root, 0)
	return count
}

func TestSplitGrowsTree(t *testing.T) {
	tr := New[int](2, 4)
	rng := rand.New(rand.NewSource(7))
	points := make(map[uint32][]int)
	for id := uint32(0); id < 100; id++ {
		p := []int{rng.Intn(1000), rng.Intn(1000)}
		points[id] = p
		tr.Insert(p, ent(id))
	}
	require.Equal(t, 100, tr.Len())
	require.Equal(t, 100, checkTree(t, tr))
	require.False(t, tr.root.leaf)

	// Every point is findable through its own degenerate box.
	for id, p := range points {
		got := tr.Query(NewRect(p, p))
		assert.Contains(t, got, ent(id))
	}
}

func TestQueryMatchesBruteForce(t *testing.T) {
	tr := New[float64](2, 5)
	rng := rand.New(rand.NewSource(42))
	type rec struct {
		p []float64
		e types.Entity
	}
	var recs []rec
	for id := uint32(0); id < 300; id++ {
		p := []float64{rng.Float64() * 100, rng.Float64() * 100}
		recs = append(recs, rec{p: p, e: ent(id)})
		tr.Insert(p, ent(id))
	}

	for trial := 0; trial < 50; trial++ {
		lo := []float64{rng.Float64() * 80, rng.Float64() * 80}
		hi := []float64{lo[0] + rng.Float64()*30, lo[1] + rng.Float64()*30}
		box := NewRect(lo, hi)

		var want []types.Entity
		for _, r := range recs {
			if containsPoint(box, r.p) {
				want = append(want, r.e)
			}
		}
		got := tr.Query(box)
		assert.ElementsMatch(t, want, got, "trial %d", trial)
	}
}

func TestRemoveRequiresExactPoint(t *testing.T) {
	tr := New[int](2, 4)
	tr.Insert([]int{1, 1}, ent(1))
	tr.Insert([]int{2, 2}, ent(2))

	assert.False(t, tr.Remove([]int{9, 9}, ent(1)))
	assert.False(t, tr.Remove([]int{1, 1}, ent(2)))
	assert.Equal(t, 2, tr.Len())

	assert.True(t, tr.Remove([]int{1, 1}, ent(1)))
	assert.Equal(t, 1, tr.Len())
	assert.Empty(t, tr.Query(NewRect([]int{1, 1}, []int{1, 1})))
}

func TestRemoveShrinksMBRs(t *testing.T) {
	tr := New[int](2, 4)
	tr.Insert([]int{0, 0}, ent(1))
	tr.Insert([]int{10, 10}, ent(2))
	require.True(t, tr.Remove([]int{10, 10}, ent(2)))

	// The root box must have shrunk back to the remaining point, so a query
	// around the removed corner finds nothing.
	assert.Equal(t, Rect[int]{Min: []int{0, 0}, Max: []int{0, 0}}, tr.root.mbr)
	assert.Empty(t, tr.Query(NewRect([]int{5, 5}, []int{15, 15})))
}

func TestRemoveAllCollapsesRoot(t *testing.T) {
	tr := New[int](2, 3)
	rng := rand.New(rand.NewSource(3))
	points := make([][]int, 50)
	for id := range points {
		points[id] = []int{rng.Intn(100), rng.Intn(100)}
		tr.Insert(points[id], ent(uint32(id)))
	}
	require.False(t, tr.root.leaf)

	order := rng.Perm(len(points))
	for _, id := range order {
		require.True(t, tr.Remove(points[id], ent(uint32(id))), "id %d", id)
	}
	assert.Equal(t, 0, tr.Len())
	assert.Nil(t, tr.root)

	// The tree keeps working after draining.
	tr.Insert([]int{1, 2}, ent(99))
	assert.Len(t, tr.Query(NewRect([]int{1, 2}, []int{1, 2})), 1)
}

func TestNearestMatchesLinearScan(t *testing.T) {
	tr := New[float64](3, 6)
	rng := rand.New(rand.NewSource(11))
	type rec struct {
		p []float64
		e types.Entity
	}
	var recs []rec
	for id := uint32(0); id < 200; id++ {
		p := []float64{rng.Float64() * 50, rng.Float64() * 50, rng.Float64() * 50}
		recs = append(recs, rec{p: p, e: ent(id)})
		tr.Insert(p, ent(id))
	}

	for trial := 0; trial < 40; trial++ {
		q := []float64{rng.Float64() * 50, rng.Float64() * 50, rng.Float64() * 50}
		bestDist := -1.0
		var want types.Entity
		for _, r := range recs {
			if d := pointDist2(r.p, q); bestDist < 0 || d < bestDist {
				bestDist, want = d, r.e
			}
		}
		got, ok := tr.Nearest(q)
		require.True(t, ok)
		assert.Equal(t, want, got, "trial %d", trial)
	}
}

func TestNearestOnEmptyTree(t *testing.T) {
	tr := New[int](2, 4)
	_, ok := tr.Nearest([]int{0, 0})
	assert.False(t, ok)
}

func TestDuplicatePointsDistinctEntities(t *testing.T) {
	tr := New[int](1, 4)
	tr.Insert([]int{5}, ent(1))
	tr.Insert([]int{5}, ent(2))

	got := tr.Query(NewRect([]int{5}, []int{5}))
	sort.Slice(got, func(i, j int) bool { return got[i].ID < got[j].ID })
	assert.Equal(t, []types.Entity{ent(1), ent(2)}, got)

	require.True(t, tr.Remove([]int{5}, ent(1)))
	got = tr.Query(NewRect([]int{5}, []int{5}))
	assert.Equal(t, []types.Entity{ent(2)}, got)
}

func TestConstructorValidation(t *testing.T) {
	assert.Panics(t, func() { New[int](0, 4) })
	assert.Panics(t, func() { New[int](2, 1) })
	assert.NotPanics(t, func() { New[int](2, 0) })
	assert.Equal(t, DefaultMaxChildren, New[int](2, 0).maxChildren)
}

func TestInsertWrongDimensionPanics(t *testing.T) {
	tr := New[int](2, 4)
	assert.Panics(t, func() { tr.Insert([]int{1}, ent(1)) })
	assert.Panics(t, func() { tr.Insert([]int{1, 2, 3}, ent(1)) })
}
