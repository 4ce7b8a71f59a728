package lattice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lattice "github.com/lattice-ecs/lattice"
	"github.com/lattice-ecs/lattice/rtree"
	"github.com/lattice-ecs/lattice/types"
)

func healthHP(h Health) int { return h.HP }

func positionPoint(p Position) []float64 { return []float64{p.X, p.Y} }

func TestBTreeIndexTracksComponentWrites(t *testing.T) {
	w := lattice.NewWorld()
	idx, err := lattice.AddBTreeIndex(w, 4, healthHP)
	require.NoError(t, err)

	a := w.Spawn()
	b := w.Spawn()
	lattice.AddComponent(w, a, Health{HP: 10})
	lattice.AddComponent(w, b, Health{HP: 50})

	assert.Equal(t, []types.Entity{a}, idx.Range(0, 20))
	assert.ElementsMatch(t, []types.Entity{a, b}, idx.Range(0, 100))
}

func TestIndexUpdateMovesEntityBetweenRanges(t *testing.T) {
	w := lattice.NewWorld()
	idx, err := lattice.AddBTreeIndex(w, 4, healthHP)
	require.NoError(t, err)

	e := w.Spawn()
	lattice.AddComponent(w, e, Health{HP: 10})
	lattice.AddComponent(w, e, Health{HP: 80})

	assert.Empty(t, idx.Range(0, 50))
	assert.Equal(t, []types.Entity{e}, idx.Range(51, 100))
}

func TestLateAddedIndexSeesExistingComponents(t *testing.T) {
	w := lattice.NewWorld()
	a := w.Spawn()
	b := w.Spawn()
	lattice.AddComponent(w, a, Health{HP: 10})
	lattice.AddComponent(w, b, Health{HP: 20})

	idx, err := lattice.AddBTreeIndex(w, 4, healthHP)
	require.NoError(t, err)
	assert.ElementsMatch(t, []types.Entity{a, b}, idx.Range(0, 100))
}

func TestDespawnedEntityLeavesIndex(t *testing.T) {
	w := lattice.NewWorld()
	idx, err := lattice.AddBTreeIndex(w, 4, healthHP)
	require.NoError(t, err)

	a := w.Spawn()
	b := w.Spawn()
	lattice.AddComponent(w, a, Health{HP: 10})
	lattice.AddComponent(w, b, Health{HP: 20})

	require.True(t, w.Despawn(a))
	assert.Equal(t, []types.Entity{b}, idx.Range(0, 100))
}

func TestRemoveComponentLeavesIndex(t *testing.T) {
	w := lattice.NewWorld()
	idx, err := lattice.AddBTreeIndex(w, 4, healthHP)
	require.NoError(t, err)

	e := w.Spawn()
	lattice.AddComponent(w, e, Health{HP: 10})
	_, ok := lattice.RemoveComponent[Health](w, e)
	require.True(t, ok)

	assert.Empty(t, idx.Range(0, 100))
}

func TestDuplicateIndexRegistrationRejected(t *testing.T) {
	w := lattice.NewWorld()
	_, err := lattice.AddBTreeIndex(w, 4, healthHP)
	require.NoError(t, err)

	_, err = lattice.AddBTreeIndex(w, 8, healthHP)
	require.Error(t, err)
	assert.ErrorIs(t, err, lattice.ErrIndexRegistered)

	// A different index kind over the same component is fine.
	_, err = lattice.AddRTreeIndex(w, 2, 4, func(h Health) []float64 {
		return []float64{float64(h.HP), 0}
	})
	require.NoError(t, err)
}

func TestRTreeIndexTracksPositions(t *testing.T) {
	w := lattice.NewWorld()
	idx, err := lattice.AddRTreeIndex(w, 2, 4, positionPoint)
	require.NoError(t, err)

	a := w.Spawn()
	b := w.Spawn()
	lattice.AddComponent(w, a, Position{X: 1, Y: 1})
	lattice.AddComponent(w, b, Position{X: 50, Y: 50})

	got := idx.Query(rtree.NewRect([]float64{0, 0}, []float64{10, 10}))
	assert.Equal(t, []types.Entity{a}, got)

	near, ok := idx.Nearest([]float64{48, 48})
	require.True(t, ok)
	assert.Equal(t, b, near)

	// Moving the entity re-indexes it.
	lattice.AddComponent(w, a, Position{X: 60, Y: 60})
	assert.Empty(t, idx.Query(rtree.NewRect([]float64{0, 0}, []float64{10, 10})))
	near, ok = idx.Nearest([]float64{62, 62})
	require.True(t, ok)
	assert.Equal(t, a, near)
}

func TestIndexesOnDistinctComponentsDoNotInterfere(t *testing.T) {
	w := lattice.NewWorld()
	hIdx, err := lattice.AddBTreeIndex(w, 4, healthHP)
	require.NoError(t, err)
	pIdx, err := lattice.AddRTreeIndex(w, 2, 4, positionPoint)
	require.NoError(t, err)

	e := w.Spawn()
	lattice.AddComponent(w, e, Health{HP: 10})

	assert.Equal(t, []types.Entity{e}, hIdx.Range(0, 100))
	assert.Empty(t, pIdx.Query(rtree.NewRect([]float64{0, 0}, []float64{100, 100})))
}

func TestRegisteredIndexesListing(t *testing.T) {
	w := lattice.NewWorld()
	_, err := lattice.AddBTreeIndex(w, 4, healthHP)
	require.NoError(t, err)
	_, err = lattice.AddRTreeIndex(w, 2, 4, positionPoint)
	require.NoError(t, err)

	names := w.RegisteredIndexes()
	assert.Len(t, names, 2)
}
