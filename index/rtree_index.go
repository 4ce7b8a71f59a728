package index

import (
	"reflect"

	"github.com/lattice-ecs/lattice/rtree"
	"github.com/lattice-ecs/lattice/types"
)

// RTreeIndex keeps a spatial secondary index over an N-dimensional point
// projection of component type T. Unlike BTreeIndex it keys the tree
// directly on positions: exact-position collisions are rare and the leaf
// entry list already disambiguates them by entity. The reverse map records
// each entity's last-indexed position, which Remove needs because R-tree
// deletion requires the exact point previously inserted.
type RTreeIndex[T any, K rtree.Num] struct {
	tree    *rtree.RTree[K]
	extract func(T) []K
	known   map[types.Entity][]K
}

// NewRTreeIndex builds an empty index that projects T through extract into
// dims-dimensional points. maxChildren <= 0 selects the tree default.
func NewRTreeIndex[T any, K rtree.Num](dims, maxChildren int, extract func(T) []K) *RTreeIndex[T, K] {
	return &RTreeIndex[T, K]{
		tree:    rtree.New[K](dims, maxChildren),
		extract: extract,
		known:   make(map[types.Entity][]K),
	}
}

func (idx *RTreeIndex[T, K]) ComponentType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (idx *RTreeIndex[T, K]) Update(e types.Entity, component any) {
	comp, ok := component.(T)
	if !ok {
		return
	}
	point := idx.extract(comp)
	if prev, ok := idx.known[e]; ok {
		if samePoint(prev, point) {
			return
		}
		idx.tree.Remove(prev, e)
	}
	idx.tree.Insert(point, e)
	idx.known[e] = append([]K(nil), point...)
}

func (idx *RTreeIndex[T, K]) Remove(e types.Entity) {
	prev, ok := idx.known[e]
	if !ok {
		return
	}
	idx.tree.Remove(prev, e)
	delete(idx.known, e)
}

// Query returns the entities whose indexed positions lie inside rect.
func (idx *RTreeIndex[T, K]) Query(rect rtree.Rect[K]) []types.Entity {
	return idx.tree.Query(rect)
}

// Nearest returns the entity indexed closest to p.
func (idx *RTreeIndex[T, K]) Nearest(p []K) (types.Entity, bool) {
	return idx.tree.Nearest(p)
}

// Position reports the point last indexed for e.
func (idx *RTreeIndex[T, K]) Position(e types.Entity) ([]K, bool) {
	p, ok := idx.known[e]
	if !ok {
		return nil, false
	}
	return append([]K(nil), p...), true
}

// Len returns the number of indexed entities.
func (idx *RTreeIndex[T, K]) Len() int {
	return len(idx.known)
}

func samePoint[K rtree.Num](a, b []K) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
