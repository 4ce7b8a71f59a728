package index

import (
	"cmp"
	"reflect"

	"github.com/lattice-ecs/lattice/btree"
	"github.com/lattice-ecs/lattice/types"
)

// BTreeIndex keeps a sorted secondary index over a scalar projection of
// component type T. Several entities may share one projected value, so the
// tree maps each value to a bucket of entities; a bucket's key is dropped
// from the tree as soon as the bucket empties. The reverse map records each
// entity's last-known projection so stale tree entries can be located in
// O(log n) instead of rescanning.
type BTreeIndex[T any, V cmp.Ordered] struct {
	tree    *btree.BTree[V, []types.Entity]
	extract func(T) V
	known   map[types.Entity]V
}

// NewBTreeIndex builds an empty index that projects T through extract.
// order is the B-tree fanout (see btree.New).
func NewBTreeIndex[T any, V cmp.Ordered](order int, extract func(T) V) *BTreeIndex[T, V] {
	return &BTreeIndex[T, V]{
		tree:    btree.New[V, []types.Entity](order),
		extract: extract,
		known:   make(map[types.Entity]V),
	}
}

func (idx *BTreeIndex[T, V]) ComponentType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (idx *BTreeIndex[T, V]) Update(e types.Entity, component any) {
	comp, ok := component.(T)
	if !ok {
		// The world filters by component type before calling Update, so a
		// mismatch here is defensive only.
		return
	}
	value := idx.extract(comp)
	if prev, ok := idx.known[e]; ok {
		if prev == value {
			return
		}
		idx.drop(e, prev)
	}
	bucket, _ := idx.tree.Get(value)
	idx.tree.Insert(value, append(bucket, e))
	idx.known[e] = value
}

func (idx *BTreeIndex[T, V]) Remove(e types.Entity) {
	prev, ok := idx.known[e]
	if !ok {
		return
	}
	idx.drop(e, prev)
	delete(idx.known, e)
}

// drop removes e from the bucket at value, deleting the key once the bucket
// empties.
func (idx *BTreeIndex[T, V]) drop(e types.Entity, value V) {
	bucket, ok := idx.tree.Get(value)
	if !ok {
		return
	}
	for i, ent := range bucket {
		if ent == e {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		idx.tree.Remove(value)
	} else {
		idx.tree.Insert(value, bucket)
	}
}

// Range returns the entities whose projected values fall within [lo, hi],
// in ascending value order.
func (idx *BTreeIndex[T, V]) Range(lo, hi V) []types.Entity {
	var out []types.Entity
	for _, pair := range idx.tree.Range(lo, hi) {
		out = append(out, pair.Value...)
	}
	return out
}

// Value reports the projection last indexed for e.
func (idx *BTreeIndex[T, V]) Value(e types.Entity) (V, bool) {
	v, ok := idx.known[e]
	return v, ok
}

// Len returns the number of indexed entities.
func (idx *BTreeIndex[T, V]) Len() int {
	return len(idx.known)
}
