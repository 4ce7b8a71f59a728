package lattice

import (
	"cmp"
	"reflect"

	"github.com/rotisserie/eris"

	"github.com/lattice-ecs/lattice/index"
	"github.com/lattice-ecs/lattice/rtree"
	"github.com/lattice-ecs/lattice/types"
)

var ErrIndexRegistered = eris.New("index already registered for component")

// DefaultBTreeOrder is the fanout used when neither options nor environment
// pick one.
const DefaultBTreeOrder = 8

// AddIndex installs a secondary index and bulk-populates it from whatever the
// watched component's storage already holds, so late-registered indices see
// pre-existing data. At most one index of a given concrete type may watch a
// component type.
func (w *World) AddIndex(idx index.Index) error {
	typ := idx.ComponentType()
	concrete := reflect.TypeOf(idx)
	for _, existing := range w.indexes[typ] {
		if reflect.TypeOf(existing) == concrete {
			return eris.Wrapf(ErrIndexRegistered, "component %q, index %q", typ.String(), concrete.String())
		}
	}
	if store, ok := w.components[typ]; ok {
		for _, id := range store.IDs() {
			gen, ok := w.entities.Generation(id)
			if !ok {
				continue
			}
			v, ok := store.GetAny(id)
			if !ok {
				continue
			}
			idx.Update(types.Entity{ID: id, Generation: gen}, v)
		}
	}
	w.indexes[typ] = append(w.indexes[typ], idx)
	w.logger.Debug().
		Str("component", typ.String()).
		Str("index", concrete.String()).
		Msg("registered index")
	return nil
}

// AddBTreeIndex registers a sorted index over the scalar projection extract
// of component type T. order <= 0 falls back to the world's configured
// default.
func AddBTreeIndex[T any, V cmp.Ordered](w *World, order int, extract func(T) V) (*index.BTreeIndex[T, V], error) {
	if order <= 0 {
		order = w.config.BTreeOrder
	}
	idx := index.NewBTreeIndex[T, V](order, extract)
	if err := w.AddIndex(idx); err != nil {
		return nil, err
	}
	return idx, nil
}

// AddRTreeIndex registers a spatial index over the point projection extract
// of component type T. maxChildren <= 0 falls back to the world's configured
// default.
func AddRTreeIndex[T any, K rtree.Num](w *World, dims, maxChildren int, extract func(T) []K) (*index.RTreeIndex[T, K], error) {
	if maxChildren <= 0 {
		maxChildren = w.config.RTreeMaxChildren
	}
	idx := index.NewRTreeIndex[T, K](dims, maxChildren, extract)
	if err := w.AddIndex(idx); err != nil {
		return nil, err
	}
	return idx, nil
}
