package lattice

import (
	"reflect"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/lattice-ecs/lattice/storage"
	"github.com/lattice-ecs/lattice/types"
)

var ErrStorageRegistered = eris.New("component storage already registered")

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// ComponentType returns the reflect.Type key used for component type T.
func ComponentType[T any]() reflect.Type {
	return typeOf[T]()
}

// RegisterStorage installs a storage for component type T ahead of the first
// write, the escape hatch for non-default storage strategies. A nil store
// installs the default sparse set. Storages are otherwise created lazily by
// AddComponent; registering twice is an error.
func RegisterStorage[T any](w *World, store storage.ComponentStore) error {
	typ := typeOf[T]()
	if _, ok := w.components[typ]; ok {
		return eris.Wrapf(ErrStorageRegistered, "component %q", typ.String())
	}
	if store == nil {
		store = storage.NewSparseSet[T]()
	}
	w.components[typ] = store
	return nil
}

// AddComponent sets the value of component type T on the entity, overwriting
// any previous value. Dead handles are ignored. Indices watching T observe
// the write before the storage does, so an index panic cannot leave the
// storage ahead of the index.
func AddComponent[T any](w *World, e types.Entity, value T) {
	if !w.entities.IsAlive(e) {
		return
	}
	typ := typeOf[T]()
	store, ok := w.components[typ]
	if !ok {
		store = storage.NewSparseSet[T]()
		w.components[typ] = store
	}
	for _, idx := range w.indexes[typ] {
		idx.Update(e, value)
	}
	store.SetAny(e.ID, value)
	w.logger.Debug().
		Uint32("entity_id", uint32(e.ID)).
		Str("component", typ.String()).
		Msg("set component")
}

// GetComponent returns the entity's value of component type T. Dead handles
// see nothing, even when the raw id slot still holds data.
func GetComponent[T any](w *World, e types.Entity) (T, bool) {
	var zero T
	if !w.entities.IsAlive(e) {
		return zero, false
	}
	store, ok := w.components[typeOf[T]()]
	if !ok {
		return zero, false
	}
	v, ok := store.GetAny(e.ID)
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// HasComponent reports whether the live entity has component type T.
func HasComponent[T any](w *World, e types.Entity) bool {
	if !w.entities.IsAlive(e) {
		return false
	}
	store, ok := w.components[typeOf[T]()]
	return ok && store.Contains(e.ID)
}

// RemoveComponent detaches component type T from the entity and returns the
// removed value. Index entries and tags for the component go with it.
func RemoveComponent[T any](w *World, e types.Entity) (T, bool) {
	var zero T
	if !w.entities.IsAlive(e) {
		return zero, false
	}
	typ := typeOf[T]()
	store, ok := w.components[typ]
	if !ok || !store.Contains(e.ID) {
		return zero, false
	}
	for _, idx := range w.indexes[typ] {
		idx.Remove(e)
	}
	delete(w.tags, tagKey{id: e.ID, typ: typ})
	v, _ := store.RemoveAny(e.ID)
	w.logger.Debug().
		Uint32("entity_id", uint32(e.ID)).
		Str("component", typ.String()).
		Msg("removed component")
	return v.(T), true
}

// EntitiesWith returns a handle for every live entity holding component T.
func EntitiesWith[T any](w *World) []types.Entity {
	store, ok := w.components[typeOf[T]()]
	if !ok {
		return nil
	}
	ids := store.IDs()
	out := make([]types.Entity, 0, len(ids))
	for _, id := range ids {
		gen, ok := w.entities.Generation(id)
		if !ok {
			continue
		}
		out = append(out, types.Entity{ID: id, Generation: gen})
	}
	return out
}

// EntitiesWithAll returns the live entities holding every one of the given
// component types. Any unregistered type empties the result. The smallest
// storage drives the scan; the rest are probed.
func (w *World) EntitiesWithAll(componentTypes ...reflect.Type) []types.Entity {
	if len(componentTypes) == 0 {
		return nil
	}
	stores := make([]storage.ComponentStore, 0, len(componentTypes))
	for _, typ := range componentTypes {
		store, ok := w.components[typ]
		if !ok {
			return nil
		}
		stores = append(stores, store)
	}
	sort.Slice(stores, func(i, j int) bool { return stores[i].Len() < stores[j].Len() })
	var out []types.Entity
scan:
	for _, id := range stores[0].IDs() {
		for _, store := range stores[1:] {
			if !store.Contains(id) {
				continue scan
			}
		}
		gen, ok := w.entities.Generation(id)
		if !ok {
			continue
		}
		out = append(out, types.Entity{ID: id, Generation: gen})
	}
	return out
}
