package lattice

import (
	"reflect"

	"github.com/lattice-ecs/lattice/types"
)

// Tags are zero-data markers attached to a specific (entity, component)
// pair. They carry no value and are never indexed; they ride along with the
// component and vanish with it.

// TagComponent attaches marker type Tag to the entity's component of type T.
// The entity must be live and hold the component; tagging twice is a no-op.
func TagComponent[T any, Tag any](w *World, e types.Entity) bool {
	if !HasComponent[T](w, e) {
		return false
	}
	key := tagKey{id: e.ID, typ: typeOf[T]()}
	tag := typeOf[Tag]()
	for _, existing := range w.tags[key] {
		if existing == tag {
			return true
		}
	}
	w.tags[key] = append(w.tags[key], tag)
	return true
}

// UntagComponent removes marker type Tag from the entity's component of type
// T. It reports whether the tag was present.
func UntagComponent[T any, Tag any](w *World, e types.Entity) bool {
	if !w.entities.IsAlive(e) {
		return false
	}
	key := tagKey{id: e.ID, typ: typeOf[T]()}
	tag := typeOf[Tag]()
	list := w.tags[key]
	for i, existing := range list {
		if existing == tag {
			list = append(list[:i], list[i+1:]...)
			if len(list) == 0 {
				delete(w.tags, key)
			} else {
				w.tags[key] = list
			}
			return true
		}
	}
	return false
}

// HasTag reports whether marker type Tag is attached to the entity's
// component of type T.
func HasTag[T any, Tag any](w *World, e types.Entity) bool {
	if !w.entities.IsAlive(e) {
		return false
	}
	tag := typeOf[Tag]()
	for _, existing := range w.tags[tagKey{id: e.ID, typ: typeOf[T]()}] {
		if existing == tag {
			return true
		}
	}
	return false
}

// ComponentTags returns the marker types attached to the entity's component
// of type T.
func ComponentTags[T any](w *World, e types.Entity) []reflect.Type {
	if !w.entities.IsAlive(e) {
		return nil
	}
	list := w.tags[tagKey{id: e.ID, typ: typeOf[T]()}]
	if len(list) == 0 {
		return nil
	}
	return append([]reflect.Type(nil), list...)
}
