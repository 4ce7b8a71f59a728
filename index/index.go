// Package index implements the world/tree synchronization layer: live
// secondary indices that project component values into a B-tree or an R-tree
// and keep the trees consistent as components are written and removed.
package index

import (
	"reflect"

	"github.com/lattice-ecs/lattice/types"
)

// Index is the capability the world uses to keep a secondary index in sync
// with a component storage. The world filters writes by component type before
// calling Update, and calls Remove unconditionally on despawn; indices
// self-filter on whether they actually held the entity.
type Index interface {
	// ComponentType reports the component type this index watches.
	ComponentType() reflect.Type
	// Update records the projection of a freshly written component value for
	// the entity, replacing any stale projection recorded earlier. Values
	// that do not assert to the watched type are ignored.
	Update(e types.Entity, component any)
	// Remove drops the entity's projection from the index, if present.
	Remove(e types.Entity)
}
