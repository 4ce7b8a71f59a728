// Package lattice is an embeddable entity-component data store with pluggable
// secondary indices. Entities are generational handles, components live in
// per-type sparse sets, and registered indices (B-tree for scalar ranges,
// R-tree for spatial queries) are kept in sync with every component write.
package lattice

import (
	"os"
	"reflect"
	"sort"

	"github.com/rs/zerolog"

	"github.com/lattice-ecs/lattice/index"
	"github.com/lattice-ecs/lattice/storage"
	"github.com/lattice-ecs/lattice/types"
)

type namedKey struct {
	name string
	typ  reflect.Type
}

type tagKey struct {
	id  types.EntityID
	typ reflect.Type
}

// World owns all entity, component, resource and index state. It is not safe
// for concurrent use; callers that share a World across goroutines must
// serialize access themselves.
type World struct {
	entities       *storage.EntityManager
	components     map[reflect.Type]storage.ComponentStore
	indexes        map[reflect.Type][]index.Index
	resources      map[reflect.Type]any
	namedResources map[namedKey]any
	tags           map[tagKey][]reflect.Type
	logger         zerolog.Logger
	config         WorldConfig
}

// NewWorld creates an empty world. Defaults for the logger and index
// parameters come from the environment (see GetWorldConfig); options override
// them.
func NewWorld(opts ...WorldOption) *World {
	config := GetWorldConfig()
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	w := &World{
		entities:       storage.NewEntityManager(),
		components:     make(map[reflect.Type]storage.ComponentStore),
		indexes:        make(map[reflect.Type][]index.Index),
		resources:      make(map[reflect.Type]any),
		namedResources: make(map[namedKey]any),
		tags:           make(map[tagKey][]reflect.Type),
		logger:         zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger(),
		config:         config,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Logger returns the world's logger.
func (w *World) Logger() zerolog.Logger {
	return w.logger
}

// Spawn creates a new live entity with no components.
func (w *World) Spawn() types.Entity {
	e := w.entities.Spawn()
	w.logger.Debug().
		Uint32("entity_id", uint32(e.ID)).
		Uint32("generation", e.Generation).
		Msg("spawned entity")
	return e
}

// Despawn destroys the entity, removing all of its components, index entries
// and tags. A stale or already despawned handle is a no-op returning false.
func (w *World) Despawn(e types.Entity) bool {
	if !w.entities.Despawn(e) {
		return false
	}
	for _, store := range w.components {
		store.RemoveAny(e.ID)
	}
	// Every index is notified; indices that never held the entity ignore it.
	for _, list := range w.indexes {
		for _, idx := range list {
			idx.Remove(e)
		}
	}
	w.purgeTags(e.ID)
	w.logger.Debug().
		Uint32("entity_id", uint32(e.ID)).
		Uint32("generation", e.Generation).
		Msg("despawned entity")
	return true
}

// IsAlive reports whether the handle refers to a live entity.
func (w *World) IsAlive(e types.Entity) bool {
	return w.entities.IsAlive(e)
}

func (w *World) purgeTags(id types.EntityID) {
	for key := range w.tags {
		if key.id == id {
			delete(w.tags, key)
		}
	}
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return w.entities.Alive()
}

// RegisteredComponents returns the names of all registered component types,
// sorted.
func (w *World) RegisteredComponents() []string {
	names := make([]string, 0, len(w.components))
	for typ := range w.components {
		names = append(names, typ.String())
	}
	sort.Strings(names)
	return names
}

// RegisteredIndexes returns a description of every registered index, sorted.
func (w *World) RegisteredIndexes() []string {
	var names []string
	for typ, list := range w.indexes {
		for _, idx := range list {
			names = append(names, typ.String()+":"+reflect.TypeOf(idx).String())
		}
	}
	sort.Strings(names)
	return names
}
