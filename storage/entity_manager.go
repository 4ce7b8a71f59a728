package storage

import (
	"github.com/lattice-ecs/lattice/types"
)

// EntityManager allocates and recycles generational entity handles. Every id
// slot is either live or sits on the free list, never both, and the free list
// holds no duplicates.
type EntityManager struct {
	generations []uint32
	freeIDs     []types.EntityID
}

func NewEntityManager() *EntityManager {
	return &EntityManager{}
}

// Spawn returns a fresh entity handle. Freed id slots are reused LIFO; their
// generation was already bumped at despawn time, so the returned handle never
// collides with a previously issued one.
func (m *EntityManager) Spawn() types.Entity {
	if n := len(m.freeIDs); n > 0 {
		id := m.freeIDs[n-1]
		m.freeIDs = m.freeIDs[:n-1]
		return types.Entity{ID: id, Generation: m.generations[id]}
	}
	id := types.EntityID(len(m.generations))
	m.generations = append(m.generations, 0)
	return types.Entity{ID: id}
}

// Despawn invalidates the handle and recycles its id slot. It reports false
// when the handle is stale (generation mismatch) or was never spawned, in
// which case nothing is mutated; double despawns are therefore harmless.
func (m *EntityManager) Despawn(e types.Entity) bool {
	if int(e.ID) >= len(m.generations) || m.generations[e.ID] != e.Generation {
		return false
	}
	m.generations[e.ID]++
	m.freeIDs = append(m.freeIDs, e.ID)
	return true
}

// IsAlive reports whether the handle refers to the slot's current occupant.
func (m *EntityManager) IsAlive(e types.Entity) bool {
	return int(e.ID) < len(m.generations) && m.generations[e.ID] == e.Generation
}

// Generation returns the current generation for a raw id slot. It is used to
// reconstruct full handles for entities discovered through component storage,
// which only records raw ids.
func (m *EntityManager) Generation(id types.EntityID) (uint32, bool) {
	if int(id) >= len(m.generations) {
		return 0, false
	}
	return m.generations[id], true
}

// Alive returns the number of currently live entities.
func (m *EntityManager) Alive() int {
	return len(m.generations) - len(m.freeIDs)
}
