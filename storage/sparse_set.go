// Package storage holds the world's primary data structures: the
// generational entity allocator and the per-component-type sparse sets.
package storage

import (
	"github.com/lattice-ecs/lattice/types"
)

// ComponentStore is the type-erased capability interface the world uses to
// operate on a component storage without knowing its concrete value type.
// SparseSet implements it for each registered component type.
type ComponentStore interface {
	// SetAny inserts or overwrites the value for the raw entity id. Values
	// of the wrong concrete type are ignored.
	SetAny(id types.EntityID, value any)
	// GetAny returns the stored value for the id, if any.
	GetAny(id types.EntityID) (any, bool)
	// RemoveAny deletes and returns the stored value for the id, if any.
	RemoveAny(id types.EntityID) (any, bool)
	// Contains reports whether the id has a value in this storage.
	Contains(id types.EntityID) bool
	// Len returns the number of stored values.
	Len() int
	// IDs returns the raw entity ids in dense storage order. The slice is
	// the storage's own backing array and must not be mutated.
	IDs() []types.EntityID
}

// SparseSet stores one component type densely, keyed by raw entity id. The
// sparse array maps an id to its position in the parallel dense/data arrays
// (-1 when absent), giving O(1) insert, lookup, and swap-remove while keeping
// values packed for iteration.
type SparseSet[T any] struct {
	sparse []int
	dense  []types.EntityID
	data   []T
}

func NewSparseSet[T any]() *SparseSet[T] {
	return &SparseSet[T]{}
}

// Set inserts or overwrites the value for id.
func (s *SparseSet[T]) Set(id types.EntityID, value T) {
	if idx, ok := s.lookup(id); ok {
		s.data[idx] = value
		return
	}
	for int(id) >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	s.sparse[id] = len(s.dense)
	s.dense = append(s.dense, id)
	s.data = append(s.data, value)
}

// Get returns the value stored for id.
func (s *SparseSet[T]) Get(id types.EntityID) (T, bool) {
	idx, ok := s.lookup(id)
	if !ok {
		var zero T
		return zero, false
	}
	return s.data[idx], true
}

// Remove deletes the value for id in O(1): the removed dense slot is
// back-filled with the last element and the moved entity's sparse entry is
// fixed up.
func (s *SparseSet[T]) Remove(id types.EntityID) (T, bool) {
	idx, ok := s.lookup(id)
	if !ok {
		var zero T
		return zero, false
	}
	out := s.data[idx]
	last := len(s.dense) - 1
	moved := s.dense[last]
	s.dense[idx] = moved
	s.data[idx] = s.data[last]
	s.sparse[moved] = idx
	var zero T
	s.data[last] = zero
	s.dense = s.dense[:last]
	s.data = s.data[:last]
	s.sparse[id] = -1
	return out, true
}

func (s *SparseSet[T]) lookup(id types.EntityID) (int, bool) {
	if int(id) >= len(s.sparse) {
		return 0, false
	}
	idx := s.sparse[id]
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

func (s *SparseSet[T]) SetAny(id types.EntityID, value any) {
	if v, ok := value.(T); ok {
		s.Set(id, v)
	}
}

func (s *SparseSet[T]) GetAny(id types.EntityID) (any, bool) {
	v, ok := s.Get(id)
	if !ok {
		return nil, false
	}
	return v, true
}

func (s *SparseSet[T]) RemoveAny(id types.EntityID) (any, bool) {
	v, ok := s.Remove(id)
	if !ok {
		return nil, false
	}
	return v, true
}

func (s *SparseSet[T]) Contains(id types.EntityID) bool {
	_, ok := s.lookup(id)
	return ok
}

func (s *SparseSet[T]) Len() int {
	return len(s.dense)
}

func (s *SparseSet[T]) IDs() []types.EntityID {
	return s.dense
}
