package types

// EntityID is a reusable slot index into the world's entity tables.
type EntityID uint32

// Entity is a generational handle to an object in the world. Identity is the
// (ID, Generation) pair: the ID slot is recycled after a despawn and the
// generation disambiguates reuse, so a stale handle never aliases the slot's
// current occupant.
type Entity struct {
	ID         EntityID `json:"id"`
	Generation uint32   `json:"generation"`
}
