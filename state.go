package lattice

import (
	"sort"

	"github.com/goccy/go-json"

	"github.com/lattice-ecs/lattice/codec"
	"github.com/lattice-ecs/lattice/types"
)

// StateElement is one live entity's full component snapshot, keyed by
// component type name.
type StateElement struct {
	ID         types.EntityID             `json:"id"`
	Generation uint32                     `json:"generation"`
	Components map[string]json.RawMessage `json:"components"`
}

type StateResponse []StateElement

// State returns a JSON snapshot of every live entity and its components,
// sorted by entity id.
func (w *World) State() (StateResponse, error) {
	elements := make(map[types.EntityID]*StateElement)
	for typ, store := range w.components {
		for _, id := range store.IDs() {
			gen, ok := w.entities.Generation(id)
			if !ok {
				continue
			}
			v, ok := store.GetAny(id)
			if !ok {
				continue
			}
			bz, err := codec.Encode(v)
			if err != nil {
				return nil, err
			}
			el, ok := elements[id]
			if !ok {
				el = &StateElement{
					ID:         id,
					Generation: gen,
					Components: make(map[string]json.RawMessage),
				}
				elements[id] = el
			}
			el.Components[typ.String()] = bz
		}
	}
	out := make(StateResponse, 0, len(elements))
	for _, el := range elements {
		out = append(out, *el)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
