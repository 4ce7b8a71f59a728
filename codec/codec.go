// Package codec provides the JSON encoding used for state snapshots.
package codec

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

func Decode[T any](bz []byte) (T, error) {
	comp := new(T)
	if err := json.Unmarshal(bz, comp); err != nil {
		return *comp, eris.Wrap(err, "failed to decode")
	}
	return *comp, nil
}

func Encode(comp any) ([]byte, error) {
	bz, err := json.Marshal(comp)
	if err != nil {
		return nil, eris.Wrap(err, "failed to encode")
	}
	return bz, nil
}
