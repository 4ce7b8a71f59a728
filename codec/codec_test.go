package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestEncodeDecode(t *testing.T) {
	bz, err := Encode(item{Name: "potion", Count: 3})
	require.NoError(t, err)

	got, err := Decode[item](bz)
	require.NoError(t, err)
	assert.Equal(t, item{Name: "potion", Count: 3}, got)
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	_, err := Decode[item]([]byte("{not json"))
	assert.Error(t, err)
}
