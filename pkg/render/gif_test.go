package render

import (
	"bytes"
	"image/gif"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnimationEncode(t *testing.T) {
	g, err := NewGradient("inferno")
	require.NoError(t, err)
	a := NewAnimation(g, DefaultOptions(), 3)

	var buf bytes.Buffer
	assert.Error(t, a.Encode(&buf), "empty animation")

	snap := newSnapshot(t)
	a.Add(snap)
	a.Add(snap)
	require.Equal(t, 2, a.Len())
	require.NoError(t, a.Encode(&buf))

	decoded, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	assert.Len(t, decoded.Image, 2)
	assert.Equal(t, []int{3, 3}, decoded.Delay)
	assert.Equal(t, 8, decoded.Image[0].Bounds().Dx())
	assert.Equal(t, 6, decoded.Image[0].Bounds().Dy())
}
