package main

import (
	"image/gif"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheFellow/gravity-fluid/pkg/config"
)

const smallGrid = `
[grid]
width = 16
height = 12

[obstacle]
radius = 2
`

func TestRunWritesGIF(t *testing.T) {
	file, err := config.Parse(smallGrid)
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "anim", "fluid.gif")
	logger := log.New(io.Discard, "", 0)

	require.NoError(t, run(file, logger, out, 3, 2, 5, "viridis", 1))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)
	assert.Len(t, anim.Image, 3)
	assert.Equal(t, 16, anim.Image[0].Bounds().Dx())
	assert.Equal(t, 12, anim.Image[0].Bounds().Dy())
}

func TestRunRejectsBadArguments(t *testing.T) {
	file, err := config.Parse(smallGrid)
	require.NoError(t, err)
	logger := log.New(io.Discard, "", 0)
	out := filepath.Join(t.TempDir(), "x.gif")

	assert.Error(t, run(file, logger, out, 0, 1, 5, "viridis", 0))
	assert.Error(t, run(file, logger, out, 1, 1, 5, "sepia", 0))
	assert.NoFileExists(t, out)
}
