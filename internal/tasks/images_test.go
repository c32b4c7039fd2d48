package tasks

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 10 {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestShrinkImageOversizedLandscape(t *testing.T) {
	out, err := ShrinkImage(makePNG(t, 4000, 2000), 1024)
	require.NoError(t, err)

	w, h := decodeDims(t, out)
	assert.Equal(t, 1024, w)
	assert.Equal(t, 512, h, "aspect ratio must be preserved")
}

func TestShrinkImageWithinBoundsKeepsSize(t *testing.T) {
	out, err := ShrinkImage(makePNG(t, 640, 480), 1024)
	require.NoError(t, err)

	w, h := decodeDims(t, out)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestShrinkImageConvertsToJPEG(t *testing.T) {
	out, err := ShrinkImage(makePNG(t, 100, 100), 1024)
	require.NoError(t, err)
	// JPEG SOI marker.
	require.True(t, len(out) > 2)
	assert.Equal(t, []byte{0xFF, 0xD8}, out[:2])
}

func TestShrinkImageGarbageInput(t *testing.T) {
	_, err := ShrinkImage([]byte("definitely not an image"), 1024)
	assert.Error(t, err)
}
