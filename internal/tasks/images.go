package tasks

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// ShrinkImage decodes an uploaded photo and scales it down so neither
// side exceeds maxDim, re-encoding as JPEG. Images already within
// bounds are still re-encoded, which strips whatever format and
// metadata the upload arrived with.
func ShrinkImage(data []byte, maxDim int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = resize.Thumbnail(uint(maxDim), uint(maxDim), img, resize.Lanczos3)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return out.Bytes(), nil
}
