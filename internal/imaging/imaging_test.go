package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessAcceptsPNG(t *testing.T) {
	t.Parallel()

	res, err := Process(encodePNG(t, 100, 80))
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", res.MIME)

	out, err := jpeg.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)

	// Small images keep their dimensions.
	require.Equal(t, 100, out.Bounds().Dx())
	require.Equal(t, 80, out.Bounds().Dy())
}

func TestProcessDownscalesLargeImages(t *testing.T) {
	t.Parallel()

	res, err := Process(encodePNG(t, 2400, 1200))
	require.NoError(t, err)

	out, err := jpeg.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)

	// Aspect ratio preserved, longest side capped.
	require.Equal(t, MaxDimension, out.Bounds().Dx())
	require.Equal(t, MaxDimension/2, out.Bounds().Dy())
}

func TestProcessRejectsNonImage(t *testing.T) {
	t.Parallel()

	_, err := Process([]byte("just some text, definitely not pixels"))
	require.ErrorIs(t, err, ErrNotImage)
}

func TestProcessRejectsOversizedInput(t *testing.T) {
	t.Parallel()

	_, err := Process(make([]byte, MaxSizeBytes+1))
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestProcessRejectsDisallowedMIME(t *testing.T) {
	t.Parallel()

	// A PDF header sniffs as application/pdf.
	_, err := Process([]byte("%PDF-1.4\n%some pdf content here to sniff"))
	require.ErrorIs(t, err, ErrNotImage)
}
