package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
)

func samplePNG(t *testing.T, w, h int) []byte {
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

func intPtr(v int) *int { return &v }

func TestProcessContainFit(t *testing.T) {
	data := samplePNG(t, 200, 100)

	out, mimeType, err := Process(data, models.VariantConfig{
		Width:  intPtr(100),
		Height: intPtr(100),
	})
	require.NoError(t, err)
	require.Equal(t, "image/png", mimeType)

	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	bounds := decoded.Bounds()
	require.LessOrEqual(t, bounds.Dx(), 100)
	require.LessOrEqual(t, bounds.Dy(), 100)
}

func TestProcessExactFit(t *testing.T) {
	data := samplePNG(t, 200, 100)

	out, _, err := Process(data, models.VariantConfig{
		Width:  intPtr(50),
		Height: intPtr(50),
		Fit:    "exact",
	})
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	bounds := decoded.Bounds()
	require.Equal(t, 50, bounds.Dx())
	require.Equal(t, 50, bounds.Dy())
}

func TestProcessFormatConversion(t *testing.T) {
	data := samplePNG(t, 64, 64)

	_, mimeType, err := Process(data, models.VariantConfig{Format: "jpg"})
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", mimeType)
}

func TestProcessAvifFallsBackToJPEG(t *testing.T) {
	data := samplePNG(t, 32, 32)

	_, mimeType, err := Process(data, models.VariantConfig{Format: "avif"})
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", mimeType)
}

func TestProcessPreservesOriginalFormatByDefault(t *testing.T) {
	data := samplePNG(t, 32, 32)

	_, mimeType, err := Process(data, models.VariantConfig{})
	require.NoError(t, err)
	require.Equal(t, "image/png", mimeType)
}
