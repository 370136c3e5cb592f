// Package imaging derives a named variant of an uploaded image: resize per
// a fit policy, re-encode to a target format, and apply JPEG quality.
package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
)

// defaultJPEGQuality is used when a variant targets JPEG without specifying
// its own quality.
const defaultJPEGQuality = 85

// Process decodes data, resizes it per cfg's fit policy, re-encodes to cfg's
// target format (or the source format, if unset or "original"), and returns
// the encoded bytes alongside the resulting mime type.
func Process(data []byte, cfg models.VariantConfig) ([]byte, string, error) {
	img, sourceFormat, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	img = resize(img, cfg)

	format, mimeType, err := resolveFormat(cfg.Format, sourceFormat)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	opts := encodeOptions(format, cfg)
	if err := imaging.Encode(&buf, img, format, opts...); err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), mimeType, nil
}

func resize(img image.Image, cfg models.VariantConfig) image.Image {
	filter := imaging.Lanczos

	switch {
	case cfg.Width != nil && cfg.Height != nil:
		switch cfg.Fit {
		case "cover", "center-crop":
			return imaging.Fill(img, *cfg.Width, *cfg.Height, imaging.Center, filter)
		case "fill", "stretch", "exact":
			return imaging.Resize(img, *cfg.Width, *cfg.Height, filter)
		default:
			return imaging.Fit(img, *cfg.Width, *cfg.Height, filter)
		}
	case cfg.Width != nil:
		return imaging.Resize(img, *cfg.Width, 0, filter)
	case cfg.Height != nil:
		return imaging.Resize(img, 0, *cfg.Height, filter)
	case cfg.MaxWidth != nil && cfg.MaxHeight != nil:
		return imaging.Fit(img, *cfg.MaxWidth, *cfg.MaxHeight, filter)
	default:
		return img
	}
}

// resolveFormat maps a variant's requested format to an imaging.Format and
// mime type. AVIF and WebP are not writable by this library — see DESIGN.md
// for why both fall back to JPEG rather than pulling in a cgo encoder.
func resolveFormat(requested string, source imaging.Format) (imaging.Format, string, error) {
	switch requested {
	case "", "original":
		return mimeFor(source)
	case "png":
		return imaging.PNG, "image/png", nil
	case "jpg", "jpeg", "avif", "webp":
		return imaging.JPEG, "image/jpeg", nil
	default:
		return imaging.JPEG, "image/jpeg", nil
	}
}

func mimeFor(format imaging.Format) (imaging.Format, string, error) {
	switch format {
	case imaging.PNG:
		return imaging.PNG, "image/png", nil
	case imaging.JPEG:
		return imaging.JPEG, "image/jpeg", nil
	case imaging.GIF:
		return imaging.GIF, "image/gif", nil
	case imaging.TIFF:
		return imaging.TIFF, "image/tiff", nil
	case imaging.BMP:
		return imaging.BMP, "image/bmp", nil
	default:
		return imaging.JPEG, "image/jpeg", nil
	}
}

func encodeOptions(format imaging.Format, cfg models.VariantConfig) []imaging.EncodeOption {
	if format != imaging.JPEG {
		return nil
	}
	quality := defaultJPEGQuality
	if cfg.Quality != nil {
		quality = *cfg.Quality
	}
	return []imaging.EncodeOption{imaging.JPEGQuality(quality)}
}
