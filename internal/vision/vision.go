// Package vision extracts basic technical metadata from user-submitted
// images: format, dimensions and color mode. It is a local fallback layer,
// not an AI: when the vision model cannot be reached the metadata still lets
// the assistant say something concrete about the picture.
package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Description is the technical metadata extracted from an image.
type Description struct {
	Format    string
	Width     int
	Height    int
	ColorMode string
	// Err records a decode failure; the zero fields are then meaningless.
	Err error
}

// Describe inspects raw image bytes. It never fails the caller: a decode
// error is carried inside the result.
func Describe(data []byte) Description {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		slog.Warn("vision.Describe failed to decode image", "error", err, "bytes", len(data))
		return Description{Err: err}
	}
	return Description{
		Format:    format,
		Width:     cfg.Width,
		Height:    cfg.Height,
		ColorMode: colorMode(cfg.ColorModel),
	}
}

func colorMode(m color.Model) string {
	switch m {
	case color.GrayModel, color.Gray16Model:
		return "grayscale"
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model, color.YCbCrModel, color.NYCbCrAModel:
		return "color"
	}
	// Paletted and exotic models land here.
	return "other"
}

// Short renders a one-line description for the conversation log.
func (d Description) Short() string {
	if d.Err != nil {
		return "Image uploaded"
	}
	return fmt.Sprintf("Image with dimensions %dx%d pixels in %s format", d.Width, d.Height, d.Format)
}
