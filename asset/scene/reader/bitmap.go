package reader

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/achilleasa/ashtrace/asset/compiler"
	"github.com/achilleasa/ashtrace/asset/compiler/input"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode the image header from r and fill in the bitmap dimensions.
// Supported formats: png, jpeg, bmp, tiff and webp.
func resolveBitmap(bitmap *input.Bitmap, r io.Reader) error {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return fmt.Errorf("%w: %q: %s", compiler.ErrUnresolvedBitmap, bitmap.Path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: %q: invalid %s image dimensions %dx%d", compiler.ErrUnresolvedBitmap, bitmap.Path, format, cfg.Width, cfg.Height)
	}

	bitmap.Width = uint32(cfg.Width)
	bitmap.Height = uint32(cfg.Height)
	bitmap.Resolved = true
	return nil
}
