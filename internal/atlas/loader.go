package atlas

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "github.com/ftrvxmtrx/tga"
)

// LoadImage reads a PNG, JPEG or TGA file and returns it as NRGBA.
func LoadImage(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("atlas: read %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("atlas: decode %s: %w", path, err)
	}
	return toNRGBA(img), nil
}

// Load reads an atlas bitmap plus its path sidecar, when one exists.
func Load(path string) (*Atlas, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	a := New(img)
	if err := LoadSidecar(SidecarPath(path), a); err != nil {
		return nil, err
	}
	return a, nil
}

// toNRGBA converts any image to NRGBA with its origin at (0, 0), since atlas
// coordinates start there.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
	return dst
}
