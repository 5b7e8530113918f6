package postprocess

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

// Format is an output image format.
type Format string

const (
	FormatWebP Format = "webp"
	FormatPNG  Format = "png"
)

// ParseFormat accepts "webp" or "png", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatWebP, FormatPNG:
		return f, nil
	}
	return "", fmt.Errorf("postprocess: unknown format %q", s)
}

// Ext returns the file extension for f, with the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Encode writes img to w in format f. WebP output is lossless.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("postprocess: webp encode: %w", err)
		}
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(w, img); err != nil {
			return fmt.Errorf("postprocess: png encode: %w", err)
		}
	default:
		return fmt.Errorf("postprocess: unknown format %q", f)
	}
	return nil
}

// WriteFile encodes img to path, creating parent directories.
func WriteFile(path string, img image.Image, f Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("postprocess: create %s: %w", filepath.Dir(path), err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("postprocess: create %s: %w", path, err)
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return fmt.Errorf("postprocess: write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("postprocess: write %s: %w", path, err)
	}
	return nil
}
