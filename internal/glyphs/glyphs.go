// Package glyphs turns TrueType outlines into atlas path regions, so text can
// be drawn as winding sprites at any size without rasterizing glyphs. Only
// outlines and metrics are read from the font.
package glyphs

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"uiraster/internal/atlas"
	"uiraster/internal/color"
	"uiraster/internal/scene"
)

// ErrSheetFull reports a glyph that no longer fits in the sheet's area.
var ErrSheetFull = errors.New("glyphs: sheet area full")

// pad keeps a texel of empty space around every outline for the coverage
// ramp.
const pad = 1

// Font is a parsed TrueType or OpenType font. It is safe for concurrent use.
type Font struct {
	mu  sync.Mutex
	f   *sfnt.Font
	buf sfnt.Buffer
}

// Parse parses font data.
func Parse(data []byte) (*Font, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("glyphs: parse font: %w", err)
	}
	return &Font{f: f}, nil
}

// Regular returns the Go Regular font.
func Regular() (*Font, error) {
	return Parse(goregular.TTF)
}

// Outline is one glyph flattened into a path region.
type Outline struct {
	Rune rune
	// Path is in region coordinates: y down, (0, 0) at the region's top-left.
	// It is nil for glyphs without ink such as a space.
	Path *atlas.Path
	// Size is the region size in texels.
	Size image.Point
	// Offset goes from the pen position on the baseline to the region's
	// top-left corner.
	Offset scene.Vec2
	// Advance is the distance to the next pen position.
	Advance float64
}

// Outline loads the outline of r at ppem pixels per em.
func (f *Font) Outline(r rune, ppem float64) (Outline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx, err := f.f.GlyphIndex(&f.buf, r)
	if err != nil {
		return Outline{}, fmt.Errorf("glyphs: index %q: %w", r, err)
	}
	if idx == 0 {
		return Outline{}, fmt.Errorf("glyphs: no glyph for %q", r)
	}
	size := fixed.Int26_6(ppem * 64)

	adv, err := f.f.GlyphAdvance(&f.buf, idx, size, font.HintingNone)
	if err != nil {
		return Outline{}, fmt.Errorf("glyphs: advance %q: %w", r, err)
	}
	segs, err := f.f.LoadGlyph(&f.buf, idx, size, nil)
	if err != nil {
		return Outline{}, fmt.Errorf("glyphs: load %q: %w", r, err)
	}

	o := Outline{Rune: r, Advance: fromFixed(adv)}
	if len(segs) == 0 {
		return o, nil
	}

	b := segs.Bounds()
	minX := math.Floor(fromFixed(b.Min.X)) - pad
	minY := math.Floor(fromFixed(b.Min.Y)) - pad
	maxX := math.Ceil(fromFixed(b.Max.X)) + pad
	maxY := math.Ceil(fromFixed(b.Max.Y)) + pad

	pt := func(p fixed.Point26_6) (float64, float64) {
		return fromFixed(p.X) - minX, fromFixed(p.Y) - minY
	}
	p := atlas.NewPath()
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			p.Close()
			x, y := pt(s.Args[0])
			p.MoveTo(x, y)
		case sfnt.SegmentOpLineTo:
			x, y := pt(s.Args[0])
			p.LineTo(x, y)
		case sfnt.SegmentOpQuadTo:
			cx, cy := pt(s.Args[0])
			x, y := pt(s.Args[1])
			p.QuadTo(cx, cy, x, y)
		case sfnt.SegmentOpCubeTo:
			c1x, c1y := pt(s.Args[0])
			c2x, c2y := pt(s.Args[1])
			x, y := pt(s.Args[2])
			p.CubeTo(c1x, c1y, c2x, c2y, x, y)
		}
	}
	p.Close()

	o.Path = p
	o.Size = image.Pt(int(maxX-minX), int(maxY-minY))
	o.Offset = scene.Vec2{X: float32(minX), Y: float32(minY)}
	return o, nil
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

type sheetGlyph struct {
	entry   scene.AtlasEntry
	advance float64
	ink     bool
}

// Sheet places glyph outlines of one font size into a rectangle of an atlas,
// left to right in rows, and remembers where each rune went.
type Sheet struct {
	atlas *atlas.Atlas
	font  *Font
	ppem  float64
	area  image.Rectangle

	cursor image.Point
	rowH   int
	glyphs map[rune]sheetGlyph
}

// NewSheet returns a sheet that may use area of a for glyphs of f at ppem
// device pixels per em.
func NewSheet(a *atlas.Atlas, area image.Rectangle, f *Font, ppem float64) *Sheet {
	return &Sheet{
		atlas:  a,
		font:   f,
		ppem:   ppem,
		area:   area,
		cursor: area.Min,
		glyphs: make(map[rune]sheetGlyph),
	}
}

// PPEM returns the sheet's size in device pixels per em.
func (s *Sheet) PPEM() float64 {
	return s.ppem
}

// Entry returns the atlas entry and advance of r, adding the glyph on first
// use. ok is false for glyphs without ink.
func (s *Sheet) Entry(r rune) (e scene.AtlasEntry, advance float64, ok bool, err error) {
	if g, hit := s.glyphs[r]; hit {
		return g.entry, g.advance, g.ink, nil
	}
	o, err := s.font.Outline(r, s.ppem)
	if err != nil {
		return scene.AtlasEntry{}, 0, false, err
	}
	g := sheetGlyph{advance: o.Advance}
	if o.Path != nil {
		bounds, err := s.place(o.Size)
		if err != nil {
			return scene.AtlasEntry{}, 0, false, fmt.Errorf("glyphs: place %q: %w", r, err)
		}
		if _, err := s.atlas.AddPath(bounds, o.Path); err != nil {
			return scene.AtlasEntry{}, 0, false, fmt.Errorf("glyphs: place %q: %w", r, err)
		}
		g.ink = true
		g.entry = scene.AtlasEntry{
			Origin:  scene.Vec2{X: float32(bounds.Min.X), Y: float32(bounds.Min.Y)},
			Size:    scene.Vec2{X: float32(o.Size.X), Y: float32(o.Size.Y)},
			Offset:  o.Offset,
			Winding: true,
		}
	}
	s.glyphs[r] = g
	return g.entry, g.advance, g.ink, nil
}

func (s *Sheet) place(size image.Point) (image.Rectangle, error) {
	if s.cursor.X+size.X > s.area.Max.X {
		s.cursor = image.Pt(s.area.Min.X, s.cursor.Y+s.rowH)
		s.rowH = 0
	}
	r := image.Rectangle{Min: s.cursor, Max: s.cursor.Add(size)}
	if !r.In(s.area) {
		return image.Rectangle{}, ErrSheetFull
	}
	s.cursor.X += size.X
	s.rowH = max(s.rowH, size.Y)
	return r, nil
}

// Text adds one winding sprite per inked rune of text to b. origin is the pen
// position on the baseline in logical units. It returns the logical advance
// of the whole run.
func (s *Sheet) Text(b *scene.Builder, origin scene.Vec2, text string, tint color.RGBA8) (float32, error) {
	pen := origin
	for _, r := range text {
		e, adv, ok, err := s.Entry(r)
		if err != nil {
			return pen.X - origin.X, err
		}
		if ok {
			b.Glyph(pen, e, tint)
		}
		pen.X += float32(adv) / b.ScaleFactor
	}
	return pen.X - origin.X, nil
}
