package raster

import (
	"cmp"
	"errors"
	"fmt"
	"image"
	"math"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"uiraster/internal/atlas"
	"uiraster/internal/binding"
	"uiraster/internal/color"
	"uiraster/internal/logx"
	"uiraster/internal/mathutil"
	"uiraster/internal/scene"
	"uiraster/internal/transform"
)

// ErrMissingAtlas reports a frame with sprites but no atlas to sample them from.
var ErrMissingAtlas = errors.New("raster: missing atlas")

// DefaultWindingSamples is the side of the default sub-sample grid for
// winding coverage (4×4 samples per pixel).
const DefaultWindingSamples = 4

// bandsPerWorker splits the frame finer than the worker count so uneven
// scenes still spread over all workers.
const bandsPerWorker = 4

// FrameOptions tunes an Assembler. The zero value is usable.
type FrameOptions struct {
	// Workers is the number of row bands rendered at once. 0 means
	// GOMAXPROCS.
	Workers int
	// WindingSamples is the sub-sample grid side for winding sprites.
	// 0 means DefaultWindingSamples.
	WindingSamples int
	// LinearBlend blends in linear light instead of encoded sRGB.
	LinearBlend bool
	// Clear is the color the frame starts from.
	Clear color.RGBA8
	// Table maps stage inputs to slots. nil means binding.DefaultTable.
	Table *binding.Table
}

// Assembler composites quads and sprites into frames. It holds no per-frame
// state and may render several frames concurrently.
type Assembler struct {
	opts FrameOptions
}

// NewAssembler returns an assembler with opts, defaults filled in.
func NewAssembler(opts FrameOptions) *Assembler {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.WindingSamples <= 0 {
		opts.WindingSamples = DefaultWindingSamples
	}
	if opts.Table == nil {
		opts.Table = binding.DefaultTable()
	}
	return &Assembler{opts: opts}
}

// Options returns the effective options.
func (a *Assembler) Options() FrameOptions {
	return a.opts
}

type itemKind uint8

const (
	kindQuad itemKind = iota
	kindSprite
)

type drawItem struct {
	kind   itemKind
	index  int
	z      float32
	origin mathutil.Vec2
	size   mathutil.Vec2
	bounds image.Rectangle
	quad   scene.Quad
	sprite spriteShader
}

// RenderScene renders sc with at as its atlas.
func (a *Assembler) RenderScene(sc *scene.Scene, at *atlas.Atlas) (*FrameBuffer, error) {
	return a.Render(sc.Uniforms, sc.Quads, sc.Sprites, at)
}

// Render composites one frame. The frame is checked before anything is
// drawn: a bad viewport or scale, or sprites without an atlas, fail the
// whole frame. Malformed records are skipped.
//
// Primitives are painted back to front: larger z first. At equal z quads go
// before sprites and each sequence keeps its own order. Every pixel is
// blended source-over in exactly that order whatever the worker count, so
// the output is deterministic.
func (a *Assembler) Render(u scene.FrameUniforms, quads []scene.Quad, sprites []scene.Sprite, at *atlas.Atlas) (*FrameBuffer, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	space := color.SpaceSRGB
	if a.opts.LinearBlend {
		space = color.SpaceLinear
	}
	sh := Shading{
		Opacity:        u.ClampedOpacity(),
		Space:          space,
		WindingSamples: a.opts.WindingSamples,
	}

	quads, sprites, err := a.bind(u, quads, sprites, at)
	if err != nil {
		return nil, err
	}
	sh.Atlas = at

	tr := transform.Resolve(u)
	items := a.collect(tr, quads, sprites, sh)

	vp := tr.Viewport()
	fb := NewFrameBuffer(int(math.Ceil(vp.X)), int(math.Ceil(vp.Y)), space)
	fb.Fill(a.opts.Clear.Premul(space))

	a.rasterize(fb, tr, items, sh)

	logx.Logger().Debug("frame rendered",
		"width", fb.Width, "height", fb.Height,
		"quads", len(quads), "sprites", len(sprites), "drawn", len(items),
		"workers", a.opts.Workers)
	return fb, nil
}

// bind resolves every stage that has work through the binding table and
// hands back the instance data the stages were given.
func (a *Assembler) bind(u scene.FrameUniforms, quads []scene.Quad, sprites []scene.Sprite, at *atlas.Atlas) ([]scene.Quad, []scene.Sprite, error) {
	b := binding.NewBinder(a.opts.Table)
	b.Bind(binding.Vertices, transform.UnitVertices())
	b.Bind(binding.Uniforms, u)
	if at != nil {
		b.Bind(binding.Atlas, at)
		b.Bind(binding.AtlasSize, at.Size())
	}

	if len(quads) > 0 {
		b.Bind(binding.Instances, quads)
		bd, err := b.Resolve(binding.QuadStage)
		if err != nil {
			return nil, nil, err
		}
		quads, _ = binding.Get[[]scene.Quad](bd, binding.Instances)
	}

	if len(sprites) > 0 {
		b.Bind(binding.Instances, sprites)
		bd, err := b.Resolve(binding.SpriteStage)
		if err != nil {
			var ue *binding.UnboundError
			if errors.As(err, &ue) && ue.Input == binding.Atlas {
				return nil, nil, fmt.Errorf("%w: %w", ErrMissingAtlas, err)
			}
			return nil, nil, err
		}
		sprites, _ = binding.Get[[]scene.Sprite](bd, binding.Instances)
	}
	return quads, sprites, nil
}

// collect builds the depth-sorted draw list, dropping malformed and
// off-screen primitives.
func (a *Assembler) collect(tr transform.Transform, quads []scene.Quad, sprites []scene.Sprite, sh Shading) []drawItem {
	log := logx.Logger()
	items := make([]drawItem, 0, len(quads)+len(sprites))

	for i, q := range quads {
		if q.Malformed() {
			log.Debug("skipping malformed quad", "index", i, "size", q.Size)
			continue
		}
		it := drawItem{
			kind:   kindQuad,
			index:  i,
			z:      q.Z,
			origin: mathutil.V2(float64(q.Origin.X), float64(q.Origin.Y)),
			size:   mathutil.V2(float64(q.Size.X), float64(q.Size.Y)),
			quad:   q,
		}
		it.bounds = tr.Bounds(it.origin, it.size)
		if it.bounds.Empty() {
			continue
		}
		items = append(items, it)
	}

	for i, s := range sprites {
		if s.Malformed() {
			log.Debug("skipping malformed sprite", "index", i, "target", s.TargetSize, "source", s.SourceSize)
			continue
		}
		it := drawItem{
			kind:   kindSprite,
			index:  i,
			z:      s.Z,
			origin: mathutil.V2(float64(s.Origin.X), float64(s.Origin.Y)),
			size:   mathutil.V2(float64(s.TargetSize.X), float64(s.TargetSize.Y)),
			sprite: prepareSprite(s, sh),
		}
		if s.Winding && it.sprite.region == nil {
			log.Debug("winding sprite has no path region", "index", i, "atlas_origin", s.AtlasOrigin)
			continue
		}
		it.bounds = tr.Bounds(it.origin, it.size)
		if it.bounds.Empty() {
			continue
		}
		items = append(items, it)
	}

	// Quads precede sprites in items, so a stable sort on z alone keeps
	// quads first at equal depth.
	slices.SortStableFunc(items, func(x, y drawItem) int {
		return cmp.Compare(y.z, x.z)
	})
	return items
}

// rasterize splits the frame into row bands. Each band is owned by one
// worker, which walks the whole draw list for its rows only.
func (a *Assembler) rasterize(fb *FrameBuffer, tr transform.Transform, items []drawItem, sh Shading) {
	if len(items) == 0 || fb.Height == 0 {
		return
	}
	bands := a.opts.Workers * bandsPerWorker
	if bands > fb.Height {
		bands = fb.Height
	}
	rows := (fb.Height + bands - 1) / bands

	var g errgroup.Group
	g.SetLimit(a.opts.Workers)
	for y0 := 0; y0 < fb.Height; y0 += rows {
		band := image.Rect(0, y0, fb.Width, min(y0+rows, fb.Height))
		g.Go(func() error {
			renderBand(fb, tr, items, sh, band)
			return nil
		})
	}
	g.Wait()
}

// bandCache holds the inverse-mapped pixel centers of one band.
type bandCache struct {
	rect      image.Rectangle
	scene     []mathutil.Vec2
	footprint []float64
	visible   []bool
	done      []bool
}

func (c *bandCache) at(tr transform.Transform, x, y int) (mathutil.Vec2, float64, bool) {
	i := (y-c.rect.Min.Y)*c.rect.Dx() + (x - c.rect.Min.X)
	if !c.done[i] {
		px := mathutil.V2(float64(x)+0.5, float64(y)+0.5)
		c.scene[i], c.visible[i] = tr.ToScene(px)
		if c.visible[i] {
			c.footprint[i] = tr.PixelFootprint(px)
		}
		c.done[i] = true
	}
	return c.scene[i], c.footprint[i], c.visible[i]
}

func renderBand(fb *FrameBuffer, tr transform.Transform, items []drawItem, sh Shading, band image.Rectangle) {
	n := band.Dx() * band.Dy()
	cache := bandCache{
		rect:      band,
		scene:     make([]mathutil.Vec2, n),
		footprint: make([]float64, n),
		visible:   make([]bool, n),
		done:      make([]bool, n),
	}

	for i := range items {
		it := &items[i]
		r := it.bounds.Intersect(band)
		if r.Empty() {
			continue
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := y * fb.Width
			for x := r.Min.X; x < r.Max.X; x++ {
				p, aa, ok := cache.at(tr, x, y)
				if !ok {
					continue
				}
				local := p.Sub(it.origin)

				var src color.Premul
				switch it.kind {
				case kindQuad:
					src = ShadeQuad(it.quad, local, aa, sh)
				case kindSprite:
					cov := targetCoverage(local, it.size, aa)
					if cov <= 0 {
						continue
					}
					src = it.sprite.shade(local, aa, sh).Scale(float32(cov))
				}
				if src.A <= 0 {
					continue
				}
				fb.Pix[row+x] = src.Over(fb.Pix[row+x])
			}
		}
	}
}

// targetCoverage is the coverage of a sprite's target rectangle at local,
// ramped over one device pixel like a quad edge. Sharp corners.
func targetCoverage(local, size mathutil.Vec2, aa float64) float64 {
	if !(aa > 0) {
		aa = 1
	}
	half := size.Scale(0.5)
	return saturate(0.5 - roundedRectDistance(local.Sub(half), half, 0)/aa)
}
