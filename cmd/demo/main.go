package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"uiraster/internal/atlas"
	"uiraster/internal/batch"
	"uiraster/internal/color"
	"uiraster/internal/glyphs"
	"uiraster/internal/logx"
	"uiraster/internal/mathutil"
	"uiraster/internal/postprocess"
	"uiraster/internal/raster"
	"uiraster/internal/scene"
)

const (
	atlasSize = 512
	iconSize  = 64
	// Circle control point distance for four cubic arcs.
	kappa = 0.5522847498
)

var (
	background = color.RGBA8{R: 0x1e, G: 0x1f, B: 0x26, A: 0xff}
	panel      = color.RGBA8{R: 0x2b, G: 0x2d, B: 0x38, A: 0xff}
	accent     = color.RGBA8{R: 0x4f, G: 0x9d, B: 0xff, A: 0xff}
	muted      = color.RGBA8{R: 0x8a, G: 0x8f, B: 0xa3, A: 0xff}
	text       = color.RGBA8{R: 0xf2, G: 0xf2, B: 0xf5, A: 0xff}
	warn       = color.RGBA8{R: 0xff, G: 0xb0, B: 0x3b, A: 0xff}
)

func main() {
	out := flag.String("o", "demo.webp", "Output image (.webp or .png)")
	width := flag.Int("width", 800, "Viewport width in device pixels")
	height := flag.Int("height", 600, "Viewport height in device pixels")
	scaleFactor := flag.Float64("scale-factor", 1, "Device pixels per logical unit")
	tilt := flag.Float64("tilt", 12, "Rotation about X in degrees")
	fov := flag.Float64("fov", 45, "Field of view in degrees; 0 is orthographic")
	supersample := flag.Int("supersample", 2, "Supersampling factor")
	workers := flag.Int("workers", 0, "Row band workers (default: GOMAXPROCS)")
	linear := flag.Bool("linear", false, "Blend in linear light")
	sceneOut := flag.String("scene", "", "Also write the scene to this .qsb or .yaml file")
	atlasOut := flag.String("atlas", "", "Also write the atlas to this .png with its path sidecar")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	logx.SetLogger(logx.NewText(os.Stderr, *verbose))

	format, err := postprocess.ParseFormat(filepath.Ext(*out))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	u := scene.DefaultUniforms(float32(*width), float32(*height))
	u.RotateX = float32(mathutil.Deg2Rad(*tilt))
	u.FOV = float32(mathutil.Deg2Rad(*fov))

	atlasName := "demo"
	if *atlasOut != "" {
		atlasName = strings.TrimSuffix(filepath.Base(*atlasOut), filepath.Ext(*atlasOut))
	}

	at := atlas.NewBlank(atlasSize, atlasSize)
	sc, err := build(u, at, atlasName, float32(*scaleFactor))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building scene: %v\n", err)
		os.Exit(1)
	}

	asm := raster.NewAssembler(raster.FrameOptions{
		Workers:     *workers,
		LinearBlend: *linear,
		Clear:       background,
	})
	img, err := batch.Render(asm, sc, at, *supersample)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering: %v\n", err)
		os.Exit(1)
	}
	if err := postprocess.WriteFile(*out, img, format); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Rendered %d quads, %d sprites → %s\n", len(sc.Quads), len(sc.Sprites), *out)

	if *sceneOut != "" {
		if err := scene.Save(*sceneOut, sc); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Scene: %s\n", *sceneOut)
	}
	if *atlasOut != "" {
		if err := postprocess.WriteFile(*atlasOut, at.Image(), postprocess.FormatPNG); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		sidecar := atlas.SidecarPath(*atlasOut)
		if err := atlas.SaveSidecar(sidecar, at); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Atlas: %s (+ %s)\n", *atlasOut, sidecar)
	}
}

// build lays out a small settings panel: a window with a title bar, a row of
// toggles, a vector label per row and one icon drawn both ways.
func build(u scene.FrameUniforms, at *atlas.Atlas, atlasName string, sf float32) (*scene.Scene, error) {
	b := scene.NewBuilder(u, atlasName, sf)
	w, h := u.ViewportSize.X/sf, u.ViewportSize.Y/sf

	font, err := glyphs.Regular()
	if err != nil {
		return nil, err
	}
	iconArea := image.Rect(0, atlasSize-iconSize, iconSize, atlasSize)
	title := glyphs.NewSheet(at, image.Rect(0, 0, atlasSize, 160), font, float64(20*sf))
	body := glyphs.NewSheet(at, image.Rect(0, 160, atlasSize, iconArea.Min.Y), font, float64(14*sf))

	icon, err := at.AddPath(iconArea, ring(iconSize))
	if err != nil {
		return nil, err
	}
	icon.Bake(at.Image())
	iconEntry := scene.AtlasEntry{
		Origin: scene.Vec2{X: float32(iconArea.Min.X), Y: float32(iconArea.Min.Y)},
		Size:   scene.Vec2{X: iconSize, Y: iconSize},
	}

	// Window
	win := scene.Rect{Origin: scene.Vec2{X: w * 0.15, Y: h * 0.12}, Size: scene.Vec2{X: w * 0.7, Y: h * 0.76}}
	b.Quad(win, scene.QuadStyle{
		Background:   panel,
		Border:       scene.AllSides(1, muted),
		CornerRadius: 10,
	})

	// Title bar with a bottom border only
	b.PushLayer()
	bar := scene.Rect{Origin: win.Origin, Size: scene.Vec2{X: win.Size.X, Y: 40}}
	b.Quad(bar, scene.QuadStyle{
		Background:   color.RGBA8{R: 0x33, G: 0x36, B: 0x44, A: 0xff},
		Border:       scene.Border{Width: 2, Color: accent, Bottom: true},
		CornerRadius: 10,
	})
	iconBounds := scene.Rect{Origin: scene.Vec2{X: bar.Origin.X + 12, Y: bar.Origin.Y + 8}, Size: scene.Vec2{X: 24, Y: 24}}
	b.Icon(iconBounds, iconEntry, accent)
	if _, err := title.Text(b, scene.Vec2{X: bar.Origin.X + 46, Y: bar.Origin.Y + 27}, "Display settings", text); err != nil {
		return nil, err
	}

	// Rows
	rows := []struct {
		label string
		on    bool
	}{
		{"Linear blending", true},
		{"Supersampling", true},
		{"Reduce motion", false},
		{"High contrast", false},
	}
	b.PushLayer()
	y := bar.Origin.Y + bar.Size.Y + 20
	for i, r := range rows {
		row := scene.Rect{Origin: scene.Vec2{X: win.Origin.X + 16, Y: y}, Size: scene.Vec2{X: win.Size.X - 32, Y: 44}}
		style := scene.QuadStyle{Background: color.RGBA8{R: 0x30, G: 0x32, B: 0x3e, A: 0xff}, CornerRadius: 6}
		if i == 0 {
			style.Border = scene.AllSides(1, accent)
		}
		b.Quad(row, style)
		if _, err := body.Text(b, scene.Vec2{X: row.Origin.X + 14, Y: row.Origin.Y + 27}, r.label, text); err != nil {
			return nil, err
		}

		track := scene.Rect{Origin: scene.Vec2{X: row.Origin.X + row.Size.X - 58, Y: row.Origin.Y + 12}, Size: scene.Vec2{X: 44, Y: 20}}
		knobX := track.Origin.X + 2
		trackColor := muted
		if r.on {
			knobX = track.Origin.X + track.Size.X - 18
			trackColor = accent
		}
		b.Quad(track, scene.QuadStyle{Background: trackColor, CornerRadius: 10})
		b.PushLayer()
		b.Quad(scene.Rect{Origin: scene.Vec2{X: knobX, Y: track.Origin.Y + 2}, Size: scene.Vec2{X: 16, Y: 16}},
			scene.QuadStyle{Background: text, CornerRadius: 8})
		y += row.Size.Y + 10
	}

	// Footer: the same icon as a winding sprite and as its baked bitmap.
	b.PushLayer()
	footer := scene.Rect{Origin: scene.Vec2{X: win.Origin.X + 16, Y: win.Origin.Y + win.Size.Y - 56}, Size: scene.Vec2{X: win.Size.X - 32, Y: 40}}
	b.Quad(footer, scene.QuadStyle{
		Background:   color.RGBA8{R: 0xff, G: 0xb0, B: 0x3b, A: 0x30},
		Border:       scene.Border{Width: 3, Color: warn, Left: true},
		CornerRadius: 4,
	})
	vector := iconEntry
	vector.Winding = true
	b.Icon(scene.Rect{Origin: scene.Vec2{X: footer.Origin.X + 12, Y: footer.Origin.Y + 8}, Size: scene.Vec2{X: 24, Y: 24}}, vector, warn)
	b.Icon(scene.Rect{Origin: scene.Vec2{X: footer.Origin.X + 44, Y: footer.Origin.Y + 8}, Size: scene.Vec2{X: 24, Y: 24}}, iconEntry, warn)
	if _, err := body.Text(b, scene.Vec2{X: footer.Origin.X + 78, Y: footer.Origin.Y + 25}, "Changes apply to the next frame", text); err != nil {
		return nil, err
	}

	return b.Scene(), nil
}

// ring is a circle of diameter size with a concentric hole of half its size,
// the hole wound the other way.
func ring(size float64) *atlas.Path {
	p := atlas.NewPath()
	c := size / 2
	circle(p, c, c, size/2-1, 1)
	circle(p, c, c, size/4, -1)
	return p
}

// circle adds a closed circle of four cubic arcs. dir = -1 mirrors the y
// offsets, which reverses the winding.
func circle(p *atlas.Path, cx, cy, r, dir float64) {
	k := r * kappa
	p.MoveTo(cx+r, cy)
	p.CubeTo(cx+r, cy+dir*k, cx+k, cy+dir*r, cx, cy+dir*r)
	p.CubeTo(cx-k, cy+dir*r, cx-r, cy+dir*k, cx-r, cy)
	p.CubeTo(cx-r, cy-dir*k, cx-k, cy-dir*r, cx, cy-dir*r)
	p.CubeTo(cx+k, cy-dir*r, cx+r, cy-dir*k, cx+r, cy)
	p.Close()
}
