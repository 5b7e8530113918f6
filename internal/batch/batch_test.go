package batch

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uiraster/internal/atlas"
	"uiraster/internal/color"
	"uiraster/internal/postprocess"
	"uiraster/internal/raster"
	"uiraster/internal/scene"
)

func testScene(atlasName string) *scene.Scene {
	sc := &scene.Scene{
		Atlas:    atlasName,
		Uniforms: scene.DefaultUniforms(32, 24),
		Quads: []scene.Quad{{
			Origin:       scene.Vec2{X: 2, Y: 2},
			Size:         scene.Vec2{X: 20, Y: 16},
			Background:   color.RGBA8{R: 30, G: 90, B: 200, A: 255},
			BorderTop:    2,
			BorderColor:  color.RGBA8{R: 255, G: 255, B: 255, A: 255},
			CornerRadius: 4,
		}},
	}
	if atlasName != "" {
		sc.Sprites = []scene.Sprite{{
			Origin:     scene.Vec2{X: 20, Y: 10},
			TargetSize: scene.Vec2{X: 8, Y: 8},
			SourceSize: scene.Vec2{X: 4, Y: 4},
			Color:      color.RGBA8{R: 255, G: 255, B: 255, A: 255},
			Z:          -1,
		}}
	}
	return sc
}

func setup(t *testing.T) (string, Config) {
	t.Helper()
	dir := t.TempDir()
	scenes := filepath.Join(dir, "scenes")
	require.NoError(t, os.MkdirAll(filepath.Join(scenes, "sub"), 0o755))

	f, err := os.Create(filepath.Join(scenes, "ui.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 8, 8))))
	require.NoError(t, f.Close())

	require.NoError(t, scene.Save(filepath.Join(scenes, "a.yaml"), testScene("ui")))
	require.NoError(t, scene.Save(filepath.Join(scenes, "sub", "b.qsb"), testScene("")))

	return dir, Config{
		SceneDir:  scenes,
		OutputDir: filepath.Join(dir, "out"),
		Atlases:   atlas.NewCache(atlas.BuildIndex(scenes)),
		Assembler: raster.NewAssembler(raster.FrameOptions{Workers: 2}),
		Format:    postprocess.FormatPNG,
		Workers:   2,
	}
}

func TestRunRendersScenes(t *testing.T) {
	_, cfg := setup(t)
	scenes, err := FindScenes(cfg.SceneDir)
	require.NoError(t, err)
	require.Len(t, scenes, 2)

	results := Run(context.Background(), cfg, scenes)
	require.Len(t, results, 2)
	for _, r := range results {
		require.True(t, r.Success, r.Error)
		assert.FileExists(t, r.Output)
		assert.Equal(t, 32, r.Width)
		assert.Equal(t, 24, r.Height)
	}
	assert.Equal(t, filepath.Join(cfg.OutputDir, "a.png"), results[0].Output)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "sub", "b.png"), results[1].Output)
	assert.Equal(t, 1, results[0].Sprites)

	manifest := filepath.Join(cfg.OutputDir, "manifest.json")
	require.NoError(t, WriteManifest(manifest, results))
	raw, err := os.ReadFile(manifest)
	require.NoError(t, err)
	var entries []ManifestEntry
	require.NoError(t, json.Unmarshal(raw, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "sub/b.png", entries[1].Image)
}

func TestRunKeepsGoingAfterFailure(t *testing.T) {
	_, cfg := setup(t)
	bad := filepath.Join(cfg.SceneDir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("viewport: [0, 0]\n"), 0o644))
	missing := filepath.Join(cfg.SceneDir, "missing-atlas.yaml")
	require.NoError(t, scene.Save(missing, testScene("nope")))

	scenes, err := FindScenes(cfg.SceneDir)
	require.NoError(t, err)
	results := Run(context.Background(), cfg, scenes)

	var ok, failed int
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			failed++
			assert.NotEmpty(t, r.Error)
		}
	}
	assert.Equal(t, 2, ok)
	assert.Equal(t, 2, failed)
}

func TestRunCancelled(t *testing.T) {
	_, cfg := setup(t)
	scenes, err := FindScenes(cfg.SceneDir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, r := range Run(ctx, cfg, scenes) {
		assert.False(t, r.Success)
		assert.Equal(t, context.Canceled.Error(), r.Error)
	}
}

func TestRenderSupersample(t *testing.T) {
	sc := testScene("")
	asm := raster.NewAssembler(raster.FrameOptions{})

	img, err := Render(asm, sc, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 24), img.Rect)
	// The quad interior is opaque at any sampling rate.
	assert.Equal(t, uint8(255), img.NRGBAAt(12, 10).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(30, 22).A)

	bad := testScene("")
	bad.Uniforms.Scale = 0
	_, err = Render(asm, bad, nil, 2)
	assert.ErrorIs(t, err, scene.ErrInvalidScale)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "x", "y.webp"),
		OutputPath("in", "out", filepath.Join("in", "x", "y.yaml"), postprocess.FormatWebP))
	assert.Equal(t, filepath.Join("out", "z.png"),
		OutputPath("in", "out", filepath.Join("elsewhere", "z.qsb"), postprocess.FormatPNG))
}
