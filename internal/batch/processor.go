package batch

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"uiraster/internal/atlas"
	"uiraster/internal/logx"
	"uiraster/internal/postprocess"
	"uiraster/internal/raster"
	"uiraster/internal/scene"
)

// Config holds all shared resources for a batch run.
type Config struct {
	SceneDir    string
	OutputDir   string
	Atlases     atlas.Resolver
	Assembler   *raster.Assembler
	Format      postprocess.Format
	Supersample int
	Workers     int
	// Progress receives a progress bar. nil disables it.
	Progress io.Writer
}

// Result holds the outcome of rendering one scene.
type Result struct {
	Scene    string
	Output   string
	Width    int
	Height   int
	Quads    int
	Sprites  int
	Duration time.Duration
	Success  bool
	Error    string
}

// FindScenes returns the scene files under dir in lexical order, skipping
// atlas path sidecars.
func FindScenes(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !scene.IsSceneFile(path) {
			return nil
		}
		// Atlas path sidecars share the extension.
		if strings.HasSuffix(strings.ToLower(path), ".paths.yaml") {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", dir, err)
	}
	return out, nil
}

// Run renders every scene with at most cfg.Workers scenes in flight. A
// failing scene is recorded in its Result and never stops the others. Once
// ctx is cancelled no new scenes are started; those never started report
// the context error.
func Run(ctx context.Context, cfg Config, scenes []string) []Result {
	results := make([]Result, len(scenes))
	for i, s := range scenes {
		results[i] = Result{Scene: s, Error: "not started"}
	}

	var bar *progressbar.ProgressBar
	if cfg.Progress != nil {
		bar = progressbar.NewOptions(len(scenes),
			progressbar.OptionSetWriter(cfg.Progress),
			progressbar.OptionSetDescription("rendering"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
		)
		defer bar.Finish()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range scenes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i] = processScene(cfg, scenes[i])
			if bar != nil {
				bar.Add(1)
			}
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		for i := range results {
			if !results[i].Success && results[i].Error == "not started" {
				results[i].Error = err.Error()
			}
		}
	}
	return results
}

// OutputPath maps a scene file to its image under outDir, keeping the
// scene's path relative to sceneDir.
func OutputPath(sceneDir, outDir, scenePath string, f postprocess.Format) string {
	rel, err := filepath.Rel(sceneDir, scenePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(scenePath)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(outDir, rel+f.Ext())
}

func processScene(cfg Config, path string) Result {
	start := time.Now()
	res := Result{Scene: path}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Duration = time.Since(start)
		logx.Logger().Warn("scene failed", "scene", path, "err", err)
		return res
	}

	sc, err := scene.Load(path)
	if err != nil {
		return fail(err)
	}
	res.Quads, res.Sprites = len(sc.Quads), len(sc.Sprites)

	var at *atlas.Atlas
	if sc.Atlas != "" && cfg.Atlases != nil {
		at, err = cfg.Atlases.Resolve(sc.Atlas)
		if err != nil {
			return fail(err)
		}
	}

	img, err := Render(cfg.Assembler, sc, at, cfg.Supersample)
	if err != nil {
		return fail(fmt.Errorf("batch: render %s: %w", path, err))
	}
	res.Width, res.Height = img.Rect.Dx(), img.Rect.Dy()

	out := OutputPath(cfg.SceneDir, cfg.OutputDir, path, cfg.Format)
	if err := postprocess.WriteFile(out, img, cfg.Format); err != nil {
		return fail(err)
	}
	res.Output = out
	res.Success = true
	res.Duration = time.Since(start)
	logx.Logger().Debug("scene rendered", "scene", path, "output", out, "took", res.Duration)
	return res
}

// Render draws sc into a straight-alpha image of the scene's viewport size.
// With supersample n > 1 the frame is drawn n times larger and filtered
// down.
func Render(asm *raster.Assembler, sc *scene.Scene, at *atlas.Atlas, supersample int) (*image.NRGBA, error) {
	u := sc.Uniforms
	if supersample <= 1 {
		fb, err := asm.Render(u, sc.Quads, sc.Sprites, at)
		if err != nil {
			return nil, err
		}
		return fb.ToNRGBA(), nil
	}

	// Validate at the requested size so errors do not mention the
	// enlarged viewport.
	if err := u.Validate(); err != nil {
		return nil, err
	}
	n := float32(supersample)
	big := u
	big.ViewportSize = scene.Vec2{X: u.ViewportSize.X * n, Y: u.ViewportSize.Y * n}
	big.Scale = u.Scale * n
	fb, err := asm.Render(big, sc.Quads, sc.Sprites, at)
	if err != nil {
		return nil, err
	}
	w := (fb.Width + supersample - 1) / supersample
	h := (fb.Height + supersample - 1) / supersample
	return postprocess.Unpremultiply(postprocess.Downsample(fb.ToRGBA(), w, h)), nil
}
