package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"uiraster/internal/atlas"
	"uiraster/internal/batch"
	"uiraster/internal/config"
	"uiraster/internal/logx"
	"uiraster/internal/raster"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json or config.toml")
	sceneDir := flag.String("scenes", "", "Scene directory or single scene file (default: .)")
	atlasDir := flag.String("atlases", "", "Atlas directory (default: scene directory)")
	outputDir := flag.String("output", "", "Output directory (default: <scenes>/renders)")
	format := flag.String("format", "", "Output format: webp or png (default: webp)")
	supersample := flag.Int("supersample", 0, "Supersampling factor (default: 1)")
	workers := flag.Int("workers", 0, "Number of scenes rendered at once (default: NumCPU)")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	logx.SetLogger(logx.NewText(os.Stderr, *verbose))

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// A single scene file renders next to its directory.
	var single string
	if *sceneDir != "" {
		if fi, err := os.Stat(*sceneDir); err == nil && !fi.IsDir() {
			single = *sceneDir
			*sceneDir = filepath.Dir(*sceneDir)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		SceneDir:    *sceneDir,
		AtlasDir:    *atlasDir,
		OutputDir:   *outputDir,
		Format:      *format,
		Supersample: *supersample,
		Workers:     *workers,
	})

	outFormat, err := cfg.OutputFormat()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	frameOpts, err := cfg.FrameOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	scenes := []string{single}
	if single == "" {
		scenes, err = batch.FindScenes(cfg.SceneDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing scenes: %v\n", err)
			os.Exit(1)
		}
	}
	if len(scenes) == 0 {
		fmt.Println("No scenes to render.")
		os.Exit(0)
	}

	// Build atlas index
	atlasIndex := atlas.BuildIndex(cfg.AtlasDir)
	atlasCache := atlas.NewCache(atlasIndex)
	fmt.Printf("Atlases: %d indexed\n", atlasIndex.Len())

	fmt.Printf("UI raster → %s\n", outFormat)
	fmt.Printf("Scenes: %d, Workers: %d, Supersample: %d\n", len(scenes), cfg.Workers, cfg.Supersample)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()

	// Run batch
	batchCfg := batch.Config{
		SceneDir:    cfg.SceneDir,
		OutputDir:   cfg.OutputDir,
		Atlases:     atlasCache,
		Assembler:   raster.NewAssembler(frameOpts),
		Format:      outFormat,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
		Progress:    os.Stderr,
	}

	results := batch.Run(ctx, batchCfg, scenes)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errs []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errs = append(errs, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(scenes))

	if len(errs) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		for _, e := range errs[:min(len(errs), 20)] {
			fmt.Printf("  %s: %s\n", e.Scene, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
