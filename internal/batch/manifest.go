package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestEntry represents one rendered scene in the output manifest.
type ManifestEntry struct {
	Scene   string `json:"scene"`
	Image   string `json:"image"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Quads   int    `json:"quads"`
	Sprites int    `json:"sprites"`
}

// WriteManifest writes manifest.json listing the successful results. Image
// paths are relative to the manifest's directory.
func WriteManifest(path string, results []Result) error {
	dir := filepath.Dir(path)
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		img, err := filepath.Rel(dir, r.Output)
		if err != nil {
			img = r.Output
		}
		entries = append(entries, ManifestEntry{
			Scene:   r.Scene,
			Image:   filepath.ToSlash(img),
			Width:   r.Width,
			Height:  r.Height,
			Quads:   r.Quads,
			Sprites: r.Sprites,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode manifest: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("batch: write %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: write %s: %w", path, err)
	}
	return nil
}
