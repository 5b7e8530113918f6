package atlas

import (
	"os"
	"path/filepath"
	"strings"
)

// Index maps lowercase atlas stems to image paths under a directory.
// PNG and TGA files take priority over JPEG for the same stem (alpha channel).
type Index struct {
	entries map[string]string // stem.lower() → full path
}

var atlasExts = map[string]int{
	".png":  2,
	".tga":  2,
	".jpg":  1,
	".jpeg": 1,
}

// BuildIndex scans dir and its subdirectories for atlas images.
func BuildIndex(dir string) *Index {
	idx := &Index{entries: make(map[string]string)}

	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		rank, ok := atlasExts[ext]
		if !ok {
			return nil
		}
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

		existing, exists := idx.entries[stem]
		if !exists || rank > atlasExts[strings.ToLower(filepath.Ext(existing))] {
			idx.entries[stem] = path
		}
		return nil
	})

	return idx
}

// ResolvePath returns the filesystem path for an atlas name, or ("", false).
// Directory prefixes and extensions in name are ignored.
func (idx *Index) ResolvePath(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	path, ok := idx.entries[stem]
	return path, ok
}

// Len returns the number of indexed atlases.
func (idx *Index) Len() int {
	return len(idx.entries)
}
