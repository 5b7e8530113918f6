package atlas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SidecarPath returns the path region file that belongs to an atlas image:
// "ui.png" → "ui.paths.yaml".
func SidecarPath(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".paths.yaml"
}

type sidecarFile struct {
	Paths []sidecarPath `yaml:"paths"`
}

type sidecarPath struct {
	// Region is x, y, width, height in texels.
	Region [4]int `yaml:"region,flow"`
	D      string `yaml:"d"`
}

// LoadSidecar reads path regions from a YAML sidecar and adds them to a.
// A missing file is not an error.
func LoadSidecar(path string, a *Atlas) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("atlas: read %s: %w", path, err)
	}
	var f sidecarFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("atlas: decode %s: %w", path, err)
	}
	for i, sp := range f.Paths {
		p, err := ParsePathData(sp.D)
		if err != nil {
			return fmt.Errorf("atlas: %s: path %d: %w", path, i, err)
		}
		r := sp.Region
		if _, err := a.AddPath(image.Rect(r[0], r[1], r[0]+r[2], r[1]+r[3]), p); err != nil {
			return fmt.Errorf("atlas: %s: path %d: %w", path, i, err)
		}
	}
	return nil
}

// SaveSidecar writes the path regions of a as YAML.
func SaveSidecar(path string, a *Atlas) error {
	var f sidecarFile
	for _, r := range a.paths {
		b := r.Bounds
		f.Paths = append(f.Paths, sidecarPath{
			Region: [4]int{b.Min.X, b.Min.Y, b.Dx(), b.Dy()},
			D:      r.path.String(),
		})
	}
	out, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("atlas: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("atlas: write %s: %w", path, err)
	}
	return nil
}

// ParsePathData parses SVG-style path data with absolute M, L, Q, C and Z
// commands. A command letter may be followed by several coordinate groups.
func ParsePathData(d string) (*Path, error) {
	toks := strings.FieldsFunc(d, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\t' || r == '\r'
	})
	toks = splitCommands(toks)

	p := NewPath()
	var cmd byte
	args := make([]float64, 0, 6)
	for i := 0; i < len(toks); {
		t := toks[i]
		if len(t) == 1 && strings.ContainsAny(t, "MLQCZ") {
			cmd = t[0]
			i++
			if cmd == 'Z' {
				p.Close()
			}
			continue
		}
		var n int
		switch cmd {
		case 'M', 'L':
			n = 2
		case 'Q':
			n = 4
		case 'C':
			n = 6
		default:
			return nil, fmt.Errorf("unexpected %q", t)
		}
		if i+n > len(toks) {
			return nil, fmt.Errorf("command %c: want %d numbers", cmd, n)
		}
		args = args[:0]
		for _, s := range toks[i : i+n] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("command %c: %w", cmd, err)
			}
			args = append(args, v)
		}
		i += n
		switch cmd {
		case 'M':
			p.MoveTo(args[0], args[1])
			// Further pairs after M are implicit line-tos.
			cmd = 'L'
		case 'L':
			p.LineTo(args[0], args[1])
		case 'Q':
			p.QuadTo(args[0], args[1], args[2], args[3])
		case 'C':
			p.CubeTo(args[0], args[1], args[2], args[3], args[4], args[5])
		}
	}
	return p, nil
}

// splitCommands separates command letters glued to numbers ("M10" → "M", "10").
func splitCommands(toks []string) []string {
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		for len(t) > 0 {
			if strings.ContainsAny(t[:1], "MLQCZ") {
				out = append(out, t[:1])
				t = t[1:]
				continue
			}
			j := strings.IndexAny(t, "MLQCZ")
			if j < 0 {
				out = append(out, t)
				break
			}
			out = append(out, t[:j])
			t = t[j:]
		}
	}
	return out
}

// String formats the flattened contours as path data.
func (p *Path) String() string {
	var sb strings.Builder
	for _, c := range p.contours {
		for i, pt := range c {
			if i == 0 {
				sb.WriteString("M")
			} else {
				sb.WriteString(" L")
			}
			sb.WriteString(" ")
			sb.WriteString(strconv.FormatFloat(pt.X, 'g', -1, 64))
			sb.WriteString(" ")
			sb.WriteString(strconv.FormatFloat(pt.Y, 'g', -1, 64))
		}
		if len(c) > 0 {
			sb.WriteString(" Z ")
		}
	}
	return strings.TrimSpace(sb.String())
}
