package scene

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"uiraster/internal/color"
	"uiraster/internal/mathutil"
)

// fileScene is the YAML form of a scene. Angles are degrees and colors are
// hex strings; everything else maps one to one onto the records.
type fileScene struct {
	Atlas    string       `yaml:"atlas,omitempty"`
	Viewport [2]float32   `yaml:"viewport"`
	Scale    float32      `yaml:"scale,omitempty"`
	Rotate   fileRotation `yaml:"rotate,omitempty"`
	FOV      float32      `yaml:"fov,omitempty"`
	Opacity  *float32     `yaml:"opacity,omitempty"`
	Quads    []fileQuad   `yaml:"quads,omitempty"`
	Sprites  []fileSprite `yaml:"sprites,omitempty"`
}

type fileRotation struct {
	X float32 `yaml:"x,omitempty"`
	Y float32 `yaml:"y,omitempty"`
	Z float32 `yaml:"z,omitempty"`
}

type fileBorder struct {
	Top    float32 `yaml:"top,omitempty"`
	Right  float32 `yaml:"right,omitempty"`
	Bottom float32 `yaml:"bottom,omitempty"`
	Left   float32 `yaml:"left,omitempty"`
}

type fileQuad struct {
	Origin       [2]float32 `yaml:"origin"`
	Size         [2]float32 `yaml:"size"`
	Background   hexColor   `yaml:"background,omitempty"`
	Border       fileBorder `yaml:"border,omitempty"`
	BorderColor  hexColor   `yaml:"border_color,omitempty"`
	CornerRadius float32    `yaml:"corner_radius,omitempty"`
	Z            float32    `yaml:"z,omitempty"`
}

type fileSprite struct {
	Origin      [2]float32 `yaml:"origin"`
	TargetSize  [2]float32 `yaml:"target_size"`
	SourceSize  [2]float32 `yaml:"source_size"`
	AtlasOrigin [2]float32 `yaml:"atlas_origin"`
	Color       *hexColor  `yaml:"color,omitempty"`
	Winding     bool       `yaml:"winding,omitempty"`
	Z           float32    `yaml:"z,omitempty"`
}

// hexColor is an RGBA8 written as "#rrggbbaa" in YAML.
type hexColor color.RGBA8

func (c *hexColor) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := color.ParseHex(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*c = hexColor(v)
	return nil
}

func (c hexColor) MarshalYAML() (interface{}, error) {
	return color.RGBA8(c).Hex(), nil
}

func (c hexColor) IsZero() bool {
	return c == hexColor{}
}

func vec(v [2]float32) Vec2 { return Vec2{v[0], v[1]} }
func pair(v Vec2) [2]float32 { return [2]float32{v.X, v.Y} }

func deg(rad float32) float32 { return float32(mathutil.Rad2Deg(float64(rad))) }
func rad(deg float32) float32 { return float32(mathutil.Deg2Rad(float64(deg))) }

func (f *fileScene) scene() *Scene {
	sc := &Scene{
		Atlas: f.Atlas,
		Uniforms: FrameUniforms{
			ViewportSize: vec(f.Viewport),
			Scale:        f.Scale,
			RotateX:      rad(f.Rotate.X),
			RotateY:      rad(f.Rotate.Y),
			RotateZ:      rad(f.Rotate.Z),
			FOV:          rad(f.FOV),
			Opacity:      1,
		},
	}
	if sc.Uniforms.Scale == 0 {
		sc.Uniforms.Scale = 1
	}
	if f.Opacity != nil {
		sc.Uniforms.Opacity = *f.Opacity
	}
	for _, q := range f.Quads {
		sc.Quads = append(sc.Quads, Quad{
			Origin:       vec(q.Origin),
			Size:         vec(q.Size),
			Background:   color.RGBA8(q.Background),
			BorderTop:    q.Border.Top,
			BorderRight:  q.Border.Right,
			BorderBottom: q.Border.Bottom,
			BorderLeft:   q.Border.Left,
			BorderColor:  color.RGBA8(q.BorderColor),
			CornerRadius: q.CornerRadius,
			Z:            q.Z,
		})
	}
	for _, s := range f.Sprites {
		tint := color.RGBA8{R: 255, G: 255, B: 255, A: 255}
		if s.Color != nil {
			tint = color.RGBA8(*s.Color)
		}
		sc.Sprites = append(sc.Sprites, Sprite{
			Origin:      vec(s.Origin),
			TargetSize:  vec(s.TargetSize),
			SourceSize:  vec(s.SourceSize),
			AtlasOrigin: vec(s.AtlasOrigin),
			Color:       tint,
			Winding:     s.Winding,
			Z:           s.Z,
		})
	}
	return sc
}

func toFile(sc *Scene) *fileScene {
	u := sc.Uniforms
	op := u.Opacity
	f := &fileScene{
		Atlas:    sc.Atlas,
		Viewport: pair(u.ViewportSize),
		Scale:    u.Scale,
		Rotate:   fileRotation{deg(u.RotateX), deg(u.RotateY), deg(u.RotateZ)},
		FOV:      deg(u.FOV),
		Opacity:  &op,
	}
	for _, q := range sc.Quads {
		f.Quads = append(f.Quads, fileQuad{
			Origin:       pair(q.Origin),
			Size:         pair(q.Size),
			Background:   hexColor(q.Background),
			Border:       fileBorder{q.BorderTop, q.BorderRight, q.BorderBottom, q.BorderLeft},
			BorderColor:  hexColor(q.BorderColor),
			CornerRadius: q.CornerRadius,
			Z:            q.Z,
		})
	}
	for _, s := range sc.Sprites {
		tint := hexColor(s.Color)
		f.Sprites = append(f.Sprites, fileSprite{
			Origin:      pair(s.Origin),
			TargetSize:  pair(s.TargetSize),
			SourceSize:  pair(s.SourceSize),
			AtlasOrigin: pair(s.AtlasOrigin),
			Color:       &tint,
			Winding:     s.Winding,
			Z:           s.Z,
		})
	}
	return f
}

// ParseYAML decodes a YAML scene.
func ParseYAML(data []byte) (*Scene, error) {
	var f fileScene
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	return f.scene(), nil
}

// MarshalYAML encodes sc in the YAML scene form.
func MarshalYAML(sc *Scene) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toFile(sc)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IsSceneFile reports whether path has a scene file extension.
func IsSceneFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".qsb":
		return true
	}
	return false
}

// Load reads a scene from a .yaml/.yml or .qsb file.
func Load(path string) (*Scene, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".qsb":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("scene: open %s: %w", path, err)
		}
		defer f.Close()
		sc, err := Decode(f)
		if err != nil {
			return nil, fmt.Errorf("scene: decode %s: %w", path, err)
		}
		return sc, nil
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("scene: read %s: %w", path, err)
		}
		sc, err := ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("scene: parse %s: %w", path, err)
		}
		return sc, nil
	default:
		return nil, fmt.Errorf("scene: unknown scene extension: %s", path)
	}
}

// Save writes sc to path, choosing the format by extension like Load.
func Save(path string, sc *Scene) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".qsb":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("scene: create %s: %w", path, err)
		}
		if err := Encode(f, sc); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case ".yaml", ".yml":
		data, err := MarshalYAML(sc)
		if err != nil {
			return fmt.Errorf("scene: marshal %s: %w", path, err)
		}
		return os.WriteFile(path, data, 0644)
	default:
		return fmt.Errorf("scene: unknown scene extension: %s", path)
	}
}
