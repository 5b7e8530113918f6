package scene

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"uiraster/internal/color"
)

// Record sizes of the fixed binary layout. Every field is little-endian;
// float pairs are 8-byte aligned like the GPU-side structs they mirror.
const (
	UniformsSize = 32
	QuadSize     = 48
	SpriteSize   = 48
)

// Container constants for .qsb scene files.
const (
	Magic   = "QSB1"
	Version = 1

	headerSize = 4 + 2 + 2 + 4 + 4 + 2
	maxAtlas   = 1 << 12
)

var (
	ErrBadMagic   = errors.New("scene: not a QSB scene")
	ErrBadVersion = errors.New("scene: unsupported QSB version")
)

var le = binary.LittleEndian

func putF32(b []byte, v float32) { le.PutUint32(b, math.Float32bits(v)) }
func getF32(b []byte) float32    { return math.Float32frombits(le.Uint32(b)) }

func putVec(b []byte, v Vec2) {
	putF32(b, v.X)
	putF32(b[4:], v.Y)
}

func getVec(b []byte) Vec2 {
	return Vec2{getF32(b), getF32(b[4:])}
}

func putColor(b []byte, c color.RGBA8) {
	b[0], b[1], b[2], b[3] = c.R, c.G, c.B, c.A
}

func getColor(b []byte) color.RGBA8 {
	return color.RGBA8{R: b[0], G: b[1], B: b[2], A: b[3]}
}

// MarshalBinary encodes u into its 32-byte record.
func (u FrameUniforms) MarshalBinary() ([]byte, error) {
	b := make([]byte, UniformsSize)
	putVec(b[0:], u.ViewportSize)
	putF32(b[8:], u.Scale)
	putF32(b[12:], u.RotateX)
	putF32(b[16:], u.RotateY)
	putF32(b[20:], u.RotateZ)
	putF32(b[24:], u.FOV)
	putF32(b[28:], u.Opacity)
	return b, nil
}

// UnmarshalBinary decodes a 32-byte uniforms record.
func (u *FrameUniforms) UnmarshalBinary(b []byte) error {
	if len(b) < UniformsSize {
		return fmt.Errorf("scene: uniforms record: %w", io.ErrUnexpectedEOF)
	}
	*u = FrameUniforms{
		ViewportSize: getVec(b[0:]),
		Scale:        getF32(b[8:]),
		RotateX:      getF32(b[12:]),
		RotateY:      getF32(b[16:]),
		RotateZ:      getF32(b[20:]),
		FOV:          getF32(b[24:]),
		Opacity:      getF32(b[28:]),
	}
	return nil
}

// MarshalBinary encodes q into its 48-byte record.
func (q Quad) MarshalBinary() ([]byte, error) {
	b := make([]byte, QuadSize)
	putVec(b[0:], q.Origin)
	putVec(b[8:], q.Size)
	putColor(b[16:], q.Background)
	putF32(b[20:], q.BorderTop)
	putF32(b[24:], q.BorderRight)
	putF32(b[28:], q.BorderBottom)
	putF32(b[32:], q.BorderLeft)
	putColor(b[36:], q.BorderColor)
	putF32(b[40:], q.CornerRadius)
	putF32(b[44:], q.Z)
	return b, nil
}

// UnmarshalBinary decodes a 48-byte quad record.
func (q *Quad) UnmarshalBinary(b []byte) error {
	if len(b) < QuadSize {
		return fmt.Errorf("scene: quad record: %w", io.ErrUnexpectedEOF)
	}
	*q = Quad{
		Origin:       getVec(b[0:]),
		Size:         getVec(b[8:]),
		Background:   getColor(b[16:]),
		BorderTop:    getF32(b[20:]),
		BorderRight:  getF32(b[24:]),
		BorderBottom: getF32(b[28:]),
		BorderLeft:   getF32(b[32:]),
		BorderColor:  getColor(b[36:]),
		CornerRadius: getF32(b[40:]),
		Z:            getF32(b[44:]),
	}
	return nil
}

// MarshalBinary encodes s into its 48-byte record. Bytes 37-39 and 44-47 are
// padding and always zero.
func (s Sprite) MarshalBinary() ([]byte, error) {
	b := make([]byte, SpriteSize)
	putVec(b[0:], s.Origin)
	putVec(b[8:], s.TargetSize)
	putVec(b[16:], s.SourceSize)
	putVec(b[24:], s.AtlasOrigin)
	putColor(b[32:], s.Color)
	if s.Winding {
		b[36] = 1
	}
	putF32(b[40:], s.Z)
	return b, nil
}

// UnmarshalBinary decodes a 48-byte sprite record. Any non-zero winding byte
// counts as set.
func (s *Sprite) UnmarshalBinary(b []byte) error {
	if len(b) < SpriteSize {
		return fmt.Errorf("scene: sprite record: %w", io.ErrUnexpectedEOF)
	}
	*s = Sprite{
		Origin:      getVec(b[0:]),
		TargetSize:  getVec(b[8:]),
		SourceSize:  getVec(b[16:]),
		AtlasOrigin: getVec(b[24:]),
		Color:       getColor(b[32:]),
		Winding:     b[36] != 0,
		Z:           getF32(b[40:]),
	}
	return nil
}

// Encode writes sc as a QSB container.
func Encode(w io.Writer, sc *Scene) error {
	if len(sc.Atlas) > maxAtlas {
		return fmt.Errorf("scene: atlas name too long (%d bytes)", len(sc.Atlas))
	}
	bw := bufio.NewWriter(w)

	hdr := make([]byte, headerSize)
	copy(hdr, Magic)
	le.PutUint16(hdr[4:], Version)
	le.PutUint16(hdr[6:], 0)
	le.PutUint32(hdr[8:], uint32(len(sc.Quads)))
	le.PutUint32(hdr[12:], uint32(len(sc.Sprites)))
	le.PutUint16(hdr[16:], uint16(len(sc.Atlas)))
	bw.Write(hdr)
	bw.WriteString(sc.Atlas)

	rec, _ := sc.Uniforms.MarshalBinary()
	bw.Write(rec)
	for _, q := range sc.Quads {
		rec, _ = q.MarshalBinary()
		bw.Write(rec)
	}
	for _, s := range sc.Sprites {
		rec, _ = s.MarshalBinary()
		bw.Write(rec)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("scene: write: %w", err)
	}
	return nil
}

// Decode reads a QSB container.
func Decode(r io.Reader) (*Scene, error) {
	br := bufio.NewReader(r)

	hdr := make([]byte, headerSize)
	if _, err := io.ReadFull(br, hdr); err != nil {
		return nil, fmt.Errorf("scene: header: %w", unexpected(err))
	}
	if string(hdr[:4]) != Magic {
		return nil, ErrBadMagic
	}
	if v := le.Uint16(hdr[4:]); v != Version {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, v)
	}
	nQuads := le.Uint32(hdr[8:])
	nSprites := le.Uint32(hdr[12:])
	nameLen := le.Uint16(hdr[16:])
	if int(nameLen) > maxAtlas {
		return nil, fmt.Errorf("scene: atlas name too long (%d bytes)", nameLen)
	}

	name := make([]byte, nameLen)
	if _, err := io.ReadFull(br, name); err != nil {
		return nil, fmt.Errorf("scene: atlas name: %w", unexpected(err))
	}
	sc := &Scene{Atlas: string(name)}

	rec := make([]byte, UniformsSize)
	if _, err := io.ReadFull(br, rec); err != nil {
		return nil, fmt.Errorf("scene: uniforms: %w", unexpected(err))
	}
	sc.Uniforms.UnmarshalBinary(rec)

	rec = make([]byte, QuadSize)
	for i := uint32(0); i < nQuads; i++ {
		if _, err := io.ReadFull(br, rec); err != nil {
			return nil, fmt.Errorf("scene: quad %d: %w", i, unexpected(err))
		}
		var q Quad
		q.UnmarshalBinary(rec)
		sc.Quads = append(sc.Quads, q)
	}

	rec = make([]byte, SpriteSize)
	for i := uint32(0); i < nSprites; i++ {
		if _, err := io.ReadFull(br, rec); err != nil {
			return nil, fmt.Errorf("scene: sprite %d: %w", i, unexpected(err))
		}
		var s Sprite
		s.UnmarshalBinary(rec)
		sc.Sprites = append(sc.Sprites, s)
	}

	return sc, nil
}

// unexpected maps a clean EOF in the middle of a container to
// io.ErrUnexpectedEOF; the container is never allowed to end early.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
