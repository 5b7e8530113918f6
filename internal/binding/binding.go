// Package binding resolves the named inputs a rasterization stage needs to
// numbered slots, so the stages never hard-code a slot scheme. A Table says
// where each input of each stage lives; a Binder holds the resources a frame
// actually has and hands each stage the ones it declared.
package binding

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnbound reports a stage input with no resource bound to it.
var ErrUnbound = errors.New("binding: input not bound")

// Input names a resource by purpose.
type Input uint8

const (
	Vertices Input = iota
	Instances
	Uniforms
	Atlas
	AtlasSize
)

func (in Input) String() string {
	switch in {
	case Vertices:
		return "vertices"
	case Instances:
		return "instances"
	case Uniforms:
		return "uniforms"
	case Atlas:
		return "atlas"
	case AtlasSize:
		return "atlas_size"
	}
	return fmt.Sprintf("input(%d)", uint8(in))
}

// Phase is the part of a stage an input is visible to.
type Phase uint8

const (
	PhaseVertex Phase = iota
	PhaseFragment
)

func (p Phase) String() string {
	if p == PhaseFragment {
		return "fragment"
	}
	return "vertex"
}

// Slot is a binding index within one phase.
type Slot struct {
	Phase Phase
	Index uint32
}

func (s Slot) String() string {
	return fmt.Sprintf("%s:%d", s.Phase, s.Index)
}

// Stage declares the inputs a rasterization stage reads.
type Stage struct {
	Name   string
	Inputs []Input
}

var (
	// QuadStage draws rounded, bordered rectangles.
	QuadStage = Stage{Name: "quad", Inputs: []Input{Vertices, Instances, Uniforms}}
	// SpriteStage draws atlas-backed sprites.
	SpriteStage = Stage{Name: "sprite", Inputs: []Input{Vertices, Instances, Uniforms, AtlasSize, Atlas}}
)

type key struct {
	stage string
	input Input
}

// Table maps (stage, input) pairs to slots. The zero value is empty.
type Table struct {
	slots map[key]Slot
}

// DefaultTable returns the slot layout of the GPU pipeline: quad vertices,
// instances and uniforms at vertex slots 0, 1 and 2; sprite vertices,
// instances, uniforms and atlas size at vertex slots 0 through 3; and the
// sprite atlas texture at fragment slot 0.
func DefaultTable() *Table {
	t := &Table{}
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(t.Assign(QuadStage.Name, Vertices, Slot{PhaseVertex, 0}))
	must(t.Assign(QuadStage.Name, Instances, Slot{PhaseVertex, 1}))
	must(t.Assign(QuadStage.Name, Uniforms, Slot{PhaseVertex, 2}))
	must(t.Assign(SpriteStage.Name, Vertices, Slot{PhaseVertex, 0}))
	must(t.Assign(SpriteStage.Name, Instances, Slot{PhaseVertex, 1}))
	must(t.Assign(SpriteStage.Name, Uniforms, Slot{PhaseVertex, 2}))
	must(t.Assign(SpriteStage.Name, AtlasSize, Slot{PhaseVertex, 3}))
	must(t.Assign(SpriteStage.Name, Atlas, Slot{PhaseFragment, 0}))
	return t
}

// Assign places input of stage at slot. Two inputs of one stage may not
// share a slot.
func (t *Table) Assign(stage string, in Input, s Slot) error {
	if t.slots == nil {
		t.slots = make(map[key]Slot)
	}
	for k, other := range t.slots {
		if k.stage == stage && k.input != in && other == s {
			return fmt.Errorf("binding: %s: slot %s already holds %s", stage, s, k.input)
		}
	}
	t.slots[key{stage, in}] = s
	return nil
}

// Slot returns where input of stage is bound.
func (t *Table) Slot(stage string, in Input) (Slot, bool) {
	s, ok := t.slots[key{stage, in}]
	return s, ok
}

// Binder collects the resources of one frame.
type Binder struct {
	table *Table
	res   map[Input]any
}

// NewBinder returns a binder resolving through t, or DefaultTable if t is nil.
func NewBinder(t *Table) *Binder {
	if t == nil {
		t = DefaultTable()
	}
	return &Binder{table: t, res: make(map[Input]any)}
}

// Bind makes v available as in. Binding nil unbinds.
func (b *Binder) Bind(in Input, v any) {
	if v == nil {
		delete(b.res, in)
		return
	}
	b.res[in] = v
}

// Resolve returns the resources stage s declared, keyed by slot. Every
// declared input must have a slot in the table and a bound resource;
// otherwise the error wraps ErrUnbound and names the input.
func (b *Binder) Resolve(s Stage) (*Bound, error) {
	bd := &Bound{Stage: s.Name, slots: make(map[Slot]any, len(s.Inputs)), table: b.table}
	for _, in := range s.Inputs {
		slot, ok := b.table.Slot(s.Name, in)
		if !ok {
			return nil, fmt.Errorf("binding: %s: %s has no slot: %w", s.Name, in, ErrUnbound)
		}
		v, ok := b.res[in]
		if !ok {
			return nil, &UnboundError{Stage: s.Name, Input: in, Slot: slot}
		}
		bd.slots[slot] = v
	}
	return bd, nil
}

// UnboundError names the input a stage could not resolve.
type UnboundError struct {
	Stage string
	Input Input
	Slot  Slot
}

func (e *UnboundError) Error() string {
	return fmt.Sprintf("binding: %s: %s (slot %s) not bound", e.Stage, e.Input, e.Slot)
}

func (e *UnboundError) Unwrap() error {
	return ErrUnbound
}

// Bound is the resolved resource set of one stage.
type Bound struct {
	Stage string
	slots map[Slot]any
	table *Table
}

// At returns the resource at slot s.
func (bd *Bound) At(s Slot) (any, bool) {
	v, ok := bd.slots[s]
	return v, ok
}

// Slots returns the occupied slots in phase and index order.
func (bd *Bound) Slots() []Slot {
	out := make([]Slot, 0, len(bd.slots))
	for s := range bd.slots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Phase != out[j].Phase {
			return out[i].Phase < out[j].Phase
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// Get returns the resource bound for in, converted to T.
func Get[T any](bd *Bound, in Input) (T, bool) {
	var zero T
	s, ok := bd.table.Slot(bd.Stage, in)
	if !ok {
		return zero, false
	}
	v, ok := bd.slots[s].(T)
	if !ok {
		return zero, false
	}
	return v, true
}
