package codegen

import (
	"fmt"
	"strconv"
)

// ConstKind tags the constant pool variants.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstString
)

// Constant is one constant pool entry.
type Constant struct {
	Kind  ConstKind
	Int   int64
	Float float64
	Str   string
}

func (c Constant) String() string {
	switch c.Kind {
	case ConstInt:
		return strconv.FormatInt(c.Int, 10)
	case ConstFloat:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	default:
		return strconv.Quote(c.Str)
	}
}

// key distinguishes constants for deduplication. The kind prefix keeps
// Int 1 and Float 1.0 apart.
func (c Constant) key() string {
	return fmt.Sprintf("%d:%s", c.Kind, c.String())
}

// TraitEntry is one row of the unit's resolved trait-method table, frozen
// from the scope context's implementation registry in registration order.
type TraitEntry struct {
	Trait  string
	Target string
	Index  int
}

// CodeObject is the compiled form of one subroutine (or the unit's
// top-level code). Constants and names are pooled with first-use-order
// deduplication, so emission order alone fixes the pools and two compiles
// of the same unit produce identical objects.
type CodeObject struct {
	Name  string
	File  string
	Arity int

	Chunk     *Chunk
	Constants []Constant
	Names     []string
	Nested    []*CodeObject

	// UpvalueCount is the length of the capture operand list of the
	// OP_CLOSURE instruction that instantiates this object.
	UpvalueCount int

	// MaxStack bounds the frame's stack: locals plus operand temporaries.
	// Execution of this object never needs more slots than this.
	MaxStack int

	// Traits is the unit's trait-method table; only the top-level object
	// carries it.
	Traits []TraitEntry

	constIndex map[string]int
	nameIndex  map[string]int
}

func NewCodeObject(name, file string) *CodeObject {
	return &CodeObject{
		Name:       name,
		File:       file,
		Chunk:      NewChunk(),
		constIndex: make(map[string]int),
		nameIndex:  make(map[string]int),
	}
}

// AddConstant interns a constant and returns its pool index.
func (o *CodeObject) AddConstant(c Constant) int {
	if idx, ok := o.constIndex[c.key()]; ok {
		return idx
	}
	idx := len(o.Constants)
	o.Constants = append(o.Constants, c)
	o.constIndex[c.key()] = idx
	return idx
}

// AddName interns a name and returns its pool index.
func (o *CodeObject) AddName(name string) int {
	if idx, ok := o.nameIndex[name]; ok {
		return idx
	}
	idx := len(o.Names)
	o.Names = append(o.Names, name)
	o.nameIndex[name] = idx
	return idx
}

// AddNested registers a nested code object and returns its index.
func (o *CodeObject) AddNested(nested *CodeObject) int {
	o.Nested = append(o.Nested, nested)
	return len(o.Nested) - 1
}
