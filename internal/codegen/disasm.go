package codegen

import (
	"fmt"
	"strings"
)

// Disassemble renders a code object and everything nested in it as a
// human-readable listing, mainly for tests and debugging output.
func Disassemble(obj *CodeObject) string {
	var b strings.Builder
	disassembleInto(&b, obj)
	return b.String()
}

func disassembleInto(b *strings.Builder, obj *CodeObject) {
	fmt.Fprintf(b, "== %s (arity %d, max stack %d) ==\n", obj.Name, obj.Arity, obj.MaxStack)
	for offset := 0; offset < obj.Chunk.Len(); {
		offset = disassembleInstruction(b, obj, offset)
	}
	for _, nested := range obj.Nested {
		disassembleInto(b, nested)
	}
}

func disassembleInstruction(b *strings.Builder, obj *CodeObject, offset int) int {
	op := Opcode(obj.Chunk.Code[offset])
	name, ok := OpcodeNames[op]
	if !ok {
		fmt.Fprintf(b, "%04d UNKNOWN(%d)\n", offset, op)
		return offset + 1
	}
	fmt.Fprintf(b, "%04d %-14s", offset, name)

	switch op {
	case OP_CONST:
		idx := obj.Chunk.ReadU16(offset + 1)
		fmt.Fprintf(b, " %d (%s)\n", idx, obj.Constants[idx])
		return offset + 3

	case OP_GET_GLOBAL, OP_DEF_GLOBAL, OP_GET_FIELD:
		idx := obj.Chunk.ReadU16(offset + 1)
		fmt.Fprintf(b, " %d (%s)\n", idx, obj.Names[idx])
		return offset + 3

	case OP_GET_LOCAL, OP_GET_UPVALUE, OP_CALL, OP_COMPREHEND, OP_CLOSE_SCOPE:
		fmt.Fprintf(b, " %d\n", obj.Chunk.Code[offset+1])
		return offset + 2

	case OP_JUMP, OP_JUMP_IF_FALSE:
		dist := obj.Chunk.ReadU16(offset + 1)
		fmt.Fprintf(b, " -> %04d\n", offset+3+dist)
		return offset + 3

	case OP_MAKE_LIST, OP_MAKE_RECORD:
		fmt.Fprintf(b, " %d\n", obj.Chunk.ReadU16(offset+1))
		return offset + 3

	case OP_CALL_STATIC:
		impl := obj.Chunk.ReadU16(offset + 1)
		method := obj.Chunk.ReadU16(offset + 3)
		fmt.Fprintf(b, " impl %d %s/%d\n", impl, obj.Names[method], obj.Chunk.Code[offset+5])
		return offset + 6

	case OP_METHOD_VALUE:
		impl := obj.Chunk.ReadU16(offset + 1)
		method := obj.Chunk.ReadU16(offset + 3)
		fmt.Fprintf(b, " impl %d %s\n", impl, obj.Names[method])
		return offset + 5

	case OP_CALL_TRAIT:
		trait := obj.Chunk.ReadU16(offset + 1)
		method := obj.Chunk.ReadU16(offset + 3)
		fmt.Fprintf(b, " %s.%s/%d\n", obj.Names[trait], obj.Names[method], obj.Chunk.Code[offset+5])
		return offset + 6

	case OP_CLOSURE:
		idx := obj.Chunk.ReadU16(offset + 1)
		nested := obj.Nested[idx]
		fmt.Fprintf(b, " %d (%s)", idx, nested.Name)
		next := offset + 3
		for i := 0; i < nested.UpvalueCount; i++ {
			kind := "upvalue"
			if obj.Chunk.Code[next] == 1 {
				kind = "local"
			}
			fmt.Fprintf(b, " [%s %d]", kind, obj.Chunk.Code[next+1])
			next += 2
		}
		b.WriteByte('\n')
		return next

	default:
		b.WriteByte('\n')
		return offset + 1
	}
}
