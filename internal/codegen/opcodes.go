// Package codegen emits stack bytecode from the typed tree. Emission is
// deterministic: compiling the same unit twice yields byte-identical code
// objects, and every code object carries a static upper bound on the
// operand stack it needs.
package codegen

// Opcode is a single instruction.
type Opcode byte

const (
	// Stack and constants.
	OP_CONST Opcode = iota // push constant: u16 pool index
	OP_TRUE                // push true
	OP_FALSE               // push false
	OP_UNIT                // push unit
	OP_POP                 // discard top of stack

	// Bindings.
	OP_GET_LOCAL   // push local: u8 slot
	OP_GET_UPVALUE // push captured binding: u8 index
	OP_GET_GLOBAL  // push global: u16 name index
	OP_DEF_GLOBAL  // pop value, define global: u16 name index

	// Control flow.
	OP_JUMP          // unconditional forward jump: u16 distance
	OP_JUMP_IF_FALSE // pop condition, jump if false: u16 distance

	// Calls.
	OP_CALL         // call closure below argc args: u8 argc
	OP_CALL_STATIC  // call resolved trait impl: u16 impl, u16 method name, u8 argc
	OP_CALL_TRAIT   // call through trait table: u16 trait name, u16 method name, u8 argc
	OP_METHOD_VALUE // push resolved trait impl method as a value: u16 impl, u16 method name
	OP_RETURN       // return top of stack from the current frame
	OP_HALT         // stop the unit's top-level code

	// Closures.
	OP_CLOSURE // push closure: u16 nested object, then u8 pairs (isLocal, index)

	// Data.
	OP_MAKE_LIST   // pop u16 elements, push list
	OP_MAKE_RECORD // pop u16 (name const, value) pairs, push record
	OP_GET_FIELD   // pop record, push field: u16 name index
	OP_COMPREHEND  // pop body closure[, filter closure], source list, push list: u8 hasFilter

	// Built-in primitives.
	OP_LEN    // pop list, push length
	OP_PRINT  // pop value, write it, push unit
	OP_READ   // read a line, push string
	OP_UPDATE // pop value, index, list, store in place, push unit

	// Scope exit: u8 n, pop n locals below the result.
	OP_CLOSE_SCOPE
)

// OpcodeNames maps opcodes to their mnemonic for disassembly.
var OpcodeNames = map[Opcode]string{
	OP_CONST: "CONST",
	OP_TRUE:  "TRUE",
	OP_FALSE: "FALSE",
	OP_UNIT:  "UNIT",
	OP_POP:   "POP",

	OP_GET_LOCAL:   "GET_LOCAL",
	OP_GET_UPVALUE: "GET_UPVALUE",
	OP_GET_GLOBAL:  "GET_GLOBAL",
	OP_DEF_GLOBAL:  "DEF_GLOBAL",

	OP_JUMP:          "JUMP",
	OP_JUMP_IF_FALSE: "JUMP_IF_FALSE",

	OP_CALL:         "CALL",
	OP_CALL_STATIC:  "CALL_STATIC",
	OP_CALL_TRAIT:   "CALL_TRAIT",
	OP_METHOD_VALUE: "METHOD_VALUE",
	OP_RETURN:       "RETURN",
	OP_HALT:         "HALT",

	OP_CLOSURE: "CLOSURE",

	OP_MAKE_LIST:   "MAKE_LIST",
	OP_MAKE_RECORD: "MAKE_RECORD",
	OP_GET_FIELD:   "GET_FIELD",
	OP_COMPREHEND:  "COMPREHEND",

	OP_LEN:    "LEN",
	OP_PRINT:  "PRINT",
	OP_READ:   "READ",
	OP_UPDATE: "UPDATE",

	OP_CLOSE_SCOPE: "CLOSE_SCOPE",
}
