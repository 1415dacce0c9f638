package codegen

// Chunk is a flat instruction stream with parallel source position tables:
// Lines[i] and Columns[i] locate the source for the byte at Code[i].
type Chunk struct {
	Code    []byte
	Lines   []int
	Columns []int
}

func NewChunk() *Chunk {
	return &Chunk{
		Code:    make([]byte, 0, 256),
		Lines:   make([]int, 0, 256),
		Columns: make([]int, 0, 256),
	}
}

// Write appends one byte with its source position.
func (c *Chunk) Write(b byte, line, col int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
	c.Columns = append(c.Columns, col)
}

// WriteOp appends an opcode.
func (c *Chunk) WriteOp(op Opcode, line, col int) {
	c.Write(byte(op), line, col)
}

// WriteU16 appends a big-endian 16-bit operand.
func (c *Chunk) WriteU16(v int, line, col int) {
	c.Write(byte(v>>8), line, col)
	c.Write(byte(v), line, col)
}

// ReadU16 reads the 16-bit operand at offset.
func (c *Chunk) ReadU16(offset int) int {
	return int(c.Code[offset])<<8 | int(c.Code[offset+1])
}

// PatchU16 overwrites the 16-bit operand at offset.
func (c *Chunk) PatchU16(offset, v int) {
	c.Code[offset] = byte(v >> 8)
	c.Code[offset+1] = byte(v)
}

// Len returns the number of emitted bytes.
func (c *Chunk) Len() int { return len(c.Code) }
