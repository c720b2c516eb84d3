package bytecode

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// OperandWidth is the byte width of a serialized operand: one machine
// word on a 64-bit target. The image format is not portable across
// hosts of a different word size.
const OperandWidth = 8

// WriteBinary writes the packed bytecode image: an opcode byte
// followed, when the opcode takes one, by the operand as a
// little-endian word.
func WriteBinary(w io.Writer, instructions []Instruction) error {
	bw := bufio.NewWriter(w)
	var word [OperandWidth]byte
	for _, in := range instructions {
		if err := bw.WriteByte(byte(in.Op)); err != nil {
			return err
		}
		if !in.Op.HasOperand() {
			continue
		}
		binary.LittleEndian.PutUint64(word[:], in.Operand)
		if _, err := bw.Write(word[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadBinary decodes a bytecode image produced by WriteBinary on a
// host of the same word size. Truncated input is an error.
func ReadBinary(r io.Reader) ([]Instruction, error) {
	var instructions []Instruction

	br := bufio.NewReader(r)
	var word [OperandWidth]byte
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return instructions, nil
		}
		if err != nil {
			return nil, err
		}

		op := Opcode(b)
		if !op.Valid() {
			return nil, fmt.Errorf("instruction %d: unknown opcode byte 0x%02x", len(instructions), b)
		}

		if !op.HasOperand() {
			instructions = append(instructions, Inst(op))
			continue
		}

		if _, err := io.ReadFull(br, word[:]); err != nil {
			return nil, fmt.Errorf("instruction %d: truncated operand for %s", len(instructions), op)
		}
		instructions = append(instructions, InstN(op, binary.LittleEndian.Uint64(word[:])))
	}
}
