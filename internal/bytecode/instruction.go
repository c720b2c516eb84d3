package bytecode

import (
	"fmt"
	"strconv"
)

// Instruction is one stack-VM instruction. The operand's meaning
// depends on the opcode: constant value, local index, string-pool
// index, absolute instruction index, or function-table index. For
// opcodes without an operand it is zero and not serialized.
type Instruction struct {
	Op      Opcode
	Operand uint64
}

// Inst constructs an operand-less instruction.
func Inst(op Opcode) Instruction {
	return Instruction{Op: op}
}

// InstN constructs an instruction with an operand.
func InstN(op Opcode, operand uint64) Instruction {
	return Instruction{Op: op, Operand: operand}
}

// PushI32 constructs a PUSH_I32 whose operand is the integer
// sign-extended to the operand word, preserving the bit pattern of
// negative values.
func PushI32(v int32) Instruction {
	return Instruction{Op: PUSH_I32, Operand: uint64(int64(v))}
}

// String renders the instruction as one listing line.
func (in Instruction) String() string {
	if in.Op.HasOperand() {
		return fmt.Sprintf("%s %s", in.Op, strconv.FormatUint(in.Operand, 10))
	}
	return in.Op.String()
}
