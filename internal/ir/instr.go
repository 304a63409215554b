package ir

import "fmt"

// OperandKind discriminates the three kinds of instruction reads.
type OperandKind uint8

const (
	OperandUndef OperandKind = iota // no incoming value
	OperandTemp                     // reads an SSA temporary
	OperandConst                    // inline constant
)

// Operand is a single read slot of an instruction.
type Operand struct {
	Kind  OperandKind
	temp  Temp
	Const uint64
}

// TempOperand returns an operand reading t. A zero-ID temp yields an
// undefined operand carrying t's register class.
func TempOperand(t Temp) Operand {
	if !t.IsValid() {
		return UndefOperand(t.RC)
	}
	return Operand{Kind: OperandTemp, temp: t}
}

// UndefOperand returns an explicitly undefined operand of class rc.
func UndefOperand(rc RegClass) Operand {
	return Operand{Kind: OperandUndef, temp: Temp{RC: rc}}
}

// ConstOperand returns an inline-constant operand.
func ConstOperand(v uint64) Operand {
	return Operand{Kind: OperandConst, Const: v}
}

// IsTemp reports whether the operand reads a temporary.
func (o Operand) IsTemp() bool { return o.Kind == OperandTemp }

// IsUndefined reports whether the operand carries no incoming value.
func (o Operand) IsUndefined() bool { return o.Kind == OperandUndef }

// Temp returns the temporary read by the operand. For undefined operands
// this is the zero-ID temp retaining the operand's register class.
func (o Operand) Temp() Temp { return o.temp }

// SetTemp rewrites the operand in place to read t, preserving the
// undefined encoding when t is the sentinel.
func (o *Operand) SetTemp(t Temp) {
	*o = TempOperand(t)
}

// String returns the textual form of the operand.
func (o Operand) String() string {
	switch o.Kind {
	case OperandTemp:
		return o.temp.String()
	case OperandConst:
		return fmt.Sprintf("$%d", o.Const)
	default:
		return fmt.Sprintf("undef:%s", o.temp.RC)
	}
}

// Definition is a single write slot of an instruction.
type Definition struct {
	Temp Temp
}

// String returns the textual form of the definition (e.g. "%5:s1").
func (d Definition) String() string {
	return fmt.Sprintf("%%%d:%s", d.Temp.ID, d.Temp.RC)
}

// Instruction is a single IR instruction: an opcode with ordered reads
// (Operands) and writes (Defs).
type Instruction struct {
	Op       Op
	Operands []Operand
	Defs     []Definition
}

// NewInstruction returns an instruction with numOperands undefined operand
// slots and numDefs zero definition slots.
func NewInstruction(op Op, numOperands, numDefs int) *Instruction {
	return &Instruction{
		Op:       op,
		Operands: make([]Operand, numOperands),
		Defs:     make([]Definition, numDefs),
	}
}

// String returns the textual form of the instruction.
func (in *Instruction) String() string {
	s := ""
	for i, d := range in.Defs {
		if i > 0 {
			s += ", "
		}
		s += d.String()
	}
	if len(in.Defs) > 0 {
		s += " = "
	}
	s += in.Op.String()
	for _, o := range in.Operands {
		s += " " + o.String()
	}
	return s
}
