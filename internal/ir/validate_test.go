package ir

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestValidateOK(t *testing.T) {
	p := buildSample(t)
	assert.NilError(t, Validate(p))
}

func TestValidateEdgeAsymmetry(t *testing.T) {
	p := NewProgram("asym")
	p.NewBlock(KindTopLevel)
	p.NewBlock(0)
	// Successor without the matching predecessor entry.
	p.Blocks[0].LogicalSuccs = []int{1}
	ComputeDoms(p)

	err := Validate(p)
	assert.ErrorContains(t, err, "does not list b0 as predecessor")
}

func TestValidatePhiOperandCount(t *testing.T) {
	p := buildSample(t)
	phi := p.Blocks[3].Instructions[0]
	phi.Operands = phi.Operands[:1]

	err := Validate(p)
	assert.ErrorContains(t, err, "has 1 operands but block has 2 logical predecessors")
}

func TestValidatePhiAfterNonPhi(t *testing.T) {
	p := buildSample(t)
	b3 := p.Blocks[3]
	// Move the phi behind the store.
	b3.Instructions[0], b3.Instructions[1] = b3.Instructions[1], b3.Instructions[0]

	err := Validate(p)
	assert.ErrorContains(t, err, "after a non-phi instruction")
}

func TestValidateBrokenDominance(t *testing.T) {
	p := buildSample(t)
	// Reference the value defined in b1 from its sibling b2.
	a := p.Blocks[1].Instructions[0].Defs[0].Temp
	st := NewInstruction(OpStore, 2, 0)
	st.Operands[0] = TempOperand(a)
	st.Operands[1] = TempOperand(a)
	p.Blocks[2].Instructions = append([]*Instruction{st}, p.Blocks[2].Instructions...)

	err := Validate(p)
	assert.ErrorContains(t, err, "does not logical-dominate its use at b2")
}

func TestValidateUseBeforeDef(t *testing.T) {
	p := NewProgram("order")
	b0 := p.NewBlock(KindTopLevel)
	v := p.AllocateTemp(V1)

	use := NewInstruction(OpCmp, 1, 1)
	use.Operands[0] = TempOperand(v)
	use.Defs[0] = Definition{Temp: p.AllocateTemp(S1)}
	b0.AppendInstr(use)

	def := NewInstruction(OpConst, 1, 1)
	def.Operands[0] = ConstOperand(1)
	def.Defs[0] = Definition{Temp: v}
	b0.AppendInstr(def)

	ComputeDoms(p)
	err := Validate(p)
	assert.ErrorContains(t, err, "before its definition")
}

func TestValidateRedefinition(t *testing.T) {
	p := buildSample(t)
	v := p.Blocks[0].Instructions[0].Defs[0].Temp
	dup := NewInstruction(OpConst, 1, 1)
	dup.Operands[0] = ConstOperand(3)
	dup.Defs[0] = Definition{Temp: v}
	p.Blocks[2].Instructions = append([]*Instruction{dup}, p.Blocks[2].Instructions...)

	err := Validate(p)
	assert.ErrorContains(t, err, "redefined")
}

func TestValidateUnbalancedLoops(t *testing.T) {
	p := NewProgram("loops")
	p.NewBlock(KindTopLevel | KindLoopHeader)
	ComputeDoms(p)
	err := Validate(p)
	assert.ErrorContains(t, err, "without a matching loop exit")

	q := NewProgram("exits")
	q.NewBlock(KindTopLevel | KindLoopExit)
	ComputeDoms(q)
	err = Validate(q)
	assert.ErrorContains(t, err, "loop exit without an open loop header")
}

// TestValidateLinearViewDominance verifies that linear temps are checked
// against the linear CFG, not the logical one.
func TestValidateLinearViewDominance(t *testing.T) {
	p := NewProgram("views")
	b0 := p.NewBlock(KindTopLevel | KindBranch)
	p.NewBlock(0)
	p.NewBlock(0)
	b3 := p.NewBlock(KindMerge)
	p.AddLogicalEdge(0, 1)
	p.AddLogicalEdge(0, 2)
	p.AddLogicalEdge(1, 3)
	p.AddLogicalEdge(2, 3)
	p.AddLinearEdge(0, 1)
	p.AddLinearEdge(1, 2)
	p.AddLinearEdge(2, 3)

	// A linear temp defined in b1: b1 linear-dominates b3 even though it
	// does not logical-dominate it.
	mask := p.AllocateTemp(S2Linear)
	def := NewInstruction(OpCmp, 0, 1)
	def.Defs[0] = Definition{Temp: mask}
	p.Blocks[1].AppendInstr(def)

	use := NewInstruction(OpStore, 2, 0)
	use.Operands[0] = TempOperand(mask)
	use.Operands[1] = TempOperand(mask)
	b3.AppendInstr(use)
	_ = b0

	ComputeDoms(p)
	assert.NilError(t, Validate(p))

	// The same shape with a logical temp must fail.
	v := p.AllocateTemp(V1)
	p.Blocks[1].Instructions[0].Defs = append(p.Blocks[1].Instructions[0].Defs, Definition{Temp: v})
	use.Operands[1] = TempOperand(v)
	assert.ErrorContains(t, Validate(p), "does not logical-dominate its use at b3")
}
