// Package ir implements the backend intermediate representation for the
// hikari shader compiler: SSA temporaries, instructions, basic blocks with
// dual (logical and linear) control-flow views, dominance queries, a
// textual form, and a structural validator.
package ir

// Op represents an IR operation code.
type Op int

const (
	OpInvalid Op = iota

	// Phi-like pseudo instructions. Operand i corresponds to predecessor i
	// of the matching CFG view: the logical view for Phi and BooleanPhi,
	// the linear view for LinearPhi.
	OpPhi        // value merge over logical predecessors
	OpBooleanPhi // divergent boolean merge over logical predecessors
	OpLinearPhi  // merge over linear predecessors

	// Pseudo ops
	OpCopy  // identity move
	OpConst // constant; single constant operand

	// ALU
	OpAdd    // a + b
	OpMul    // a * b
	OpAnd    // a & b
	OpNot    // ^a
	OpCmp    // compare, produces a boolean
	OpSelect // cond ? a : b

	// Memory
	OpLoad  // load; Operands[0] = address
	OpStore // store; Operands[0] = address, Operands[1] = value; no defs

	// Control flow terminators
	OpBranch     // unconditional branch
	OpCondBranch // conditional branch; Operands[0] = condition
	OpReturn     // end of shader
	OpDiscard    // kill the invocation

	opCount // sentinel; must be last
)

// OpInfo holds metadata about an IR operation.
type OpInfo struct {
	Name   string // textual name, also used by the parser
	IsPhi  bool   // true for phi-like merge instructions
	IsTerm bool   // true for block terminators
}

// opInfoTable maps each Op to its OpInfo. Index by Op value.
var opInfoTable = [opCount]OpInfo{
	OpInvalid: {Name: "invalid"},

	OpPhi:        {Name: "phi", IsPhi: true},
	OpBooleanPhi: {Name: "boolean_phi", IsPhi: true},
	OpLinearPhi:  {Name: "linear_phi", IsPhi: true},

	OpCopy:  {Name: "copy"},
	OpConst: {Name: "const"},

	OpAdd:    {Name: "add"},
	OpMul:    {Name: "mul"},
	OpAnd:    {Name: "and"},
	OpNot:    {Name: "not"},
	OpCmp:    {Name: "cmp"},
	OpSelect: {Name: "select"},

	OpLoad:  {Name: "load"},
	OpStore: {Name: "store"},

	OpBranch:     {Name: "branch", IsTerm: true},
	OpCondBranch: {Name: "cond_branch", IsTerm: true},
	OpReturn:     {Name: "return", IsTerm: true},
	OpDiscard:    {Name: "discard", IsTerm: true},
}

// opByName maps textual names back to ops for the parser.
var opByName = func() map[string]Op {
	m := make(map[string]Op, opCount)
	for op, info := range opInfoTable {
		if Op(op) != OpInvalid {
			m[info.Name] = Op(op)
		}
	}
	return m
}()

// OpByName returns the op for a textual name.
func OpByName(name string) (Op, bool) {
	op, ok := opByName[name]
	return op, ok
}

// String returns the textual name of the op.
func (o Op) String() string {
	if o >= 0 && int(o) < len(opInfoTable) {
		return opInfoTable[o].Name
	}
	return "unknown"
}

// IsPhi returns true if this op is a phi-like merge instruction.
func (o Op) IsPhi() bool {
	if o >= 0 && int(o) < len(opInfoTable) {
		return opInfoTable[o].IsPhi
	}
	return false
}

// IsTerm returns true if this op terminates a block.
func (o Op) IsTerm() bool {
	if o >= 0 && int(o) < len(opInfoTable) {
		return opInfoTable[o].IsTerm
	}
	return false
}

// PhiView returns the CFG view whose predecessor list defines the operand
// order of a phi-like op. The second result is false for non-phi ops.
func (o Op) PhiView() (CFGView, bool) {
	switch o {
	case OpPhi, OpBooleanPhi:
		return LogicalCFG, true
	case OpLinearPhi:
		return LinearCFG, true
	}
	return LogicalCFG, false
}
