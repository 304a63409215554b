package ir

import (
	"fmt"
	"strings"
)

// CFGView selects one of the two control-flow views over a program.
// The logical view reflects source-level branching; the linear view
// reflects the physical instruction-stream order after divergence and
// convergence handling, which can differ in SIMD execution.
type CFGView uint8

const (
	LogicalCFG CFGView = iota
	LinearCFG
)

// String returns the name of the view.
func (v CFGView) String() string {
	if v == LinearCFG {
		return "linear"
	}
	return "logical"
}

// BlockKind is a bitmask describing the structural role of a block.
type BlockKind uint16

const (
	KindTopLevel BlockKind = 1 << iota
	KindLoopHeader
	KindLoopExit
	KindBranch
	KindMerge
	KindContinue
	KindBreak
	KindUniform
	// KindAllowRepairPhis opts a loop header out of the "no repair phis at
	// loop headers" invariant. Intended for producing passes that know a
	// header merge is safe.
	KindAllowRepairPhis
)

// blockKindNames lists kinds in declaration order for printing/parsing.
var blockKindNames = []struct {
	kind BlockKind
	name string
}{
	{KindTopLevel, "top_level"},
	{KindLoopHeader, "loop_header"},
	{KindLoopExit, "loop_exit"},
	{KindBranch, "branch"},
	{KindMerge, "merge"},
	{KindContinue, "continue"},
	{KindBreak, "break"},
	{KindUniform, "uniform"},
	{KindAllowRepairPhis, "allow_repair_phis"},
}

// String returns the textual form of the kind mask (e.g. "loop_header|uniform").
func (k BlockKind) String() string {
	if k == 0 {
		return "none"
	}
	var names []string
	for _, e := range blockKindNames {
		if k&e.kind != 0 {
			names = append(names, e.name)
		}
	}
	return strings.Join(names, "|")
}

// BlockKindByName returns the kind bit for a textual name.
func BlockKindByName(name string) (BlockKind, bool) {
	for _, e := range blockKindNames {
		if e.name == name {
			return e.kind, true
		}
	}
	return 0, false
}

// Block is a basic block. Blocks are identified by their index in the
// program's block list; indices are consistent with a reverse post-order
// over both CFG views, so an edge to a lower index is a back-edge.
//
// A block participates in both CFG views with separate neighbor sets and
// separate precomputed immediate dominators.
type Block struct {
	// Index is the position of this block in Program.Blocks.
	Index int

	// Kind is the structural role bitmask.
	Kind BlockKind

	// Neighbor sets, one pair per CFG view. Predecessor order is
	// significant: phi operand i corresponds to predecessor i.
	LogicalPreds []int
	LogicalSuccs []int
	LinearPreds  []int
	LinearSuccs  []int

	// Immediate dominators per view, -1 when unknown or unreachable.
	// The entry block is its own idom.
	LogicalIdom int
	LinearIdom  int

	// Instructions is the ordered, mutable instruction sequence.
	Instructions []*Instruction
}

// String returns a short representation (e.g. "b3").
func (b *Block) String() string {
	return fmt.Sprintf("b%d", b.Index)
}

// Preds returns the predecessor indices in the given view.
func (b *Block) Preds(view CFGView) []int {
	if view == LinearCFG {
		return b.LinearPreds
	}
	return b.LogicalPreds
}

// Succs returns the successor indices in the given view.
func (b *Block) Succs(view CFGView) []int {
	if view == LinearCFG {
		return b.LinearSuccs
	}
	return b.LogicalSuccs
}

// Idom returns the immediate dominator index in the given view, -1 if none.
func (b *Block) Idom(view CFGView) int {
	if view == LinearCFG {
		return b.LinearIdom
	}
	return b.LogicalIdom
}

// SetIdom sets the immediate dominator index in the given view.
func (b *Block) SetIdom(view CFGView, idom int) {
	if view == LinearCFG {
		b.LinearIdom = idom
	} else {
		b.LogicalIdom = idom
	}
}

// InsertFront inserts an instruction at the front of the block.
func (b *Block) InsertFront(in *Instruction) {
	b.Instructions = append(b.Instructions, nil)
	copy(b.Instructions[1:], b.Instructions)
	b.Instructions[0] = in
}

// AppendInstr appends an instruction to the block.
func (b *Block) AppendInstr(in *Instruction) {
	b.Instructions = append(b.Instructions, in)
}
