package ir

import (
	"testing"

	"gotest.tools/v3/assert"
)

// TestDomSingleBlock verifies that a lone entry block is its own idom in
// both views.
func TestDomSingleBlock(t *testing.T) {
	p := NewProgram("single")
	p.NewBlock(KindTopLevel)

	ComputeDoms(p)

	assert.Equal(t, p.Blocks[0].LogicalIdom, 0)
	assert.Equal(t, p.Blocks[0].LinearIdom, 0)
	assert.Assert(t, p.Dominates(LogicalCFG, 0, 0))
}

// TestDomLinearChain verifies: b0 -> b1 -> b2.
func TestDomLinearChain(t *testing.T) {
	p := NewProgram("chain")
	p.NewBlock(KindTopLevel)
	p.NewBlock(0)
	p.NewBlock(0)
	p.AddEdge(0, 1)
	p.AddEdge(1, 2)

	ComputeDoms(p)

	assert.Equal(t, p.Blocks[1].LogicalIdom, 0)
	assert.Equal(t, p.Blocks[2].LogicalIdom, 1)
	assert.Equal(t, p.Blocks[2].LinearIdom, 1)
	assert.Assert(t, p.Dominates(LogicalCFG, 0, 2))
	assert.Assert(t, p.Dominates(LinearCFG, 1, 2))
	assert.Assert(t, !p.Dominates(LogicalCFG, 2, 1))
}

// TestDomDiamond verifies:
//
//	b0
//	├→ b1 ─┐
//	└→ b2 ─┘
//	   b3
func TestDomDiamond(t *testing.T) {
	p := NewProgram("diamond")
	p.NewBlock(KindTopLevel | KindBranch)
	p.NewBlock(0)
	p.NewBlock(0)
	p.NewBlock(KindMerge)
	p.AddEdge(0, 1)
	p.AddEdge(0, 2)
	p.AddEdge(1, 3)
	p.AddEdge(2, 3)

	ComputeDoms(p)

	assert.Equal(t, p.Blocks[1].LogicalIdom, 0)
	assert.Equal(t, p.Blocks[2].LogicalIdom, 0)
	assert.Equal(t, p.Blocks[3].LogicalIdom, 0)
	assert.Assert(t, p.Dominates(LogicalCFG, 0, 3))
	assert.Assert(t, !p.Dominates(LogicalCFG, 1, 3))
	assert.Assert(t, !p.Dominates(LogicalCFG, 2, 3))
}

// TestDomLoop verifies a natural loop with a back-edge:
//
//	b0 → b1 → b2
//	      ↑    │
//	      └────┘
//	      b1 → b3
func TestDomLoop(t *testing.T) {
	p := NewProgram("loop")
	p.NewBlock(KindTopLevel)
	p.NewBlock(KindLoopHeader)
	p.NewBlock(0)
	p.NewBlock(KindLoopExit)
	p.AddEdge(0, 1)
	p.AddEdge(1, 2)
	p.AddEdge(2, 1) // back-edge
	p.AddEdge(1, 3)

	ComputeDoms(p)

	assert.Equal(t, p.Blocks[1].LogicalIdom, 0)
	assert.Equal(t, p.Blocks[2].LogicalIdom, 1)
	assert.Equal(t, p.Blocks[3].LogicalIdom, 1)
	assert.Assert(t, p.Dominates(LogicalCFG, 1, 3))
	assert.Assert(t, !p.Dominates(LogicalCFG, 2, 3))
}

// TestDomDivergentViews verifies that the two views dominate
// independently: a logical diamond laid out as a linear chain, the shape
// divergent control flow takes after convergence handling.
func TestDomDivergentViews(t *testing.T) {
	p := NewProgram("divergent")
	p.NewBlock(KindTopLevel | KindBranch)
	p.NewBlock(0)
	p.NewBlock(0)
	p.NewBlock(KindMerge)

	// Logical: b0 branches to b1 and b2, both reach the merge.
	p.AddLogicalEdge(0, 1)
	p.AddLogicalEdge(0, 2)
	p.AddLogicalEdge(1, 3)
	p.AddLogicalEdge(2, 3)
	// Linear: the instruction stream falls through every block.
	p.AddLinearEdge(0, 1)
	p.AddLinearEdge(1, 2)
	p.AddLinearEdge(2, 3)

	ComputeDoms(p)

	assert.Equal(t, p.Blocks[3].LogicalIdom, 0)
	assert.Equal(t, p.Blocks[3].LinearIdom, 2)
	assert.Assert(t, !p.Dominates(LogicalCFG, 1, 3))
	assert.Assert(t, p.Dominates(LinearCFG, 1, 3))
}

// TestDomUnreachable verifies that blocks with no predecessors in a view
// keep idom -1 there and never dominate.
func TestDomUnreachable(t *testing.T) {
	p := NewProgram("unreachable")
	p.NewBlock(KindTopLevel)
	p.NewBlock(0)
	p.NewBlock(0)
	p.AddLogicalEdge(0, 2)
	// b1 has linear edges only.
	p.AddLinearEdge(0, 1)
	p.AddLinearEdge(1, 2)

	ComputeDoms(p)

	assert.Equal(t, p.Blocks[1].LogicalIdom, -1)
	assert.Equal(t, p.Blocks[1].LinearIdom, 0)
	assert.Assert(t, !p.Dominates(LogicalCFG, 1, 2))
	assert.Assert(t, p.Dominates(LinearCFG, 1, 2))
}
