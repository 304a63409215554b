package passes

import (
	"github.com/hikari-gpu/hikari/internal/ir"
)

// RepairSSA restores the SSA dominance invariant after passes that move
// code across blocks (hoisting, sinking, rematerialization) without
// updating phi webs. For every operand whose definition no longer
// dominates its use, it inserts the minimal chain of phis between the
// definition and the use and renames the operand, like a minimal SSA
// construction run restricted to the broken values.
//
// The pass does not optimize: redundant phis it creates are left for
// ElimPhis. It also cannot create loop header phis; needing one means an
// earlier pass produced IR this pass refuses to guess about, which is a
// fatal error unless the header carries KindAllowRepairPhis.
//
// The CFG shape and dominator links of both views must be up to date and
// are treated as frozen; only instruction contents and operand wiring may
// have changed since ComputeDoms ran.
func RepairSSA(p *ir.Program) {
	st := &repairState{
		program:   p,
		defBlocks: make([]int, p.PeekAllocationID()),
		renames:   make(map[uint64]ir.TempID),
		needsTemp: make([]bool, len(p.Blocks)),
		temps:     make([]ir.TempID, len(p.Blocks)),
	}

	// Open loop headers, innermost last. A header is revisited for its
	// second pass once its matching exit is reached in program order.
	var headers []int

	for _, b := range p.Blocks {
		if b.Kind&ir.KindLoopHeader != 0 {
			headers = append(headers, b.Index)
		}

		st.repairBlock(b, false)

		if b.Kind&ir.KindLoopExit != 0 {
			if len(headers) == 0 {
				ir.Fatalf(p, "ssa repair: loop exit %s without an open loop header", b)
			}
			header := headers[len(headers)-1]
			headers = headers[:len(headers)-1]

			st.repairBlock(p.Blocks[header], true)
		}
	}

	if len(headers) != 0 {
		ir.Fatalf(p, "ssa repair: %d loop headers without a matching exit", len(headers))
	}
}

// repairState is the per-invocation session of the pass. All scratch
// storage lives here, so concurrent invocations on independent programs
// never share state.
type repairState struct {
	program *ir.Program
	block   *ir.Block // block under active iteration

	// defBlocks maps temp id to the index of its defining block. Filled
	// incrementally while scanning and extended as phis are synthesized,
	// so it is current up to the iteration point; ids not yet recorded
	// read as block 0.
	defBlocks []int

	// renames memoizes synthesized phis per (block, original temp) so two
	// broken uses meeting at the same block share one phi.
	renames map[uint64]ir.TempID

	// newPhis buffers phis destined for the block under active iteration;
	// they are prepended only after the scan to keep the iteration valid.
	newPhis []*ir.Instruction

	// needsTemp marks, per createPhis call, the blocks between definition
	// and use through which a live value must be threaded.
	needsTemp []bool

	// temps holds the temp id valid at each marked block for the value
	// currently being threaded; 0 means known absent on this path.
	temps []ir.TempID
}

// renameKey packs a block index and a temp id into one cache key.
func renameKey(block int, id ir.TempID) uint64 {
	return uint64(uint32(block)) | uint64(id)<<32
}

// createPhis threads tmp from defBlock to useBlock, synthesizing the
// minimal phi chain along the way, and returns the temp valid at
// useBlock. defBlock must not dominate useBlock in tmp's view (that is
// why we are called); both blocks must have logical dominator info.
func (st *repairState) createPhis(tmp ir.Temp, useBlock, defBlock int) ir.Temp {
	p := st.program

	if p.Blocks[defBlock].Idom(ir.LogicalCFG) < 0 || p.Blocks[useBlock].Idom(ir.LogicalCFG) < 0 {
		ir.Fatalf(p, "ssa repair: no dominator info for b%d or b%d", defBlock, useBlock)
	}

	// Backward pass: mark the blocks that need a live copy of tmp. An
	// edge to a lower index is a back-edge and does not propagate the
	// demand (indices are RPO-consistent).
	for i := range st.needsTemp {
		st.needsTemp[i] = false
	}
	st.needsTemp[useBlock] = true
	for i := useBlock - 1; i >= defBlock; i-- {
		needs := false
		for _, succ := range p.Blocks[i].Succs(ir.LogicalCFG) {
			needs = needs || (succ > i && st.needsTemp[succ])
		}
		st.needsTemp[i] = needs
	}

	// Forward pass: resolve the temp valid at every marked block in
	// ascending index order, so later blocks may reuse phis synthesized
	// for earlier ones.
	st.temps[defBlock] = tmp.ID
	for i := defBlock + 1; i <= useBlock; i++ {
		if !st.needsTemp[i] {
			continue
		}
		b := p.Blocks[i]

		// No live value flows in on any forward edge: the temp is absent
		// on this path and resolves to undefined, not to a phi.
		undef := true
		for _, pred := range b.Preds(ir.LogicalCFG) {
			undef = undef && pred < i && (!st.needsTemp[pred] || st.temps[pred] == 0)
		}
		if undef {
			st.temps[i] = 0
			continue
		}

		// If the immediate dominator already resolves the temp, reuse it
		// instead of creating a phi. Linear temps additionally require the
		// dominator to dominate in the linear CFG, because a logical
		// dominator need not be a linear one (continue_or_break blocks).
		idom := b.Idom(ir.LogicalCFG)
		if st.needsTemp[idom] && st.temps[idom] != 0 &&
			(!tmp.IsLinear() || p.Dominates(ir.LinearCFG, idom, b.Index)) {
			st.temps[i] = st.temps[idom]
			continue
		}

		key := renameKey(b.Index, tmp.ID)
		if id, ok := st.renames[key]; ok {
			st.temps[i] = id
			continue
		}

		// This pass does not support creating loop header phis.
		if b.Kind&ir.KindLoopHeader != 0 && b.Kind&ir.KindAllowRepairPhis == 0 {
			ir.Fatalf(p, "ssa repair: loop header phi needed at %s for %%%d (defined at b%d, used at b%d)",
				b, tmp.ID, defBlock, useBlock)
		}

		def := p.AllocateTemp(tmp.RC)
		// Temp ids are sequential, so the tracker grows by exactly one
		// slot. Recording here keeps it correct for blocks the driver
		// re-scans (loop header second passes).
		st.defBlocks = append(st.defBlocks, b.Index)
		phi := ir.NewInstruction(ir.OpPhi, len(b.LogicalPreds), 1)
		for j, pred := range b.LogicalPreds {
			var id ir.TempID
			if st.needsTemp[pred] {
				id = st.temps[pred]
			}
			phi.Operands[j] = ir.TempOperand(ir.Temp{ID: id, RC: tmp.RC})
		}
		phi.Defs[0] = ir.Definition{Temp: def}

		// Require all operands to be defined, so broken IR is reported
		// instead of papered over.
		if ir.Debug&ir.DebugValidateIR != 0 && b.Kind&ir.KindAllowRepairPhis == 0 {
			for _, op := range phi.Operands {
				if op.IsUndefined() {
					ir.ProgramErrorf(p,
						"repair phi with undefined operands necessary at %s for %%%d (defined at b%d and used at b%d)",
						b, tmp.ID, defBlock, useBlock)
					ir.Fatalf(p, "ssa repair: refusing to synthesize phi with undefined operands at %s", b)
				}
			}
		}

		if b == st.block {
			st.newPhis = append(st.newPhis, phi)
		} else {
			b.InsertFront(phi)
		}

		st.renames[key] = def.ID
		st.temps[i] = def.ID
	}

	return ir.Temp{ID: st.temps[useBlock], RC: tmp.RC}
}

// repairBlock scans one block, records definitions, and repairs every
// operand whose definition does not dominate its use.
//
// Loop headers are scanned twice. The first pass (secondPass=false, part
// of the program-order sweep) handles only the forward-edge operand of
// header phis; operands that may read back-edge values wait, because
// values defined inside the loop are not yet tracked. The second pass
// (secondPass=true, triggered when the matching loop exit is reached)
// handles the remaining phi operands and all non-phi instructions.
// Definitions are recorded in both passes so the tracker stays current.
func (st *repairState) repairBlock(b *ir.Block, secondPass bool) {
	st.block = b
	isHeader := b.Kind&ir.KindLoopHeader != 0

	for _, in := range b.Instructions {
		for _, d := range in.Defs {
			if d.Temp.IsValid() {
				st.defBlocks[d.Temp.ID] = b.Index
			}
		}

		start, numOperands := 0, len(in.Operands)
		switch {
		case in.Op.IsPhi() && isHeader:
			if secondPass {
				start = 1 // forward-edge operand was handled in the first pass
			} else {
				numOperands = min(numOperands, 1)
			}
		case isHeader && !secondPass:
			numOperands = 0 // non-phi operands wait for the second pass
		}

		for i := start; i < numOperands; i++ {
			op := &in.Operands[i]
			if !op.IsTemp() {
				continue
			}
			tmp := op.Temp()

			// Phi operands are used at the corresponding predecessor of
			// the phi's view, not at the phi's own block.
			useBlock := b.Index
			if view, isPhi := in.Op.PhiView(); isPhi {
				useBlock = b.Preds(view)[i]
			}

			view := ir.LogicalCFG
			if tmp.IsLinear() {
				view = ir.LinearCFG
			}
			defBlock := st.defBlocks[tmp.ID]
			if !st.program.Dominates(view, defBlock, useBlock) {
				op.SetTemp(st.createPhis(tmp, useBlock, defBlock))
			}
		}
	}

	// Phis for this block were buffered to not invalidate the scan above;
	// prepend them now.
	if len(st.newPhis) > 0 {
		b.Instructions = append(st.newPhis, b.Instructions...)
		st.newPhis = nil
	}
}
