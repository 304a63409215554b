package passes

import (
	"github.com/oleiade/lane"

	"github.com/hikari-gpu/hikari/internal/ir"
)

// ElimPhis removes trivial phis: merges whose operands all carry the same
// value (ignoring self-references and undefined operands). Uses of a
// removed phi are rewritten to the surviving value. Removing one phi can
// make another trivial, so candidates are requeued until a fixed point.
//
// RepairSSA deliberately leaves such phis behind; this pass is the
// separate cleanup.
func ElimPhis(p *ir.Program) {
	var phis []*ir.Instruction
	q := lane.NewQueue()
	for _, b := range p.Blocks {
		for _, in := range b.Instructions {
			if in.Op.IsPhi() {
				phis = append(phis, in)
				q.Enqueue(in)
			}
		}
	}
	if len(phis) == 0 {
		return
	}

	renames := make(map[ir.TempID]ir.TempID)
	removed := make(map[*ir.Instruction]bool)

	// resolve follows rename chains to the surviving temp id.
	resolve := func(id ir.TempID) ir.TempID {
		for {
			next, ok := renames[id]
			if !ok {
				return id
			}
			id = next
		}
	}

	for !q.Empty() {
		in := q.Dequeue().(*ir.Instruction)
		if removed[in] {
			continue
		}
		unique, ok := trivialPhi(in, resolve)
		if !ok {
			continue
		}

		renames[in.Defs[0].Temp.ID] = unique
		removed[in] = true

		// A phi reading this one may have become trivial.
		for _, other := range phis {
			if !removed[other] {
				q.Enqueue(other)
			}
		}
	}

	if len(removed) == 0 {
		return
	}

	// Rewrite all uses and drop the removed phis.
	for _, b := range p.Blocks {
		live := b.Instructions[:0]
		for _, in := range b.Instructions {
			if removed[in] {
				continue
			}
			for i := range in.Operands {
				op := &in.Operands[i]
				if !op.IsTemp() {
					continue
				}
				t := op.Temp()
				if id := resolve(t.ID); id != t.ID {
					op.SetTemp(ir.Temp{ID: id, RC: t.RC})
				}
			}
			live = append(live, in)
		}
		b.Instructions = live
	}
}

// trivialPhi returns the single value a phi merges, if any. Undefined
// operands and self-references are ignored; a phi merging two distinct
// values, or only undefined operands, is kept.
func trivialPhi(in *ir.Instruction, resolve func(ir.TempID) ir.TempID) (ir.TempID, bool) {
	def := in.Defs[0].Temp.ID
	var unique ir.TempID
	for _, op := range in.Operands {
		if op.IsUndefined() {
			continue
		}
		if !op.IsTemp() {
			return 0, false
		}
		id := resolve(op.Temp().ID)
		if id == def {
			continue
		}
		if unique == 0 {
			unique = id
		} else if id != unique {
			return 0, false
		}
	}
	return unique, unique != 0
}
