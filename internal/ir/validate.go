package ir

import (
	"fmt"
	"strings"
)

// Validate checks the structural and SSA integrity of a program.
// It returns an error describing all violations found, or nil if valid.
//
// Dominance checks require ComputeDoms to have run; blocks unreachable in
// a view are skipped for that view's checks.
func Validate(p *Program) error {
	var errs []string

	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	// 1. Block indices match positions.
	for i, b := range p.Blocks {
		if b.Index != i {
			add("%s: block at position %d has index %d", p.Name, i, b.Index)
		}
	}
	if len(errs) > 0 {
		// Everything below indexes blocks by Index; bail out early.
		return combineErrors(errs)
	}

	inRange := func(idx int) bool { return idx >= 0 && idx < len(p.Blocks) }

	// 2. Edge symmetry per view.
	for _, b := range p.Blocks {
		for _, view := range []CFGView{LogicalCFG, LinearCFG} {
			for _, succ := range b.Succs(view) {
				if !inRange(succ) {
					add("%s, %s: %s successor b%d out of range", p.Name, b, view, succ)
					continue
				}
				if !containsIndex(p.Blocks[succ].Preds(view), b.Index) {
					add("%s, %s: %s successor b%d does not list %s as predecessor",
						p.Name, b, view, succ, b)
				}
			}
			for _, pred := range b.Preds(view) {
				if !inRange(pred) {
					add("%s, %s: %s predecessor b%d out of range", p.Name, b, view, pred)
					continue
				}
				if !containsIndex(p.Blocks[pred].Succs(view), b.Index) {
					add("%s, %s: %s predecessor b%d does not list %s as successor",
						p.Name, b, view, pred, b)
				}
			}
		}
	}

	// 3. Loop header/exit nesting must balance in program order.
	open := 0
	for _, b := range p.Blocks {
		if b.Kind&KindLoopHeader != 0 {
			open++
		}
		if b.Kind&KindLoopExit != 0 {
			if open == 0 {
				add("%s, %s: loop exit without an open loop header", p.Name, b)
			} else {
				open--
			}
		}
	}
	if open != 0 {
		add("%s: %d loop headers without a matching loop exit", p.Name, open)
	}

	// Collect definitions: every temp must be defined exactly once.
	type defSite struct {
		block int
		idx   int
	}
	defs := make(map[TempID]defSite)
	for _, b := range p.Blocks {
		for idx, in := range b.Instructions {
			for _, d := range in.Defs {
				if !d.Temp.IsValid() {
					add("%s, %s: instruction %q defines the invalid temp", p.Name, b, in)
					continue
				}
				if d.Temp.ID >= p.PeekAllocationID() {
					add("%s, %s: temp %%%d beyond the allocation counter", p.Name, b, d.Temp.ID)
				}
				if prev, ok := defs[d.Temp.ID]; ok {
					add("%s, %s: temp %%%d redefined (first defined in b%d)",
						p.Name, b, d.Temp.ID, prev.block)
					continue
				}
				defs[d.Temp.ID] = defSite{block: b.Index, idx: idx}
			}
		}
	}

	// 4. Per-instruction checks: phi placement, operand counts, dominance.
	for _, b := range p.Blocks {
		seenNonPhi := false
		for idx, in := range b.Instructions {
			if in.Op.IsPhi() {
				if seenNonPhi {
					add("%s, %s: phi %q after a non-phi instruction", p.Name, b, in)
				}
				view, _ := in.Op.PhiView()
				if len(in.Operands) != len(b.Preds(view)) {
					add("%s, %s: %s has %d operands but block has %d %s predecessors",
						p.Name, b, in.Op, len(in.Operands), len(b.Preds(view)), view)
					continue
				}
			} else {
				seenNonPhi = true
			}

			for i, op := range in.Operands {
				if !op.IsTemp() {
					continue
				}
				tmp := op.Temp()
				site, ok := defs[tmp.ID]
				if !ok {
					add("%s, %s: %q reads undefined temp %%%d", p.Name, b, in, tmp.ID)
					continue
				}

				// Phi operands are used at the corresponding predecessor.
				useBlock := b.Index
				if view, isPhi := in.Op.PhiView(); isPhi {
					useBlock = b.Preds(view)[i]
				}

				view := LogicalCFG
				if tmp.IsLinear() {
					view = LinearCFG
				}
				if site.block == useBlock {
					if !in.Op.IsPhi() && site.idx >= idx {
						add("%s, %s: %%%d used at instruction %d before its definition at %d",
							p.Name, b, tmp.ID, idx, site.idx)
					}
					continue
				}
				if p.Blocks[useBlock].Idom(view) < 0 {
					continue // unreachable in this view
				}
				if !p.Dominates(view, site.block, useBlock) {
					add("%s, %s: %%%d defined in b%d does not %s-dominate its use at b%d",
						p.Name, b, tmp.ID, site.block, view, useBlock)
				}
			}
		}
	}

	return combineErrors(errs)
}

// containsIndex checks whether list contains idx.
func containsIndex(list []int, idx int) bool {
	for _, x := range list {
		if x == idx {
			return true
		}
	}
	return false
}

// combineErrors creates an error from a list of error strings, or returns nil.
func combineErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("IR validation failed:\n  %s", strings.Join(errs, "\n  "))
}
