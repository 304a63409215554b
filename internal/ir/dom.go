package ir

// ComputeDoms computes immediate dominators for both CFG views.
// It must run before any Dominates query; the repair pass and the
// validator treat the resulting idom links as frozen.
func ComputeDoms(p *Program) {
	computeIdoms(p, LogicalCFG)
	computeIdoms(p, LinearCFG)
}

// computeIdoms computes immediate dominators for one view using
// Cooper, Harvey, and Kennedy's "A Simple, Fast Dominance Algorithm".
// Block indices double as RPO numbers. The entry block is its own idom;
// blocks unreachable in the view keep idom -1.
func computeIdoms(p *Program, view CFGView) {
	for _, b := range p.Blocks {
		b.SetIdom(view, -1)
	}
	if len(p.Blocks) == 0 {
		return
	}
	p.Blocks[0].SetIdom(view, 0)

	// intersect finds the closest common dominator of two blocks.
	intersect := func(b1, b2 int) int {
		for b1 != b2 {
			for b1 > b2 {
				b1 = p.Blocks[b1].Idom(view)
			}
			for b2 > b1 {
				b2 = p.Blocks[b2].Idom(view)
			}
		}
		return b1
	}

	// Iterate until convergence.
	changed := true
	for changed {
		changed = false
		for i := 1; i < len(p.Blocks); i++ {
			b := p.Blocks[i]
			newIdom := -1
			for _, pred := range b.Preds(view) {
				if p.Blocks[pred].Idom(view) < 0 {
					continue
				}
				if newIdom < 0 {
					newIdom = pred
				} else {
					newIdom = intersect(pred, newIdom)
				}
			}
			if newIdom >= 0 && b.Idom(view) != newIdom {
				b.SetIdom(view, newIdom)
				changed = true
			}
		}
	}
}

// Dominates reports whether block index a dominates block index b in the
// given view. Every block dominates itself. The walk climbs b's idom
// chain and relies on indices being RPO-consistent: a dominator always
// has a smaller or equal index.
func (p *Program) Dominates(view CFGView, a, b int) bool {
	for b > a {
		idom := p.Blocks[b].Idom(view)
		if idom < 0 || idom >= b {
			return false
		}
		b = idom
	}
	return a == b
}
