package ir

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Fprint writes the textual representation of a program to w.
//
// Format:
//
//	shader "main"
//
//	b0: top_level
//	  logical: preds=[] succs=[1 2] idom=0
//	  linear: preds=[] succs=[1] idom=0
//	  %1:s1 = const $7
//	  cond_branch %1
//
// The parser reads this form back; idom fields are informational and
// recomputed on parse.
func Fprint(w io.Writer, p *Program) {
	fmt.Fprintf(w, "shader %q\n", p.Name)
	for _, b := range p.Blocks {
		fmt.Fprintln(w)
		fprintBlock(w, b)
	}
}

// fprintBlock writes a single block to w.
func fprintBlock(w io.Writer, b *Block) {
	fmt.Fprintf(w, "b%d: %s\n", b.Index, b.Kind)
	fmt.Fprintf(w, "  logical: preds=%v succs=%v idom=%d\n",
		b.LogicalPreds, b.LogicalSuccs, b.LogicalIdom)
	fmt.Fprintf(w, "  linear: preds=%v succs=%v idom=%d\n",
		b.LinearPreds, b.LinearSuccs, b.LinearIdom)
	for _, in := range b.Instructions {
		fmt.Fprintf(w, "  %s\n", in)
	}
}

// Sprint returns the textual representation of a program as a string.
func Sprint(p *Program) string {
	var sb strings.Builder
	Fprint(&sb, p)
	return sb.String()
}

// Print writes the textual representation of a program to stdout.
func Print(p *Program) {
	Fprint(os.Stdout, p)
}
