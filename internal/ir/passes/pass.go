// Package passes implements the backend IR passes of the hikari shader
// compiler and the harness that runs them.
package passes

import (
	"fmt"
	"os"

	"github.com/hikari-gpu/hikari/internal/ir"
)

// Pass describes a single IR pass.
type Pass struct {
	Name string
	Fn   func(p *ir.Program)
}

// Config controls pass execution behavior.
type Config struct {
	DumpBefore string // dump IR before this pass ("*" for all)
	DumpAfter  string // dump IR after this pass ("*" for all)
	Validate   bool   // validate IR before/after each pass
}

// Run executes the given passes on p in order.
func Run(p *ir.Program, passes []Pass, cfg Config) error {
	for _, pass := range passes {
		if shouldDump(cfg.DumpBefore, pass.Name) {
			fmt.Fprintf(os.Stderr, "--- before %s (%s) ---\n", pass.Name, p.Name)
			ir.Fprint(os.Stderr, p)
			fmt.Fprintln(os.Stderr)
		}

		if cfg.Validate {
			if err := ir.Validate(p); err != nil {
				return fmt.Errorf("validate before %s: %w", pass.Name, err)
			}
		}

		pass.Fn(p)

		if cfg.Validate {
			if err := ir.Validate(p); err != nil {
				return fmt.Errorf("validate after %s: %w", pass.Name, err)
			}
		}

		if shouldDump(cfg.DumpAfter, pass.Name) {
			fmt.Fprintf(os.Stderr, "--- after %s (%s) ---\n", pass.Name, p.Name)
			ir.Fprint(os.Stderr, p)
			fmt.Fprintln(os.Stderr)
		}
	}
	return nil
}

func shouldDump(pattern, name string) bool {
	return pattern == "*" || pattern == name
}
