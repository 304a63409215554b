package ir

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// DebugFlags enables extra validation work in the compiler.
type DebugFlags uint32

const (
	// DebugValidateIR makes passes report descriptive diagnostics for IR
	// they would otherwise reject with a bare internal error.
	DebugValidateIR DebugFlags = 1 << iota
)

// Debug holds the active debug flags. Set once at startup; passes only
// read it.
var Debug DebugFlags

// ProgramErrorf reports a structured error diagnostic for a program.
func ProgramErrorf(p *Program, format string, args ...interface{}) {
	logrus.WithField("shader", p.Name).Errorf(format, args...)
}

// Fatalf reports an internal compiler error and aborts the compilation by
// panicking. Reserved for conditions that indicate a bug in an earlier
// pass.
func Fatalf(p *Program, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logrus.WithField("shader", p.Name).Error(msg)
	panic("internal compiler error: " + msg)
}
