package ir

import "fmt"

// TempID is a unique identifier for a temporary within a Program.
// ID 0 is reserved as the "no value" sentinel and is never allocated.
type TempID uint32

// RegClass describes the register class of a temporary: its size in
// dwords, whether it lives in vector registers, and whether it is a
// linear value tracked in the linear CFG rather than the logical one.
type RegClass uint8

const (
	rcSizeMask RegClass = 0x1f
	rcVector   RegClass = 1 << 5
	rcLinear   RegClass = 1 << 6
)

// Named register classes.
const (
	RegClassNone RegClass = 0

	S1 RegClass = 1
	S2 RegClass = 2

	V1 RegClass = 1 | rcVector
	V2 RegClass = 2 | rcVector

	// Linear variants are scalar values whose live ranges follow the
	// physical instruction stream (the linear CFG), e.g. exec masks
	// threaded through divergent control flow.
	S1Linear RegClass = 1 | rcLinear
	S2Linear RegClass = 2 | rcLinear
)

// Size returns the register class size in dwords.
func (rc RegClass) Size() int { return int(rc & rcSizeMask) }

// IsVector reports whether the class lives in vector registers.
func (rc RegClass) IsVector() bool { return rc&rcVector != 0 }

// IsLinear reports whether temporaries of this class are tracked in the
// linear CFG. Dominance queries for linear temporaries use the linear view.
func (rc RegClass) IsLinear() bool { return rc&rcLinear != 0 }

// String returns the textual name of the register class (e.g. "s2", "v1",
// "s1l").
func (rc RegClass) String() string {
	prefix := "s"
	if rc.IsVector() {
		prefix = "v"
	}
	suffix := ""
	if rc.IsLinear() {
		suffix = "l"
	}
	return fmt.Sprintf("%s%d%s", prefix, rc.Size(), suffix)
}

// regClassByName maps textual names back to register classes for the parser.
var regClassByName = map[string]RegClass{
	"s1":  S1,
	"s2":  S2,
	"v1":  V1,
	"v2":  V2,
	"s1l": S1Linear,
	"s2l": S2Linear,
}

// RegClassByName returns the register class for a textual name.
func RegClassByName(name string) (RegClass, bool) {
	rc, ok := regClassByName[name]
	return rc, ok
}

// Temp is an SSA temporary: a stable identifier plus a register class.
// The zero Temp is the explicit "undefined" sentinel.
type Temp struct {
	ID TempID
	RC RegClass
}

// IsValid reports whether the temp refers to an allocated value.
func (t Temp) IsValid() bool { return t.ID != 0 }

// IsLinear reports whether the temp is tracked in the linear CFG.
func (t Temp) IsLinear() bool { return t.RC.IsLinear() }

// String returns a short representation (e.g. "%5").
func (t Temp) String() string {
	if !t.IsValid() {
		return "undef"
	}
	return fmt.Sprintf("%%%d", t.ID)
}
