package ir

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse reads the textual program form produced by Fprint. Operands may
// reference temps defined anywhere in the program (the definition does not
// have to precede the use), so definitions are collected in a first pass
// and operands resolved in a second. Immediate dominators are recomputed
// after parsing; idom fields in the input are ignored.
func Parse(filename string, r io.Reader) (*Program, error) {
	ps := &parseState{filename: filename}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		ps.lines = append(ps.lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	ps.collectDefs()
	p := ps.build()
	if err := ps.err(); err != nil {
		return nil, err
	}

	ComputeDoms(p)
	return p, nil
}

// parseState accumulates parse errors instead of stopping at the first,
// so a malformed dump reports every problem at once.
type parseState struct {
	filename string
	lines    []string
	rcByID   map[TempID]RegClass
	errs     []string
}

func (ps *parseState) errorf(line int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	ps.errs = append(ps.errs, fmt.Sprintf("%s:%d: %s", ps.filename, line+1, msg))
}

func (ps *parseState) err() error {
	if len(ps.errs) == 0 {
		return nil
	}
	return fmt.Errorf("parse failed:\n  %s", strings.Join(ps.errs, "\n  "))
}

// collectDefs records the register class of every defined temp so the
// second pass can resolve forward references.
func (ps *parseState) collectDefs() {
	ps.rcByID = make(map[TempID]RegClass)
	for i, line := range ps.lines {
		line = strings.TrimSpace(line)
		defs, _, ok := splitDefs(line)
		if !ok || defs == "" {
			continue
		}
		for _, tok := range strings.Split(defs, ",") {
			id, rc, err := parseDef(strings.TrimSpace(tok))
			if err != nil {
				ps.errorf(i, "%v", err)
				continue
			}
			if _, dup := ps.rcByID[id]; dup {
				ps.errorf(i, "temp %%%d defined more than once", id)
				continue
			}
			ps.rcByID[id] = rc
		}
	}
}

// build constructs the program from the collected lines.
func (ps *parseState) build() *Program {
	p := NewProgram("unnamed")
	var cur *Block

	for i, raw := range ps.lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			// blank or comment

		case strings.HasPrefix(line, "shader "):
			name, err := strconv.Unquote(strings.TrimSpace(strings.TrimPrefix(line, "shader ")))
			if err != nil {
				ps.errorf(i, "malformed shader name: %s", line)
				continue
			}
			p.Name = name

		case isBlockHeader(line):
			colon := strings.Index(line, ":")
			idx, err := strconv.Atoi(line[1:colon])
			if err != nil || idx != len(p.Blocks) {
				ps.errorf(i, "block header %q out of order, want b%d", line[:colon], len(p.Blocks))
				continue
			}
			cur = p.NewBlock(0)
			for _, name := range strings.Split(strings.TrimSpace(line[colon+1:]), "|") {
				if name == "none" || name == "" {
					continue
				}
				kind, ok := BlockKindByName(name)
				if !ok {
					ps.errorf(i, "unknown block kind %q", name)
					continue
				}
				cur.Kind |= kind
			}

		case strings.HasPrefix(line, "logical:"), strings.HasPrefix(line, "linear:"):
			if cur == nil {
				ps.errorf(i, "edge list outside of a block")
				continue
			}
			preds, succs, err := parseEdges(line)
			if err != nil {
				ps.errorf(i, "%v", err)
				continue
			}
			if strings.HasPrefix(line, "logical:") {
				cur.LogicalPreds, cur.LogicalSuccs = preds, succs
			} else {
				cur.LinearPreds, cur.LinearSuccs = preds, succs
			}

		default:
			if cur == nil {
				ps.errorf(i, "instruction outside of a block: %q", line)
				continue
			}
			in, err := ps.parseInstr(line)
			if err != nil {
				ps.errorf(i, "%v", err)
				continue
			}
			cur.AppendInstr(in)
		}
	}

	for id := range ps.rcByID {
		p.NoteTemp(id)
	}
	return p
}

// isBlockHeader reports whether line is a "bN: kinds" block header. The
// digits and colon must follow immediately, so instruction lines whose
// operands carry a register class suffix (e.g. "boolean_phi undef:s1")
// are not mistaken for headers.
func isBlockHeader(line string) bool {
	if len(line) < 2 || line[0] != 'b' {
		return false
	}
	i := 1
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	return i > 1 && i < len(line) && line[i] == ':'
}

// parseInstr parses one instruction line, resolving temp operand register
// classes through the collected definitions.
func (ps *parseState) parseInstr(line string) (*Instruction, error) {
	defs, rest, hasDefs := splitDefs(line)

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty instruction")
	}
	op, ok := OpByName(fields[0])
	if !ok {
		return nil, fmt.Errorf("unknown op %q", fields[0])
	}

	in := &Instruction{Op: op}
	for _, tok := range fields[1:] {
		o, err := ps.parseOperand(tok)
		if err != nil {
			return nil, err
		}
		in.Operands = append(in.Operands, o)
	}
	if hasDefs && defs != "" {
		for _, tok := range strings.Split(defs, ",") {
			id, rc, err := parseDef(strings.TrimSpace(tok))
			if err != nil {
				return nil, err
			}
			in.Defs = append(in.Defs, Definition{Temp: Temp{ID: id, RC: rc}})
		}
	}
	return in, nil
}

// parseOperand parses a single operand token: "%5", "$42", or "undef:s1".
func (ps *parseState) parseOperand(tok string) (Operand, error) {
	switch {
	case strings.HasPrefix(tok, "%"):
		id, err := strconv.ParseUint(tok[1:], 10, 32)
		if err != nil || id == 0 {
			return Operand{}, fmt.Errorf("malformed temp %q", tok)
		}
		rc, ok := ps.rcByID[TempID(id)]
		if !ok {
			return Operand{}, fmt.Errorf("use of undefined temp %s", tok)
		}
		return TempOperand(Temp{ID: TempID(id), RC: rc}), nil

	case strings.HasPrefix(tok, "$"):
		v, err := strconv.ParseUint(tok[1:], 10, 64)
		if err != nil {
			return Operand{}, fmt.Errorf("malformed constant %q", tok)
		}
		return ConstOperand(v), nil

	case tok == "undef":
		return UndefOperand(RegClassNone), nil

	case strings.HasPrefix(tok, "undef:"):
		rc, ok := RegClassByName(tok[len("undef:"):])
		if !ok {
			return Operand{}, fmt.Errorf("unknown register class in %q", tok)
		}
		return UndefOperand(rc), nil
	}
	return Operand{}, fmt.Errorf("malformed operand %q", tok)
}

// splitDefs splits an instruction line at its " = " into the definition
// list and the op half. Lines without definitions return ok=false.
func splitDefs(line string) (defs, rest string, ok bool) {
	eq := strings.Index(line, " = ")
	if eq < 0 || !strings.HasPrefix(line, "%") {
		return "", line, false
	}
	return line[:eq], line[eq+len(" = "):], true
}

// parseDef parses a "%5:s1" definition token.
func parseDef(tok string) (TempID, RegClass, error) {
	if !strings.HasPrefix(tok, "%") {
		return 0, 0, fmt.Errorf("malformed definition %q", tok)
	}
	colon := strings.Index(tok, ":")
	if colon < 0 {
		return 0, 0, fmt.Errorf("definition %q lacks a register class", tok)
	}
	id, err := strconv.ParseUint(tok[1:colon], 10, 32)
	if err != nil || id == 0 {
		return 0, 0, fmt.Errorf("malformed definition %q", tok)
	}
	rc, ok := RegClassByName(tok[colon+1:])
	if !ok {
		return 0, 0, fmt.Errorf("unknown register class in %q", tok)
	}
	return TempID(id), rc, nil
}

// parseEdges parses a "logical: preds=[1 2] succs=[3] idom=0" line.
// The idom field is optional and ignored.
func parseEdges(line string) (preds, succs []int, err error) {
	preds, err = parseIntList(line, "preds=")
	if err != nil {
		return nil, nil, err
	}
	succs, err = parseIntList(line, "succs=")
	if err != nil {
		return nil, nil, err
	}
	return preds, succs, nil
}

// parseIntList extracts the bracketed index list following the given key
// (e.g. "preds=[1 2]").
func parseIntList(line, key string) ([]int, error) {
	start := strings.Index(line, key+"[")
	if start < 0 {
		return nil, fmt.Errorf("missing %s[...] in %q", key, line)
	}
	start += len(key) + 1
	end := strings.Index(line[start:], "]")
	if end < 0 {
		return nil, fmt.Errorf("unterminated %s[...] in %q", key, line)
	}
	var list []int
	for _, f := range strings.Fields(line[start : start+end]) {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("malformed block index %q in %q", f, line)
		}
		list = append(list, n)
	}
	return list, nil
}
