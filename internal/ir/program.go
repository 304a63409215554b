package ir

// Program is an ordered sequence of blocks plus the temp allocator.
// Blocks[i].Index == i always holds.
type Program struct {
	// Name identifies the shader, used in diagnostics.
	Name string

	// Blocks in program order. Indices are RPO-consistent for both views.
	Blocks []*Block

	// nextTempID is the next unallocated temp identifier. ID 0 is the
	// "no value" sentinel and is never handed out.
	nextTempID TempID
}

// NewProgram creates an empty program.
func NewProgram(name string) *Program {
	return &Program{Name: name, nextTempID: 1}
}

// NewBlock appends a new block with the given kind and returns it.
func (p *Program) NewBlock(kind BlockKind) *Block {
	b := &Block{
		Index:       len(p.Blocks),
		Kind:        kind,
		LogicalIdom: -1,
		LinearIdom:  -1,
	}
	p.Blocks = append(p.Blocks, b)
	return b
}

// AllocateTemp allocates a fresh temporary of the given register class.
func (p *Program) AllocateTemp(rc RegClass) Temp {
	t := Temp{ID: p.nextTempID, RC: rc}
	p.nextTempID++
	return t
}

// NoteTemp records an externally numbered temp (used by the parser) so
// later allocations do not collide with it.
func (p *Program) NoteTemp(id TempID) {
	if id >= p.nextTempID {
		p.nextTempID = id + 1
	}
}

// PeekAllocationID returns the first unallocated temp identifier. It
// bounds every allocated temp id and sizes id-indexed side tables.
func (p *Program) PeekAllocationID() TempID {
	return p.nextTempID
}

// AddLogicalEdge adds a logical CFG edge from block index from to block
// index to, updating both neighbor lists.
func (p *Program) AddLogicalEdge(from, to int) {
	p.Blocks[from].LogicalSuccs = append(p.Blocks[from].LogicalSuccs, to)
	p.Blocks[to].LogicalPreds = append(p.Blocks[to].LogicalPreds, from)
}

// AddLinearEdge adds a linear CFG edge from block index from to block
// index to, updating both neighbor lists.
func (p *Program) AddLinearEdge(from, to int) {
	p.Blocks[from].LinearSuccs = append(p.Blocks[from].LinearSuccs, to)
	p.Blocks[to].LinearPreds = append(p.Blocks[to].LinearPreds, from)
}

// AddEdge adds an edge present in both views.
func (p *Program) AddEdge(from, to int) {
	p.AddLogicalEdge(from, to)
	p.AddLinearEdge(from, to)
}
