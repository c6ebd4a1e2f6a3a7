package isa

// Program is the immutable result of assembling one source text: the
// decoded instruction list in source order, the original source lines
// (kept verbatim for diagnostics and the C-view comments), the label
// table, and the #sym symbol table. The PC of Instructions[i] is 4*i.
type Program struct {
	Instructions []Instruction
	SourceLines  []string
	Labels       map[string]uint32
	Symbols      map[string]uint32

	// LabelEnds holds the names of labels bound to the end-of-program
	// address (one past the last instruction): a legal branch target
	// that traps PC_OOB if ever executed.
	LabelEnds map[string]struct{}
}

// EndPC returns the address one past the last instruction: a legal,
// if terminal, branch target.
func (p *Program) EndPC() uint32 {
	return uint32(len(p.Instructions)) * 4
}

// LabelsAt returns the labels (in no particular order) bound to pc,
// used by the disassembler to print label lines before an instruction
// or after the last one.
func (p *Program) LabelsAt(pc uint32) []string {
	var names []string
	for name, addr := range p.Labels {
		if addr == pc {
			names = append(names, name)
		}
	}
	return names
}
