package emit

import (
	"fmt"
	"sort"

	"github.com/lookbusy1344/riscv-sim/isa"
)

// DisasmLine is one rendered line of a linear disassembly: either a
// label line or an instruction line.
type DisasmLine struct {
	PC      uint32
	Text    string
	IsLabel bool
}

// Disassemble renders prog as a flat, PC-ordered list of label and
// instruction lines. Labels bound to a PC are printed immediately
// before the instruction at that PC; labels bound to the end-of-
// program address are printed after the last instruction.
func Disassemble(prog *isa.Program) []DisasmLine {
	var lines []DisasmLine

	for pc := uint32(0); int(pc/4) < len(prog.Instructions); pc += 4 {
		for _, name := range sortedLabelsAt(prog, pc) {
			lines = append(lines, DisasmLine{PC: pc, Text: name + ":", IsLabel: true})
		}
		inst := prog.Instructions[pc/4]
		lines = append(lines, DisasmLine{PC: pc, Text: instructionText(prog, inst, pc)})
	}

	endPC := prog.EndPC()
	for _, name := range sortedLabelsAt(prog, endPC) {
		lines = append(lines, DisasmLine{PC: endPC, Text: name + ":", IsLabel: true})
	}

	return lines
}

func sortedLabelsAt(prog *isa.Program, pc uint32) []string {
	names := prog.LabelsAt(pc)
	sort.Strings(names)
	return names
}

func instructionText(prog *isa.Program, inst isa.Instruction, pc uint32) string {
	operand := FormatOperand(prog, inst)
	if operand == "" {
		return fmt.Sprintf("0x%08X: %s", pc, inst.Op.String())
	}
	return fmt.Sprintf("0x%08X: %s %s", pc, inst.Op.String(), operand)
}
