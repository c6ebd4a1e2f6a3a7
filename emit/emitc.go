package emit

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/riscv-sim/isa"
)

// EmitC renders prog as a single freestanding C translation unit that
// mirrors the interpreter's semantics instruction-for-instruction: a
// switch on the program counter, one case per instruction, executed
// in an outer loop exactly the way cpu.CPU.Step drives execution.
func EmitC(prog *isa.Program) string {
	var b strings.Builder

	b.WriteString("#include <stdint.h>\n#include <stdio.h>\n\n")
	b.WriteString(fmt.Sprintf("#define MEM_SIZE %d\n\n", 65536))
	b.WriteString("static uint8_t mem[MEM_SIZE];\n\n")
	b.WriteString("static uint32_t load8(uint32_t a) { return mem[a]; }\n")
	b.WriteString("static uint32_t load16(uint32_t a) { return mem[a] | (mem[a+1]<<8); }\n")
	b.WriteString("static uint32_t load32(uint32_t a) { return mem[a] | (mem[a+1]<<8) | (mem[a+2]<<16) | ((uint32_t)mem[a+3]<<24); }\n")
	b.WriteString("static void store8(uint32_t a, uint32_t v) { mem[a] = (uint8_t)v; }\n")
	b.WriteString("static void store16(uint32_t a, uint32_t v) { mem[a] = (uint8_t)v; mem[a+1] = (uint8_t)(v>>8); }\n")
	b.WriteString("static void store32(uint32_t a, uint32_t v) { mem[a] = (uint8_t)v; mem[a+1] = (uint8_t)(v>>8); mem[a+2] = (uint8_t)(v>>16); mem[a+3] = (uint8_t)(v>>24); }\n\n")

	b.WriteString("int main(void) {\n")
	b.WriteString("    int32_t x[32] = {0};\n")
	b.WriteString("    uint32_t pc = 0;\n")
	b.WriteString(fmt.Sprintf("    x[2] = MEM_SIZE - 4;\n\n"))
	b.WriteString("    for (;;) {\n")
	b.WriteString("        x[0] = 0;\n")
	b.WriteString("        switch (pc) {\n")

	for i, inst := range prog.Instructions {
		pc := uint32(i) * 4
		b.WriteString(fmt.Sprintf("        case %d: {\n", pc))
		if line := sourceLineFor(prog, inst); line != "" {
			b.WriteString(fmt.Sprintf("            // %s\n", line))
		}
		b.WriteString(cBody(prog, inst, pc))
		b.WriteString("            break;\n        }\n")
	}

	b.WriteString("        default:\n            return 0;\n")
	b.WriteString("        }\n    }\n}\n")

	return b.String()
}

func sourceLineFor(prog *isa.Program, inst isa.Instruction) string {
	if inst.SrcLine < 0 || inst.SrcLine >= len(prog.SourceLines) {
		return ""
	}
	return strings.TrimSpace(prog.SourceLines[inst.SrcLine])
}

// cBody emits the C statements for one instruction: the effect itself
// followed by the pc update, mirroring cpu.execute's per-op dispatch.
func cBody(prog *isa.Program, inst isa.Instruction, pc uint32) string {
	const indent = "            "
	rd, rs1, rs2 := inst.Rd, inst.Rs1, inst.Rs2
	imm := inst.Imm

	switch inst.Op {
	case isa.OpADDI:
		return fmt.Sprintf("%sx[%d] = x[%d] + %d;\n%spc = %d;\n", indent, rd, rs1, imm, indent, pc+4)
	case isa.OpANDI:
		return fmt.Sprintf("%sx[%d] = x[%d] & %d;\n%spc = %d;\n", indent, rd, rs1, imm, indent, pc+4)
	case isa.OpORI:
		return fmt.Sprintf("%sx[%d] = x[%d] | %d;\n%spc = %d;\n", indent, rd, rs1, imm, indent, pc+4)
	case isa.OpXORI:
		return fmt.Sprintf("%sx[%d] = x[%d] ^ %d;\n%spc = %d;\n", indent, rd, rs1, imm, indent, pc+4)
	case isa.OpSLTI:
		return fmt.Sprintf("%sx[%d] = (x[%d] < %d) ? 1 : 0;\n%spc = %d;\n", indent, rd, rs1, imm, indent, pc+4)
	case isa.OpSLTIU:
		return fmt.Sprintf("%sx[%d] = ((uint32_t)x[%d] < (uint32_t)%d) ? 1 : 0;\n%spc = %d;\n", indent, rd, rs1, imm, indent, pc+4)
	case isa.OpSLLI:
		return fmt.Sprintf("%sx[%d] = x[%d] << (%d & 0x1F);\n%spc = %d;\n", indent, rd, rs1, imm, indent, pc+4)
	case isa.OpSRLI:
		return fmt.Sprintf("%sx[%d] = (int32_t)((uint32_t)x[%d] >> (%d & 0x1F));\n%spc = %d;\n", indent, rd, rs1, imm, indent, pc+4)
	case isa.OpSRAI:
		return fmt.Sprintf("%sx[%d] = x[%d] >> (%d & 0x1F);\n%spc = %d;\n", indent, rd, rs1, imm, indent, pc+4)

	case isa.OpADD:
		return fmt.Sprintf("%sx[%d] = x[%d] + x[%d];\n%spc = %d;\n", indent, rd, rs1, rs2, indent, pc+4)
	case isa.OpSUB:
		return fmt.Sprintf("%sx[%d] = x[%d] - x[%d];\n%spc = %d;\n", indent, rd, rs1, rs2, indent, pc+4)
	case isa.OpAND:
		return fmt.Sprintf("%sx[%d] = x[%d] & x[%d];\n%spc = %d;\n", indent, rd, rs1, rs2, indent, pc+4)
	case isa.OpOR:
		return fmt.Sprintf("%sx[%d] = x[%d] | x[%d];\n%spc = %d;\n", indent, rd, rs1, rs2, indent, pc+4)
	case isa.OpXOR:
		return fmt.Sprintf("%sx[%d] = x[%d] ^ x[%d];\n%spc = %d;\n", indent, rd, rs1, rs2, indent, pc+4)
	case isa.OpSLT:
		return fmt.Sprintf("%sx[%d] = (x[%d] < x[%d]) ? 1 : 0;\n%spc = %d;\n", indent, rd, rs1, rs2, indent, pc+4)
	case isa.OpSLTU:
		return fmt.Sprintf("%sx[%d] = ((uint32_t)x[%d] < (uint32_t)x[%d]) ? 1 : 0;\n%spc = %d;\n", indent, rd, rs1, rs2, indent, pc+4)
	case isa.OpSLL:
		return fmt.Sprintf("%sx[%d] = x[%d] << (x[%d] & 0x1F);\n%spc = %d;\n", indent, rd, rs1, rs2, indent, pc+4)
	case isa.OpSRL:
		return fmt.Sprintf("%sx[%d] = (int32_t)((uint32_t)x[%d] >> (x[%d] & 0x1F));\n%spc = %d;\n", indent, rd, rs1, rs2, indent, pc+4)
	case isa.OpSRA:
		return fmt.Sprintf("%sx[%d] = x[%d] >> (x[%d] & 0x1F);\n%spc = %d;\n", indent, rd, rs1, rs2, indent, pc+4)

	case isa.OpMUL:
		return fmt.Sprintf("%sx[%d] = x[%d] * x[%d];\n%spc = %d;\n", indent, rd, rs1, rs2, indent, pc+4)
	case isa.OpMULH:
		return fmt.Sprintf("%sx[%d] = (int32_t)(((int64_t)x[%d] * (int64_t)x[%d]) >> 32);\n%spc = %d;\n", indent, rd, rs1, rs2, indent, pc+4)
	case isa.OpMULHSU:
		return fmt.Sprintf("%sx[%d] = (int32_t)(((int64_t)x[%d] * (int64_t)(uint32_t)x[%d]) >> 32);\n%spc = %d;\n", indent, rd, rs1, rs2, indent, pc+4)
	case isa.OpMULHU:
		return fmt.Sprintf("%sx[%d] = (int32_t)(((uint64_t)(uint32_t)x[%d] * (uint64_t)(uint32_t)x[%d]) >> 32);\n%spc = %d;\n", indent, rd, rs1, rs2, indent, pc+4)
	case isa.OpDIV:
		return fmt.Sprintf("%sx[%d] = (x[%d] == 0) ? -1 : (x[%d] == INT32_MIN && x[%d] == -1) ? INT32_MIN : x[%d] / x[%d];\n%spc = %d;\n",
			indent, rd, rs2, rs1, rs2, rs1, rs2, indent, pc+4)
	case isa.OpDIVU:
		return fmt.Sprintf("%sx[%d] = (x[%d] == 0) ? -1 : (int32_t)((uint32_t)x[%d] / (uint32_t)x[%d]);\n%spc = %d;\n",
			indent, rd, rs2, rs1, rs2, indent, pc+4)
	case isa.OpREM:
		return fmt.Sprintf("%sx[%d] = (x[%d] == 0) ? x[%d] : (x[%d] == INT32_MIN && x[%d] == -1) ? 0 : x[%d] %% x[%d];\n%spc = %d;\n",
			indent, rd, rs2, rs1, rs1, rs2, rs1, rs2, indent, pc+4)
	case isa.OpREMU:
		return fmt.Sprintf("%sx[%d] = (x[%d] == 0) ? x[%d] : (int32_t)((uint32_t)x[%d] %% (uint32_t)x[%d]);\n%spc = %d;\n",
			indent, rd, rs2, rs1, rs1, rs2, indent, pc+4)

	case isa.OpLB:
		return fmt.Sprintf("%sx[%d] = (int8_t)load8((uint32_t)(x[%d] + %d));\n%spc = %d;\n", indent, rd, rs1, imm, indent, pc+4)
	case isa.OpLBU:
		return fmt.Sprintf("%sx[%d] = load8((uint32_t)(x[%d] + %d));\n%spc = %d;\n", indent, rd, rs1, imm, indent, pc+4)
	case isa.OpLH:
		return fmt.Sprintf("%sx[%d] = (int16_t)load16((uint32_t)(x[%d] + %d));\n%spc = %d;\n", indent, rd, rs1, imm, indent, pc+4)
	case isa.OpLHU:
		return fmt.Sprintf("%sx[%d] = load16((uint32_t)(x[%d] + %d));\n%spc = %d;\n", indent, rd, rs1, imm, indent, pc+4)
	case isa.OpLW:
		return fmt.Sprintf("%sx[%d] = (int32_t)load32((uint32_t)(x[%d] + %d));\n%spc = %d;\n", indent, rd, rs1, imm, indent, pc+4)

	case isa.OpSB:
		return fmt.Sprintf("%sstore8((uint32_t)(x[%d] + %d), (uint32_t)x[%d]);\n%spc = %d;\n", indent, rs1, imm, rs2, indent, pc+4)
	case isa.OpSH:
		return fmt.Sprintf("%sstore16((uint32_t)(x[%d] + %d), (uint32_t)x[%d]);\n%spc = %d;\n", indent, rs1, imm, rs2, indent, pc+4)
	case isa.OpSW:
		return fmt.Sprintf("%sstore32((uint32_t)(x[%d] + %d), (uint32_t)x[%d]);\n%spc = %d;\n", indent, rs1, imm, rs2, indent, pc+4)

	case isa.OpJAL:
		return fmt.Sprintf("%sx[%d] = %d;\n%spc = %d;\n", indent, rd, pc+4, indent, inst.TargetPC)
	case isa.OpJALR:
		return fmt.Sprintf("%s{ uint32_t t = ((uint32_t)(x[%d] + %d)) & ~1u; x[%d] = %d; pc = t; }\n", indent, rs1, imm, rd, pc+4)

	case isa.OpBEQ:
		return cBranch(indent, "==", rs1, rs2, pc, inst.TargetPC, false)
	case isa.OpBNE:
		return cBranch(indent, "!=", rs1, rs2, pc, inst.TargetPC, false)
	case isa.OpBLT:
		return cBranch(indent, "<", rs1, rs2, pc, inst.TargetPC, false)
	case isa.OpBGE:
		return cBranch(indent, ">=", rs1, rs2, pc, inst.TargetPC, false)
	case isa.OpBLTU:
		return cBranch(indent, "<", rs1, rs2, pc, inst.TargetPC, true)
	case isa.OpBGEU:
		return cBranch(indent, ">=", rs1, rs2, pc, inst.TargetPC, true)

	case isa.OpLUI:
		return fmt.Sprintf("%sx[%d] = %d << 12;\n%spc = %d;\n", indent, rd, imm, indent, pc+4)
	case isa.OpAUIPC:
		return fmt.Sprintf("%sx[%d] = %d + (%d << 12);\n%spc = %d;\n", indent, rd, pc, imm, indent, pc+4)

	case isa.OpECALL:
		return fmt.Sprintf("%spc = %d;\n", indent, pc+4)

	default:
		return fmt.Sprintf("%sreturn 1;\n", indent)
	}
}

func cBranch(indent, op string, rs1, rs2 int, pc uint32, target uint32, unsigned bool) string {
	lhs, rhs := fmt.Sprintf("x[%d]", rs1), fmt.Sprintf("x[%d]", rs2)
	if unsigned {
		lhs, rhs = "(uint32_t)"+lhs, "(uint32_t)"+rhs
	}
	return fmt.Sprintf("%spc = (%s %s %s) ? %d : %d;\n", indent, lhs, op, rhs, target, pc+4)
}
