package emit

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/riscv-sim/isa"
)

// EmitCLike renders prog as symbol-aware pseudo-C prose. It walks the
// program once, maintaining two non-flow-sensitive maps (no merging
// across branches, no invalidation beyond an overwritten register):
//
//   - regConst: a register known to hold a constant value (addi rd,x0,imm;
//     lui; auipc; or addi propagated from another known constant).
//   - regPtrFromVar: a register loaded from a known-constant address via
//     lw rd,0(rs1), kept for pointer-dereference readback annotations.
//
// `beq rs, rs, L` is rewritten as `goto L;`, and a load or store through
// a known constant base with a zero offset is rendered as a
// `*(T*)SYMBOL`-style dereference. This is a best-effort human-readable
// view; correctness is cosmetic, not semantic.
func EmitCLike(prog *isa.Program) string {
	var b strings.Builder
	regConst := make(map[int]int32)
	regPtrFromVar := make(map[int]uint32)

	for i, inst := range prog.Instructions {
		pc := uint32(i) * 4
		for _, name := range sortedLabelsAt(prog, pc) {
			b.WriteString(name + ":\n")
		}

		b.WriteString(fmt.Sprintf("  0x%08X: %s\n", pc, cLikeStatement(prog, inst, regConst, regPtrFromVar)))

		updateConst(inst, pc, regConst, regPtrFromVar)
	}

	for _, name := range sortedLabelsAt(prog, prog.EndPC()) {
		b.WriteString(name + ":\n")
	}

	return b.String()
}

// updateConst records or invalidates regConst[rd] and regPtrFromVar[rd]
// using only the current instruction's own semantics, never flow
// across branches. Any write to rd invalidates both maps for rd unless
// the instruction itself produces a known constant or a known
// pointer-readback.
func updateConst(inst isa.Instruction, pc uint32, regConst map[int]int32, regPtrFromVar map[int]uint32) {
	if inst.Rd == 0 {
		return
	}

	switch inst.Op {
	case isa.OpADDI:
		if inst.Rs1 == 0 {
			regConst[inst.Rd] = inst.Imm
			delete(regPtrFromVar, inst.Rd)
			return
		}
		if v, ok := regConst[inst.Rs1]; ok {
			regConst[inst.Rd] = v + inst.Imm
			delete(regPtrFromVar, inst.Rd)
			return
		}
	case isa.OpLUI:
		regConst[inst.Rd] = inst.Imm << 12
		delete(regPtrFromVar, inst.Rd)
		return
	case isa.OpAUIPC:
		regConst[inst.Rd] = int32(pc) + (inst.Imm << 12)
		delete(regPtrFromVar, inst.Rd)
		return
	case isa.OpLW:
		if inst.Imm == 0 {
			if base, ok := regConst[inst.Rs1]; ok {
				delete(regConst, inst.Rd)
				regPtrFromVar[inst.Rd] = uint32(base)
				return
			}
		}
	}

	delete(regConst, inst.Rd)
	delete(regPtrFromVar, inst.Rd)
}

func cLikeStatement(prog *isa.Program, inst isa.Instruction, regConst map[int]int32, regPtrFromVar map[int]uint32) string {
	if inst.Op == isa.OpBEQ && inst.Rs1 == inst.Rs2 {
		return fmt.Sprintf("goto %s;", ResolveTarget(prog, inst.TargetPC))
	}

	if stmt, ok := pointerDerefStatement(prog, inst, regConst); ok {
		// Rs1 (the base) is already inlined into the dereference; only
		// a store's value register is worth annotating.
		if isStore(inst.Op) && inst.Rs2 != 0 {
			if v, ok := regConst[inst.Rs2]; ok {
				return stmt + fmt.Sprintf("  // %s=%d", RegName(inst.Rs2), v)
			}
		}
		return stmt
	}

	operand := FormatOperand(prog, inst)
	base := inst.Op.String()
	if operand != "" {
		base = base + " " + operand
	}

	annotations := constAnnotations(prog, inst, regConst, regPtrFromVar)
	if annotations == "" {
		return base
	}
	return base + "  // " + annotations
}

// pointerDerefStatement renders a load or store whose base register
// holds a known constant and whose offset is zero as a *(T*)SYMBOL
// dereference, preferring a label or #sym name over a bare address.
func pointerDerefStatement(prog *isa.Program, inst isa.Instruction, regConst map[int]int32) (string, bool) {
	if inst.Imm != 0 {
		return "", false
	}
	base, ok := regConst[inst.Rs1]
	if !ok {
		return "", false
	}
	addr := ResolveTarget(prog, uint32(base))

	switch inst.Op {
	case isa.OpLB:
		return fmt.Sprintf("%s = *(int8_t*)%s;", RegName(inst.Rd), addr), true
	case isa.OpLBU:
		return fmt.Sprintf("%s = *(uint8_t*)%s;", RegName(inst.Rd), addr), true
	case isa.OpLH:
		return fmt.Sprintf("%s = *(int16_t*)%s;", RegName(inst.Rd), addr), true
	case isa.OpLHU:
		return fmt.Sprintf("%s = *(uint16_t*)%s;", RegName(inst.Rd), addr), true
	case isa.OpLW:
		return fmt.Sprintf("%s = *(int32_t*)%s;", RegName(inst.Rd), addr), true
	case isa.OpSB:
		return fmt.Sprintf("*(uint8_t*)%s = %s;", addr, RegName(inst.Rs2)), true
	case isa.OpSH:
		return fmt.Sprintf("*(uint16_t*)%s = %s;", addr, RegName(inst.Rs2)), true
	case isa.OpSW:
		return fmt.Sprintf("*(uint32_t*)%s = %s;", addr, RegName(inst.Rs2)), true
	default:
		return "", false
	}
}

func constAnnotations(prog *isa.Program, inst isa.Instruction, regConst map[int]int32, regPtrFromVar map[int]uint32) string {
	var parts []string

	annotate := func(reg int) {
		if reg == 0 {
			return
		}
		if v, ok := regConst[reg]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", RegName(reg), v))
			return
		}
		if addr, ok := regPtrFromVar[reg]; ok {
			parts = append(parts, fmt.Sprintf("%s=loaded from %s", RegName(reg), ResolveTarget(prog, addr)))
		}
	}
	annotate(inst.Rs1)
	annotate(inst.Rs2)

	return strings.Join(parts, ", ")
}
