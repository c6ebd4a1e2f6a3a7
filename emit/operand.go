// Package emit renders an assembled isa.Program as human-readable
// views: a linear disassembly, a low-level C mirror ("switch(pc)"),
// and a symbol-aware "C-like" explainer.
package emit

import (
	"fmt"
	"sort"

	"github.com/lookbusy1344/riscv-sim/isa"
)

// abiNames gives the ABI register name for xN, used by every emitter
// so operand formatting is consistent across views.
var abiNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// RegName returns the ABI name for register n.
func RegName(n int) string {
	if n < 0 || n > 31 {
		return fmt.Sprintf("x%d", n)
	}
	return abiNames[n]
}

// ResolveTarget renders an address (a branch/jump target, or a
// constant-valued pointer in the C-like view) preferring a bound label
// name, then a #sym symbol name, and only falling back to a bare hex
// address when neither is defined there. When more than one name is
// bound to the same address, the lexicographically first is used for
// determinism.
func ResolveTarget(prog *isa.Program, addr uint32) string {
	if names := prog.LabelsAt(addr); len(names) > 0 {
		sort.Strings(names)
		return names[0]
	}
	if name, ok := symbolNameAt(prog, addr); ok {
		return name
	}
	return fmt.Sprintf("0x%08X", addr)
}

// symbolNameAt returns the #sym name bound to addr, if any.
func symbolNameAt(prog *isa.Program, addr uint32) (string, bool) {
	var match string
	for name, v := range prog.Symbols {
		if v != addr {
			continue
		}
		if match == "" || name < match {
			match = name
		}
	}
	return match, match != ""
}

// FormatOperand renders one instruction's operand list in canonical
// assembly syntax for the given instruction, preferring label names
// for branch/jump targets.
func FormatOperand(prog *isa.Program, inst isa.Instruction) string {
	switch op := inst.Op; {
	case isRRR(op):
		return fmt.Sprintf("%s, %s, %s", RegName(inst.Rd), RegName(inst.Rs1), RegName(inst.Rs2))
	case isRRI(op):
		return fmt.Sprintf("%s, %s, %d", RegName(inst.Rd), RegName(inst.Rs1), inst.Imm)
	case isLoad(op):
		return fmt.Sprintf("%s, %d(%s)", RegName(inst.Rd), inst.Imm, RegName(inst.Rs1))
	case isStore(op):
		return fmt.Sprintf("%s, %d(%s)", RegName(inst.Rs2), inst.Imm, RegName(inst.Rs1))
	case op == isa.OpJAL:
		return fmt.Sprintf("%s, %s", RegName(inst.Rd), ResolveTarget(prog, inst.TargetPC))
	case op == isa.OpJALR:
		return fmt.Sprintf("%s, %d(%s)", RegName(inst.Rd), inst.Imm, RegName(inst.Rs1))
	case op.IsBranch():
		return fmt.Sprintf("%s, %s, %s", RegName(inst.Rs1), RegName(inst.Rs2), ResolveTarget(prog, inst.TargetPC))
	case op == isa.OpLUI, op == isa.OpAUIPC:
		return fmt.Sprintf("%s, %#x", RegName(inst.Rd), uint32(inst.Imm))
	case op == isa.OpECALL:
		return ""
	default:
		return ""
	}
}

func isRRR(op isa.Op) bool {
	switch op {
	case isa.OpADD, isa.OpSUB, isa.OpAND, isa.OpOR, isa.OpXOR,
		isa.OpSLT, isa.OpSLTU, isa.OpSLL, isa.OpSRL, isa.OpSRA,
		isa.OpMUL, isa.OpMULH, isa.OpMULHSU, isa.OpMULHU,
		isa.OpDIV, isa.OpDIVU, isa.OpREM, isa.OpREMU:
		return true
	}
	return false
}

func isRRI(op isa.Op) bool {
	switch op {
	case isa.OpADDI, isa.OpANDI, isa.OpORI, isa.OpXORI,
		isa.OpSLTI, isa.OpSLTIU, isa.OpSLLI, isa.OpSRLI, isa.OpSRAI:
		return true
	}
	return false
}

func isLoad(op isa.Op) bool {
	switch op {
	case isa.OpLB, isa.OpLBU, isa.OpLH, isa.OpLHU, isa.OpLW:
		return true
	}
	return false
}

func isStore(op isa.Op) bool {
	switch op {
	case isa.OpSB, isa.OpSH, isa.OpSW:
		return true
	}
	return false
}
