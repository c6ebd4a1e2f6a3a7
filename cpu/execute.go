package cpu

import "github.com/lookbusy1344/riscv-sim/isa"

// execute dispatches one decoded instruction and assembles its
// StepResult, including the trailing PC effect every non-trapping step
// produces exactly once.
func (c *CPU) execute(inst isa.Instruction) isa.StepResult {
	pcBefore := c.PC
	var effects []isa.Effect
	var tr *isa.Trap
	nextPC := pcBefore + 4

	switch {
	case isALU(inst.Op):
		effects, tr = c.execALU(inst)
	case isMul(inst.Op):
		effects, tr = c.execMul(inst)
	case isLoad(inst.Op):
		effects, tr = c.execLoad(inst)
	case isStore(inst.Op):
		effects, tr = c.execStore(inst)
	case inst.Op.IsBranch():
		var taken bool
		taken, tr = c.evalBranch(inst)
		if tr == nil && taken {
			nextPC = inst.TargetPC
		}
	case inst.Op == isa.OpJAL:
		effects, tr = c.writeRegEffect(inst.Rd, int32(pcBefore+4))
		if tr == nil {
			nextPC = inst.TargetPC
		}
	case inst.Op == isa.OpJALR:
		target := uint32(c.reg(inst.Rs1)+inst.Imm) &^ 1
		effects, tr = c.writeRegEffect(inst.Rd, int32(pcBefore+4))
		if tr == nil {
			nextPC = target
		}
	case inst.Op == isa.OpLUI:
		effects, tr = c.writeRegEffect(inst.Rd, inst.Imm<<12)
	case inst.Op == isa.OpAUIPC:
		effects, tr = c.writeRegEffect(inst.Rd, int32(pcBefore)+(inst.Imm<<12))
	case inst.Op == isa.OpECALL:
		// Resolved as a benign no-op: advances PC like any other
		// instruction, no registers or memory touched.
	default:
		tr = trap(isa.TrapIllegalInstruction, "unknown opcode")
	}

	if tr != nil {
		return isa.StepResult{Effects: effects, Trap: tr, Halted: true}
	}

	if nextPC%4 != 0 {
		return isa.StepResult{Effects: effects, Trap: trap(isa.TrapBadAlignment, "branch target 0x%08X is not word-aligned", nextPC), Halted: true}
	}

	c.PC = nextPC
	effects = append(effects, isa.PCEffect{Before: pcBefore, After: nextPC})
	return isa.StepResult{Effects: effects}
}

// writeRegEffect writes value to reg and returns the effect list to
// append: a single RegEffect when reg != 0 and the value actually
// changes, otherwise none.
func (c *CPU) writeRegEffect(reg int, value int32) ([]isa.Effect, *isa.Trap) {
	before := c.reg(reg)
	c.setReg(reg, value)
	if reg == 0 || before == value {
		return nil, nil
	}
	return []isa.Effect{isa.RegEffect{Reg: reg, Before: before, After: value}}, nil
}

func isALU(op isa.Op) bool {
	switch op {
	case isa.OpADDI, isa.OpANDI, isa.OpORI, isa.OpXORI,
		isa.OpSLTI, isa.OpSLTIU, isa.OpSLLI, isa.OpSRLI, isa.OpSRAI,
		isa.OpADD, isa.OpSUB, isa.OpAND, isa.OpOR, isa.OpXOR,
		isa.OpSLT, isa.OpSLTU, isa.OpSLL, isa.OpSRL, isa.OpSRA:
		return true
	}
	return false
}

func isMul(op isa.Op) bool {
	switch op {
	case isa.OpMUL, isa.OpMULH, isa.OpMULHSU, isa.OpMULHU,
		isa.OpDIV, isa.OpDIVU, isa.OpREM, isa.OpREMU:
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
