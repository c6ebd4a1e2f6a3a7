package cpu

import "github.com/lookbusy1344/riscv-sim/isa"

// execALU handles the integer-immediate and integer-register ALU
// families. Shifts use the low 5 bits of the shift amount, matching
// RV32I's 32-bit word width.
func (c *CPU) execALU(inst isa.Instruction) ([]isa.Effect, *isa.Trap) {
	a := c.reg(inst.Rs1)
	var b int32
	if isRegALU(inst.Op) {
		b = c.reg(inst.Rs2)
	} else {
		b = inst.Imm
	}

	var result int32
	switch inst.Op {
	case isa.OpADDI, isa.OpADD:
		result = a + b
	case isa.OpSUB:
		result = a - b
	case isa.OpANDI, isa.OpAND:
		result = a & b
	case isa.OpORI, isa.OpOR:
		result = a | b
	case isa.OpXORI, isa.OpXOR:
		result = a ^ b
	case isa.OpSLTI, isa.OpSLT:
		if a < b {
			result = 1
		}
	case isa.OpSLTIU, isa.OpSLTU:
		if uint32(a) < uint32(b) {
			result = 1
		}
	case isa.OpSLLI, isa.OpSLL:
		result = a << (uint32(b) & 0x1F)
	case isa.OpSRLI, isa.OpSRL:
		result = int32(uint32(a) >> (uint32(b) & 0x1F))
	case isa.OpSRAI, isa.OpSRA:
		result = a >> (uint32(b) & 0x1F)
	}

	return c.writeRegEffect(inst.Rd, result)
}

func isRegALU(op isa.Op) bool {
	switch op {
	case isa.OpADD, isa.OpSUB, isa.OpAND, isa.OpOR, isa.OpXOR,
		isa.OpSLT, isa.OpSLTU, isa.OpSLL, isa.OpSRL, isa.OpSRA:
		return true
	}
	return false
}
