package cpu

import "github.com/lookbusy1344/riscv-sim/isa"

// evalBranch evaluates a conditional branch's condition. It never
// writes a register; the caller applies the PC effect.
func (c *CPU) evalBranch(inst isa.Instruction) (taken bool, tr *isa.Trap) {
	a := c.reg(inst.Rs1)
	b := c.reg(inst.Rs2)

	switch inst.Op {
	case isa.OpBEQ:
		taken = a == b
	case isa.OpBNE:
		taken = a != b
	case isa.OpBLT:
		taken = a < b
	case isa.OpBGE:
		taken = a >= b
	case isa.OpBLTU:
		taken = uint32(a) < uint32(b)
	case isa.OpBGEU:
		taken = uint32(a) >= uint32(b)
	}
	return taken, nil
}
