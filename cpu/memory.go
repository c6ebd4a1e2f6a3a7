package cpu

import (
	"errors"

	"github.com/lookbusy1344/riscv-sim/isa"
	"github.com/lookbusy1344/riscv-sim/mem"
)

// execLoad handles LB/LBU/LH/LHU/LW. Memory errors (bounds or
// alignment) become traps; which trap code depends on why the access
// failed.
func (c *CPU) execLoad(inst isa.Instruction) ([]isa.Effect, *isa.Trap) {
	addr := uint32(c.reg(inst.Rs1) + inst.Imm)

	var value int32
	switch inst.Op {
	case isa.OpLB:
		b, err := c.Mem.LoadByte(addr)
		if err != nil {
			return nil, memTrap(err)
		}
		value = int32(int8(b))
	case isa.OpLBU:
		b, err := c.Mem.LoadByte(addr)
		if err != nil {
			return nil, memTrap(err)
		}
		value = int32(b)
	case isa.OpLH:
		h, err := c.Mem.LoadHalf(addr)
		if err != nil {
			return nil, memTrap(err)
		}
		value = int32(int16(h))
	case isa.OpLHU:
		h, err := c.Mem.LoadHalf(addr)
		if err != nil {
			return nil, memTrap(err)
		}
		value = int32(h)
	case isa.OpLW:
		w, err := c.Mem.LoadWord(addr)
		if err != nil {
			return nil, memTrap(err)
		}
		value = w
	}

	return c.writeRegEffect(inst.Rd, value)
}

// execStore handles SB/SH/SW. A MemEffect is emitted unconditionally
// on every successful store, even one that writes back the same
// bytes.
func (c *CPU) execStore(inst isa.Instruction) ([]isa.Effect, *isa.Trap) {
	addr := uint32(c.reg(inst.Rs1) + inst.Imm)
	value := c.reg(inst.Rs2)

	var res struct {
		before, after []byte
		size          int
	}

	switch inst.Op {
	case isa.OpSB:
		r, err := c.Mem.StoreByte(addr, byte(value))
		if err != nil {
			return nil, memTrap(err)
		}
		res.before, res.after, res.size = r.Before, r.After, 1
	case isa.OpSH:
		r, err := c.Mem.StoreHalf(addr, uint16(value))
		if err != nil {
			return nil, memTrap(err)
		}
		res.before, res.after, res.size = r.Before, r.After, 2
	case isa.OpSW:
		r, err := c.Mem.StoreWord(addr, uint32(value))
		if err != nil {
			return nil, memTrap(err)
		}
		res.before, res.after, res.size = r.Before, r.After, 4
	}

	return []isa.Effect{isa.MemEffect{
		Addr:        addr,
		Size:        res.size,
		BeforeBytes: res.before,
		AfterBytes:  res.after,
	}}, nil
}

// memTrap classifies a mem package error into the BAD_ALIGNMENT or
// OOB_MEMORY trap code.
func memTrap(err error) *isa.Trap {
	var alignErr *mem.AlignmentError
	if errors.As(err, &alignErr) {
		return trap(isa.TrapBadAlignment, "%s", err.Error())
	}
	return trap(isa.TrapOOBMemory, "%s", err.Error())
}
