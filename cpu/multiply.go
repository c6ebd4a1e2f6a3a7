package cpu

import "github.com/lookbusy1344/riscv-sim/isa"

// execMul handles the M-extension register-register ops, including the
// RISC-V-mandated corner cases for division by zero and signed
// overflow (INT_MIN / -1).
func (c *CPU) execMul(inst isa.Instruction) ([]isa.Effect, *isa.Trap) {
	a := c.reg(inst.Rs1)
	b := c.reg(inst.Rs2)
	ua := uint32(a)
	ub := uint32(b)

	var result int32
	switch inst.Op {
	case isa.OpMUL:
		result = a * b

	case isa.OpMULH:
		result = int32((int64(a) * int64(b)) >> 32)

	case isa.OpMULHSU:
		result = int32((int64(a) * int64(ub)) >> 32)

	case isa.OpMULHU:
		result = int32((uint64(ua) * uint64(ub)) >> 32)

	case isa.OpDIV:
		switch {
		case b == 0:
			result = -1
		case a == -2147483648 && b == -1:
			result = a
		default:
			result = a / b
		}

	case isa.OpDIVU:
		if b == 0 {
			result = -1
		} else {
			result = int32(ua / ub)
		}

	case isa.OpREM:
		switch {
		case b == 0:
			result = a
		case a == -2147483648 && b == -1:
			result = 0
		default:
			result = a % b
		}

	case isa.OpREMU:
		if b == 0 {
			result = a
		} else {
			result = int32(ua % ub)
		}
	}

	return c.writeRegEffect(inst.Rd, result)
}
