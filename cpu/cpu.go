// Package cpu implements the single-step RV32IM interpreter: register
// file, program counter, and the Step/StepMany execution loop that
// turns an isa.Program into isa.StepResult effect records.
package cpu

import (
	"fmt"

	"github.com/lookbusy1344/riscv-sim/isa"
	"github.com/lookbusy1344/riscv-sim/mem"
)

// CPU holds the architectural register state and a reference to the
// memory it steps against. x0 is always read as zero; writes to it are
// silently discarded, matching RV32I.
type CPU struct {
	Regs [32]int32
	PC   uint32

	Mem *mem.Memory

	// MaxStepMany caps how many iterations a single StepMany call will
	// run, regardless of the n it's asked for. Zero is treated as
	// DefaultMaxStepMany.
	MaxStepMany int

	// stickyTrap holds the first trap an instruction raised since the
	// last Reset or successful Assemble (never STEP_LIMIT, which only
	// reports that a StepMany budget ran out). Once set, Step and StepMany return it
	// immediately without touching CPU or memory state again.
	stickyTrap *isa.Trap
}

// DefaultMaxStepMany is the StepMany iteration cap used when
// CPU.MaxStepMany is left at its zero value.
const DefaultMaxStepMany = 5000

// New creates a CPU wired to m, with the stack pointer (x2) initialized
// to the top of memory per convention.
func New(m *mem.Memory) *CPU {
	c := &CPU{Mem: m, MaxStepMany: DefaultMaxStepMany}
	c.Reset()
	return c
}

// Reset clears registers and PC, reinitializes the stack pointer, and
// clears any sticky trap. Memory is left untouched: it persists across
// reset by design (spec.md §9).
func (c *CPU) Reset() {
	for i := range c.Regs {
		c.Regs[i] = 0
	}
	c.PC = 0
	if c.Mem != nil && c.Mem.Size() >= 4 {
		c.Regs[2] = int32(uint32(c.Mem.Size() - 4))
	}
	c.stickyTrap = nil
}

// reg reads register n, always returning zero for x0.
func (c *CPU) reg(n int) int32 {
	if n == 0 {
		return 0
	}
	return c.Regs[n]
}

// setReg writes register n, discarding writes to x0.
func (c *CPU) setReg(n int, v int32) {
	if n == 0 {
		return
	}
	c.Regs[n] = v
}

func trap(code isa.TrapCode, format string, args ...any) *isa.Trap {
	return &isa.Trap{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Step executes exactly one instruction at the current PC. If a sticky
// trap is already latched, Step returns it again without executing
// anything.
func (c *CPU) Step(prog *isa.Program) isa.StepResult {
	if c.stickyTrap != nil {
		return isa.StepResult{Trap: c.stickyTrap, Halted: true}
	}

	if c.PC%4 != 0 {
		t := trap(isa.TrapBadAlignment, "PC 0x%08X is not word-aligned", c.PC)
		c.stickyTrap = t
		return isa.StepResult{Trap: t, Halted: true}
	}

	idx := c.PC / 4
	if idx >= uint32(len(prog.Instructions)) {
		t := trap(isa.TrapPCOOB, "PC 0x%08X is out of bounds", c.PC)
		c.stickyTrap = t
		return isa.StepResult{Trap: t, Halted: true}
	}

	inst := prog.Instructions[idx]
	res := c.execute(inst)
	res.Inst = inst
	if res.Trap != nil {
		c.stickyTrap = res.Trap
	}
	c.Regs[0] = 0
	return res
}

// StepMany executes up to n instructions, stopping early on halt or
// trap. It returns the StepResult of the last instruction executed; if
// n instructions run without halting or trapping, it returns a
// synthesized STEP_LIMIT trap. n is clamped to MaxStepMany regardless
// of the caller's request.
func (c *CPU) StepMany(prog *isa.Program, n int) isa.StepResult {
	max := c.MaxStepMany
	if max <= 0 {
		max = DefaultMaxStepMany
	}
	if n <= 0 || n > max {
		n = max
	}

	var last isa.StepResult
	for i := 0; i < n; i++ {
		last = c.Step(prog)
		if last.Halted || last.Trap != nil {
			return last
		}
	}

	t := trap(isa.TrapStepLimit, "step limit of %d reached", n)
	return isa.StepResult{Effects: last.Effects, Halted: true, Trap: t}
}
