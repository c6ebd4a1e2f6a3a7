// Package sim assembles mem, isa, asm, cpu, and emit into the thin
// facade an outer caller (a CLI command, a debugger, a future
// transport layer) drives: assemble a program, step it, and snapshot
// its state together with the three code views.
package sim

import (
	"github.com/lookbusy1344/riscv-sim/asm"
	"github.com/lookbusy1344/riscv-sim/cpu"
	"github.com/lookbusy1344/riscv-sim/emit"
	"github.com/lookbusy1344/riscv-sim/isa"
	"github.com/lookbusy1344/riscv-sim/mem"
)

// Snapshot is a point-in-time view of a Simulator's state, deliberately
// a plain struct rather than a pre-serialized wire shape.
type Snapshot struct {
	PC     uint32
	Regs   [32]int32
	CLike  string
	RV2C   string
	Disasm []emit.DisasmLine
}

// Simulator owns one program's memory, CPU, and currently assembled
// program. It is single-threaded, matching cpu.CPU and mem.Memory.
type Simulator struct {
	Mem  *mem.Memory
	CPU  *cpu.CPU
	Prog *isa.Program

	AsmOptions asm.Options
}

// NewSimulator creates a Simulator with a memory of memSize bytes (or
// mem.DefaultSize if memSize <= 0) and no program assembled yet.
func NewSimulator(memSize int) *Simulator {
	if memSize <= 0 {
		memSize = mem.DefaultSize
	}
	m := mem.New(memSize)
	return &Simulator{
		Mem:        m,
		CPU:        cpu.New(m),
		AsmOptions: asm.DefaultOptions(),
	}
}

// Assemble replaces s.Prog with the result of assembling source and
// resets CPU state (but not memory), per the core's reset-on-assemble
// contract. On failure, s.Prog is left unchanged.
func (s *Simulator) Assemble(source string) error {
	prog, err := asm.Assemble(source, s.AsmOptions)
	if err != nil {
		return err
	}
	s.Prog = prog
	s.CPU.Reset()
	return nil
}

// Reset clears CPU state without touching memory or the assembled
// program.
func (s *Simulator) Reset() {
	s.CPU.Reset()
}

// Step executes one instruction of the currently assembled program.
func (s *Simulator) Step() isa.StepResult {
	return s.CPU.Step(s.Prog)
}

// StepMany executes up to n instructions of the currently assembled
// program.
func (s *Simulator) StepMany(n int) isa.StepResult {
	return s.CPU.StepMany(s.Prog, n)
}

// Snapshot captures PC, registers, both code views, and a fresh
// disassembly of the current program.
func (s *Simulator) Snapshot() Snapshot {
	return Snapshot{
		PC:     s.CPU.PC,
		Regs:   s.CPU.Regs,
		CLike:  emit.EmitCLike(s.Prog),
		RV2C:   emit.EmitC(s.Prog),
		Disasm: emit.Disassemble(s.Prog),
	}
}
