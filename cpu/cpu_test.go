package cpu

import (
	"testing"

	"github.com/lookbusy1344/riscv-sim/isa"
	"github.com/lookbusy1344/riscv-sim/mem"
)

func newTestCPU() (*CPU, *mem.Memory) {
	m := mem.New(256)
	return New(m), m
}

func TestReset_InitializesStackPointer(t *testing.T) {
	c, m := newTestCPU()
	if c.Regs[2] != int32(uint32(m.Size()-4)) {
		t.Fatalf("expected x2 = %d, got %d", m.Size()-4, c.Regs[2])
	}
	if c.PC != 0 {
		t.Fatalf("expected pc = 0, got %d", c.PC)
	}
}

func TestRegisterZeroAlwaysReadsZero(t *testing.T) {
	c, _ := newTestCPU()
	prog := &isa.Program{Instructions: []isa.Instruction{
		{Op: isa.OpADDI, Rd: 0, Rs1: 0, Imm: 42},
	}}
	res := c.Step(prog)
	if res.Trap != nil {
		t.Fatalf("unexpected trap: %v", res.Trap)
	}
	if c.Regs[0] != 0 {
		t.Fatalf("x0 must stay zero, got %d", c.Regs[0])
	}
	for _, e := range res.Effects {
		if re, ok := e.(isa.RegEffect); ok && re.Reg == 0 {
			t.Fatalf("write to x0 must not emit a RegEffect")
		}
	}
}

func TestADDI_EmitsRegAndPCEffects(t *testing.T) {
	c, _ := newTestCPU()
	prog := &isa.Program{Instructions: []isa.Instruction{
		{Op: isa.OpADDI, Rd: 5, Rs1: 0, Imm: 10},
	}}
	res := c.Step(prog)
	if res.Trap != nil {
		t.Fatalf("unexpected trap: %v", res.Trap)
	}
	if c.Regs[5] != 10 {
		t.Fatalf("expected x5=10, got %d", c.Regs[5])
	}
	if len(res.Effects) != 2 {
		t.Fatalf("expected 2 effects (reg, pc), got %d: %+v", len(res.Effects), res.Effects)
	}
	reg, ok := res.Effects[0].(isa.RegEffect)
	if !ok || reg.Reg != 5 || reg.After != 10 {
		t.Fatalf("expected RegEffect{5, after=10}, got %+v", res.Effects[0])
	}
	pc, ok := res.Effects[1].(isa.PCEffect)
	if !ok || pc.Before != 0 || pc.After != 4 {
		t.Fatalf("expected PCEffect{0,4}, got %+v", res.Effects[1])
	}
}

func TestEqualRegisterWriteEmitsNoRegEffect(t *testing.T) {
	c, _ := newTestCPU()
	prog := &isa.Program{Instructions: []isa.Instruction{
		{Op: isa.OpADDI, Rd: 5, Rs1: 0, Imm: 0},
	}}
	res := c.Step(prog)
	if len(res.Effects) != 1 {
		t.Fatalf("expected only the PC effect, got %+v", res.Effects)
	}
	if _, ok := res.Effects[0].(isa.PCEffect); !ok {
		t.Fatalf("expected a PCEffect, got %+v", res.Effects[0])
	}
}

func TestJALR_ReturnAddressWrittenBeforeTarget(t *testing.T) {
	// addi x1,x0,11 ; addi x9,x0,0 ; jalr x2,1(x1) ; addi x3,x0,0xdead
	c, _ := newTestCPU()
	prog := &isa.Program{Instructions: []isa.Instruction{
		{Op: isa.OpADDI, Rd: 1, Rs1: 0, Imm: 11},
		{Op: isa.OpADDI, Rd: 9, Rs1: 0, Imm: 0},
		{Op: isa.OpJALR, Rd: 2, Rs1: 1, Imm: 1},
		{Op: isa.OpADDI, Rd: 3, Rs1: 0, Imm: 0xdead},
	}}
	c.StepMany(prog, 3)
	if c.Regs[2] != 12 {
		t.Fatalf("expected x2=12, got %d", c.Regs[2])
	}
	if c.PC != 12 {
		t.Fatalf("expected pc=12, got %d", c.PC)
	}
	c.Step(prog)
	if c.Regs[3] != 0xdead {
		t.Fatalf("expected x3=0xdead, got %#x", c.Regs[3])
	}
}

func TestLUI(t *testing.T) {
	c, _ := newTestCPU()
	prog := &isa.Program{Instructions: []isa.Instruction{
		{Op: isa.OpLUI, Rd: 5, Imm: 0x12345},
	}}
	c.Step(prog)
	if c.Regs[5] != 0x12345000 {
		t.Fatalf("expected x5=0x12345000, got %#x", c.Regs[5])
	}
	res := c.Step(prog)
	if res.Trap == nil || res.Trap.Code != isa.TrapPCOOB {
		t.Fatalf("expected PC_OOB on second step, got %+v", res.Trap)
	}
}

func TestDivByZero(t *testing.T) {
	c, _ := newTestCPU()
	c.Regs[1] = 7
	c.Regs[2] = 0
	prog := &isa.Program{Instructions: []isa.Instruction{
		{Op: isa.OpDIV, Rd: 3, Rs1: 1, Rs2: 2},
		{Op: isa.OpDIVU, Rd: 4, Rs1: 1, Rs2: 2},
		{Op: isa.OpREM, Rd: 5, Rs1: 1, Rs2: 2},
		{Op: isa.OpREMU, Rd: 6, Rs1: 1, Rs2: 2},
	}}
	c.StepMany(prog, 4)
	if c.Regs[3] != -1 {
		t.Fatalf("DIV by zero: expected quotient -1, got %d", c.Regs[3])
	}
	if uint32(c.Regs[4]) != 0xFFFFFFFF {
		t.Fatalf("DIVU by zero: expected 0xFFFFFFFF, got %#x", uint32(c.Regs[4]))
	}
	if c.Regs[5] != 7 {
		t.Fatalf("REM by zero: expected dividend 7, got %d", c.Regs[5])
	}
	if c.Regs[6] != 7 {
		t.Fatalf("REMU by zero: expected dividend 7, got %d", c.Regs[6])
	}
}

func TestDivOverflow(t *testing.T) {
	c, _ := newTestCPU()
	c.Regs[1] = -2147483648
	c.Regs[2] = -1
	prog := &isa.Program{Instructions: []isa.Instruction{
		{Op: isa.OpDIV, Rd: 3, Rs1: 1, Rs2: 2},
		{Op: isa.OpREM, Rd: 4, Rs1: 1, Rs2: 2},
	}}
	c.StepMany(prog, 2)
	if c.Regs[3] != -2147483648 {
		t.Fatalf("expected quotient INT_MIN, got %d", c.Regs[3])
	}
	if c.Regs[4] != 0 {
		t.Fatalf("expected remainder 0, got %d", c.Regs[4])
	}
}

func TestStoreEmitsMemEffectUnconditionally(t *testing.T) {
	c, _ := newTestCPU()
	prog := &isa.Program{Instructions: []isa.Instruction{
		{Op: isa.OpSW, Rs1: 0, Rs2: 0, Imm: 16},
		{Op: isa.OpSW, Rs1: 0, Rs2: 0, Imm: 16},
	}}
	c.Step(prog)
	res := c.Step(prog)
	if res.Trap != nil {
		t.Fatalf("unexpected trap: %v", res.Trap)
	}
	hasMem := false
	for _, e := range res.Effects {
		if _, ok := e.(isa.MemEffect); ok {
			hasMem = true
		}
	}
	if !hasMem {
		t.Fatalf("expected a MemEffect for a store that leaves memory unchanged, got %+v", res.Effects)
	}
	v, err := c.Mem.LoadWord(16)
	if err != nil || v != 0 {
		t.Fatalf("expected zero stored at 16, got %d err=%v", v, err)
	}
}

func TestUnalignedWordLoadTraps(t *testing.T) {
	c, _ := newTestCPU()
	c.Regs[1] = 1
	prog := &isa.Program{Instructions: []isa.Instruction{
		{Op: isa.OpLW, Rd: 2, Rs1: 1, Imm: 0},
	}}
	res := c.Step(prog)
	if res.Trap == nil || res.Trap.Code != isa.TrapBadAlignment {
		t.Fatalf("expected BAD_ALIGNMENT, got %+v", res.Trap)
	}
}

func TestStickyTrap(t *testing.T) {
	c, _ := newTestCPU()
	prog := &isa.Program{Instructions: []isa.Instruction{
		{Op: isa.OpLW, Rd: 1, Rs1: 0, Imm: 1000},
	}}
	first := c.Step(prog)
	if first.Trap == nil || first.Trap.Code != isa.TrapOOBMemory {
		t.Fatalf("expected OOB_MEMORY, got %+v", first.Trap)
	}
	second := c.Step(prog)
	if second.Trap != first.Trap {
		t.Fatalf("expected the same sticky trap to be returned again")
	}
	c.Reset()
	third := c.Step(prog)
	if third.Trap == nil {
		t.Fatalf("expected trap to still occur after reset re-executes the same instruction")
	}
	if third.Trap == first.Trap {
		t.Fatalf("expected reset to clear the sticky trap and produce a fresh one")
	}
}

func TestStepManyStopsOnStepLimit(t *testing.T) {
	c, _ := newTestCPU()
	c.MaxStepMany = 3
	// an infinite loop: jal x0, 0
	prog := &isa.Program{Instructions: []isa.Instruction{
		{Op: isa.OpJAL, Rd: 0, TargetPC: 0},
	}}
	res := c.StepMany(prog, 100)
	if res.Trap == nil || res.Trap.Code != isa.TrapStepLimit {
		t.Fatalf("expected STEP_LIMIT, got %+v", res.Trap)
	}
	if !res.Halted {
		t.Fatalf("expected Halted=true on STEP_LIMIT")
	}
}

func TestBranchNotTakenFallsThrough(t *testing.T) {
	c, _ := newTestCPU()
	prog := &isa.Program{Instructions: []isa.Instruction{
		{Op: isa.OpBEQ, Rs1: 0, Rs2: 1, TargetPC: 100},
		{Op: isa.OpADDI, Rd: 1, Rs1: 0, Imm: 1},
	}}
	c.Regs[1] = 5
	c.StepMany(prog, 1)
	if c.PC != 4 {
		t.Fatalf("expected fallthrough to pc=4, got %d", c.PC)
	}
}
