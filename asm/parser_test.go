package asm_test

import (
	"testing"

	"github.com/lookbusy1344/riscv-sim/asm"
	"github.com/lookbusy1344/riscv-sim/cpu"
	"github.com/lookbusy1344/riscv-sim/isa"
	"github.com/lookbusy1344/riscv-sim/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runToHalt(t *testing.T, source string) (*cpu.CPU, *isa.Program) {
	t.Helper()
	prog, err := asm.Assemble(source, asm.DefaultOptions())
	if err != nil {
		t.Fatalf("Assemble(%q) failed: %v", source, err)
	}
	m := mem.New(mem.DefaultSize)
	c := cpu.New(m)
	for i := 0; i < 1000; i++ {
		res := c.Step(prog)
		if res.Trap != nil {
			return c, prog
		}
	}
	t.Fatalf("program did not halt within 1000 steps")
	return nil, nil
}

func TestScenario1_SequentialADDI(t *testing.T) {
	c, _ := runToHalt(t, "addi x1,x0,5\naddi x2,x0,7\naddi x3,x2,5\n")
	if c.Regs[1] != 5 || c.Regs[2] != 7 || c.Regs[3] != 12 {
		t.Fatalf("got x1=%d x2=%d x3=%d", c.Regs[1], c.Regs[2], c.Regs[3])
	}
}

func TestScenario2_UnsignedBranch(t *testing.T) {
	src := "addi x1,x0,-1\naddi x2,x0,1\nbltu x1,x2,not_taken\naddi x3,x0,123\nnot_taken: bgeu x1,x2,done\naddi x3,x0,999\ndone:\n"
	c, _ := runToHalt(t, src)
	if c.Regs[3] != 123 {
		t.Fatalf("expected x3=123, got %d", c.Regs[3])
	}
	if c.PC != 24 {
		t.Fatalf("expected pc=24, got %d", c.PC)
	}
}

func TestScenario3_SymDirectiveAndStickyStack(t *testing.T) {
	src := "#sym far = 16\naddi x1,x0,1\nbne x1,x0,far\naddi x2,x0,9\n"
	c, _ := runToHalt(t, src)
	if c.PC != 16 {
		t.Fatalf("expected pc=16, got %d", c.PC)
	}
	if uint32(c.Regs[2]) != uint32(mem.DefaultSize-4) {
		t.Fatalf("expected x2=%d (untouched init value), got %d", mem.DefaultSize-4, c.Regs[2])
	}
}

func TestScenario4_StoreLoadRoundTrip(t *testing.T) {
	c, _ := runToHalt(t, "addi x1,x0,20\naddi x2,x0,0x11223344\nsw x2,0(x1)\nlw x3,0(x1)\n")
	if uint32(c.Regs[3]) != 0x11223344 {
		t.Fatalf("expected x3=0x11223344, got %#x", uint32(c.Regs[3]))
	}
}

func TestScenario5_UnalignedLoadTraps(t *testing.T) {
	prog, err := asm.Assemble("addi x1,x0,1\nlw x2,0(x1)\n", asm.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected assemble error: %v", err)
	}
	c := cpu.New(mem.New(mem.DefaultSize))
	c.Step(prog)
	res := c.Step(prog)
	if res.Trap == nil || res.Trap.Code != isa.TrapBadAlignment {
		t.Fatalf("expected BAD_ALIGNMENT, got %+v", res.Trap)
	}
}

func TestScenario6_LUIThenPCOOB(t *testing.T) {
	prog, err := asm.Assemble("lui x5,0x12345\n", asm.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected assemble error: %v", err)
	}
	c := cpu.New(mem.New(mem.DefaultSize))
	res := c.Step(prog)
	if res.Trap != nil {
		t.Fatalf("unexpected trap on first step: %v", res.Trap)
	}
	if uint32(c.Regs[5]) != 0x12345000 {
		t.Fatalf("expected x5=0x12345000, got %#x", uint32(c.Regs[5]))
	}
	res = c.Step(prog)
	if res.Trap == nil || res.Trap.Code != isa.TrapPCOOB {
		t.Fatalf("expected PC_OOB, got %+v", res.Trap)
	}
}

func TestScenario7_JALR(t *testing.T) {
	prog, err := asm.Assemble("addi x1,x0,11\naddi x9,x0,0\njalr x2,1(x1)\naddi x3,x0,0xdead\n", asm.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected assemble error: %v", err)
	}
	c := cpu.New(mem.New(mem.DefaultSize))
	c.StepMany(prog, 3)
	if c.Regs[2] != 12 || c.PC != 12 {
		t.Fatalf("expected x2=12 pc=12, got x2=%d pc=%d", c.Regs[2], c.PC)
	}
	c.Step(prog)
	if uint32(c.Regs[3]) != 0xdead {
		t.Fatalf("expected x3=0xdead, got %#x", uint32(c.Regs[3]))
	}
}

func TestPseudoInstructions(t *testing.T) {
	src := "nop\nmv x1,x2\nj skip\naddi x4,x0,99\nskip: call target\ntarget: ret\n"
	prog, err := asm.Assemble(src, asm.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected assemble error: %v", err)
	}
	if len(prog.Instructions) != 6 {
		t.Fatalf("expected 6 expanded instructions, got %d", len(prog.Instructions))
	}
	if prog.Instructions[0].Op != isa.OpADDI || prog.Instructions[0].Rd != 0 {
		t.Fatalf("nop should expand to addi x0,x0,0, got %+v", prog.Instructions[0])
	}
}

func TestLiWideImmediateSplitsIntoTwoSlots(t *testing.T) {
	prog, err := asm.Assemble("li x5,100000\n", asm.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected assemble error: %v", err)
	}
	if len(prog.Instructions) != 2 {
		t.Fatalf("expected li to expand to 2 instructions, got %d", len(prog.Instructions))
	}
	if prog.Instructions[0].Op != isa.OpLUI || prog.Instructions[1].Op != isa.OpADDI {
		t.Fatalf("expected lui+addi expansion, got %+v", prog.Instructions)
	}

	c := cpu.New(mem.New(mem.DefaultSize))
	c.StepMany(prog, 2)
	if c.Regs[5] != 100000 {
		t.Fatalf("expected x5=100000, got %d", c.Regs[5])
	}
}

func TestLiNarrowImmediateIsOneSlot(t *testing.T) {
	prog, err := asm.Assemble("li x5,7\n", asm.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected assemble error: %v", err)
	}
	if len(prog.Instructions) != 1 || prog.Instructions[0].Op != isa.OpADDI {
		t.Fatalf("expected single addi, got %+v", prog.Instructions)
	}
}

func TestDuplicateLabelFails(t *testing.T) {
	_, err := asm.Assemble("a: addi x1,x0,1\na: addi x2,x0,2\n", asm.DefaultOptions())
	require.Error(t, err, "duplicate label should fail assembly")
	assert.Contains(t, err.Error(), "Duplicate label")
}

func TestUnknownLabelFails(t *testing.T) {
	_, err := asm.Assemble("j nowhere\n", asm.DefaultOptions())
	require.Error(t, err, "reference to an undefined label should fail assembly")
	assert.Contains(t, err.Error(), "Unknown label")
}

func TestUnalignedNumericBranchTargetFails(t *testing.T) {
	_, err := asm.Assemble("jal x1,3\n", asm.DefaultOptions())
	require.Error(t, err, "non-word-aligned branch target should fail assembly")
	assert.Contains(t, err.Error(), "word-aligned")
}

func TestTooManyInstructionsFails(t *testing.T) {
	opts := asm.Options{MaxInstructions: 2, MaxSourceBytes: asm.DefaultMaxSourceBytes}
	_, err := asm.Assemble("nop\nnop\nnop\n", opts)
	require.Error(t, err, "program exceeding MaxInstructions should fail assembly")
	assert.Contains(t, err.Error(), "Too many instructions")
}

func TestSourceTooLargeFails(t *testing.T) {
	big := make([]byte, 64)
	for i := range big {
		big[i] = 'n'
	}
	opts := asm.Options{MaxInstructions: asm.DefaultMaxInstructions, MaxSourceBytes: 8}
	_, err := asm.Assemble(string(big), opts)
	require.Error(t, err, "source exceeding MaxSourceBytes should fail assembly")
	assert.Contains(t, err.Error(), "Source too large")
}

func TestCommentStylesAndLeadingLabels(t *testing.T) {
	src := "a: b: addi x1,x0,1 # comment\n// full line comment\naddi x2,x0,2 // trailing\n"
	prog, err := asm.Assemble(src, asm.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected assemble error: %v", err)
	}
	if len(prog.Instructions) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(prog.Instructions))
	}
	if prog.Labels["a"] != 0 || prog.Labels["b"] != 0 {
		t.Fatalf("expected both leading labels bound to pc 0, got %+v", prog.Labels)
	}
}
