package xref_test

import (
	"testing"

	"github.com/lookbusy1344/riscv-sim/asm"
	"github.com/lookbusy1344/riscv-sim/xref"
)

func TestBuildFindsCallAndLoop(t *testing.T) {
	src := "start:\n" +
		"  jal x1,add_one\n" +
		"  jal x0,loop\n" +
		"loop:\n" +
		"  jal x0,loop\n" +
		"add_one:\n" +
		"  addi x1,x1,1\n" +
		"  jalr x0,0(x1)\n"

	prog, err := asm.Assemble(src, asm.DefaultOptions())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	table := xref.Build(prog)

	var addOne, loop *xref.Entry
	for i := range table.Entries {
		switch table.Entries[i].Name {
		case "add_one":
			addOne = &table.Entries[i]
		case "loop":
			loop = &table.Entries[i]
		}
	}

	if addOne == nil || !addOne.IsFunction {
		t.Fatalf("expected add_one to be recorded as a function, got %+v", addOne)
	}
	if loop == nil || len(loop.References) == 0 {
		t.Fatalf("expected loop to have references, got %+v", loop)
	}
}

func TestUnusedExcludesEndLabel(t *testing.T) {
	src := "addi x1,x0,1\nend:\n"

	prog, err := asm.Assemble(src, asm.DefaultOptions())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	table := xref.Build(prog)
	unused := table.Unused(prog)

	for _, e := range unused {
		if e.Name == "end" {
			t.Fatalf("expected end-of-program label to be excluded from Unused, got %+v", unused)
		}
	}
}
