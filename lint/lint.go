// Package lint flags common mistakes in an assembled RV32IM program:
// branches to out-of-range or misaligned targets, writes to the
// hardwired zero register, and self-loops. It operates on the decoded
// isa.Program rather than raw source.
package lint

import (
	"fmt"
	"sort"

	"github.com/lookbusy1344/riscv-sim/emit"
	"github.com/lookbusy1344/riscv-sim/isa"
)

// Level is the severity of a lint finding.
type Level int

const (
	LintError   Level = iota // would trap or never execute as intended
	LintWarning              // likely mistake, legal RV32IM
	LintInfo                 // style note
)

func (l Level) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	case LintInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Issue is a single lint finding, anchored to a source line.
type Issue struct {
	Level   Level
	Line    int // 1-based, 0 if not line-specific
	Message string
	Code    string
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s: %s [%s]", i.Line, i.Level, i.Message, i.Code)
}

// Check runs all lint passes over prog and returns issues sorted by line.
func Check(prog *isa.Program) []Issue {
	var issues []Issue

	issues = append(issues, checkBranchTargets(prog)...)
	issues = append(issues, checkZeroWrites(prog)...)
	issues = append(issues, checkSelfLoops(prog)...)

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Line < issues[j].Line
	})

	return issues
}

// checkBranchTargets flags JAL/branches whose TargetPC falls outside
// the program or is not word-aligned. asm.Assemble rejects unknown
// labels and misaligned numeric targets, but accepts a numeric or #sym
// target past the end of the program, which traps with PC_OOB when taken.
func checkBranchTargets(prog *isa.Program) []Issue {
	var issues []Issue
	end := prog.EndPC()

	for idx, inst := range prog.Instructions {
		if !(inst.Op == isa.OpJAL || inst.Op.IsBranch()) {
			continue
		}
		if inst.TargetPC > end || inst.TargetPC%4 != 0 {
			issues = append(issues, Issue{
				Level:   LintError,
				Line:    srcLine(prog, idx),
				Message: fmt.Sprintf("%s targets out-of-range address 0x%08X", inst.Op, inst.TargetPC),
				Code:    "BAD_BRANCH_TARGET",
			})
		}
	}

	return issues
}

// checkZeroWrites flags instructions whose destination is x0: spec.md
// defines writes to x0 as silently discarded, so these are dead code.
func checkZeroWrites(prog *isa.Program) []Issue {
	var issues []Issue

	for idx, inst := range prog.Instructions {
		if !hasRd(inst.Op) || inst.Rd != 0 {
			continue
		}
		if inst.Op == isa.OpJAL || inst.Op == isa.OpJALR {
			// rd=x0 is the idiomatic "jump, don't link" form, not a mistake.
			continue
		}
		issues = append(issues, Issue{
			Level:   LintWarning,
			Line:    srcLine(prog, idx),
			Message: fmt.Sprintf("%s writes to x0 (%s), result is discarded", inst.Op, emit.RegName(0)),
			Code:    "ZERO_WRITE",
		})
	}

	return issues
}

// checkSelfLoops flags JALs and conditional branches that target
// themselves, such as the "j ." idiom used for a deliberate infinite
// loop at the end of a program -- worth flagging so it isn't mistaken
// for a bug.
func checkSelfLoops(prog *isa.Program) []Issue {
	var issues []Issue

	for idx, inst := range prog.Instructions {
		pc := uint32(idx) * 4
		if (inst.Op == isa.OpJAL || inst.Op.IsBranch()) && inst.TargetPC == pc {
			issues = append(issues, Issue{
				Level:   LintInfo,
				Line:    srcLine(prog, idx),
				Message: fmt.Sprintf("%s at 0x%08X branches to itself (infinite loop)", inst.Op, pc),
				Code:    "SELF_LOOP",
			})
		}
	}

	return issues
}

func hasRd(op isa.Op) bool {
	switch op {
	case isa.OpJAL, isa.OpJALR, isa.OpLUI, isa.OpAUIPC,
		isa.OpADDI, isa.OpANDI, isa.OpORI, isa.OpXORI, isa.OpSLTI, isa.OpSLTIU,
		isa.OpSLLI, isa.OpSRLI, isa.OpSRAI,
		isa.OpADD, isa.OpSUB, isa.OpAND, isa.OpOR, isa.OpXOR,
		isa.OpSLT, isa.OpSLTU, isa.OpSLL, isa.OpSRL, isa.OpSRA,
		isa.OpMUL, isa.OpMULH, isa.OpMULHSU, isa.OpMULHU,
		isa.OpDIV, isa.OpDIVU, isa.OpREM, isa.OpREMU,
		isa.OpLB, isa.OpLBU, isa.OpLH, isa.OpLHU, isa.OpLW:
		return true
	default:
		return false
	}
}

func srcLine(prog *isa.Program, idx int) int {
	if idx < len(prog.Instructions) {
		if sl := prog.Instructions[idx].SrcLine; sl >= 0 && sl < len(prog.SourceLines) {
			return sl + 1
		}
	}
	return 0
}
