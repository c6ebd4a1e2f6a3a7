package asm

import (
	"math"

	"github.com/lookbusy1344/riscv-sim/isa"
)

// liFitsAddi reports whether imm fits the 12-bit signed immediate
// that ADDI (and hence the one-instruction form of li) accepts.
func liFitsAddi(imm int64) bool {
	return imm >= -2048 && imm <= 2047
}

// liSlots returns how many instructions "li rd, imm" expands to.
func liSlots(imm int64) int {
	if liFitsAddi(imm) {
		return 1
	}
	return 2
}

// instructionSlots computes, for pass 1, how many 4-byte instruction
// slots a source line occupies without resolving any labels — the
// only pseudo-op whose width depends on its operand is li, and its
// immediate is always a literal, never a forward reference.
func instructionSlots(mnemonic string, operands []string, lineNo int) (int, error) {
	switch mnemonic {
	case "nop", "ret":
		return 1, nil
	case "mv", "j", "call":
		return 1, nil
	case "li":
		if len(operands) != 2 {
			return 0, newErr(lineNo, ErrBadOperand, "Bad operand count on line %d", lineNo)
		}
		v, err := parseImmediate(operands[1])
		if err != nil {
			return 0, newErr(lineNo, ErrBadOperand, "Bad immediate on line %d", lineNo)
		}
		return liSlots(v), nil
	default:
		if _, ok := realOps[mnemonic]; ok {
			return 1, nil
		}
		return 0, newErr(lineNo, ErrSyntax, "Bad instruction on line %d", lineNo)
	}
}

// expand produces the Instruction(s) for one pass-1 pending line.
func expand(pl pendingLine, prog *isa.Program) ([]isa.Instruction, error) {
	lineNo := pl.lineIndex + 1

	switch pl.mnemonic {
	case "nop":
		return []isa.Instruction{{Op: isa.OpADDI, Rd: 0, Rs1: 0, Imm: 0, SrcLine: pl.lineIndex}}, nil

	case "mv":
		rd, rs, err := twoRegs(pl.operands, lineNo)
		if err != nil {
			return nil, err
		}
		return []isa.Instruction{{Op: isa.OpADDI, Rd: rd, Rs1: rs, Imm: 0, SrcLine: pl.lineIndex}}, nil

	case "j":
		if len(pl.operands) != 1 {
			return nil, newErr(lineNo, ErrBadOperand, "Bad operand count on line %d", lineNo)
		}
		target, err := resolveTarget(pl.operands[0], prog, lineNo)
		if err != nil {
			return nil, err
		}
		return []isa.Instruction{{Op: isa.OpJAL, Rd: 0, TargetPC: target, SrcLine: pl.lineIndex}}, nil

	case "ret":
		return []isa.Instruction{{Op: isa.OpJALR, Rd: 0, Rs1: 1, Imm: 0, SrcLine: pl.lineIndex}}, nil

	case "call":
		if len(pl.operands) != 1 {
			return nil, newErr(lineNo, ErrBadOperand, "Bad operand count on line %d", lineNo)
		}
		target, err := resolveTarget(pl.operands[0], prog, lineNo)
		if err != nil {
			return nil, err
		}
		return []isa.Instruction{{Op: isa.OpJAL, Rd: 1, TargetPC: target, SrcLine: pl.lineIndex}}, nil

	case "li":
		if len(pl.operands) != 2 {
			return nil, newErr(lineNo, ErrBadOperand, "Bad operand count on line %d", lineNo)
		}
		rd, err := parseRegister(pl.operands[0])
		if err != nil {
			return nil, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
		}
		imm, err := parseImmediate(pl.operands[1])
		if err != nil {
			return nil, newErr(lineNo, ErrBadOperand, "Bad immediate on line %d", lineNo)
		}
		if liFitsAddi(imm) {
			return []isa.Instruction{{Op: isa.OpADDI, Rd: rd, Rs1: 0, Imm: int32(imm), SrcLine: pl.lineIndex}}, nil
		}
		hi := (imm + 0x800) >> 12
		lo := imm - (hi << 12)
		return []isa.Instruction{
			{Op: isa.OpLUI, Rd: rd, Imm: int32(hi), SrcLine: pl.lineIndex},
			{Op: isa.OpADDI, Rd: rd, Rs1: rd, Imm: int32(lo), SrcLine: pl.lineIndex},
		}, nil
	}

	op, ok := realOps[pl.mnemonic]
	if !ok {
		return nil, newErr(lineNo, ErrSyntax, "Bad instruction on line %d", lineNo)
	}

	inst, err := expandReal(op, pl.operands, prog, lineNo)
	if err != nil {
		return nil, err
	}
	inst.SrcLine = pl.lineIndex
	return []isa.Instruction{inst}, nil
}

func twoRegs(operands []string, lineNo int) (int, int, error) {
	if len(operands) != 2 {
		return 0, 0, newErr(lineNo, ErrBadOperand, "Bad operand count on line %d", lineNo)
	}
	a, err := parseRegister(operands[0])
	if err != nil {
		return 0, 0, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
	}
	b, err := parseRegister(operands[1])
	if err != nil {
		return 0, 0, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
	}
	return a, b, nil
}

func expandReal(op isa.Op, operands []string, prog *isa.Program, lineNo int) (isa.Instruction, error) {
	switch formatOf(op) {
	case fmtRRR:
		if len(operands) != 3 {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad operand count on line %d", lineNo)
		}
		rd, err := parseRegister(operands[0])
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
		}
		rs1, err := parseRegister(operands[1])
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
		}
		rs2, err := parseRegister(operands[2])
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
		}
		return isa.Instruction{Op: op, Rd: rd, Rs1: rs1, Rs2: rs2}, nil

	case fmtRRI:
		if len(operands) != 3 {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad operand count on line %d", lineNo)
		}
		rd, err := parseRegister(operands[0])
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
		}
		rs1, err := parseRegister(operands[1])
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
		}
		imm, err := parseImmediate(operands[2])
		if err != nil || imm < math.MinInt32 || imm > math.MaxInt32 {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad immediate on line %d", lineNo)
		}
		return isa.Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: int32(imm)}, nil

	case fmtLoad:
		if len(operands) != 2 {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad operand count on line %d", lineNo)
		}
		rd, err := parseRegister(operands[0])
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
		}
		offTok, baseTok, err := splitMemOperand(operands[1])
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad memory operand on line %d", lineNo)
		}
		rs1, err := parseRegister(baseTok)
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
		}
		imm, err := parseImmediate(offTok)
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad immediate on line %d", lineNo)
		}
		return isa.Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: int32(imm)}, nil

	case fmtStore:
		if len(operands) != 2 {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad operand count on line %d", lineNo)
		}
		rs2, err := parseRegister(operands[0])
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
		}
		offTok, baseTok, err := splitMemOperand(operands[1])
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad memory operand on line %d", lineNo)
		}
		rs1, err := parseRegister(baseTok)
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
		}
		imm, err := parseImmediate(offTok)
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad immediate on line %d", lineNo)
		}
		return isa.Instruction{Op: op, Rs1: rs1, Rs2: rs2, Imm: int32(imm)}, nil

	case fmtJAL:
		if len(operands) != 2 {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad operand count on line %d", lineNo)
		}
		rd, err := parseRegister(operands[0])
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
		}
		target, err := resolveTarget(operands[1], prog, lineNo)
		if err != nil {
			return isa.Instruction{}, err
		}
		return isa.Instruction{Op: op, Rd: rd, TargetPC: target}, nil

	case fmtJALR:
		if len(operands) != 2 {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad operand count on line %d", lineNo)
		}
		rd, err := parseRegister(operands[0])
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
		}
		offTok, baseTok, err := splitMemOperand(operands[1])
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad memory operand on line %d", lineNo)
		}
		rs1, err := parseRegister(baseTok)
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
		}
		imm, err := parseImmediate(offTok)
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad immediate on line %d", lineNo)
		}
		return isa.Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: int32(imm)}, nil

	case fmtBranch:
		if len(operands) != 3 {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad operand count on line %d", lineNo)
		}
		rs1, err := parseRegister(operands[0])
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
		}
		rs2, err := parseRegister(operands[1])
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
		}
		target, err := resolveTarget(operands[2], prog, lineNo)
		if err != nil {
			return isa.Instruction{}, err
		}
		return isa.Instruction{Op: op, Rs1: rs1, Rs2: rs2, TargetPC: target}, nil

	case fmtUType:
		if len(operands) != 2 {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad operand count on line %d", lineNo)
		}
		rd, err := parseRegister(operands[0])
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad register on line %d", lineNo)
		}
		imm, err := parseImmediate(operands[1])
		if err != nil {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad immediate on line %d", lineNo)
		}
		return isa.Instruction{Op: op, Rd: rd, Imm: int32(imm)}, nil

	case fmtNone:
		if len(operands) != 0 {
			return isa.Instruction{}, newErr(lineNo, ErrBadOperand, "Bad operand count on line %d", lineNo)
		}
		return isa.Instruction{Op: op}, nil
	}

	return isa.Instruction{}, newErr(lineNo, ErrSyntax, "Bad instruction on line %d", lineNo)
}

// resolveTarget resolves a branch/jump operand through labels, then
// symbols, then a word-aligned numeric literal, in that order.
func resolveTarget(tok string, prog *isa.Program, lineNo int) (uint32, error) {
	if isIdentifier(tok) {
		if addr, ok := prog.Labels[tok]; ok {
			return addr, nil
		}
		if addr, ok := prog.Symbols[tok]; ok {
			return addr, nil
		}
		return 0, newErr(lineNo, ErrUndefinedLabel, "Unknown label %q", tok)
	}
	v, err := parseImmediate(tok)
	if err != nil {
		return 0, newErr(lineNo, ErrBadOperand, "Bad branch target on line %d", lineNo)
	}
	addr := uint32(v)
	if addr&3 != 0 {
		return 0, newErr(lineNo, ErrBadAlignment, "Branch target must be word-aligned")
	}
	return addr, nil
}
