package asm

import "github.com/lookbusy1344/riscv-sim/isa"

// realOps maps every non-pseudo mnemonic to its Op.
var realOps = map[string]isa.Op{
	"addi": isa.OpADDI, "andi": isa.OpANDI, "ori": isa.OpORI, "xori": isa.OpXORI,
	"slti": isa.OpSLTI, "sltiu": isa.OpSLTIU, "slli": isa.OpSLLI, "srli": isa.OpSRLI, "srai": isa.OpSRAI,
	"add": isa.OpADD, "sub": isa.OpSUB, "and": isa.OpAND, "or": isa.OpOR, "xor": isa.OpXOR,
	"slt": isa.OpSLT, "sltu": isa.OpSLTU, "sll": isa.OpSLL, "srl": isa.OpSRL, "sra": isa.OpSRA,
	"mul": isa.OpMUL, "mulh": isa.OpMULH, "mulhsu": isa.OpMULHSU, "mulhu": isa.OpMULHU,
	"div": isa.OpDIV, "divu": isa.OpDIVU, "rem": isa.OpREM, "remu": isa.OpREMU,
	"lb": isa.OpLB, "lbu": isa.OpLBU, "lh": isa.OpLH, "lhu": isa.OpLHU, "lw": isa.OpLW,
	"sb": isa.OpSB, "sh": isa.OpSH, "sw": isa.OpSW,
	"jal": isa.OpJAL, "jalr": isa.OpJALR,
	"beq": isa.OpBEQ, "bne": isa.OpBNE, "blt": isa.OpBLT, "bge": isa.OpBGE, "bltu": isa.OpBLTU, "bgeu": isa.OpBGEU,
	"lui": isa.OpLUI, "auipc": isa.OpAUIPC,
	"ecall": isa.OpECALL,
}

// opFormat classifies how an instruction's operands are written and
// how they map onto Instruction fields.
type opFormat int

const (
	fmtRRR    opFormat = iota // rd, rs1, rs2
	fmtRRI                    // rd, rs1, imm
	fmtLoad                   // rd, imm(rs1)
	fmtStore                  // rs2, imm(rs1)
	fmtJAL                    // rd, target
	fmtJALR                   // rd, imm(rs1)
	fmtBranch                 // rs1, rs2, target
	fmtUType                  // rd, imm
	fmtNone                   // no operands
)

func formatOf(op isa.Op) opFormat {
	switch op {
	case isa.OpADD, isa.OpSUB, isa.OpAND, isa.OpOR, isa.OpXOR,
		isa.OpSLT, isa.OpSLTU, isa.OpSLL, isa.OpSRL, isa.OpSRA,
		isa.OpMUL, isa.OpMULH, isa.OpMULHSU, isa.OpMULHU,
		isa.OpDIV, isa.OpDIVU, isa.OpREM, isa.OpREMU:
		return fmtRRR
	case isa.OpADDI, isa.OpANDI, isa.OpORI, isa.OpXORI,
		isa.OpSLTI, isa.OpSLTIU, isa.OpSLLI, isa.OpSRLI, isa.OpSRAI:
		return fmtRRI
	case isa.OpLB, isa.OpLBU, isa.OpLH, isa.OpLHU, isa.OpLW:
		return fmtLoad
	case isa.OpSB, isa.OpSH, isa.OpSW:
		return fmtStore
	case isa.OpJAL:
		return fmtJAL
	case isa.OpJALR:
		return fmtJALR
	case isa.OpBEQ, isa.OpBNE, isa.OpBLT, isa.OpBGE, isa.OpBLTU, isa.OpBGEU:
		return fmtBranch
	case isa.OpLUI, isa.OpAUIPC:
		return fmtUType
	default:
		return fmtNone
	}
}

// pseudoMnemonics lists every pseudo-instruction mnemonic the assembler
// expands. Nothing in the package reads it; expansion is driven by the
// switch statements in expand.go.
var pseudoMnemonics = map[string]bool{
	"nop": true, "mv": true, "j": true, "ret": true, "call": true, "li": true,
}
