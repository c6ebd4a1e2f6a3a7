package isa

// TrapCode enumerates the non-recoverable execution faults a step can
// raise.
type TrapCode string

const (
	TrapIllegalInstruction TrapCode = "ILLEGAL_INSTRUCTION"
	TrapBadAlignment       TrapCode = "BAD_ALIGNMENT"
	TrapOOBMemory          TrapCode = "OOB_MEMORY"
	TrapPCOOB              TrapCode = "PC_OOB"
	TrapStepLimit          TrapCode = "STEP_LIMIT"
)

// Trap describes a single execution fault.
type Trap struct {
	Code    TrapCode
	Message string
}

func (t *Trap) Error() string {
	return string(t.Code) + ": " + t.Message
}

// StepResult is the outcome of one CPU.Step or CPU.StepMany call.
type StepResult struct {
	Inst    Instruction
	Effects []Effect
	Halted  bool
	Trap    *Trap
}
