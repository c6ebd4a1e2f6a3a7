package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// abiAliases maps RV32 calling-convention register names to their
// xN index (spec.md §4.4).
var abiAliases = map[string]int{
	"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
	"t0": 5, "t1": 6, "t2": 7,
	"s0": 8, "fp": 8, "s1": 9,
	"a0": 10, "a1": 11, "a2": 12, "a3": 13, "a4": 14, "a5": 15, "a6": 16, "a7": 17,
	"s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23, "s8": 24, "s9": 25, "s10": 26, "s11": 27,
	"t3": 28, "t4": 29, "t5": 30, "t6": 31,
}

// ParseRegister resolves a register token (either "xN" or an ABI
// alias) to its index 0..31. Exported for reuse by tools that need the
// same register-naming rules outside of assembly source (the debugger's
// expression evaluator, in particular).
func ParseRegister(tok string) (int, error) {
	return parseRegister(tok)
}

func parseRegister(tok string) (int, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return 0, fmt.Errorf("empty register operand")
	}
	if len(tok) >= 2 && (tok[0] == 'x' || tok[0] == 'X') {
		if n, err := strconv.Atoi(tok[1:]); err == nil {
			if n < 0 || n > 31 {
				return 0, fmt.Errorf("register %q out of range", tok)
			}
			return n, nil
		}
	}
	if n, ok := abiAliases[strings.ToLower(tok)]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("unknown register %q", tok)
}

// parseImmediate parses a decimal or 0x-prefixed hex literal, with an
// optional leading '-'.
func parseImmediate(tok string) (int64, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return 0, fmt.Errorf("empty immediate")
	}
	neg := false
	if strings.HasPrefix(tok, "-") {
		neg = true
		tok = tok[1:]
	} else if strings.HasPrefix(tok, "+") {
		tok = tok[1:]
	}
	var v int64
	var err error
	if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
		var u uint64
		u, err = strconv.ParseUint(tok[2:], 16, 64)
		v = int64(u)
	} else {
		v, err = strconv.ParseInt(tok, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("bad immediate %q: %w", tok, err)
	}
	if neg {
		v = -v
	}
	return v, nil
}

// splitMemOperand splits "offset(base)" into its offset and base
// register tokens. Used by loads, stores, and JALR.
func splitMemOperand(tok string) (offset string, base string, err error) {
	tok = strings.TrimSpace(tok)
	open := strings.IndexByte(tok, '(')
	close := strings.IndexByte(tok, ')')
	if open < 0 || close < 0 || close < open {
		return "", "", fmt.Errorf("bad memory operand %q, expected offset(reg)", tok)
	}
	offset = strings.TrimSpace(tok[:open])
	base = strings.TrimSpace(tok[open+1 : close])
	if offset == "" {
		offset = "0"
	}
	return offset, base, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}
