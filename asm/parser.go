package asm

import (
	"errors"
	"regexp"
	"strings"

	"github.com/lookbusy1344/riscv-sim/isa"
)

var labelDefRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*:\s*`)

// pendingLine is the pass-1 product for one source line that carries
// an instruction: everything pass 2 needs to expand and emit it.
type pendingLine struct {
	lineIndex int // 0-based index into the raw source lines
	address   uint32
	mnemonic  string
	operands  []string
}

// symDirectiveRe matches "#sym NAME = VALUE" or "#sym NAME VALUE" recognized
// ahead of comment stripping.
var symDirectiveRe = regexp.MustCompile(`(?i)^\s*#sym\b(.*)$`)

// Assemble runs the two-pass assembler over source and produces a
// Program, or the first *Error encountered.
func Assemble(source string, opts Options) (*isa.Program, error) {
	opts = opts.normalize()

	if len(source) > opts.MaxSourceBytes {
		return nil, &Error{Kind: ErrSourceTooLarge, Message: "Source too large"}
	}

	lines := splitLines(source)

	labels := make(map[string]uint32)
	symbols := make(map[string]uint32)
	var pending []pendingLine

	var pc uint32
	instCount := 0

	for i, raw := range lines {
		lineNo := i + 1

		if m := symDirectiveRe.FindStringSubmatch(raw); m != nil {
			name, value, err := parseSymDirective(m[1])
			if err != nil {
				return nil, newErr(lineNo, ErrBadDirective, "Bad #sym format")
			}
			if _, exists := symbols[name]; exists {
				return nil, newErr(lineNo, ErrDuplicateLabel, "Duplicate symbol %q", name)
			}
			symbols[name] = value
			continue
		}

		text := stripComment(raw)
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		for {
			m := labelDefRe.FindStringSubmatch(text)
			if m == nil {
				break
			}
			name := m[1]
			if _, exists := labels[name]; exists {
				return nil, newErr(lineNo, ErrDuplicateLabel, "Duplicate label %q", name)
			}
			labels[name] = pc
			text = text[len(m[0]):]
			text = strings.TrimSpace(text)
		}

		if text == "" {
			// Pure label line(s): does not advance PC.
			continue
		}

		mnemonic, operandText := splitFirstToken(text)
		mnemonic = strings.ToLower(mnemonic)
		operands := splitOperands(operandText)

		slots, err := instructionSlots(mnemonic, operands, lineNo)
		if err != nil {
			return nil, err
		}

		instCount += slots
		if instCount > opts.MaxInstructions {
			return nil, &Error{Kind: ErrTooManyInstructions, Message: "Too many instructions"}
		}

		pending = append(pending, pendingLine{
			lineIndex: i,
			address:   pc,
			mnemonic:  mnemonic,
			operands:  operands,
		})

		pc += uint32(slots) * 4
	}

	endPC := pc

	labelEnds := make(map[string]struct{})
	for name, addr := range labels {
		if addr == endPC {
			labelEnds[name] = struct{}{}
		}
	}

	prog := &isa.Program{
		SourceLines: lines,
		Labels:      labels,
		Symbols:     symbols,
		LabelEnds:   labelEnds,
	}

	for _, pl := range pending {
		insts, err := expand(pl, prog)
		if err != nil {
			return nil, err
		}
		prog.Instructions = append(prog.Instructions, insts...)
	}

	return prog, nil
}

// splitLines splits source on any newline sequence, preserving order
// and dropping only the terminators themselves.
func splitLines(source string) []string {
	normalized := strings.ReplaceAll(source, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n")
}

// stripComment cuts a line at the first '#' or '//', whichever comes
// first.
func stripComment(line string) string {
	hashIdx := strings.IndexByte(line, '#')
	slashIdx := strings.Index(line, "//")
	cut := -1
	switch {
	case hashIdx < 0:
		cut = slashIdx
	case slashIdx < 0:
		cut = hashIdx
	default:
		cut = min(hashIdx, slashIdx)
	}
	if cut < 0 {
		return line
	}
	return line[:cut]
}

func splitFirstToken(s string) (first, rest string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx+1:])
}

func splitOperands(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// parseSymDirective parses the text following "#sym", stripping any
// trailing comment, into (name, value).
func parseSymDirective(rest string) (string, uint32, error) {
	rest = stripComment(rest)
	fields := strings.Fields(rest)
	if len(fields) == 3 && fields[1] == "=" {
		fields = []string{fields[0], fields[2]}
	}
	if len(fields) != 2 {
		return "", 0, errBadSym
	}
	if !isIdentifier(fields[0]) {
		return "", 0, errBadSym
	}
	v, err := parseImmediate(fields[1])
	if err != nil {
		return "", 0, errBadSym
	}
	return fields[0], uint32(v), nil
}

var errBadSym = errors.New("bad #sym format")
