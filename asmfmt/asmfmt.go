// Package asmfmt canonicalizes RV32IM assembly source: consistent
// column alignment for labels, mnemonics, operands, and comments. It
// works line-by-line on the raw text rather than on an assembled
// isa.Program, since formatting must round-trip comments and blank
// lines that the assembler's decoded output discards.
package asmfmt

import (
	"regexp"
	"strings"
)

// Options controls column placement.
type Options struct {
	InstructionColumn int // column mnemonics start at, with or without a label
	OperandColumn     int // column operands start at
	CommentColumn     int // column aligned trailing comments start at
}

// DefaultOptions mirrors gas-style conventions: an 8-space mnemonic
// indent, operands one tab stop over, comments aligned far enough
// right to stay clear of most instructions.
func DefaultOptions() Options {
	return Options{
		InstructionColumn: 8,
		OperandColumn:     16,
		CommentColumn:     40,
	}
}

var labelDefRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*:\s*`)
var symDirectiveRe = regexp.MustCompile(`(?i)^\s*#sym\b`)

// Format canonicalizes source using DefaultOptions.
func Format(source string) (string, error) {
	return FormatWithOptions(source, DefaultOptions())
}

// FormatWithOptions canonicalizes source under opts. It never fails on
// well-formed input; the error return exists for symmetry with
// asm.Assemble and to leave room for future syntax validation.
func FormatWithOptions(source string, opts Options) (string, error) {
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")

	var out strings.Builder
	for i, raw := range lines {
		if i == len(lines)-1 && raw == "" {
			// Trailing newline produced an empty final element; don't
			// emit an extra blank line for it.
			break
		}
		out.WriteString(formatLine(raw, opts))
		out.WriteString("\n")
	}

	return out.String(), nil
}

func formatLine(raw string, opts Options) string {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		return ""
	}

	if symDirectiveRe.MatchString(raw) {
		return trimmed
	}

	label, rest := "", trimmed
	if m := labelDefRe.FindStringSubmatch(rest); m != nil {
		label = m[1]
		rest = strings.TrimSpace(rest[len(m[0]):])
	}

	code, comment := splitComment(rest)
	code = strings.TrimSpace(code)

	if code == "" {
		// Label-only or comment-only line.
		var line strings.Builder
		if label != "" {
			line.WriteString(label)
			line.WriteString(":")
		}
		if comment != "" {
			if line.Len() > 0 {
				line.WriteString(" ")
			}
			line.WriteString(comment)
		}
		return line.String()
	}

	mnemonic, operandText := splitFirstToken(code)
	operands := splitOperands(operandText)

	var line strings.Builder
	if label != "" {
		line.WriteString(label)
		line.WriteString(":")
		padTo(&line, opts.InstructionColumn)
	} else {
		padTo(&line, opts.InstructionColumn)
	}

	line.WriteString(strings.ToLower(mnemonic))

	if len(operands) > 0 {
		padTo(&line, opts.OperandColumn)
		line.WriteString(strings.Join(operands, ", "))
	}

	if comment != "" {
		padTo(&line, opts.CommentColumn)
		line.WriteString(comment)
	}

	return line.String()
}

// splitComment cuts s at the first '#' or '//', returning the code and
// the comment (with its marker retained, trimmed of surrounding space).
func splitComment(s string) (code, comment string) {
	hashIdx := strings.IndexByte(s, '#')
	slashIdx := strings.Index(s, "//")

	cut := -1
	switch {
	case hashIdx < 0:
		cut = slashIdx
	case slashIdx < 0:
		cut = hashIdx
	default:
		if hashIdx < slashIdx {
			cut = hashIdx
		} else {
			cut = slashIdx
		}
	}

	if cut < 0 {
		return s, ""
	}
	return s[:cut], strings.TrimSpace(s[cut:])
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

func padTo(sb *strings.Builder, column int) {
	current := sb.Len()
	if current >= column {
		sb.WriteString(" ")
		return
	}
	sb.WriteString(strings.Repeat(" ", column-current))
}
