package asm

// Limits enforced by Assemble (spec.md §4.4, §6). These are the
// defaults; Options lets a caller override them for testing.
const (
	DefaultMaxInstructions = 5000
	DefaultMaxSourceBytes  = 20480
)

// Options configures a single Assemble call.
type Options struct {
	MaxInstructions int
	MaxSourceBytes  int
}

// DefaultOptions returns the spec's default limits.
func DefaultOptions() Options {
	return Options{
		MaxInstructions: DefaultMaxInstructions,
		MaxSourceBytes:  DefaultMaxSourceBytes,
	}
}

func (o Options) normalize() Options {
	if o.MaxInstructions <= 0 {
		o.MaxInstructions = DefaultMaxInstructions
	}
	if o.MaxSourceBytes <= 0 {
		o.MaxSourceBytes = DefaultMaxSourceBytes
	}
	return o
}
