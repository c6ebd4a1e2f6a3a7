// Package mem implements the simulator's flat, byte-addressable memory.
package mem

import "fmt"

// BoundsError reports an access that falls outside the memory buffer.
type BoundsError struct {
	Addr, Size int
	MemSize    int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("memory access out of bounds: address 0x%08X size %d exceeds memory of size %d", e.Addr, e.Size, e.MemSize)
}

// AlignmentError reports a half/word access whose address is not
// naturally aligned, raised only when StrictAlign is set.
type AlignmentError struct {
	Addr, Size int
}

func (e *AlignmentError) Error() string {
	unit := "halfword"
	if e.Size == 4 {
		unit = "word"
	}
	return fmt.Sprintf("unaligned %s access at 0x%08X (must be %d-byte aligned)", unit, e.Addr, e.Size)
}

// DefaultSize is the memory capacity used when a simulator is created
// without an explicit override (spec default: 64 KiB).
const DefaultSize = 65536

// Memory is a flat byte-addressable buffer with bounds and alignment
// checking on every multi-byte access.
type Memory struct {
	data []byte

	// StrictAlign toggles alignment faults on half/word accesses. It
	// never affects bounds checking, which is always enforced.
	StrictAlign bool

	// AccessCount/ReadCount/WriteCount are ambient instrumentation,
	// not part of the architectural state.
	AccessCount uint64
	ReadCount   uint64
	WriteCount  uint64
}

// New creates a memory buffer of the given size, zero-filled, with
// alignment checks enabled.
func New(size int) *Memory {
	return &Memory{
		data:        make([]byte, size),
		StrictAlign: true,
	}
}

// Size returns the total number of addressable bytes.
func (m *Memory) Size() int {
	return len(m.data)
}

// StoreResult captures the bytes overwritten by a store and the bytes
// that replaced them. Both slices are independent copies of the live
// buffer: later stores never mutate a previously returned StoreResult.
type StoreResult struct {
	Before []byte
	After  []byte
}

func (m *Memory) checkBounds(addr, size int) error {
	if addr < 0 || size < 0 || addr+size > len(m.data) {
		return &BoundsError{Addr: addr, Size: size, MemSize: len(m.data)}
	}
	return nil
}

func (m *Memory) checkAlignment(addr, size int) error {
	if !m.StrictAlign {
		return nil
	}
	switch size {
	case 4:
		if addr&0x3 != 0 {
			return &AlignmentError{Addr: addr, Size: 4}
		}
	case 2:
		if addr&0x1 != 0 {
			return &AlignmentError{Addr: addr, Size: 2}
		}
	}
	return nil
}

// LoadByte reads an unsigned byte. Bytes accesses are never subject to
// alignment checks.
func (m *Memory) LoadByte(addr uint32) (byte, error) {
	a := int(addr)
	if err := m.checkBounds(a, 1); err != nil {
		return 0, err
	}
	m.AccessCount++
	m.ReadCount++
	return m.data[a], nil
}

// LoadHalf reads an unsigned 16-bit little-endian halfword.
func (m *Memory) LoadHalf(addr uint32) (uint16, error) {
	a := int(addr)
	if err := m.checkAlignment(a, 2); err != nil {
		return 0, err
	}
	if err := m.checkBounds(a, 2); err != nil {
		return 0, err
	}
	m.AccessCount++
	m.ReadCount++
	return uint16(m.data[a]) | uint16(m.data[a+1])<<8, nil
}

// LoadWord reads a signed 32-bit little-endian word (two's complement).
func (m *Memory) LoadWord(addr uint32) (int32, error) {
	a := int(addr)
	if err := m.checkAlignment(a, 4); err != nil {
		return 0, err
	}
	if err := m.checkBounds(a, 4); err != nil {
		return 0, err
	}
	m.AccessCount++
	m.ReadCount++
	v := uint32(m.data[a]) | uint32(m.data[a+1])<<8 | uint32(m.data[a+2])<<16 | uint32(m.data[a+3])<<24
	return int32(v), nil
}

// snapshot returns an independent copy of size bytes starting at a.
// Caller must have already validated bounds.
func (m *Memory) snapshot(a, size int) []byte {
	cp := make([]byte, size)
	copy(cp, m.data[a:a+size])
	return cp
}

// StoreByte writes a single byte.
func (m *Memory) StoreByte(addr uint32, value byte) (StoreResult, error) {
	a := int(addr)
	if err := m.checkBounds(a, 1); err != nil {
		return StoreResult{}, err
	}
	before := m.snapshot(a, 1)
	m.data[a] = value
	m.AccessCount++
	m.WriteCount++
	return StoreResult{Before: before, After: m.snapshot(a, 1)}, nil
}

// StoreHalf writes a 16-bit little-endian halfword.
func (m *Memory) StoreHalf(addr uint32, value uint16) (StoreResult, error) {
	a := int(addr)
	if err := m.checkAlignment(a, 2); err != nil {
		return StoreResult{}, err
	}
	if err := m.checkBounds(a, 2); err != nil {
		return StoreResult{}, err
	}
	before := m.snapshot(a, 2)
	m.data[a] = byte(value)
	m.data[a+1] = byte(value >> 8)
	m.AccessCount++
	m.WriteCount++
	return StoreResult{Before: before, After: m.snapshot(a, 2)}, nil
}

// StoreWord writes a 32-bit little-endian word.
func (m *Memory) StoreWord(addr uint32, value uint32) (StoreResult, error) {
	a := int(addr)
	if err := m.checkAlignment(a, 4); err != nil {
		return StoreResult{}, err
	}
	if err := m.checkBounds(a, 4); err != nil {
		return StoreResult{}, err
	}
	before := m.snapshot(a, 4)
	m.data[a] = byte(value)
	m.data[a+1] = byte(value >> 8)
	m.data[a+2] = byte(value >> 16)
	m.data[a+3] = byte(value >> 24)
	m.AccessCount++
	m.WriteCount++
	return StoreResult{Before: before, After: m.snapshot(a, 4)}, nil
}

// Snapshot returns an independent copy of size bytes starting at addr,
// for callers that want a read without the load-width restriction of
// LoadByte/Half/Word. It is bounds-checked but never alignment-checked.
func (m *Memory) Snapshot(addr uint32, size int) ([]byte, error) {
	a := int(addr)
	if err := m.checkBounds(a, size); err != nil {
		return nil, err
	}
	return m.snapshot(a, size), nil
}

// Reset clears memory contents. Unlike CPU.Reset, this is never called
// implicitly by Assemble; memory persists across reassembly by design
// (spec.md §9).
func (m *Memory) Reset() {
	for i := range m.data {
		m.data[i] = 0
	}
	m.AccessCount = 0
	m.ReadCount = 0
	m.WriteCount = 0
}
