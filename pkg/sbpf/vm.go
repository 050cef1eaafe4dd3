package sbpf

import (
	"encoding/binary"
	"fmt"

	"go.firedancer.io/nostd/pkg/cu"
)

// Virtual address map of a program invocation. The upper 32 bits of an
// address select the region.
const (
	VaddrProgram = uint64(0x1_0000_0000)
	VaddrStack   = uint64(0x2_0000_0000)
	VaddrHeap    = uint64(0x3_0000_0000)
	VaddrInput   = uint64(0x4_0000_0000)
)

// VM is the view of program memory that host syscalls operate on.
type VM interface {
	Translate(addr uint64, size uint64, write bool) ([]byte, error)
	Read(addr uint64, p []byte) error
	Read8(addr uint64) (uint8, error)
	Read64(addr uint64) (uint64, error)
	Write(addr uint64, p []byte) error
	ComputeMeter() *cu.ComputeMeter
	VMContext() any
}

// ExcBadAccess is returned for accesses to unmapped or out-of-bounds memory.
type ExcBadAccess struct {
	Addr   uint64
	Size   uint64
	Write  bool
	Reason string
}

func NewExcBadAccess(addr uint64, size uint64, write bool, reason string) *ExcBadAccess {
	return &ExcBadAccess{Addr: addr, Size: size, Write: write, Reason: reason}
}

func (e *ExcBadAccess) Error() string {
	kind := "read"
	if e.Write {
		kind = "write"
	}
	return fmt.Sprintf("bad %s of %d bytes at %#x: %s", kind, e.Size, e.Addr, e.Reason)
}

// Memory maps the regions of a single invocation without an interpreter
// attached. The input region is the raw parameter buffer handed to the
// program; the stack region backs call frames used to marshal cross-program
// invocations.
type Memory struct {
	Program []byte
	Stack   []byte
	Heap    []byte
	Input   []byte

	Context any
	Meter   *cu.ComputeMeter
}

func (m *Memory) region(addr uint64) ([]byte, bool, string) {
	switch addr >> 32 {
	case VaddrProgram >> 32:
		return m.Program, false, "program"
	case VaddrStack >> 32:
		return m.Stack, true, "stack"
	case VaddrHeap >> 32:
		return m.Heap, true, "heap"
	case VaddrInput >> 32:
		return m.Input, true, "input"
	default:
		return nil, false, ""
	}
}

func (m *Memory) Translate(addr uint64, size uint64, write bool) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	mem, writable, name := m.region(addr)
	if name == "" {
		return nil, NewExcBadAccess(addr, size, write, "unmapped region")
	}
	if write && !writable {
		return nil, NewExcBadAccess(addr, size, write, "write to read-only "+name+" region")
	}
	lo := addr & 0xFFFF_FFFF
	if lo+size < lo || lo+size > uint64(len(mem)) {
		return nil, NewExcBadAccess(addr, size, write, "out-of-bounds "+name+" access")
	}
	return mem[lo : lo+size], nil
}

func (m *Memory) Read(addr uint64, p []byte) error {
	mem, err := m.Translate(addr, uint64(len(p)), false)
	if err != nil {
		return err
	}
	copy(p, mem)
	return nil
}

func (m *Memory) Read8(addr uint64) (uint8, error) {
	mem, err := m.Translate(addr, 1, false)
	if err != nil {
		return 0, err
	}
	return mem[0], nil
}

func (m *Memory) Read64(addr uint64) (uint64, error) {
	mem, err := m.Translate(addr, 8, false)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(mem), nil
}

func (m *Memory) Write(addr uint64, p []byte) error {
	mem, err := m.Translate(addr, uint64(len(p)), true)
	if err != nil {
		return err
	}
	copy(mem, p)
	return nil
}

// ComputeMeter returns the meter attached to the invocation, creating a
// default one on first use.
func (m *Memory) ComputeMeter() *cu.ComputeMeter {
	if m.Meter == nil {
		meter := cu.NewComputeMeterDefault()
		m.Meter = &meter
	}
	return m.Meter
}

func (m *Memory) VMContext() any {
	return m.Context
}
