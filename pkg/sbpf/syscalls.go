package sbpf

import (
	"github.com/spaolacci/murmur3"
)

// SymbolHash returns the murmur3 32-bit hash of a symbol name.
func SymbolHash(s string) uint32 {
	return murmur3.Sum32([]byte(s))
}

// Syscall are callback handles from a program to the host.
type Syscall interface {
	Invoke(vm VM, r1, r2, r3, r4, r5 uint64) (r0 uint64, err error)
}

type SyscallRegistry map[uint32]Syscall

func NewSyscallRegistry() SyscallRegistry {
	return make(SyscallRegistry)
}

func (s SyscallRegistry) Register(name string, syscall Syscall) (hash uint32, ok bool) {
	hash = SymbolHash(name)
	if _, exist := s[hash]; exist {
		return 0, false // collision or duplicate
	}
	s[hash] = syscall
	ok = true
	return
}

func (s SyscallRegistry) ExistsByHash(hash uint32) bool {
	_, exists := s[hash]
	return exists
}

// Lookup resolves a syscall by symbol name.
func (s SyscallRegistry) Lookup(name string) (Syscall, bool) {
	syscall, ok := s[SymbolHash(name)]
	return syscall, ok
}

// Convenience Methods

type SyscallFunc0 func(vm VM) (r0 uint64, err error)

func (f SyscallFunc0) Invoke(vm VM, _, _, _, _, _ uint64) (r0 uint64, err error) {
	return f(vm)
}

type SyscallFunc1 func(vm VM, r1 uint64) (r0 uint64, err error)

func (f SyscallFunc1) Invoke(vm VM, r1, _, _, _, _ uint64) (r0 uint64, err error) {
	return f(vm, r1)
}

type SyscallFunc2 func(vm VM, r1, r2 uint64) (r0 uint64, err error)

func (f SyscallFunc2) Invoke(vm VM, r1, r2, _, _, _ uint64) (r0 uint64, err error) {
	return f(vm, r1, r2)
}

type SyscallFunc5 func(vm VM, r1, r2, r3, r4, r5 uint64) (r0 uint64, err error)

func (f SyscallFunc5) Invoke(vm VM, r1, r2, r3, r4, r5 uint64) (r0 uint64, err error) {
	return f(vm, r1, r2, r3, r4, r5)
}
