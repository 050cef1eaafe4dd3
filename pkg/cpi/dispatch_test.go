package cpi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.firedancer.io/nostd/pkg/sbpf"
)

// The TestInvokeSigned_Noop function tests that the no-op strategy reports
// success and is selected for a nil dispatcher.
func TestInvokeSigned_Noop(t *testing.T) {
	ix := &InstructionC{DataLen: 1}
	assert.NoError(t, InvokeSigned(nil, ix, nil, SignerSeeds{[]byte("a")}))
	assert.NoError(t, Invoke(NoopDispatcher{}, ix, []AccountInfoC{{}}))
}

// The TestSyscallDispatcher function tests that descriptors reach the
// syscall through VM memory and the frame is rewound afterwards.
func TestSyscallDispatcher(t *testing.T) {
	mem := &sbpf.Memory{Stack: make([]byte, 1024)}
	var seen InstructionC
	var seenInfos uint64
	var seenSigners uint64
	syscall := sbpf.SyscallFunc5(func(vm sbpf.VM, ixAddr, infosAddr, infosLen, seedsAddr, seedsLen uint64) (uint64, error) {
		b, err := vm.Translate(ixAddr, InstructionCSize, false)
		if err != nil {
			return 0, err
		}
		seen.UnmarshalBytes(b)
		seenInfos = infosLen
		seenSigners = seedsLen
		return 0, nil
	})
	d := NewSyscallDispatcher(mem, syscall)

	ix := &InstructionC{ProgramIDAddr: sbpf.VaddrInput + 8, DataLen: 3}
	err := InvokeSigned(d, ix, []AccountInfoC{{}, {}}, SignerSeeds{[]byte("x")})
	require.NoError(t, err)
	assert.Equal(t, *ix, seen)
	assert.Equal(t, uint64(2), seenInfos)
	assert.Equal(t, uint64(1), seenSigners)
	assert.Zero(t, d.Frame.Len())
}

// The TestSyscallDispatcher_Failure function tests propagation of host
// failures.
func TestSyscallDispatcher_Failure(t *testing.T) {
	mem := &sbpf.Memory{Stack: make([]byte, 1024)}
	boom := errors.New("boom")

	d := NewSyscallDispatcher(mem, sbpf.SyscallFunc0(func(vm sbpf.VM) (uint64, error) { return 0, boom }))
	assert.ErrorIs(t, Invoke(d, &InstructionC{}, nil), boom)

	d = NewSyscallDispatcher(mem, sbpf.SyscallFunc0(func(vm sbpf.VM) (uint64, error) { return 3, nil }))
	assert.ErrorIs(t, Invoke(d, &InstructionC{}, nil), ErrInvokeFailed)

	small := &sbpf.Memory{Stack: make([]byte, 16)}
	d = NewSyscallDispatcher(small, sbpf.SyscallFunc0(func(vm sbpf.VM) (uint64, error) { return 0, nil }))
	assert.ErrorIs(t, Invoke(d, &InstructionC{}, nil), ErrFrameFull)
}
