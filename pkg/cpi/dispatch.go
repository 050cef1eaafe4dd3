package cpi

import (
	"errors"
	"fmt"
	"runtime"

	"go.firedancer.io/nostd/pkg/sbpf"
)

// SignerSeeds is the seed list of one program derived signer.
type SignerSeeds [][]byte

// ErrInvokeFailed wraps a non-zero status returned by the host.
var ErrInvokeFailed = errors.New("cross-program invocation failed")

// A Dispatcher hands a marshalled instruction to the host.
type Dispatcher interface {
	InvokeSigned(ix *InstructionC, infos []AccountInfoC, signers []SignerSeeds) error
}

// NoopDispatcher is used where no host is present. Its arguments are still
// computed by the caller; the call itself always succeeds.
type NoopDispatcher struct{}

func (NoopDispatcher) InvokeSigned(ix *InstructionC, infos []AccountInfoC, signers []SignerSeeds) error {
	runtime.KeepAlive(ix)
	runtime.KeepAlive(infos)
	runtime.KeepAlive(signers)
	return nil
}

// SyscallDispatcher copies the call into Frame and invokes the
// sol_invoke_signed_c syscall against VM. It stands in for the host in
// tests and the run command; unlike an on-chain program it also surfaces a
// non-zero r0 as ErrInvokeFailed.
type SyscallDispatcher struct {
	VM      sbpf.VM
	Frame   *Frame
	Syscall sbpf.Syscall
}

// NewSyscallDispatcher uses the stack region of mem as the call frame.
func NewSyscallDispatcher(mem *sbpf.Memory, syscall sbpf.Syscall) *SyscallDispatcher {
	return &SyscallDispatcher{
		VM:      mem,
		Frame:   NewFrame(mem.Stack, sbpf.VaddrStack),
		Syscall: syscall,
	}
}

func (d *SyscallDispatcher) InvokeSigned(ix *InstructionC, infos []AccountInfoC, signers []SignerSeeds) error {
	mark := d.Frame.Mark()
	defer d.Frame.Reset(mark)

	ixAddr, err := d.Frame.PutInstruction(ix)
	if err != nil {
		return err
	}
	infosAddr, err := d.Frame.PutAccountInfos(infos)
	if err != nil {
		return err
	}
	seedsAddr, seedsLen, err := d.Frame.PutSignerSeeds(signers)
	if err != nil {
		return err
	}

	r0, err := d.Syscall.Invoke(d.VM, ixAddr, infosAddr, uint64(len(infos)), seedsAddr, seedsLen)
	if err != nil {
		return err
	}
	if r0 != 0 {
		return fmt.Errorf("%w: status %#x", ErrInvokeFailed, r0)
	}
	return nil
}

// InvokeSigned invokes ix with program derived signers. A nil dispatcher
// selects NoopDispatcher.
func InvokeSigned(d Dispatcher, ix *InstructionC, infos []AccountInfoC, signers ...SignerSeeds) error {
	if d == nil {
		d = NoopDispatcher{}
	}
	return d.InvokeSigned(ix, infos, signers)
}

// Invoke is InvokeSigned without signers.
func Invoke(d Dispatcher, ix *InstructionC, infos []AccountInfoC) error {
	return InvokeSigned(d, ix, infos)
}
