package example

import (
	"go.firedancer.io/nostd/pkg/cpi"
	"go.firedancer.io/nostd/pkg/entrypoint"
	"go.firedancer.io/nostd/pkg/sbpf"
	"go.firedancer.io/nostd/pkg/sealevel"
	"go.firedancer.io/nostd/pkg/serialize"
)

// Execute runs the program against the sealevel host. Program logs and
// cross-program invocations go through the host syscalls.
func Execute(params *serialize.Params) (*sealevel.Result, error) {
	syscalls := sealevel.Syscalls()
	invoke, _ := syscalls.Lookup("sol_invoke_signed_c")
	solLog, _ := syscalls.Lookup("sol_log_")

	return sealevel.Execute(params, entrypoint.MaxPermittedDataIncrease, func(mem *sbpf.Memory) uint64 {
		d := cpi.NewSyscallDispatcher(mem, invoke)

		entrypoint.SetLogger(&entrypoint.SyscallLogger{VM: mem, Frame: d.Frame, Syscall: solLog})
		defer entrypoint.SetLogger(nil)

		return New(d).Entrypoint(mem.Input)
	})
}
