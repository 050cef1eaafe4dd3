package sealevel

import (
	"go.firedancer.io/nostd/pkg/sbpf"
)

// Syscalls creates a registry of the host syscalls available to programs.
func Syscalls() sbpf.SyscallRegistry {
	reg := sbpf.NewSyscallRegistry()

	reg.Register("sol_log_", SyscallLog)
	reg.Register("sol_log_64_", SyscallLog64)
	reg.Register("sol_log_pubkey", SyscallLogPubkey)
	reg.Register("sol_log_compute_units_", SyscallLogCUs)
	reg.Register("sol_log_data", SyscallLogData)

	reg.Register("sol_invoke_signed_c", SyscallInvokeSignedC)

	return reg
}
