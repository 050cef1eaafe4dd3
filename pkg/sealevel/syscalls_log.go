package sealevel

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gagliardetto/solana-go"
	"go.firedancer.io/nostd/pkg/cpi"
	"go.firedancer.io/nostd/pkg/safemath"
	"go.firedancer.io/nostd/pkg/sbpf"
)

func SyscallLogImpl(vm sbpf.VM, ptr, strlen uint64) (uint64, error) {
	execCtx := executionCtx(vm)

	var cost uint64
	if strlen > CUSyscallBaseCost {
		cost = strlen
	} else {
		cost = CUSyscallBaseCost
	}

	err := execCtx.ComputeMeter.Consume(cost)
	if err != nil {
		return syscallCuErr()
	}

	buf := make([]byte, strlen)
	if err = vm.Read(ptr, buf); err != nil {
		return syscallErr(err)
	}
	if !utf8.Valid(buf) {
		return syscallErr(SyscallErrInvalidString)
	}
	execCtx.Log.Log("Program log: " + string(buf))
	return syscallSuccess(0)
}

var SyscallLog = sbpf.SyscallFunc2(SyscallLogImpl)

func SyscallLog64Impl(vm sbpf.VM, r1, r2, r3, r4, r5 uint64) (uint64, error) {
	execCtx := executionCtx(vm)
	err := execCtx.ComputeMeter.Consume(CULog64Units)
	if err != nil {
		return syscallCuErr()
	}

	msg := fmt.Sprintf("Program log: %#x, %#x, %#x, %#x, %#x", r1, r2, r3, r4, r5)
	execCtx.Log.Log(msg)
	return syscallSuccess(0)
}

var SyscallLog64 = sbpf.SyscallFunc5(SyscallLog64Impl)

func SyscallLogCUsImpl(vm sbpf.VM) (uint64, error) {
	execCtx := executionCtx(vm)
	err := execCtx.ComputeMeter.Consume(CUSyscallBaseCost)
	if err != nil {
		return syscallCuErr()
	}

	msg := fmt.Sprintf("Program consumption: %d units remaining", execCtx.ComputeMeter.Remaining())
	execCtx.Log.Log(msg)
	return syscallSuccess(0)
}

var SyscallLogCUs = sbpf.SyscallFunc0(SyscallLogCUsImpl)

func SyscallLogPubkeyImpl(vm sbpf.VM, pubkeyAddr uint64) (uint64, error) {
	execCtx := executionCtx(vm)
	err := execCtx.ComputeMeter.Consume(CULogPubkeyUnits)
	if err != nil {
		return syscallCuErr()
	}

	var pubkey solana.PublicKey
	if err = vm.Read(pubkeyAddr, pubkey[:]); err != nil {
		return syscallErr(err)
	}

	execCtx.Log.Log("Program log: " + pubkey.String())
	return syscallSuccess(0)
}

var SyscallLogPubkey = sbpf.SyscallFunc1(SyscallLogPubkeyImpl)

func SyscallLogDataImpl(vm sbpf.VM, addr uint64, len uint64) (uint64, error) {
	execCtx := executionCtx(vm)
	err := execCtx.ComputeMeter.Consume(CUSyscallBaseCost)
	if err != nil {
		return syscallCuErr()
	}

	size, err := safemath.CheckedMulU64(len, cpi.VectorCSize)
	if err != nil {
		return syscallErr(err)
	}

	mem, err := vm.Translate(addr, size, false)
	if err != nil {
		return syscallErr(err)
	}

	err = execCtx.ComputeMeter.Consume(safemath.SaturatingMulU64(len, CUSyscallBaseCost))
	if err != nil {
		return syscallCuErr()
	}

	fields := make([]string, 0, len)
	for count := uint64(0); count < len; count++ {
		var vec cpi.VectorC
		mem = vec.UnmarshalBytes(mem)

		err = execCtx.ComputeMeter.Consume(vec.Len)
		if err != nil {
			return syscallCuErr()
		}

		data, err := vm.Translate(vec.Addr, vec.Len, false)
		if err != nil {
			return syscallErr(err)
		}
		fields = append(fields, base64.StdEncoding.EncodeToString(data))
	}

	execCtx.Log.Log("Program data: " + strings.Join(fields, " "))
	return syscallSuccess(0)
}

var SyscallLogData = sbpf.SyscallFunc2(SyscallLogDataImpl)
