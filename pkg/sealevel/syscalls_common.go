package sealevel

import (
	"math"

	"go.firedancer.io/nostd/pkg/cu"
	"go.firedancer.io/nostd/pkg/sbpf"
)

func executionCtx(vm sbpf.VM) *ExecutionCtx {
	return vm.VMContext().(*ExecutionCtx)
}

func syscallErr(err error) (uint64, error) {
	return math.MaxUint64, err
}

func syscallCuErr() (uint64, error) {
	return math.MaxUint64, cu.ErrComputeExceeded
}

func syscallSuccess(result uint64) (uint64, error) {
	return result, nil
}
