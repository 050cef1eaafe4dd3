package sealevel

import (
	"fmt"

	"go.firedancer.io/nostd/pkg/sbpf"
	"go.firedancer.io/nostd/pkg/serialize"
	"k8s.io/klog/v2"
)

// EntrypointFn runs a program over its mapped input region.
type EntrypointFn func(mem *sbpf.Memory) uint64

// Result is the outcome of one top-level program execution.
type Result struct {
	Status       uint64
	Logs         []string
	Invocations  []Invocation
	ComputeUnits uint64
}

// Execute serializes params, runs entry against it and on success writes
// the accounts back into params.
func Execute(params *serialize.Params, maxIncrease int, entry EntrypointFn) (*Result, error) {
	buf, preLens, err := serialize.Serialize(params, maxIncrease)
	if err != nil {
		return nil, err
	}

	logs := new(LogRecorder)
	execCtx := NewExecutionCtx(params.ProgramID, logs)
	mem := NewMemory(buf, execCtx)

	logs.Log(fmt.Sprintf("Program %s invoke [1]", params.ProgramID))
	status := entry(mem)

	res := &Result{
		Status:       status,
		Invocations:  execCtx.Invocations,
		ComputeUnits: execCtx.ComputeMeter.Used(),
	}

	if status != 0 {
		logs.Log(fmt.Sprintf("Program %s failed: status %#x", params.ProgramID, status))
		res.Logs = logs.Logs
		return res, nil
	}

	logs.Log(fmt.Sprintf("Program %s consumed %d of %d compute units", params.ProgramID, res.ComputeUnits, res.ComputeUnits+execCtx.ComputeMeter.Remaining()))
	logs.Log(fmt.Sprintf("Program %s success", params.ProgramID))
	res.Logs = logs.Logs

	if err = serialize.Deserialize(buf, params, preLens, maxIncrease); err != nil {
		klog.Errorf("program %s left invalid account state: %s", params.ProgramID, err)
		return res, err
	}
	return res, nil
}
