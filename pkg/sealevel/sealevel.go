package sealevel

import (
	"go.firedancer.io/nostd/pkg/sbpf"
)

const (
	StackFrameSize = 4096
	MaxCallDepth   = 64
	HeapMax        = 32 * 1024
)

// NewMemory maps input into a fresh invocation of execCtx's program.
func NewMemory(input []byte, execCtx *ExecutionCtx) *sbpf.Memory {
	return &sbpf.Memory{
		Stack:   make([]byte, StackFrameSize*MaxCallDepth),
		Heap:    make([]byte, HeapMax),
		Input:   input,
		Context: execCtx,
		Meter:   execCtx.ComputeMeter,
	}
}
