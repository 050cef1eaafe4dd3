package sealevel

import (
	"github.com/gagliardetto/solana-go"
	"go.firedancer.io/nostd/pkg/cu"
	"k8s.io/klog/v2"
)

// MaxInvokeStackHeight bounds nested cross-program invocations.
const MaxInvokeStackHeight = 5

// NativeProgramFn executes an instruction addressed to a builtin program.
type NativeProgramFn func(execCtx *ExecutionCtx, instrCtx *InstructionCtx) error

// Invocation records a cross-program invocation issued by the program.
type Invocation struct {
	Caller      solana.PublicKey
	Instruction Instruction
	Signers     []solana.PublicKey
	Err         error
}

// ExecutionCtx is the host state of one program invocation.
type ExecutionCtx struct {
	Log          Logger
	ComputeMeter *cu.ComputeMeter
	ProgramId    solana.PublicKey
	Programs     map[solana.PublicKey]NativeProgramFn
	Invocations  []Invocation

	stack []solana.PublicKey
}

// NewExecutionCtx prepares the execution of programId with the system
// program available to cross-program invocations.
func NewExecutionCtx(programId solana.PublicKey, log Logger) *ExecutionCtx {
	if log == nil {
		log = new(LogRecorder)
	}
	meter := cu.NewComputeMeterDefault()
	return &ExecutionCtx{
		Log:          log,
		ComputeMeter: &meter,
		ProgramId:    programId,
		Programs: map[solana.PublicKey]NativeProgramFn{
			SystemProgramAddr: SystemProgramExecute,
		},
		stack: []solana.PublicKey{programId},
	}
}

// PrepareInstruction resolves the accounts of ix among the accounts passed
// by the caller and checks that no privilege is escalated.
func (execCtx *ExecutionCtx) PrepareInstruction(ix Instruction, callerAccts []CallerAccount, signers []solana.PublicKey) ([]InstructionAccount, error) {
	instrAccts := make([]InstructionAccount, 0, len(ix.Accounts))

	for _, accountMeta := range ix.Accounts {
		var callerAcct *CallerAccount
		for i := range callerAccts {
			if callerAccts[i].Key == accountMeta.Pubkey {
				callerAcct = &callerAccts[i]
				break
			}
		}
		if callerAcct == nil {
			klog.Errorf("instruction references unknown account %s", accountMeta.Pubkey)
			return nil, InstrErrMissingAccount
		}

		// "Read-only in caller cannot become writable in callee"
		if accountMeta.IsWritable && !callerAcct.IsWritable {
			klog.Errorf("account %s is read-only in caller", accountMeta.Pubkey)
			return nil, InstrErrPrivilegeEscalation
		}

		// "To be signed in the callee,
		// it must be either signed in the caller or by the program"
		presentInSigners := false
		for _, addr := range signers {
			if addr == accountMeta.Pubkey {
				presentInSigners = true
				break
			}
		}
		if accountMeta.IsSigner && !(callerAcct.IsSigner || presentInSigners) {
			klog.Errorf("account %s must sign", accountMeta.Pubkey)
			return nil, InstrErrPrivilegeEscalation
		}

		instrAccts = append(instrAccts, InstructionAccount{
			Account:    callerAcct,
			IsSigner:   accountMeta.IsSigner,
			IsWritable: accountMeta.IsWritable,
		})
	}

	return instrAccts, nil
}

func (execCtx *ExecutionCtx) push(programId solana.PublicKey) error {
	if len(execCtx.stack) >= MaxInvokeStackHeight {
		return InstrErrCallDepth
	}
	for _, p := range execCtx.stack {
		if p == programId && execCtx.stack[len(execCtx.stack)-1] != programId {
			return InstrErrReentrancyNotAllowed
		}
	}
	execCtx.stack = append(execCtx.stack, programId)
	return nil
}

func (execCtx *ExecutionCtx) pop() {
	execCtx.stack = execCtx.stack[:len(execCtx.stack)-1]
}

func (execCtx *ExecutionCtx) StackHeight() uint64 {
	return uint64(len(execCtx.stack))
}

// NativeInvoke runs ix against the builtin program it addresses and records
// the invocation.
func (execCtx *ExecutionCtx) NativeInvoke(ix Instruction, callerAccts []CallerAccount, signers []solana.PublicKey) (err error) {
	caller := execCtx.stack[len(execCtx.stack)-1]
	defer func() {
		execCtx.Invocations = append(execCtx.Invocations, Invocation{
			Caller:      caller,
			Instruction: ix,
			Signers:     signers,
			Err:         err,
		})
	}()

	instrAccts, err := execCtx.PrepareInstruction(ix, callerAccts, signers)
	if err != nil {
		return err
	}

	nativeProgramFn, ok := execCtx.Programs[ix.ProgramId]
	if !ok {
		klog.Errorf("unknown program %s", ix.ProgramId)
		return InstrErrUnsupportedProgramId
	}

	if err = execCtx.push(ix.ProgramId); err != nil {
		return err
	}
	defer execCtx.pop()

	klog.V(2).Infof("invoking %s from %s with %d accounts, %d signers", ix.ProgramId, caller, len(instrAccts), len(signers))
	return nativeProgramFn(execCtx, &InstructionCtx{ProgramId: ix.ProgramId, Data: ix.Data, Accounts: instrAccts})
}
