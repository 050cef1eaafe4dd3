package sealevel

import (
	"errors"

	"github.com/gagliardetto/solana-go"
	"go.firedancer.io/nostd/pkg/cpi"
	"go.firedancer.io/nostd/pkg/pda"
	"go.firedancer.io/nostd/pkg/safemath"
	"go.firedancer.io/nostd/pkg/sbpf"
	"k8s.io/klog/v2"
)

const (
	MaxSigners                = 16
	MaxSeeds                  = pda.MaxSeeds
	MaxCpiInstructionDataLen  = 10 * 1024
	MaxCpiInstructionAccounts = 255
	MaxCpiAccountInfos        = 128
)

// TranslateInstructionC reads a SolInstruction and everything it points to
// from VM memory.
func TranslateInstructionC(vm sbpf.VM, addr uint64) (Instruction, error) {
	ixData, err := vm.Translate(addr, cpi.InstructionCSize, false)
	if err != nil {
		return Instruction{}, err
	}

	var ix cpi.InstructionC
	ix.UnmarshalBytes(ixData)

	if ix.DataLen > MaxCpiInstructionDataLen {
		return Instruction{}, SyscallErrInstructionTooLarge
	}
	if ix.AccountsLen > MaxCpiInstructionAccounts {
		return Instruction{}, SyscallErrTooManyAccounts
	}

	pkData, err := vm.Translate(ix.ProgramIDAddr, solana.PublicKeyLength, false)
	if err != nil {
		return Instruction{}, err
	}
	programId := solana.PublicKeyFromBytes(pkData)

	accountMetasData, err := vm.Translate(ix.AccountsAddr, cpi.AccountMetaCSize*ix.AccountsLen, false)
	if err != nil {
		return Instruction{}, err
	}

	accounts := make([]AccountMeta, 0, ix.AccountsLen)
	for count := uint64(0); count < ix.AccountsLen; count++ {
		if accountMetasData[8] > 1 || accountMetasData[9] > 1 {
			return Instruction{}, InstrErrInvalidArgument
		}
		var accountMeta cpi.AccountMetaC
		accountMetasData = accountMeta.UnmarshalBytes(accountMetasData)

		pubkeyData, err := vm.Translate(accountMeta.PubkeyAddr, solana.PublicKeyLength, false)
		if err != nil {
			return Instruction{}, err
		}

		accounts = append(accounts, AccountMeta{
			Pubkey:     solana.PublicKeyFromBytes(pubkeyData),
			IsSigner:   accountMeta.IsSigner,
			IsWritable: accountMeta.IsWritable,
		})
	}

	data, err := vm.Translate(ix.DataAddr, ix.DataLen, false)
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{Accounts: accounts, Data: append([]byte(nil), data...), ProgramId: programId}, nil
}

// TranslateAccountInfosC reads a SolAccountInfo array. The lamports, owner
// and data of the returned accounts alias VM memory.
func TranslateAccountInfosC(vm sbpf.VM, addr, length uint64) ([]CallerAccount, error) {
	if length > MaxCpiAccountInfos {
		return nil, SyscallErrMaxInstructionAccountInfosExceeded
	}

	infosData, err := vm.Translate(addr, safemath.SaturatingMulU64(length, cpi.AccountInfoCSize), false)
	if err != nil {
		return nil, err
	}

	callerAccts := make([]CallerAccount, 0, length)
	for count := uint64(0); count < length; count++ {
		var info cpi.AccountInfoC
		infosData = info.UnmarshalBytes(infosData)

		key, err := vm.Translate(info.KeyAddr, solana.PublicKeyLength, false)
		if err != nil {
			return nil, err
		}
		lamports, err := vm.Translate(info.LamportsAddr, 8, true)
		if err != nil {
			return nil, err
		}
		owner, err := vm.Translate(info.OwnerAddr, solana.PublicKeyLength, true)
		if err != nil {
			return nil, err
		}
		data, err := vm.Translate(info.DataAddr, info.DataLen, true)
		if err != nil {
			return nil, err
		}

		callerAccts = append(callerAccts, CallerAccount{
			Key:        solana.PublicKeyFromBytes(key),
			IsSigner:   info.IsSigner,
			IsWritable: info.IsWritable,
			Executable: info.Executable,
			lamports:   lamports,
			owner:      owner,
			data:       data,
		})
	}

	return callerAccts, nil
}

// TranslateSigners derives the program addresses signed for by the seeds at
// signersSeedsAddr.
func TranslateSigners(vm sbpf.VM, programId solana.PublicKey, signersSeedsAddr, signersSeedsLen uint64) ([]solana.PublicKey, error) {
	if signersSeedsLen == 0 {
		return nil, nil
	}

	if signersSeedsLen > MaxSigners {
		return nil, SyscallErrTooManySigners
	}

	ssLen := safemath.SaturatingMulU64(signersSeedsLen, cpi.VectorCSize)
	signerSeedsMem, err := vm.Translate(signersSeedsAddr, ssLen, false)
	if err != nil {
		return nil, err
	}

	pdas := make([]solana.PublicKey, 0, signersSeedsLen)
	for count := uint64(0); count < signersSeedsLen; count++ {
		var signerSeed cpi.VectorC
		signerSeedsMem = signerSeed.UnmarshalBytes(signerSeedsMem)

		if signerSeed.Len > MaxSeeds {
			return nil, SyscallErrMaxSeedLengthExceeded
		}

		sz := safemath.SaturatingMulU64(signerSeed.Len, cpi.VectorCSize)
		mem, err := vm.Translate(signerSeed.Addr, sz, false)
		if err != nil {
			return nil, err
		}

		seedBytes := make([][]byte, 0, signerSeed.Len)
		for i := uint64(0); i < signerSeed.Len; i++ {
			var seed cpi.VectorC
			mem = seed.UnmarshalBytes(mem)

			seedFragmentMem, err := vm.Translate(seed.Addr, seed.Len, false)
			if err != nil {
				return nil, err
			}
			seedBytes = append(seedBytes, seedFragmentMem)
		}

		pubkey, err := pda.CreateProgramAddress(seedBytes, programId)
		if errors.Is(err, pda.ErrMaxSeedLengthExceeded) {
			return nil, SyscallErrMaxSeedLengthExceeded
		} else if err != nil {
			klog.V(2).Infof("bad signer seeds: %s", err)
			return nil, SyscallErrBadSeeds
		}
		pdas = append(pdas, pubkey)
	}

	return pdas, nil
}

// SyscallInvokeSignedCImpl is an implementation of the sol_invoke_signed_c syscall
func SyscallInvokeSignedCImpl(vm sbpf.VM, instructionAddr, accountInfosAddr, accountInfosLen, signerSeedsAddr, signerSeedsLen uint64) (uint64, error) {
	execCtx := executionCtx(vm)
	err := execCtx.ComputeMeter.Consume(CUInvokeUnits)
	if err != nil {
		return syscallCuErr()
	}

	ix, err := TranslateInstructionC(vm, instructionAddr)
	if err != nil {
		return syscallErr(err)
	}

	err = execCtx.ComputeMeter.Consume(uint64(len(ix.Data)) / CUCpiBytesPerUnit)
	if err != nil {
		return syscallCuErr()
	}

	callerAccts, err := TranslateAccountInfosC(vm, accountInfosAddr, accountInfosLen)
	if err != nil {
		return syscallErr(err)
	}

	callerProgramId := execCtx.stack[len(execCtx.stack)-1]
	signers, err := TranslateSigners(vm, callerProgramId, signerSeedsAddr, signerSeedsLen)
	if err != nil {
		return syscallErr(err)
	}

	klog.V(2).Infof("C ABI CPI call from %s -> %s, %d signers", callerProgramId, ix.ProgramId, len(signers))

	err = execCtx.NativeInvoke(ix, callerAccts, signers)
	if err != nil {
		return syscallErr(err)
	}
	return syscallSuccess(0)
}

var SyscallInvokeSignedC = sbpf.SyscallFunc5(SyscallInvokeSignedCImpl)
