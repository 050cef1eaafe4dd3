package sealevel

import (
	"github.com/gagliardetto/solana-go"
)

type InstructionCtx struct {
	ProgramId solana.PublicKey
	Data      []byte
	Accounts  []InstructionAccount
}

func (instrCtx *InstructionCtx) NumberOfInstructionAccounts() uint64 {
	return uint64(len(instrCtx.Accounts))
}

func (instrCtx *InstructionCtx) CheckNumOfInstructionAccounts(expectedAtLeast uint64) error {
	if instrCtx.NumberOfInstructionAccounts() < expectedAtLeast {
		return InstrErrNotEnoughAccountKeys
	}
	return nil
}

func (instrCtx *InstructionCtx) InstructionAccount(idx uint64) (*InstructionAccount, error) {
	if idx >= instrCtx.NumberOfInstructionAccounts() {
		return nil, InstrErrNotEnoughAccountKeys
	}
	return &instrCtx.Accounts[idx], nil
}

func (instrCtx *InstructionCtx) Signers() []solana.PublicKey {
	var signers []solana.PublicKey
	for _, acct := range instrCtx.Accounts {
		if acct.IsSigner {
			signers = append(signers, acct.Key())
		}
	}
	return signers
}
