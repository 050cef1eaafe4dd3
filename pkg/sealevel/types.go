package sealevel

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"go.firedancer.io/nostd/pkg/safemath"
)

type Instruction struct {
	Accounts  []AccountMeta
	Data      []byte
	ProgramId solana.PublicKey
}

type AccountMeta struct {
	Pubkey     solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

// CallerAccount is an account passed to a cross-program invocation. Its
// lamports, owner and data alias the memory of the calling program, so
// changes made by the callee are visible to the caller on return.
type CallerAccount struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool
	Executable bool

	lamports []byte
	owner    []byte
	data     []byte
}

func (acct *CallerAccount) Lamports() uint64 {
	return binary.LittleEndian.Uint64(acct.lamports)
}

func (acct *CallerAccount) Owner() solana.PublicKey {
	return solana.PublicKeyFromBytes(acct.owner)
}

func (acct *CallerAccount) Data() []byte {
	return acct.data
}

// InstructionAccount is an account of the callee instruction together with
// the privileges granted to it.
type InstructionAccount struct {
	Account    *CallerAccount
	IsSigner   bool
	IsWritable bool
}

func (acct *InstructionAccount) Key() solana.PublicKey {
	return acct.Account.Key
}

func (acct *InstructionAccount) Lamports() uint64 {
	return acct.Account.Lamports()
}

func (acct *InstructionAccount) Owner() solana.PublicKey {
	return acct.Account.Owner()
}

func (acct *InstructionAccount) Data() []byte {
	return acct.Account.Data()
}

func (acct *InstructionAccount) SetLamports(lamports uint64) error {
	if !acct.IsWritable && lamports != acct.Lamports() {
		return InstrErrReadonlyLamportChange
	}
	binary.LittleEndian.PutUint64(acct.Account.lamports, lamports)
	return nil
}

func (acct *InstructionAccount) CheckedAddLamports(lamports uint64) error {
	sum, err := safemath.CheckedAddU64(acct.Lamports(), lamports)
	if err != nil {
		return InstrErrArithmeticOverflow
	}
	return acct.SetLamports(sum)
}

func (acct *InstructionAccount) CheckedSubLamports(lamports uint64) error {
	if lamports > acct.Lamports() {
		return InstrErrArithmeticOverflow
	}
	return acct.SetLamports(acct.Lamports() - lamports)
}

func (acct *InstructionAccount) SetOwner(owner solana.PublicKey) error {
	if !acct.IsWritable {
		return InstrErrModifiedProgramId
	}
	copy(acct.Account.owner, owner[:])
	return nil
}
