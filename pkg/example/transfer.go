// Package example is a program written against the entrypoint package. It
// moves lamports between its first two accounts through the system program.
package example

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"go.firedancer.io/nostd/pkg/cpi"
	"go.firedancer.io/nostd/pkg/entrypoint"
	"go.firedancer.io/nostd/pkg/pda"
	"go.firedancer.io/nostd/pkg/sbpf"
)

var ProgramID = solana.MustPublicKeyFromBase58("EWUt9PAjn26zCUALRRt56Gutaj52Bpb8ifbf7GZX3h1k")

const (
	MaxAccounts      = 32
	TransferLamports = 100_000_000

	// VaultSeed derives the program owned account that can pay out.
	VaultSeed = "vault"
)

// Instruction discriminants.
const (
	InstrDeposit  = 0
	InstrWithdraw = 1
)

const systemTransfer = 2

// VaultAddress returns the vault of the program and its bump seed.
func VaultAddress() (solana.PublicKey, uint8) {
	addr, bump, err := pda.FindProgramAddress([][]byte{[]byte(VaultSeed)}, ProgramID)
	if err != nil {
		panic(err)
	}
	return addr, bump
}

type Program struct {
	Dispatcher cpi.Dispatcher
	Frame      *cpi.Frame
}

// New returns the program invoking through d. Without a syscall dispatcher
// descriptors are staged in a private frame.
func New(d cpi.Dispatcher) *Program {
	if sd, ok := d.(*cpi.SyscallDispatcher); ok {
		return &Program{Dispatcher: d, Frame: sd.Frame}
	}
	return &Program{Dispatcher: d, Frame: cpi.NewFrame(make([]byte, 1024), sbpf.VaddrStack)}
}

// Entrypoint runs the program over the raw input buffer.
func (p *Program) Entrypoint(input []byte) uint64 {
	return entrypoint.Entrypoint(input, MaxAccounts, p.ProcessInstruction)
}

// ProcessInstruction expects [user, vault, ...]. An empty instruction or
// InstrDeposit moves TransferLamports from user to vault; InstrWithdraw
// followed by the vault bump moves them back, signed by the program.
func (p *Program) ProcessInstruction(programID *solana.PublicKey, accounts []entrypoint.AccountInfo, data []byte) error {
	entrypoint.Log("nostd")

	if len(accounts) < 2 {
		return entrypoint.ErrNotEnoughAccountKeys
	}
	user, vault := accounts[0], accounts[1]

	var ixData [12]byte
	ixData[0] = systemTransfer
	binary.LittleEndian.PutUint64(ixData[4:], TransferLamports)

	mark := p.Frame.Mark()
	defer p.Frame.Reset(mark)

	systemProgram, err := p.Frame.PutPubkey(solana.SystemProgramID)
	if err != nil {
		return err
	}

	if len(data) == 0 || data[0] == InstrDeposit {
		metas := [2]cpi.AccountMetaC{user.ToMetaC(), vault.ToMetaC()}
		ix, err := p.Frame.Instruction(systemProgram, metas[:], ixData[:])
		if err != nil {
			return err
		}
		infos := [2]cpi.AccountInfoC{user.ToInfoC(), vault.ToInfoC()}
		return cpi.Invoke(p.Dispatcher, &ix, infos[:])
	}

	if data[0] != InstrWithdraw || len(data) < 2 {
		return entrypoint.ErrInvalidInstructionData
	}
	if !vault.IsWritable() {
		return entrypoint.ErrImmutable
	}
	seeds := cpi.SignerSeeds{[]byte(VaultSeed), data[1:2]}
	if addr, err := pda.CreateProgramAddress(seeds, *programID); err != nil || addr != *vault.Key() {
		return entrypoint.ErrInvalidSeeds
	}

	metas := [2]cpi.AccountMetaC{vault.ToMetaCSigner(), user.ToMetaC()}
	ix, err := p.Frame.Instruction(systemProgram, metas[:], ixData[:])
	if err != nil {
		return err
	}
	infos := [2]cpi.AccountInfoC{vault.ToInfoC(), user.ToInfoC()}
	return cpi.InvokeSigned(p.Dispatcher, &ix, infos[:], seeds)
}
