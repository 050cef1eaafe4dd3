package example_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.firedancer.io/nostd/pkg/cpi"
	"go.firedancer.io/nostd/pkg/entrypoint"
	"go.firedancer.io/nostd/pkg/example"
	"go.firedancer.io/nostd/pkg/sealevel"
	"go.firedancer.io/nostd/pkg/serialize"
)

const userLamports = 1_000_000_000

func userAccount() *serialize.Account {
	return &serialize.Account{
		Key:        solana.PublicKey{0x01, 0x75},
		Owner:      solana.SystemProgramID,
		Lamports:   userLamports,
		IsSigner:   true,
		IsWritable: true,
	}
}

func vaultAccount(t *testing.T, lamports uint64) (*serialize.Account, uint8) {
	t.Helper()
	key, bump := example.VaultAddress()
	return &serialize.Account{
		Key:        key,
		Owner:      solana.SystemProgramID,
		Lamports:   lamports,
		IsWritable: true,
	}, bump
}

func newParams(data []byte, accts ...*serialize.Account) *serialize.Params {
	params := &serialize.Params{Data: data, ProgramID: example.ProgramID}
	for _, a := range accts {
		params.Accounts = append(params.Accounts, serialize.Acct(a))
	}
	return params
}

// processDirect runs ProcessInstruction against the host without going
// through the status code translation of the entry point.
func processDirect(t *testing.T, params *serialize.Params) (*sealevel.ExecutionCtx, error) {
	t.Helper()
	buf, _, err := serialize.Serialize(params, entrypoint.MaxPermittedDataIncrease)
	require.NoError(t, err)

	execCtx := sealevel.NewExecutionCtx(example.ProgramID, nil)
	mem := sealevel.NewMemory(buf, execCtx)
	invoke, ok := sealevel.Syscalls().Lookup("sol_invoke_signed_c")
	require.True(t, ok)

	accounts := make([]entrypoint.AccountInfo, example.MaxAccounts)
	programID, n, data, err := entrypoint.Deserialize(buf, accounts)
	require.NoError(t, err)

	p := example.New(cpi.NewSyscallDispatcher(mem, invoke))
	return execCtx, p.ProcessInstruction(programID, accounts[:n], data)
}

// The TestExecute_Deposit function tests that the program moves lamports from
// the user to the vault through the system program.
func TestExecute_Deposit(t *testing.T) {
	user := userAccount()
	vault, _ := vaultAccount(t, 0)
	params := newParams(nil, user, vault)

	res, err := example.Execute(params)
	require.NoError(t, err)
	require.Equal(t, entrypoint.Success, res.Status)

	assert.Equal(t, uint64(userLamports-example.TransferLamports), user.Lamports)
	assert.Equal(t, uint64(example.TransferLamports), vault.Lamports)

	assert.Contains(t, res.Logs, "Program log: nostd")
	require.Len(t, res.Invocations, 1)
	inv := res.Invocations[0]
	assert.NoError(t, inv.Err)
	assert.Equal(t, example.ProgramID, inv.Caller)
	assert.Equal(t, sealevel.SystemProgramAddr, inv.Instruction.ProgramId)
	require.Len(t, inv.Instruction.Accounts, 2)
	assert.Equal(t, user.Key, inv.Instruction.Accounts[0].Pubkey)
	assert.True(t, inv.Instruction.Accounts[0].IsSigner)
	assert.Equal(t, vault.Key, inv.Instruction.Accounts[1].Pubkey)
	assert.False(t, inv.Instruction.Accounts[1].IsSigner)
	assert.Empty(t, inv.Signers)
	assert.NotZero(t, res.ComputeUnits)
}

// The TestExecute_Withdraw function tests a transfer out of the vault signed
// with the vault seeds.
func TestExecute_Withdraw(t *testing.T) {
	user := userAccount()
	user.IsSigner = false
	vault, bump := vaultAccount(t, 5*example.TransferLamports)
	params := newParams([]byte{example.InstrWithdraw, bump}, user, vault)

	res, err := example.Execute(params)
	require.NoError(t, err)
	require.Equal(t, entrypoint.Success, res.Status)

	assert.Equal(t, uint64(userLamports+example.TransferLamports), user.Lamports)
	assert.Equal(t, uint64(4*example.TransferLamports), vault.Lamports)

	require.Len(t, res.Invocations, 1)
	assert.Equal(t, []solana.PublicKey{vault.Key}, res.Invocations[0].Signers)
}

// The TestExecute_WithdrawBadBump function tests that seeds deriving another
// address are refused before anything is invoked.
func TestExecute_WithdrawBadBump(t *testing.T) {
	user := userAccount()
	vault, bump := vaultAccount(t, 5*example.TransferLamports)
	params := newParams([]byte{example.InstrWithdraw, bump - 1}, user, vault)

	res, err := example.Execute(params)
	require.NoError(t, err)
	assert.Equal(t, entrypoint.ErrorCode(entrypoint.ErrInvalidSeeds), res.Status)
	assert.Empty(t, res.Invocations)

	assert.Equal(t, uint64(userLamports), user.Lamports)
	assert.Equal(t, uint64(5*example.TransferLamports), vault.Lamports)
}

// The TestExecute_NotEnoughAccounts function tests the status returned when
// the vault is missing.
func TestExecute_NotEnoughAccounts(t *testing.T) {
	user := userAccount()
	params := newParams(nil, user)

	res, err := example.Execute(params)
	require.NoError(t, err)
	assert.Equal(t, entrypoint.ErrorCode(entrypoint.ErrNotEnoughAccountKeys), res.Status)
	assert.Empty(t, res.Invocations)
	assert.Contains(t, res.Logs, "Program log: nostd")
	assert.Equal(t, uint64(userLamports), user.Lamports)
}

// The TestProcessInstruction_Privileges function tests that the host rejects
// transfers the caller has no authority for.
func TestProcessInstruction_Privileges(t *testing.T) {
	t.Run("user not signer", func(t *testing.T) {
		user := userAccount()
		user.IsSigner = false
		vault, _ := vaultAccount(t, 0)

		execCtx, err := processDirect(t, newParams(nil, user, vault))
		assert.ErrorIs(t, err, sealevel.InstrErrMissingRequiredSignature)
		require.Len(t, execCtx.Invocations, 1)
		assert.ErrorIs(t, execCtx.Invocations[0].Err, sealevel.InstrErrMissingRequiredSignature)
	})

	t.Run("user read-only", func(t *testing.T) {
		user := userAccount()
		user.IsWritable = false
		vault, _ := vaultAccount(t, 0)

		_, err := processDirect(t, newParams(nil, user, vault))
		assert.ErrorIs(t, err, sealevel.InstrErrReadonlyLamportChange)
	})

	t.Run("vault read-only", func(t *testing.T) {
		user := userAccount()
		vault, bump := vaultAccount(t, example.TransferLamports)
		vault.IsWritable = false

		_, err := processDirect(t, newParams([]byte{example.InstrWithdraw, bump}, user, vault))
		assert.ErrorIs(t, err, entrypoint.ErrImmutable)
	})
}

// The TestProcessInstruction_InvalidData function tests instruction data the
// program does not understand.
func TestProcessInstruction_InvalidData(t *testing.T) {
	user := userAccount()
	vault, _ := vaultAccount(t, 0)

	execCtx, err := processDirect(t, newParams([]byte{7}, user, vault))
	assert.ErrorIs(t, err, entrypoint.ErrInvalidInstructionData)
	assert.Empty(t, execCtx.Invocations)

	_, err = processDirect(t, newParams([]byte{example.InstrWithdraw}, user, vault))
	assert.ErrorIs(t, err, entrypoint.ErrInvalidInstructionData)
}

// The TestEntrypoint_Noop function tests the program without a host: the call
// is built but nothing is transferred.
func TestEntrypoint_Noop(t *testing.T) {
	vault, _ := vaultAccount(t, 0)
	buf, _, err := serialize.Serialize(newParams(nil, userAccount(), vault), entrypoint.MaxPermittedDataIncrease)
	require.NoError(t, err)

	p := example.New(nil)
	assert.Equal(t, entrypoint.Success, p.Entrypoint(buf))
	assert.Zero(t, p.Frame.Len())

	accounts := make([]entrypoint.AccountInfo, 2)
	_, n, _, err := entrypoint.Deserialize(buf, accounts)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	assert.Equal(t, uint64(userLamports), accounts[0].UncheckedLamports())
	assert.Zero(t, accounts[1].UncheckedLamports())
}

// The TestProcessInstruction_LamportsGuardAcrossInvoke function tests that a
// shared lamports guard held across the transfer reads the balance the host
// wrote back.
func TestProcessInstruction_LamportsGuardAcrossInvoke(t *testing.T) {
	vault, _ := vaultAccount(t, 0)
	buf, _, err := serialize.Serialize(newParams(nil, userAccount(), vault), entrypoint.MaxPermittedDataIncrease)
	require.NoError(t, err)

	execCtx := sealevel.NewExecutionCtx(example.ProgramID, nil)
	mem := sealevel.NewMemory(buf, execCtx)
	invoke, ok := sealevel.Syscalls().Lookup("sol_invoke_signed_c")
	require.True(t, ok)

	accounts := make([]entrypoint.AccountInfo, example.MaxAccounts)
	programID, n, data, err := entrypoint.Deserialize(buf, accounts)
	require.NoError(t, err)

	guard, err := accounts[0].TryBorrowLamports()
	require.NoError(t, err)
	defer guard.Release()
	require.Equal(t, uint64(userLamports), guard.Value().Get())

	p := example.New(cpi.NewSyscallDispatcher(mem, invoke))
	require.NoError(t, p.ProcessInstruction(programID, accounts[:n], data))

	assert.Equal(t, uint64(userLamports-example.TransferLamports), accounts[0].UncheckedLamports())
	assert.Equal(t, uint64(userLamports-example.TransferLamports), guard.Value().Get())
	assert.Equal(t, uint64(example.TransferLamports), accounts[1].UncheckedLamports())
}
