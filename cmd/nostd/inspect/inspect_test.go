package inspect

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.firedancer.io/nostd/pkg/entrypoint"
	"go.firedancer.io/nostd/pkg/serialize"
)

// The TestReport function tests the report of a buffer with a duplicate
// account.
func TestReport(t *testing.T) {
	payer := &serialize.Account{Key: solana.PublicKey{1}, Lamports: 5, IsSigner: true, IsWritable: true}
	prog := &serialize.Account{Key: solana.PublicKey{2}, Data: []byte{1, 2}, Executable: true}
	params := &serialize.Params{
		Accounts:  []serialize.Param{serialize.Acct(payer), serialize.Acct(prog), serialize.Dup(0)},
		Data:      []byte{0xaa},
		ProgramID: solana.PublicKey{3},
	}
	buf, _, err := serialize.Serialize(params, entrypoint.MaxPermittedDataIncrease)
	require.NoError(t, err)

	accounts := make([]entrypoint.AccountInfo, 8)
	programID, n, data, err := entrypoint.Deserialize(buf, accounts)
	require.NoError(t, err)

	report := Report("x.bin", programID, accounts[:n], data)
	assert.Contains(t, report, "x.bin: program "+params.ProgramID.String()+", 1 bytes of data, 3 accounts (2 unique, 2 writable)")
	assert.Contains(t, report, "#0 "+payer.Key.String()+" owner=")
	assert.Contains(t, report, "lamports=5 data=0 [signer writable]")
	assert.Contains(t, report, "data=2 [executable]")
	assert.Contains(t, report, "#2 duplicate of #0")
}
