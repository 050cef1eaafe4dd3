package entrypoint_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.firedancer.io/nostd/pkg/borrow"
	"go.firedancer.io/nostd/pkg/entrypoint"
	"go.firedancer.io/nostd/pkg/sbpf"
	"go.firedancer.io/nostd/pkg/serialize"
)

func single(t *testing.T, p entrypoint.Parser, data []byte) (entrypoint.AccountInfo, []byte) {
	t.Helper()
	params := &serialize.Params{Accounts: []serialize.Param{serialize.Acct(account(1, data))}}
	buf := build(t, params, p.MaxDataIncrease)
	handles := make([]entrypoint.AccountInfo, 1)
	_, n, _, err := p.Deserialize(buf, handles)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	return handles[0], buf
}

// The TestRealloc_Budget function tests that growth past the cumulative
// budget fails and leaves the length unchanged.
func TestRealloc_Budget(t *testing.T) {
	p := entrypoint.Parser{MaxDataIncrease: 1024}
	ai, _ := single(t, p, make([]byte, 10))

	err := ai.Realloc(10+1025, true)
	assert.ErrorIs(t, err, entrypoint.ErrInvalidRealloc)
	assert.Equal(t, 10, ai.DataLen())
	assert.Equal(t, int32(0), ai.ResizeDelta())

	require.NoError(t, ai.Realloc(10+1024, true))
	assert.Equal(t, int32(1024), ai.ResizeDelta())
	assert.ErrorIs(t, ai.Realloc(10+1025, false), entrypoint.ErrInvalidRealloc)

	assert.ErrorIs(t, ai.Realloc(-1, false), entrypoint.ErrInvalidRealloc)
}

// The TestRealloc_CounterOverflow function tests growth that does not fit
// the signed resize counter.
func TestRealloc_CounterOverflow(t *testing.T) {
	p := entrypoint.Parser{MaxDataIncrease: 1024}
	ai, buf := single(t, p, make([]byte, 10))

	assert.ErrorIs(t, ai.Realloc(10+math.MaxInt32+1, true), entrypoint.ErrInvalidRealloc)
	assert.Equal(t, 10, ai.DataLen())
	assert.Equal(t, int32(0), ai.ResizeDelta())

	binary.LittleEndian.PutUint32(buf[ai.Index()+4:], uint32(math.MaxInt32-10))
	assert.ErrorIs(t, ai.Realloc(10+11, false), entrypoint.ErrInvalidRealloc)
	assert.Equal(t, 10, ai.DataLen())
	assert.Equal(t, int32(math.MaxInt32-10), ai.ResizeDelta())
}

// The TestRealloc_RoundTrip function tests that growing then shrinking by
// the same amount restores the counter, and that same-length realloc is a
// no-op.
func TestRealloc_RoundTrip(t *testing.T) {
	ai, _ := single(t, entrypoint.DefaultParser, []byte{1, 2, 3, 4})

	require.NoError(t, ai.Realloc(4, true))
	assert.Equal(t, 4, ai.DataLen())
	assert.Equal(t, int32(0), ai.ResizeDelta())

	require.NoError(t, ai.Realloc(104, false))
	assert.Equal(t, int32(100), ai.ResizeDelta())
	require.NoError(t, ai.Realloc(4, false))
	assert.Equal(t, int32(0), ai.ResizeDelta())
	assert.Equal(t, 4, ai.DataLen())

	require.NoError(t, ai.Realloc(1, false))
	assert.Equal(t, int32(-3), ai.ResizeDelta())
	require.NoError(t, ai.Realloc(1+entrypoint.MaxPermittedDataIncrease+3, false))
	assert.Equal(t, int32(entrypoint.MaxPermittedDataIncrease), ai.ResizeDelta())
}

// The TestRealloc_ZeroInit function tests that only zeroInit clears the
// newly exposed bytes.
func TestRealloc_ZeroInit(t *testing.T) {
	ai, _ := single(t, entrypoint.DefaultParser, []byte{1, 2, 3, 4})

	require.NoError(t, ai.Realloc(2, false))
	require.NoError(t, ai.Realloc(4, false))
	assert.Equal(t, []byte{1, 2, 3, 4}, ai.UncheckedData())

	require.NoError(t, ai.Realloc(2, false))
	require.NoError(t, ai.Realloc(4, true))
	assert.Equal(t, []byte{1, 2, 0, 0}, ai.UncheckedData())
}

// The TestRealloc_WhileBorrowed function tests that realloc refuses to run
// while a data guard is live.
func TestRealloc_WhileBorrowed(t *testing.T) {
	ai, _ := single(t, entrypoint.DefaultParser, []byte{1})

	r, err := ai.TryBorrowData()
	require.NoError(t, err)
	assert.ErrorIs(t, ai.Realloc(8, true), borrow.ErrAlreadyBorrowed)
	r.Release()

	lr, err := ai.TryBorrowMutLamports()
	require.NoError(t, err)
	assert.NoError(t, ai.Realloc(8, true))
	lr.Release()

	d, err := ai.TryBorrowData()
	require.NoError(t, err)
	assert.Len(t, d.Value(), 8)
	assert.Equal(t, 8, cap(d.Value()))
	d.Release()
}

// The TestAccountInfo_MutableData function tests writes through a mutable
// guard and projection of data guards.
func TestAccountInfo_MutableData(t *testing.T) {
	ai, buf := single(t, entrypoint.DefaultParser, []byte{0, 0, 0, 0, 0, 0, 0, 0, 9})

	w, err := ai.TryBorrowMutData()
	require.NoError(t, err)
	w.Value()[0] = 0xff
	w.Release()
	assert.Equal(t, byte(0xff), buf[8+88])

	r, err := ai.TryBorrowData()
	require.NoError(t, err)
	state := ai.BorrowState()
	tail, orig := borrow.FilterMap(r, func(p []byte) (byte, bool) {
		if len(p) < 9 {
			return 0, false
		}
		return p[8], true
	})
	require.Nil(t, orig)
	assert.Equal(t, byte(9), tail.Value())
	assert.Equal(t, state, ai.BorrowState())
	tail.Release()
	assert.Equal(t, borrow.State(0), ai.BorrowState())
}

// The TestAccountInfo_Unchecked function tests access that bypasses the
// borrow state.
func TestAccountInfo_Unchecked(t *testing.T) {
	ai, _ := single(t, entrypoint.DefaultParser, nil)

	w, err := ai.TryBorrowMutLamports()
	require.NoError(t, err)
	ai.UncheckedSetLamports(55)
	assert.Equal(t, uint64(55), w.Value().Get())
	assert.Equal(t, uint64(55), ai.UncheckedLamports())
	w.Release()
}

// The TestAccountInfo_Reassign function tests owner replacement.
func TestAccountInfo_Reassign(t *testing.T) {
	ai, buf := single(t, entrypoint.DefaultParser, nil)
	owner := solana.PublicKey{0x77}
	ai.Reassign(owner)
	assert.Equal(t, owner, *ai.Owner())
	assert.Equal(t, owner[:], buf[8+40:8+72])
}

// The TestAccountInfo_ToInfoC function tests the VM addresses reported for
// cross-program invocations.
func TestAccountInfo_ToInfoC(t *testing.T) {
	ai, _ := single(t, entrypoint.DefaultParser, []byte{1, 2})
	base := sbpf.VaddrInput + 8

	info := ai.ToInfoC()
	assert.Equal(t, base+8, info.KeyAddr)
	assert.Equal(t, base+40, info.OwnerAddr)
	assert.Equal(t, base+72, info.LamportsAddr)
	assert.Equal(t, base+88, info.DataAddr)
	assert.Equal(t, uint64(2), info.DataLen)
	assert.Zero(t, info.RentEpoch)
	assert.True(t, info.IsSigner)
	assert.True(t, info.IsWritable)
	assert.False(t, info.Executable)

	meta := ai.ToMetaC()
	assert.Equal(t, info.ToMetaC(), meta)
	assert.Equal(t, base+8, meta.PubkeyAddr)

	signer := ai.ToMetaCSigner()
	assert.True(t, signer.IsSigner)
	assert.Equal(t, info.ToMetaCSigner(), signer)
}
