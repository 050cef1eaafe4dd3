package serialize

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount(seed byte, data []byte) *Account {
	return &Account{
		Key:        solana.PublicKey{seed},
		Owner:      solana.PublicKey{seed, 1},
		Lamports:   uint64(seed) * 1000,
		Data:       data,
		IsWritable: true,
	}
}

// The TestSerialize_Layout function tests the size and field placement of
// the aligned layout.
func TestSerialize_Layout(t *testing.T) {
	a := testAccount(1, []byte{1, 2, 3})
	params := &Params{
		Accounts:  []Param{Acct(a), Dup(0)},
		Data:      []byte{9, 9},
		ProgramID: solana.PublicKey{0xee},
	}
	buf, preLens, err := Serialize(params, 64)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 3}, preLens)

	// count + header + data + headroom, aligned, + rent epoch + dup + ix data + program id
	acctSize := 88 + 3 + 64
	acctSize += (8 - acctSize%8) % 8
	acctSize += 8
	assert.Len(t, buf, 8+acctSize+8+8+2+32)

	assert.Equal(t, uint64(2), binary.LittleEndian.Uint64(buf))
	assert.Equal(t, byte(0xff), buf[8])
	assert.Equal(t, byte(1), buf[10]) // writable
	assert.Equal(t, a.Key[:], buf[16:48])
	assert.Equal(t, uint64(1000), binary.LittleEndian.Uint64(buf[8+72:]))
	assert.Equal(t, []byte{1, 2, 3}, buf[8+88:8+91])
	assert.Equal(t, byte(0), buf[8+acctSize])
	assert.Equal(t, solana.PublicKey{0xee}.Bytes(), buf[len(buf)-32:])
}

// The TestSerialize_BadDuplicate function tests rejection of duplicates
// that refer forward.
func TestSerialize_BadDuplicate(t *testing.T) {
	params := &Params{Accounts: []Param{Dup(1), Acct(testAccount(1, nil))}}
	_, _, err := Serialize(params, MaxPermittedDataIncrease)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// The TestDeserialize_WritesBack function tests that program changes to a
// writable account are applied.
func TestDeserialize_WritesBack(t *testing.T) {
	a := testAccount(2, []byte{5, 6})
	params := &Params{Accounts: []Param{Acct(a)}, ProgramID: solana.PublicKey{3}}
	buf, preLens, err := Serialize(params, 32)
	require.NoError(t, err)

	binary.LittleEndian.PutUint64(buf[8+72:], 42)
	binary.LittleEndian.PutUint64(buf[8+80:], 4)
	copy(buf[8+88:], []byte{5, 6, 7, 8})
	newOwner := solana.PublicKey{0xab}
	copy(buf[8+40:], newOwner[:])

	before := AccountHash(a)
	require.NoError(t, Deserialize(buf, params, preLens, 32))
	assert.Equal(t, uint64(42), a.Lamports)
	assert.Equal(t, []byte{5, 6, 7, 8}, a.Data)
	assert.Equal(t, newOwner, a.Owner)
	assert.NotEqual(t, before, AccountHash(a))
}

// The TestDeserialize_InvalidRealloc function tests that growth past the
// headroom is rejected.
func TestDeserialize_InvalidRealloc(t *testing.T) {
	a := testAccount(2, nil)
	params := &Params{Accounts: []Param{Acct(a)}}
	buf, preLens, err := Serialize(params, 16)
	require.NoError(t, err)

	binary.LittleEndian.PutUint64(buf[8+80:], 17)
	assert.ErrorIs(t, Deserialize(buf, params, preLens, 16), ErrInvalidRealloc)
}

// The TestDeserialize_Readonly function tests that a read-only account
// must come back unchanged.
func TestDeserialize_Readonly(t *testing.T) {
	a := testAccount(4, []byte{1})
	a.IsWritable = false
	params := &Params{Accounts: []Param{Acct(a), Dup(0)}}
	buf, preLens, err := Serialize(params, 8)
	require.NoError(t, err)
	require.NoError(t, Deserialize(buf, params, preLens, 8))

	buf[8+88] = 2
	assert.ErrorIs(t, Deserialize(buf, params, preLens, 8), ErrModifiedReadonlyData)
}

// The TestAccountHash function tests that the hash covers every field.
func TestAccountHash(t *testing.T) {
	a := testAccount(1, []byte{1})
	h := AccountHash(a)
	assert.Len(t, h, 32)
	assert.Equal(t, h, AccountHash(testAccount(1, []byte{1})))

	b := testAccount(1, []byte{1})
	b.Executable = true
	assert.NotEqual(t, h, AccountHash(b))
}
