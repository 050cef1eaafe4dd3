package entrypoint

import (
	"encoding/binary"
	"math"

	"github.com/gagliardetto/solana-go"
	"go.firedancer.io/nostd/pkg/borrow"
	"go.firedancer.io/nostd/pkg/cpi"
	"go.firedancer.io/nostd/pkg/safemath"
	"go.firedancer.io/nostd/pkg/sbpf"
)

// arena is the input buffer of one invocation. Handles refer to account
// headers by their offset in it.
type arena struct {
	buf         []byte
	maxIncrease int
}

// AccountInfo is a handle to an account header in the input buffer.
// Duplicate accounts yield handles with the same offset, so they share one
// borrow state byte.
type AccountInfo struct {
	a   *arena
	off int
}

func (ai AccountInfo) header() []byte {
	return ai.a.buf[ai.off : ai.off+HeaderSize]
}

func (ai AccountInfo) state() *byte {
	return &ai.a.buf[ai.off+offBorrowState]
}

// Key returns the account address. The returned key aliases the input
// buffer.
func (ai AccountInfo) Key() *solana.PublicKey {
	return (*solana.PublicKey)(ai.header()[offKey:offOwner])
}

func (ai AccountInfo) Owner() *solana.PublicKey {
	return (*solana.PublicKey)(ai.header()[offOwner:offLamports])
}

func (ai AccountInfo) IsSigner() bool {
	return ai.header()[offIsSigner] != 0
}

func (ai AccountInfo) IsWritable() bool {
	return ai.header()[offIsWritable] != 0
}

func (ai AccountInfo) Executable() bool {
	return ai.header()[offExecutable] != 0
}

func (ai AccountInfo) DataLen() int {
	return int(binary.LittleEndian.Uint64(ai.header()[offDataLen:]))
}

// ResizeDelta is the cumulative data growth of the account during this
// invocation.
func (ai AccountInfo) ResizeDelta() int32 {
	return int32(binary.LittleEndian.Uint32(ai.header()[offResizeDelta:]))
}

func (ai AccountInfo) setResizeDelta(v int32) {
	binary.LittleEndian.PutUint32(ai.header()[offResizeDelta:], uint32(v))
}

func (ai AccountInfo) setDataLen(n int) {
	binary.LittleEndian.PutUint64(ai.header()[offDataLen:], uint64(n))
}

// Index returns the offset of the account header in the input buffer.
func (ai AccountInfo) Index() int {
	return ai.off
}

// SameAccount reports whether both handles refer to the same header.
func (ai AccountInfo) SameAccount(other AccountInfo) bool {
	return ai.a == other.a && ai.off == other.off
}

func (ai AccountInfo) BorrowState() borrow.State {
	return borrow.State(*ai.state())
}

func (ai AccountInfo) lamports() []byte {
	return ai.header()[offLamports:offDataLen]
}

func (ai AccountInfo) data() []byte {
	start := ai.off + offData
	end := start + ai.DataLen()
	return ai.a.buf[start:end:end]
}

// U64Cell is a mutable little-endian u64 inside the input buffer.
type U64Cell struct {
	b []byte
}

func (c U64Cell) Get() uint64 {
	return binary.LittleEndian.Uint64(c.b)
}

func (c U64Cell) Set(v uint64) {
	binary.LittleEndian.PutUint64(c.b, v)
}

// U64View is a read-only little-endian u64 inside the input buffer. Get
// reads the buffer on every call, so it observes writes made by the host
// during a cross-program invocation.
type U64View struct {
	b []byte
}

func (v U64View) Get() uint64 {
	return binary.LittleEndian.Uint64(v.b)
}

func (ai AccountInfo) TryBorrowLamports() (*borrow.Ref[U64View], error) {
	return borrow.TryRef(ai.state(), borrow.Lamports, func() U64View {
		return U64View{b: ai.lamports()}
	})
}

func (ai AccountInfo) TryBorrowMutLamports() (*borrow.RefMut[U64Cell], error) {
	return borrow.TryRefMut(ai.state(), borrow.Lamports, func() U64Cell {
		return U64Cell{b: ai.lamports()}
	})
}

// TryBorrowData returns the account data. The slice capacity ends at the
// data length.
func (ai AccountInfo) TryBorrowData() (*borrow.Ref[[]byte], error) {
	return borrow.TryRef(ai.state(), borrow.Data, ai.data)
}

func (ai AccountInfo) TryBorrowMutData() (*borrow.RefMut[[]byte], error) {
	return borrow.TryRefMut(ai.state(), borrow.Data, ai.data)
}

// UncheckedLamports reads the balance without registering a borrow.
func (ai AccountInfo) UncheckedLamports() uint64 {
	return binary.LittleEndian.Uint64(ai.lamports())
}

// UncheckedSetLamports writes the balance without registering a borrow.
func (ai AccountInfo) UncheckedSetLamports(v uint64) {
	binary.LittleEndian.PutUint64(ai.lamports(), v)
}

// UncheckedData returns the data without registering a borrow.
func (ai AccountInfo) UncheckedData() []byte {
	return ai.data()
}

// Realloc changes the data length in place. Growth is limited by the
// headroom reserved by the loader, counted across all calls in this
// invocation. New bytes are zeroed only when zeroInit is set.
func (ai AccountInfo) Realloc(newLen int, zeroInit bool) error {
	if ai.BorrowState().IsBorrowed(borrow.Data) {
		return borrow.ErrAlreadyBorrowed
	}
	oldLen := ai.DataLen()
	if newLen == oldLen {
		return nil
	}
	if newLen < 0 {
		return ErrInvalidRealloc
	}

	if newLen < oldLen {
		shrink, err := safemath.CheckedI32(oldLen - newLen)
		if err != nil {
			return ErrInvalidRealloc
		}
		delta := ai.ResizeDelta()
		if delta < math.MinInt32+shrink {
			return ErrInvalidRealloc
		}
		ai.setResizeDelta(delta - shrink)
		ai.setDataLen(newLen)
		return nil
	}

	grow, err := safemath.CheckedI32(newLen - oldLen)
	if err != nil {
		return ErrInvalidRealloc
	}
	delta, err := safemath.CheckedAddI32(ai.ResizeDelta(), grow)
	if err != nil || int(delta) > ai.a.maxIncrease {
		return ErrInvalidRealloc
	}
	ai.setResizeDelta(delta)
	ai.setDataLen(newLen)
	if zeroInit {
		start := ai.off + offData
		clear(ai.a.buf[start+oldLen : start+newLen])
	}
	return nil
}

// Reassign overwrites the owner. Ownership is not guarded by the borrow
// state.
func (ai AccountInfo) Reassign(newOwner solana.PublicKey) {
	*ai.Owner() = newOwner
}

// Address of the header in the input region of the VM.
func (ai AccountInfo) addr(field int) uint64 {
	return sbpf.VaddrInput + uint64(ai.off) + uint64(field)
}

func (ai AccountInfo) KeyAddr() uint64 {
	return ai.addr(offKey)
}

func (ai AccountInfo) OwnerAddr() uint64 {
	return ai.addr(offOwner)
}

func (ai AccountInfo) ToMetaC() cpi.AccountMetaC {
	return cpi.AccountMetaC{
		PubkeyAddr: ai.KeyAddr(),
		IsWritable: ai.IsWritable(),
		IsSigner:   ai.IsSigner(),
	}
}

// ToMetaCSigner is ToMetaC with the signer flag forced, for program derived
// addresses signing through seeds.
func (ai AccountInfo) ToMetaCSigner() cpi.AccountMetaC {
	return cpi.AccountMetaC{
		PubkeyAddr: ai.KeyAddr(),
		IsWritable: ai.IsWritable(),
		IsSigner:   true,
	}
}

func (ai AccountInfo) ToInfoC() cpi.AccountInfoC {
	return cpi.AccountInfoC{
		KeyAddr:      ai.KeyAddr(),
		LamportsAddr: ai.addr(offLamports),
		DataLen:      uint64(ai.DataLen()),
		DataAddr:     ai.addr(offData),
		OwnerAddr:    ai.OwnerAddr(),
		RentEpoch:    0,
		IsSigner:     ai.IsSigner(),
		IsWritable:   ai.IsWritable(),
		Executable:   ai.Executable(),
	}
}
