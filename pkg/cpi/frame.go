package cpi

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.firedancer.io/nostd/pkg/util"
)

var ErrFrameFull = errors.New("cpi frame full")

// Frame is a fixed scratch region, mapped at Base in VM memory, that
// holds the descriptors and buffers of an outgoing call. Allocation is a
// bump of the offset; Reset rewinds to an earlier Mark.
type Frame struct {
	buf  []byte
	base uint64
	off  uint64
}

func NewFrame(buf []byte, base uint64) *Frame {
	return &Frame{buf: buf, base: base}
}

func (f *Frame) Base() uint64 { return f.base }

func (f *Frame) Len() int { return int(f.off) }

func (f *Frame) Mark() uint64 { return f.off }

// Reset rewinds the frame to mark. Bytes past mark are not cleared.
func (f *Frame) Reset(mark uint64) {
	if mark < f.off {
		f.off = mark
	}
}

func (f *Frame) alloc(size uint64, align uint64) (uint64, []byte, error) {
	start := util.AlignUp(f.off, align)
	end := start + size
	if end < start || end > uint64(len(f.buf)) {
		return 0, nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrFrameFull, size, start, len(f.buf))
	}
	f.off = end
	return f.base + start, f.buf[start:end], nil
}

func (f *Frame) PutBytes(b []byte) (uint64, error) {
	addr, dst, err := f.alloc(uint64(len(b)), 1)
	if err != nil {
		return 0, err
	}
	copy(dst, b)
	return addr, nil
}

func (f *Frame) PutPubkey(key solana.PublicKey) (uint64, error) {
	return f.PutBytes(key[:])
}

func (f *Frame) PutAccountMetas(metas []AccountMetaC) (uint64, error) {
	addr, dst, err := f.alloc(uint64(len(metas))*AccountMetaCSize, 8)
	if err != nil {
		return 0, err
	}
	for i := range metas {
		dst = metas[i].MarshalBytes(dst)
	}
	return addr, nil
}

func (f *Frame) PutAccountInfos(infos []AccountInfoC) (uint64, error) {
	addr, dst, err := f.alloc(uint64(len(infos))*AccountInfoCSize, 8)
	if err != nil {
		return 0, err
	}
	for i := range infos {
		dst = infos[i].MarshalBytes(dst)
	}
	return addr, nil
}

func (f *Frame) PutInstruction(ix *InstructionC) (uint64, error) {
	addr, dst, err := f.alloc(InstructionCSize, 8)
	if err != nil {
		return 0, err
	}
	ix.MarshalBytes(dst)
	return addr, nil
}

// Instruction places metas and data in the frame and returns the
// descriptor referring to them. programID is the VM address of the callee
// id, usually the key of an account handle.
func (f *Frame) Instruction(programID uint64, metas []AccountMetaC, data []byte) (InstructionC, error) {
	metasAddr, err := f.PutAccountMetas(metas)
	if err != nil {
		return InstructionC{}, err
	}
	dataAddr, err := f.PutBytes(data)
	if err != nil {
		return InstructionC{}, err
	}
	return InstructionC{
		ProgramIDAddr: programID,
		AccountsAddr:  metasAddr,
		AccountsLen:   uint64(len(metas)),
		DataAddr:      dataAddr,
		DataLen:       uint64(len(data)),
	}, nil
}

// PutSignerSeeds lays out signers as the nested VectorC arrays expected by
// the syscall and returns the address and length of the outer array.
func (f *Frame) PutSignerSeeds(signers []SignerSeeds) (uint64, uint64, error) {
	if len(signers) == 0 {
		return 0, 0, nil
	}
	outer := make([]VectorC, len(signers))
	for i, seeds := range signers {
		inner := make([]VectorC, len(seeds))
		for j, seed := range seeds {
			addr, err := f.PutBytes(seed)
			if err != nil {
				return 0, 0, err
			}
			inner[j] = VectorC{Addr: addr, Len: uint64(len(seed))}
		}
		addr, err := f.putVectors(inner)
		if err != nil {
			return 0, 0, err
		}
		outer[i] = VectorC{Addr: addr, Len: uint64(len(inner))}
	}
	addr, err := f.putVectors(outer)
	if err != nil {
		return 0, 0, err
	}
	return addr, uint64(len(outer)), nil
}

func (f *Frame) putVectors(vecs []VectorC) (uint64, error) {
	addr, dst, err := f.alloc(uint64(len(vecs))*VectorCSize, 8)
	if err != nil {
		return 0, err
	}
	for i := range vecs {
		dst = vecs[i].MarshalBytes(dst)
	}
	return addr, nil
}
