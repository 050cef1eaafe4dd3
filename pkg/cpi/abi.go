// Package cpi marshals cross-program invocations into the fixed C layouts
// understood by the sol_invoke_signed_c syscall.
package cpi

import (
	"encoding/binary"
)

// Sizes of the C descriptors in VM memory.
const (
	AccountMetaCSize = 16
	AccountInfoCSize = 56
	InstructionCSize = 40
	VectorCSize      = 16
)

// AccountMetaC is SolAccountMeta.
type AccountMetaC struct {
	PubkeyAddr uint64
	IsWritable bool
	IsSigner   bool
}

// AccountInfoC is SolAccountInfo. RentEpoch is always reported as zero.
type AccountInfoC struct {
	KeyAddr      uint64
	LamportsAddr uint64
	DataLen      uint64
	DataAddr     uint64
	OwnerAddr    uint64
	RentEpoch    uint64
	IsSigner     bool
	IsWritable   bool
	Executable   bool
}

// InstructionC is SolInstruction.
type InstructionC struct {
	ProgramIDAddr uint64
	AccountsAddr  uint64
	AccountsLen   uint64
	DataAddr      uint64
	DataLen       uint64
}

// VectorC is a (pointer, length) pair. Signer seeds are passed as a VectorC
// array of VectorC arrays.
type VectorC struct {
	Addr uint64
	Len  uint64
}

func putBool(dst []byte, v bool) {
	if v {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
}

// SizeBytes implements marshal.Marshallable.SizeBytes.
func (m *AccountMetaC) SizeBytes() int {
	return AccountMetaCSize
}

// MarshalBytes writes m into dst and returns the remainder of dst.
func (m *AccountMetaC) MarshalBytes(dst []byte) []byte {
	binary.LittleEndian.PutUint64(dst[0:8], m.PubkeyAddr)
	putBool(dst[8:], m.IsWritable)
	putBool(dst[9:], m.IsSigner)
	clear(dst[10:16])
	return dst[AccountMetaCSize:]
}

// UnmarshalBytes reads m from src and returns the remainder of src.
func (m *AccountMetaC) UnmarshalBytes(src []byte) []byte {
	m.PubkeyAddr = binary.LittleEndian.Uint64(src[0:8])
	m.IsWritable = src[8] != 0
	m.IsSigner = src[9] != 0
	return src[AccountMetaCSize:]
}

func (a *AccountInfoC) SizeBytes() int {
	return AccountInfoCSize
}

func (a *AccountInfoC) MarshalBytes(dst []byte) []byte {
	binary.LittleEndian.PutUint64(dst[0:8], a.KeyAddr)
	binary.LittleEndian.PutUint64(dst[8:16], a.LamportsAddr)
	binary.LittleEndian.PutUint64(dst[16:24], a.DataLen)
	binary.LittleEndian.PutUint64(dst[24:32], a.DataAddr)
	binary.LittleEndian.PutUint64(dst[32:40], a.OwnerAddr)
	binary.LittleEndian.PutUint64(dst[40:48], a.RentEpoch)
	putBool(dst[48:], a.IsSigner)
	putBool(dst[49:], a.IsWritable)
	putBool(dst[50:], a.Executable)
	clear(dst[51:56])
	return dst[AccountInfoCSize:]
}

func (a *AccountInfoC) UnmarshalBytes(src []byte) []byte {
	a.KeyAddr = binary.LittleEndian.Uint64(src[0:8])
	a.LamportsAddr = binary.LittleEndian.Uint64(src[8:16])
	a.DataLen = binary.LittleEndian.Uint64(src[16:24])
	a.DataAddr = binary.LittleEndian.Uint64(src[24:32])
	a.OwnerAddr = binary.LittleEndian.Uint64(src[32:40])
	a.RentEpoch = binary.LittleEndian.Uint64(src[40:48])
	a.IsSigner = src[48] != 0
	a.IsWritable = src[49] != 0
	a.Executable = src[50] != 0
	return src[AccountInfoCSize:]
}

func (ix *InstructionC) SizeBytes() int {
	return InstructionCSize
}

func (ix *InstructionC) MarshalBytes(dst []byte) []byte {
	binary.LittleEndian.PutUint64(dst[0:8], ix.ProgramIDAddr)
	binary.LittleEndian.PutUint64(dst[8:16], ix.AccountsAddr)
	binary.LittleEndian.PutUint64(dst[16:24], ix.AccountsLen)
	binary.LittleEndian.PutUint64(dst[24:32], ix.DataAddr)
	binary.LittleEndian.PutUint64(dst[32:40], ix.DataLen)
	return dst[InstructionCSize:]
}

func (ix *InstructionC) UnmarshalBytes(src []byte) []byte {
	ix.ProgramIDAddr = binary.LittleEndian.Uint64(src[0:8])
	ix.AccountsAddr = binary.LittleEndian.Uint64(src[8:16])
	ix.AccountsLen = binary.LittleEndian.Uint64(src[16:24])
	ix.DataAddr = binary.LittleEndian.Uint64(src[24:32])
	ix.DataLen = binary.LittleEndian.Uint64(src[32:40])
	return src[InstructionCSize:]
}

func (v *VectorC) SizeBytes() int {
	return VectorCSize
}

func (v *VectorC) MarshalBytes(dst []byte) []byte {
	binary.LittleEndian.PutUint64(dst[0:8], v.Addr)
	binary.LittleEndian.PutUint64(dst[8:16], v.Len)
	return dst[VectorCSize:]
}

func (v *VectorC) UnmarshalBytes(src []byte) []byte {
	v.Addr = binary.LittleEndian.Uint64(src[0:8])
	v.Len = binary.LittleEndian.Uint64(src[8:16])
	return src[VectorCSize:]
}

// ToMetaC describes the account as a meta with its own flags.
func (a *AccountInfoC) ToMetaC() AccountMetaC {
	return AccountMetaC{PubkeyAddr: a.KeyAddr, IsWritable: a.IsWritable, IsSigner: a.IsSigner}
}

// ToMetaCSigner marks the account as a signer. Used for program derived
// addresses that sign through seeds.
func (a *AccountInfoC) ToMetaCSigner() AccountMetaC {
	return AccountMetaC{PubkeyAddr: a.KeyAddr, IsWritable: a.IsWritable, IsSigner: true}
}
