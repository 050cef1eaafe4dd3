package entrypoint

import (
	"github.com/gagliardetto/solana-go"
)

const (
	// NonDupMarker in the first byte of an account entry introduces a full
	// header. Any other value is the index of an earlier account.
	NonDupMarker = 0xff

	// MaxPermittedDataIncrease is the zeroed headroom the loader reserves
	// after the data of every account.
	MaxPermittedDataIncrease = 1024 * 10

	BpfAlignOfU128 = 8

	// HeaderSize is the size of a non-duplicate account header, marker
	// byte included, up to the start of the account data.
	HeaderSize = 88

	// DuplicateEntrySize is the size of a duplicate account entry.
	DuplicateEntrySize = 8
)

// Offsets within an account header.
const (
	offBorrowState = 0
	offIsSigner    = 1
	offIsWritable  = 2
	offExecutable  = 3
	offResizeDelta = 4
	offKey         = 8
	offOwner       = offKey + solana.PublicKeyLength
	offLamports    = offOwner + solana.PublicKeyLength
	offDataLen     = offLamports + 8
	offData        = offDataLen + 8
)

// accountSpan returns the number of bytes a non-duplicate account with
// dataLen bytes of data occupies when its header starts at off.
func accountSpan(off uint64, dataLen uint64, maxIncrease uint64) uint64 {
	end := off + HeaderSize + dataLen + maxIncrease
	end += -end & (BpfAlignOfU128 - 1)
	end += 8 // rent epoch
	return end - off
}
