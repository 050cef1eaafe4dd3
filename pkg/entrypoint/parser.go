package entrypoint

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Parser walks the input buffer handed to a program.
type Parser struct {
	// MaxDataIncrease is the headroom reserved after each account's data
	// and the cap on its cumulative growth.
	MaxDataIncrease int
}

var DefaultParser = Parser{MaxDataIncrease: MaxPermittedDataIncrease}

type cursor struct {
	buf []byte
	off uint64
}

func (c *cursor) need(n uint64) error {
	if n > uint64(len(c.buf)) || c.off > uint64(len(c.buf))-n {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrInvalidInput, n, c.off, len(c.buf))
	}
	return nil
}

func (c *cursor) u64() (uint64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(c.buf[c.off:])
	c.off += 8
	return v, nil
}

// skipAccount advances past the account entry at the cursor and reports
// whether it was a duplicate.
func (c *cursor) skipAccount(maxIncrease uint64) (dup bool, marker byte, err error) {
	if err := c.need(1); err != nil {
		return false, 0, err
	}
	marker = c.buf[c.off]
	if marker != NonDupMarker {
		if err := c.need(DuplicateEntrySize); err != nil {
			return true, marker, err
		}
		c.off += DuplicateEntrySize
		return true, marker, nil
	}
	if err := c.need(HeaderSize); err != nil {
		return false, marker, err
	}
	dataLen := binary.LittleEndian.Uint64(c.buf[c.off+offDataLen:])
	if dataLen > uint64(len(c.buf)) {
		return false, marker, fmt.Errorf("%w: data length %d exceeds input", ErrInvalidInput, dataLen)
	}
	span := accountSpan(c.off, dataLen, maxIncrease)
	if err := c.need(span); err != nil {
		return false, marker, err
	}
	c.off += span
	return false, marker, nil
}

func (p Parser) parse(input []byte, accounts []AccountInfo, allowDup bool) (programID *solana.PublicKey, n int, data []byte, err error) {
	a := &arena{buf: input, maxIncrease: p.MaxDataIncrease}
	c := &cursor{buf: input}
	maxIncrease := uint64(p.MaxDataIncrease)

	count, err := c.u64()
	if err != nil {
		return nil, 0, nil, err
	}

	for i := uint64(0); i < count; i++ {
		start := c.off
		dup, marker, err := c.skipAccount(maxIncrease)
		if err != nil {
			return nil, 0, nil, err
		}
		if dup && !allowDup {
			return nil, 0, nil, ErrDuplicateAccount
		}
		if n == len(accounts) {
			continue
		}
		if dup {
			if int(marker) >= n {
				return nil, 0, nil, fmt.Errorf("%w: account %d duplicates index %d", ErrInvalidInput, i, marker)
			}
			accounts[n] = accounts[marker]
		} else {
			input[start+offBorrowState] = 0
			accounts[n] = AccountInfo{a: a, off: int(start)}
		}
		n++
	}

	dataLen, err := c.u64()
	if err != nil {
		return nil, 0, nil, err
	}
	if dataLen > uint64(len(input)) {
		return nil, 0, nil, fmt.Errorf("%w: instruction data length %d exceeds input", ErrInvalidInput, dataLen)
	}
	if err := c.need(dataLen + solana.PublicKeyLength); err != nil {
		return nil, 0, nil, err
	}
	data = input[c.off : c.off+dataLen : c.off+dataLen]
	c.off += dataLen
	programID = (*solana.PublicKey)(input[c.off : c.off+solana.PublicKeyLength])
	return programID, n, data, nil
}

// Deserialize parses input into accounts, tolerating duplicate accounts.
// At most len(accounts) handles are produced; further accounts are skipped.
func (p Parser) Deserialize(input []byte, accounts []AccountInfo) (*solana.PublicKey, int, []byte, error) {
	return p.parse(input, accounts, true)
}

// DeserializeNoDup is Deserialize failing with ErrDuplicateAccount on any
// duplicate, including ones among the skipped accounts.
func (p Parser) DeserializeNoDup(input []byte, accounts []AccountInfo) (*solana.PublicKey, int, []byte, error) {
	return p.parse(input, accounts, false)
}

// DeserializeNoProgram is Deserialize without returning the program id.
func (p Parser) DeserializeNoProgram(input []byte, accounts []AccountInfo) (int, []byte, error) {
	_, n, data, err := p.parse(input, accounts, true)
	return n, data, err
}

func (p Parser) DeserializeNoDupNoProgram(input []byte, accounts []AccountInfo) (int, []byte, error) {
	_, n, data, err := p.parse(input, accounts, false)
	return n, data, err
}

func Deserialize(input []byte, accounts []AccountInfo) (*solana.PublicKey, int, []byte, error) {
	return DefaultParser.Deserialize(input, accounts)
}

func DeserializeNoDup(input []byte, accounts []AccountInfo) (*solana.PublicKey, int, []byte, error) {
	return DefaultParser.DeserializeNoDup(input, accounts)
}

func DeserializeNoProgram(input []byte, accounts []AccountInfo) (int, []byte, error) {
	return DefaultParser.DeserializeNoProgram(input, accounts)
}

func DeserializeNoDupNoProgram(input []byte, accounts []AccountInfo) (int, []byte, error) {
	return DefaultParser.DeserializeNoDupNoProgram(input, accounts)
}
