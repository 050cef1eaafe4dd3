// Package serialize builds the input buffer a loader hands to a program and
// applies the program's changes back to the accounts afterwards.
package serialize

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.firedancer.io/nostd/pkg/util"
)

const (
	MaxPermittedDataIncrease = 1024 * 10
	MaxPermittedDataLength   = 10 * 1024 * 1024
	MaxInstructionAccounts   = 255

	nonDupMarker = 0xff
)

var (
	ErrInvalidArgument      = errors.New("InvalidArgument")
	ErrInvalidRealloc       = errors.New("InvalidRealloc")
	ErrMaxAccountsExceeded  = errors.New("MaxAccountsExceeded")
	ErrInvalidDuplicateIdx  = fmt.Errorf("%w: duplicate refers to a later or duplicate account", ErrInvalidArgument)
	ErrModifiedReadonlyData = errors.New("ReadonlyDataModified")
)

type Account struct {
	Key        solana.PublicKey
	Owner      solana.PublicKey
	Lamports   uint64
	Data       []byte
	IsSigner   bool
	IsWritable bool
	Executable bool
	RentEpoch  uint64
}

// Param is one entry of the instruction account list. A duplicate refers
// to the position of the first occurrence of the same account.
type Param struct {
	IsDuplicate bool
	IndexOfAcct uint8
	Account     *Account
}

type Params struct {
	Accounts  []Param
	Data      []byte
	ProgramID solana.PublicKey
}

// Dup returns a duplicate entry of the account at index.
func Dup(index uint8) Param {
	return Param{IsDuplicate: true, IndexOfAcct: index}
}

// Acct returns a non-duplicate entry.
func Acct(acct *Account) Param {
	return Param{Account: acct}
}

func (p *Params) resolve(i int) (*Account, error) {
	param := p.Accounts[i]
	if !param.IsDuplicate {
		if param.Account == nil {
			return nil, fmt.Errorf("%w: account %d missing", ErrInvalidArgument, i)
		}
		return param.Account, nil
	}
	idx := int(param.IndexOfAcct)
	if idx >= i || p.Accounts[idx].IsDuplicate {
		return nil, ErrInvalidDuplicateIdx
	}
	return p.Accounts[idx].Account, nil
}

// Serialize encodes params in the aligned loader layout with maxIncrease
// bytes of zeroed headroom after each account's data. It returns the buffer
// and the data length of every entry before execution.
func Serialize(params *Params, maxIncrease int) ([]byte, []uint64, error) {
	if len(params.Accounts) > MaxInstructionAccounts {
		return nil, nil, ErrMaxAccountsExceeded
	}

	writer := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(writer)
	preLens := make([]uint64, len(params.Accounts))

	err := encoder.WriteUint64(uint64(len(params.Accounts)), bin.LE)
	if err != nil {
		return nil, nil, err
	}

	headroom := make([]byte, maxIncrease)
	for i, param := range params.Accounts {
		acct, err := params.resolve(i)
		if err != nil {
			return nil, nil, err
		}
		preLens[i] = uint64(len(acct.Data))

		if param.IsDuplicate {
			if err = encoder.WriteByte(param.IndexOfAcct); err != nil {
				return nil, nil, err
			}
			if err = encoder.WriteBytes(make([]byte, 7), false); err != nil {
				return nil, nil, err
			}
			continue
		}

		if err = encoder.WriteByte(nonDupMarker); err != nil {
			return nil, nil, err
		}
		if err = encoder.WriteBool(acct.IsSigner); err != nil {
			return nil, nil, err
		}
		if err = encoder.WriteBool(acct.IsWritable); err != nil {
			return nil, nil, err
		}
		if err = encoder.WriteBool(acct.Executable); err != nil {
			return nil, nil, err
		}
		if err = encoder.WriteUint32(0, bin.LE); err != nil { // resize delta
			return nil, nil, err
		}
		if err = encoder.WriteBytes(acct.Key[:], false); err != nil {
			return nil, nil, err
		}
		if err = encoder.WriteBytes(acct.Owner[:], false); err != nil {
			return nil, nil, err
		}
		if err = encoder.WriteUint64(acct.Lamports, bin.LE); err != nil {
			return nil, nil, err
		}
		if err = encoder.WriteUint64(uint64(len(acct.Data)), bin.LE); err != nil {
			return nil, nil, err
		}
		if err = encoder.WriteBytes(acct.Data, false); err != nil {
			return nil, nil, err
		}
		if err = encoder.WriteBytes(headroom, false); err != nil {
			return nil, nil, err
		}
		pad := util.AlignUp(uint64(writer.Len()), 8) - uint64(writer.Len())
		if err = encoder.WriteBytes(make([]byte, pad), false); err != nil {
			return nil, nil, err
		}
		if err = encoder.WriteUint64(acct.RentEpoch, bin.LE); err != nil {
			return nil, nil, err
		}
	}

	if err = encoder.WriteUint64(uint64(len(params.Data)), bin.LE); err != nil {
		return nil, nil, err
	}
	if err = encoder.WriteBytes(params.Data, false); err != nil {
		return nil, nil, err
	}
	if err = encoder.WriteBytes(params.ProgramID[:], false); err != nil {
		return nil, nil, err
	}

	return writer.Bytes(), preLens, nil
}

// Deserialize reads lamports, owner and data of every writable account back
// from buf. Growth beyond maxIncrease or MaxPermittedDataLength fails with
// ErrInvalidRealloc; changes to read-only accounts fail with
// ErrModifiedReadonlyData.
func Deserialize(buf []byte, params *Params, preLens []uint64, maxIncrease int) error {
	if len(preLens) != len(params.Accounts) {
		return fmt.Errorf("%w: %d pre lengths for %d accounts", ErrInvalidArgument, len(preLens), len(params.Accounts))
	}
	decoder := bin.NewBinDecoder(buf)

	if _, err := decoder.ReadUint64(bin.LE); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}

	for i, param := range params.Accounts {
		if param.IsDuplicate {
			if err := decoder.SkipBytes(8); err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
			}
			continue
		}
		acct := param.Account
		preLen := preLens[i]

		// marker, flags, resize delta, key
		if err := decoder.SkipBytes(8 + solana.PublicKeyLength); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
		}
		owner, err := decoder.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
		}
		lamports, err := decoder.ReadUint64(bin.LE)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
		}
		postLen, err := decoder.ReadUint64(bin.LE)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
		}
		if (postLen > preLen && postLen-preLen > uint64(maxIncrease)) || postLen > MaxPermittedDataLength {
			return ErrInvalidRealloc
		}
		if uint64(decoder.Remaining()) < postLen {
			return fmt.Errorf("%w: data of account %d truncated", ErrInvalidArgument, i)
		}
		start := decoder.Position()
		data := buf[start : start+uint(postLen)]

		ownerPk := solana.PublicKeyFromBytes(owner)
		if acct.IsWritable {
			acct.Lamports = lamports
			acct.Owner = ownerPk
			acct.Data = append(acct.Data[:0:0], data...)
		} else if acct.Lamports != lamports || acct.Owner != ownerPk || !bytes.Equal(acct.Data, data) {
			return fmt.Errorf("%w: account %s", ErrModifiedReadonlyData, acct.Key)
		}

		skip := preLen + uint64(maxIncrease)
		skip += util.AlignUp(uint64(start)+skip, 8) - (uint64(start) + skip)
		skip += 8 // rent epoch
		if err = decoder.SkipBytes(uint(skip)); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
		}
	}
	return nil
}
