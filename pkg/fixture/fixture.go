// Package fixture reads and writes YAML descriptions of a program
// invocation: the instruction accounts, the instruction data and the id of
// the program being run. Keys and data are base58 encoded.
package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"go.firedancer.io/nostd/pkg/serialize"
	"gopkg.in/yaml.v3"
)

var ErrInvalidFixture = errors.New("invalid fixture")

type Account struct {
	Key        string `yaml:"key,omitempty"`
	Owner      string `yaml:"owner,omitempty"`
	Lamports   uint64 `yaml:"lamports,omitempty"`
	Data       string `yaml:"data,omitempty"`
	Signer     bool   `yaml:"signer,omitempty"`
	Writable   bool   `yaml:"writable,omitempty"`
	Executable bool   `yaml:"executable,omitempty"`
	RentEpoch  uint64 `yaml:"rent_epoch,omitempty"`

	// Duplicate, if set, makes this entry refer to an earlier account.
	Duplicate *uint8 `yaml:"duplicate,omitempty"`
}

type Fixture struct {
	ProgramID       string    `yaml:"program_id"`
	Data            string    `yaml:"data,omitempty"`
	MaxDataIncrease *int      `yaml:"max_data_increase,omitempty"`
	Accounts        []Account `yaml:"accounts"`
}

// Load reads the fixture at path.
func Load(path string) (*Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a fixture, rejecting unknown fields.
func Parse(b []byte) (*Fixture, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	f := new(Fixture)
	if err := dec.Decode(f); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFixture, err)
	}
	return f, nil
}

// Marshal encodes f as YAML.
func (f *Fixture) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataIncrease is the realloc headroom to serialize with.
func (f *Fixture) DataIncrease() int {
	if f.MaxDataIncrease == nil {
		return serialize.MaxPermittedDataIncrease
	}
	return *f.MaxDataIncrease
}

func decodeKey(s string) (solana.PublicKey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: key %q: %s", ErrInvalidFixture, s, err)
	}
	if len(b) != solana.PublicKeyLength {
		return solana.PublicKey{}, fmt.Errorf("%w: key %q is %d bytes", ErrInvalidFixture, s, len(b))
	}
	return solana.PublicKeyFromBytes(b), nil
}

func decodeData(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: data: %s", ErrInvalidFixture, err)
	}
	return b, nil
}

// Params converts f into loader parameters. Accounts without an owner are
// owned by the system program.
func (f *Fixture) Params() (*serialize.Params, error) {
	programID, err := decodeKey(f.ProgramID)
	if err != nil {
		return nil, err
	}
	data, err := decodeData(f.Data)
	if err != nil {
		return nil, err
	}

	params := &serialize.Params{
		Accounts:  make([]serialize.Param, 0, len(f.Accounts)),
		Data:      data,
		ProgramID: programID,
	}
	for i, a := range f.Accounts {
		if a.Duplicate != nil {
			if int(*a.Duplicate) >= i {
				return nil, fmt.Errorf("%w: account %d duplicates later account %d", ErrInvalidFixture, i, *a.Duplicate)
			}
			params.Accounts = append(params.Accounts, serialize.Dup(*a.Duplicate))
			continue
		}

		acct, err := a.account()
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		params.Accounts = append(params.Accounts, serialize.Acct(acct))
	}
	return params, nil
}

func (a *Account) account() (*serialize.Account, error) {
	key, err := decodeKey(a.Key)
	if err != nil {
		return nil, err
	}
	owner := solana.SystemProgramID
	if a.Owner != "" {
		if owner, err = decodeKey(a.Owner); err != nil {
			return nil, err
		}
	}
	data, err := decodeData(a.Data)
	if err != nil {
		return nil, err
	}
	return &serialize.Account{
		Key:        key,
		Owner:      owner,
		Lamports:   a.Lamports,
		Data:       data,
		IsSigner:   a.Signer,
		IsWritable: a.Writable,
		Executable: a.Executable,
		RentEpoch:  a.RentEpoch,
	}, nil
}

// FromParams is the inverse of Params.
func FromParams(params *serialize.Params, maxIncrease int) *Fixture {
	f := &Fixture{
		ProgramID: params.ProgramID.String(),
		Data:      base58.Encode(params.Data),
		Accounts:  make([]Account, 0, len(params.Accounts)),
	}
	if maxIncrease != serialize.MaxPermittedDataIncrease {
		f.MaxDataIncrease = &maxIncrease
	}
	for _, p := range params.Accounts {
		if p.IsDuplicate {
			idx := p.IndexOfAcct
			f.Accounts = append(f.Accounts, Account{Duplicate: &idx})
			continue
		}
		a := p.Account
		f.Accounts = append(f.Accounts, Account{
			Key:        a.Key.String(),
			Owner:      a.Owner.String(),
			Lamports:   a.Lamports,
			Data:       base58.Encode(a.Data),
			Signer:     a.IsSigner,
			Writable:   a.IsWritable,
			Executable: a.Executable,
			RentEpoch:  a.RentEpoch,
		})
	}
	return f
}
