// Package borrow tracks shared and exclusive access to the lamports and data
// fields of an account through a single packed state byte.
//
// Bit layout of the state byte:
//
//	7     lamports mutable borrow
//	6..4  lamports immutable borrow count
//	3     data mutable borrow
//	2..0  data immutable borrow count
package borrow

import (
	"errors"
	"fmt"
)

// Field selects which half of the state byte a borrow applies to.
type Field uint8

const (
	Lamports Field = iota
	Data
)

func (f Field) String() string {
	switch f {
	case Lamports:
		return "lamports"
	case Data:
		return "data"
	default:
		return fmt.Sprintf("Field(%d)", uint8(f))
	}
}

func (f Field) shift() uint8 {
	if f == Lamports {
		return 4
	}
	return 0
}

func (f Field) mutBit() uint8 {
	return 0b1000 << f.shift()
}

func (f Field) countMask() uint8 {
	return 0b0111 << f.shift()
}

// MaxImmutableBorrows is the number of concurrent shared borrows a field
// can hold.
const MaxImmutableBorrows = 7

var (
	ErrBorrowFailed = errors.New("AccountBorrowFailed")

	ErrMutablyBorrowed = fmt.Errorf("%w: already mutably borrowed", ErrBorrowFailed)
	ErrTooManyBorrows  = fmt.Errorf("%w: too many immutable borrows", ErrBorrowFailed)
	ErrAlreadyBorrowed = fmt.Errorf("%w: already borrowed", ErrBorrowFailed)
)

// State is a snapshot of a borrow state byte.
type State uint8

func (s State) IsMutablyBorrowed(f Field) bool {
	return uint8(s)&f.mutBit() != 0
}

func (s State) ImmutableCount(f Field) int {
	return int((uint8(s) & f.countMask()) >> f.shift())
}

func (s State) IsBorrowed(f Field) bool {
	return uint8(s)&(f.mutBit()|f.countMask()) != 0
}

func (s State) String() string {
	return fmt.Sprintf("lamports(mut=%t imm=%d) data(mut=%t imm=%d)",
		s.IsMutablyBorrowed(Lamports), s.ImmutableCount(Lamports),
		s.IsMutablyBorrowed(Data), s.ImmutableCount(Data))
}

// Acquire registers a shared borrow of f.
func Acquire(state *byte, f Field) error {
	s := State(*state)
	if s.IsMutablyBorrowed(f) {
		return ErrMutablyBorrowed
	}
	if s.ImmutableCount(f) == MaxImmutableBorrows {
		return ErrTooManyBorrows
	}
	*state += 1 << f.shift()
	return nil
}

// AcquireMut registers an exclusive borrow of f.
func AcquireMut(state *byte, f Field) error {
	if State(*state).IsBorrowed(f) {
		return ErrAlreadyBorrowed
	}
	*state |= f.mutBit()
	return nil
}

func release(state *byte, f Field) {
	if State(*state).ImmutableCount(f) == 0 {
		panic("borrow: release of " + f.String() + " without a shared borrow")
	}
	*state -= 1 << f.shift()
}

func releaseMut(state *byte, f Field) {
	*state &^= f.mutBit()
}
