package entrypoint

import (
	"errors"
	"fmt"
	"math"

	"go.firedancer.io/nostd/pkg/borrow"
	"go.firedancer.io/nostd/pkg/safemath"
)

// program errors
var (
	ErrInvalidArgument                        = errors.New("InvalidArgument")
	ErrInvalidInstructionData                 = errors.New("InvalidInstructionData")
	ErrInvalidAccountData                     = errors.New("InvalidAccountData")
	ErrAccountDataTooSmall                    = errors.New("AccountDataTooSmall")
	ErrInsufficientFunds                      = errors.New("InsufficientFunds")
	ErrIncorrectProgramId                     = errors.New("IncorrectProgramId")
	ErrMissingRequiredSignature               = errors.New("MissingRequiredSignature")
	ErrAccountAlreadyInitialized              = errors.New("AccountAlreadyInitialized")
	ErrUninitializedAccount                   = errors.New("UninitializedAccount")
	ErrNotEnoughAccountKeys                   = errors.New("NotEnoughAccountKeys")
	ErrMaxSeedLengthExceeded                  = errors.New("MaxSeedLengthExceeded")
	ErrInvalidSeeds                           = errors.New("InvalidSeeds")
	ErrBorshIoError                           = errors.New("BorshIoError")
	ErrAccountNotRentExempt                   = errors.New("AccountNotRentExempt")
	ErrUnsupportedSysvar                      = errors.New("UnsupportedSysvar")
	ErrIllegalOwner                           = errors.New("IllegalOwner")
	ErrMaxAccountsDataAllocationsExceeded     = errors.New("MaxAccountsDataAllocationsExceeded")
	ErrInvalidRealloc                         = errors.New("InvalidRealloc")
	ErrMaxInstructionTraceLengthExceeded      = errors.New("MaxInstructionTraceLengthExceeded")
	ErrBuiltinProgramsMustConsumeComputeUnits = errors.New("BuiltinProgramsMustConsumeComputeUnits")
	ErrInvalidAccountOwner                    = errors.New("InvalidAccountOwner")
	ErrImmutable                              = errors.New("Immutable")
	ErrIncorrectAuthority                     = errors.New("IncorrectAuthority")

	// parser errors
	ErrDuplicateAccount = errors.New("duplicate account found")
	ErrInvalidInput     = fmt.Errorf("%w: malformed input buffer", ErrInvalidArgument)
)

// Status codes returned to the host.
const (
	Success uint64 = 0

	// DuplicateAccountFound is returned by the duplicate-rejecting entry
	// points when the input carries a duplicate account.
	DuplicateAccountFound uint64 = math.MaxUint64
)

func builtin(index uint64) uint64 {
	return index << 32
}

// CustomError is a program-defined error. A zero code is encoded as a
// builtin so it does not collide with Success.
type CustomError uint32

func (e CustomError) Error() string {
	return fmt.Sprintf("custom program error: %#x", uint32(e))
}

var builtinCodes = []struct {
	err  error
	code uint64
}{
	{ErrInvalidArgument, builtin(2)},
	{ErrInvalidInstructionData, builtin(3)},
	{ErrInvalidAccountData, builtin(4)},
	{ErrAccountDataTooSmall, builtin(5)},
	{ErrInsufficientFunds, builtin(6)},
	{ErrIncorrectProgramId, builtin(7)},
	{ErrMissingRequiredSignature, builtin(8)},
	{ErrAccountAlreadyInitialized, builtin(9)},
	{ErrUninitializedAccount, builtin(10)},
	{ErrNotEnoughAccountKeys, builtin(11)},
	{borrow.ErrBorrowFailed, builtin(12)},
	{ErrMaxSeedLengthExceeded, builtin(13)},
	{ErrInvalidSeeds, builtin(14)},
	{ErrBorshIoError, builtin(15)},
	{ErrAccountNotRentExempt, builtin(16)},
	{ErrUnsupportedSysvar, builtin(17)},
	{ErrIllegalOwner, builtin(18)},
	{ErrMaxAccountsDataAllocationsExceeded, builtin(19)},
	{ErrInvalidRealloc, builtin(20)},
	{ErrMaxInstructionTraceLengthExceeded, builtin(21)},
	{ErrBuiltinProgramsMustConsumeComputeUnits, builtin(22)},
	{ErrInvalidAccountOwner, builtin(23)},
	{safemath.ErrOverflow, builtin(24)},
	{ErrImmutable, builtin(25)},
	{ErrIncorrectAuthority, builtin(26)},
}

// ErrorCode maps err to the 64-bit status returned to the host. Errors that
// are neither builtin nor CustomError report InvalidArgument.
func ErrorCode(err error) uint64 {
	if err == nil {
		return Success
	}
	if errors.Is(err, ErrDuplicateAccount) {
		return DuplicateAccountFound
	}
	var custom CustomError
	if errors.As(err, &custom) {
		if custom == 0 {
			return builtin(1)
		}
		return uint64(custom)
	}
	for _, b := range builtinCodes {
		if errors.Is(err, b.err) {
			return b.code
		}
	}
	return builtin(2)
}
