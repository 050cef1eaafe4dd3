package sealevel

import "errors"

// instruction errors
var (
	InstrErrInvalidInstructionData   = errors.New("InstrErrInvalidInstructionData")
	InstrErrNotEnoughAccountKeys     = errors.New("InstrErrNotEnoughAccountKeys")
	InstrErrMissingAccount           = errors.New("InstrErrMissingAccount")
	InstrErrInvalidAccountOwner      = errors.New("InstrErrInvalidAccountOwner")
	InstrErrMissingRequiredSignature = errors.New("InstrErrMissingRequiredSignature")
	InstrErrInvalidArgument          = errors.New("InstrErrInvalidArgument")
	InstrErrPrivilegeEscalation      = errors.New("InstrErrPrivilegeEscalation")
	InstrErrUnsupportedProgramId     = errors.New("InstrErrUnsupportedProgramId")
	InstrErrReentrancyNotAllowed     = errors.New("InstrErrReentrancyNotAllowed")
	InstrErrCallDepth                = errors.New("InstrErrCallDepth")
	InstrErrArithmeticOverflow       = errors.New("InstrErrArithmeticOverflow")
	InstrErrReadonlyLamportChange    = errors.New("InstrErrReadonlyLamportChange")
	InstrErrModifiedProgramId        = errors.New("InstrErrModifiedProgramId")
)

// syscall errors
var (
	SyscallErrTooManySigners                     = errors.New("SyscallErrTooManySigners")
	SyscallErrMaxSeedLengthExceeded              = errors.New("SyscallErrMaxSeedLengthExceeded")
	SyscallErrInstructionTooLarge                = errors.New("SyscallErrInstructionTooLarge")
	SyscallErrTooManyAccounts                    = errors.New("SyscallErrTooManyAccounts")
	SyscallErrMaxInstructionAccountInfosExceeded = errors.New("SyscallErrMaxInstructionAccountInfosExceeded")
	SyscallErrBadSeeds                           = errors.New("SyscallErrBadSeeds")
	SyscallErrInvalidString                      = errors.New("SyscallErrInvalidString")
)

// system program errors
var (
	SystemProgErrResultWithNegativeLamports = errors.New("SystemProgErrResultWithNegativeLamports")
)
