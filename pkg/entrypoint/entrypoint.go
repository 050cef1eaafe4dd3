// Package entrypoint turns the raw input buffer of a program invocation into
// borrow-checked account handles and dispatches to the program.
//
// The buffer is parsed in place. Account handles, the instruction data and
// the program id all alias the input and are valid for the duration of the
// invocation only.
package entrypoint

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

// ProcessInstruction is the program logic behind Entrypoint.
type ProcessInstruction func(programID *solana.PublicKey, accounts []AccountInfo, data []byte) error

// ProcessInstructionNoProgram is the program logic behind the entry points
// that do not surface the program id.
type ProcessInstructionNoProgram func(accounts []AccountInfo, data []byte) error

func parseFailed(err error) uint64 {
	if errors.Is(err, ErrDuplicateAccount) {
		Log("a duplicate account was found")
		return DuplicateAccountFound
	}
	Log(err.Error())
	return ErrorCode(err)
}

// accountSlots allocates the account handles. A negative bound parses no accounts.
func accountSlots(maxAccounts int) []AccountInfo {
	return make([]AccountInfo, max(maxAccounts, 0))
}

// Entrypoint parses input into at most maxAccounts handles and runs process.
func (p Parser) Entrypoint(input []byte, maxAccounts int, process ProcessInstruction) uint64 {
	accounts := accountSlots(maxAccounts)
	programID, n, data, err := p.Deserialize(input, accounts)
	if err != nil {
		return parseFailed(err)
	}
	return ErrorCode(process(programID, accounts[:n], data))
}

// EntrypointNoDuplicates returns DuplicateAccountFound without running
// process if any account in input is a duplicate.
func (p Parser) EntrypointNoDuplicates(input []byte, maxAccounts int, process ProcessInstruction) uint64 {
	accounts := accountSlots(maxAccounts)
	programID, n, data, err := p.DeserializeNoDup(input, accounts)
	if err != nil {
		return parseFailed(err)
	}
	return ErrorCode(process(programID, accounts[:n], data))
}

func (p Parser) EntrypointNoProgram(input []byte, maxAccounts int, process ProcessInstructionNoProgram) uint64 {
	accounts := accountSlots(maxAccounts)
	n, data, err := p.DeserializeNoProgram(input, accounts)
	if err != nil {
		return parseFailed(err)
	}
	return ErrorCode(process(accounts[:n], data))
}

func (p Parser) EntrypointNoDuplicatesNoProgram(input []byte, maxAccounts int, process ProcessInstructionNoProgram) uint64 {
	accounts := accountSlots(maxAccounts)
	n, data, err := p.DeserializeNoDupNoProgram(input, accounts)
	if err != nil {
		return parseFailed(err)
	}
	return ErrorCode(process(accounts[:n], data))
}

func Entrypoint(input []byte, maxAccounts int, process ProcessInstruction) uint64 {
	return DefaultParser.Entrypoint(input, maxAccounts, process)
}

func EntrypointNoDuplicates(input []byte, maxAccounts int, process ProcessInstruction) uint64 {
	return DefaultParser.EntrypointNoDuplicates(input, maxAccounts, process)
}

func EntrypointNoProgram(input []byte, maxAccounts int, process ProcessInstructionNoProgram) uint64 {
	return DefaultParser.EntrypointNoProgram(input, maxAccounts, process)
}

func EntrypointNoDuplicatesNoProgram(input []byte, maxAccounts int, process ProcessInstructionNoProgram) uint64 {
	return DefaultParser.EntrypointNoDuplicatesNoProgram(input, maxAccounts, process)
}
