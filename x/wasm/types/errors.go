package types

import "github.com/pkg/errors"

// Sentinel errors for the wasm simulator. VM-reported failures are NOT wrapped
// with these: the raw error string a contract returns surfaces unmodified so
// that callers and reply handlers observe exactly what the contract said.
var (
	// ErrCreateFailed error when loading a contract into the VM fails
	ErrCreateFailed = errors.New("create contract failed")

	// ErrNoSuchCode error when a code id is unknown
	ErrNoSuchCode = errors.New("no such code")

	// ErrNoSuchContract error when a contract address is unknown
	ErrNoSuchContract = errors.New("no such contract")

	// ErrDuplicate error for duplicate state entries
	ErrDuplicate = errors.New("duplicate")

	// ErrEmpty error for empty required input
	ErrEmpty = errors.New("empty")

	// ErrInvalid error for invalid input or message content
	ErrInvalid = errors.New("invalid")

	// ErrUnauthorized error when a caller may not act on a contract
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnknownMsg error when no message handler accepts a message variant
	ErrUnknownMsg = errors.New("unknown message from the contract")

	// ErrUnknownQuery error when no query plugin accepts a query variant
	ErrUnknownQuery = errors.New("unknown query request")

	// ErrVMError error when the VM itself fails outside contract logic
	ErrVMError = errors.New("wasm VM error")
)
