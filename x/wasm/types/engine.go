package types

import (
	"context"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
)

// WasmEngine is one sandboxed contract runtime instance. The simulator keeps
// at most one engine per contract address and drives all entry points through
// it. The engine's storage view is working memory only: the chain store stays
// authoritative, so the host seeds a fresh KVStore before every call and
// copies the result back afterwards.
type WasmEngine interface {
	// Build loads and links the contract bytecode. May block on compilation.
	Build(ctx context.Context, code []byte) error

	// Instantiate calls the contract's instantiate entry point.
	Instantiate(env wasmvmtypes.Env, info wasmvmtypes.MessageInfo, initMsg []byte, store KVStore) (*wasmvmtypes.ContractResult, error)

	// Execute calls the contract's execute entry point.
	Execute(env wasmvmtypes.Env, info wasmvmtypes.MessageInfo, executeMsg []byte, store KVStore) (*wasmvmtypes.ContractResult, error)

	// Reply delivers the settled outcome of a submessage to the contract.
	Reply(env wasmvmtypes.Env, reply wasmvmtypes.Reply, store KVStore) (*wasmvmtypes.ContractResult, error)

	// Query calls the contract's query entry point. Must not mutate state.
	Query(env wasmvmtypes.Env, queryMsg []byte, store KVStore) (*wasmvmtypes.QueryResult, error)

	// DebugLogs returns the debug output collected since the last reset.
	DebugLogs() []string

	// ResetDebugInfo clears collected debug output.
	ResetDebugInfo()
}

// VMFactory constructs a fresh engine wired to the given backend. The host
// calls Build on the result before first use.
type VMFactory func(backend Backend) WasmEngine

// Backend bundles the host services an engine may call back into.
type Backend struct {
	API     GoAPI
	Querier Querier
}

// GoAPI is the address API exposed to contracts.
type GoAPI struct {
	HumanizeAddress     func(canon []byte) (string, error)
	CanonicalizeAddress func(human string) ([]byte, error)
	ValidateAddress     func(human string) error
}

// Querier handles read-only query callouts from a running contract.
type Querier interface {
	Query(request wasmvmtypes.QueryRequest) ([]byte, error)
}

// KVStore is the ordered key/value view handed to an engine for one call.
type KVStore interface {
	Get(key []byte) []byte
	Set(key, value []byte)
	Delete(key []byte)

	// Iterator iterates over the half-open range [start, end) in ascending
	// byte order. A nil start or end is unbounded on that side.
	Iterator(start, end []byte) Iterator
}

// Iterator walks a KVStore range. Callers must not mutate the store while
// iterating.
type Iterator interface {
	Valid() bool
	Next()
	Key() []byte
	Value() []byte
	Close()
}
