package types

import (
	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	"github.com/benbjohnson/immutable"
)

// ModuleName is the name used to derive module addresses for contracts.
const ModuleName = "wasm"

// ContractAddrLen is the length in bytes of a derived contract address.
const ContractAddrLen = 20

// CodeInfo holds an uploaded contract bytecode and its metadata. Immutable
// after creation.
type CodeInfo struct {
	Creator string `json:"creator"`
	Code    []byte `json:"code"`
}

// NewCodeInfo constructor
func NewCodeInfo(creator string, code []byte) CodeInfo {
	return CodeInfo{Creator: creator, Code: code}
}

// ContractInfo stores a contract instance's metadata.
type ContractInfo struct {
	CodeID  uint64 `json:"code_id"`
	Creator string `json:"creator"`
	Admin   string `json:"admin,omitempty"`
	Label   string `json:"label"`
	// Created is the block height the contract was registered at
	Created uint64 `json:"created"`
}

// NewContractInfo constructor
func NewContractInfo(codeID uint64, creator, admin, label string, created uint64) ContractInfo {
	return ContractInfo{
		CodeID:  codeID,
		Creator: creator,
		Admin:   admin,
		Label:   label,
		Created: created,
	}
}

// ContractStorage is one contract's ordered key/value state. Keys compare
// byte-lexicographically. The map is persistent: mutations return a new map
// and never alias an older snapshot.
type ContractStorage = *immutable.SortedMap[string, string]

// NewContractStorage returns an empty contract storage map.
func NewContractStorage() ContractStorage {
	return immutable.NewSortedMap[string, string](nil)
}

// State is the wasm module's slice of the chain store. It is a value: copying
// it is a snapshot, assigning it back is a revert. The embedded maps are
// persistent, so copies share structure and never observe later writes.
type State struct {
	LastCodeID      uint64
	LastInstanceID  uint64
	Codes           *immutable.SortedMap[uint64, CodeInfo]
	Contracts       *immutable.SortedMap[string, ContractInfo]
	ContractStorage *immutable.SortedMap[string, ContractStorage]
}

// NewState returns an empty wasm module state.
func NewState() State {
	return State{
		Codes:           immutable.NewSortedMap[uint64, CodeInfo](nil),
		Contracts:       immutable.NewSortedMap[string, ContractInfo](nil),
		ContractStorage: immutable.NewSortedMap[string, ContractStorage](nil),
	}
}

// AppResponse is the result of a settled contract invocation: the flat,
// ordered event list and the (optional) data payload.
type AppResponse struct {
	Events []wasmvmtypes.Event `json:"events"`
	Data   []byte              `json:"data,omitempty"`
}

// NewEnv builds the environment value passed into every VM entry point.
func NewEnv(block wasmvmtypes.BlockInfo, contractAddr string) wasmvmtypes.Env {
	return wasmvmtypes.Env{
		Block:    block,
		Contract: wasmvmtypes.ContractInfo{Address: contractAddr},
	}
}

// NewInfo builds the message info passed into instantiate and execute.
func NewInfo(sender string, funds []wasmvmtypes.Coin) wasmvmtypes.MessageInfo {
	return wasmvmtypes.MessageInfo{
		Sender: sender,
		Funds:  funds,
	}
}
