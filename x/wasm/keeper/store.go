package keeper

import (
	"github.com/pkg/errors"

	wasmtypes "github.com/CosmWasm/wasmsim/x/wasm/types"
)

// accessors for the wasm module's slice of the shared chain store

func (k *Keeper) state() wasmtypes.State {
	return k.store.Root().Wasm
}

func (k *Keeper) setState(s wasmtypes.State) {
	root := k.store.Root()
	root.Wasm = s
	k.store.SetRoot(root)
}

// GetCodeInfo returns the stored code for the given id, nil when unknown.
func (k *Keeper) GetCodeInfo(codeID uint64) *wasmtypes.CodeInfo {
	info, found := k.state().Codes.Get(codeID)
	if !found {
		return nil
	}
	return &info
}

// GetContractInfo returns a contract's metadata, nil when unknown.
func (k *Keeper) GetContractInfo(contractAddr string) *wasmtypes.ContractInfo {
	info, found := k.state().Contracts.Get(contractAddr)
	if !found {
		return nil
	}
	return &info
}

// HasContractInfo reports whether a contract is registered at the address.
func (k *Keeper) HasContractInfo(contractAddr string) bool {
	_, found := k.state().Contracts.Get(contractAddr)
	return found
}

// IterateCodeInfos calls the callback for every stored code, ascending by id,
// until it returns true.
func (k *Keeper) IterateCodeInfos(cb func(codeID uint64, info wasmtypes.CodeInfo) bool) {
	itr := k.state().Codes.Iterator()
	for {
		codeID, info, ok := itr.Next()
		if !ok || cb(codeID, info) {
			return
		}
	}
}

// IterateContractInfo calls the callback for every contract, ascending by
// address, until it returns true.
func (k *Keeper) IterateContractInfo(cb func(contractAddr string, info wasmtypes.ContractInfo) bool) {
	itr := k.state().Contracts.Iterator()
	for {
		addr, info, ok := itr.Next()
		if !ok || cb(addr, info) {
			return
		}
	}
}

// contractStorage returns a contract's storage map, empty when absent.
func (k *Keeper) contractStorage(contractAddr string) wasmtypes.ContractStorage {
	m, found := k.state().ContractStorage.Get(contractAddr)
	if !found {
		return wasmtypes.NewContractStorage()
	}
	return m
}

// IterateContractState calls the callback for every key/value pair of a
// contract's storage, ascending by key, until it returns true.
func (k *Keeper) IterateContractState(contractAddr string, cb func(key, value []byte) bool) error {
	m, found := k.state().ContractStorage.Get(contractAddr)
	if !found {
		return errors.Wrapf(wasmtypes.ErrNoSuchContract, "address %s", contractAddr)
	}
	itr := m.Iterator()
	for {
		key, value, ok := itr.Next()
		if !ok || cb([]byte(key), []byte(value)) {
			return nil
		}
	}
}

func (k *Keeper) setContractStorage(contractAddr string, m wasmtypes.ContractStorage) {
	state := k.state()
	state.ContractStorage = state.ContractStorage.Set(contractAddr, m)
	k.setState(state)
}

func (k *Keeper) setContractInfo(contractAddr string, info wasmtypes.ContractInfo) {
	state := k.state()
	state.Contracts = state.Contracts.Set(contractAddr, info)
	k.setState(state)
}
