// Package store owns the chain state of the simulator. The whole state is a
// single value composed of persistent data structures: taking a snapshot is a
// struct copy, reverting is an assignment. Mutations build new values and
// never alias an existing snapshot.
package store

import (
	banktypes "github.com/CosmWasm/wasmsim/x/bank/types"
	wasmtypes "github.com/CosmWasm/wasmsim/x/wasm/types"
)

// Root is the full chain state at one point in time.
type Root struct {
	Wasm wasmtypes.State
	Bank banktypes.State
}

// NewRoot returns an empty chain state.
func NewRoot() Root {
	return Root{
		Wasm: wasmtypes.NewState(),
		Bank: banktypes.NewState(),
	}
}

// Store is the single mutable cell holding the current chain state. All
// module keepers share one Store; the engine is single-threaded, so access
// needs no locking.
type Store struct {
	root Root
}

// NewStore returns a store with empty chain state.
func NewStore() *Store {
	return &Store{root: NewRoot()}
}

// Root returns the current chain state.
func (s *Store) Root() Root { return s.root }

// SetRoot replaces the current chain state.
func (s *Store) SetRoot(r Root) { s.root = r }

// Snapshot captures the current chain state. O(1): the persistent maps inside
// Root are shared structurally.
func (s *Store) Snapshot() Root { return s.root }

// Restore reverts the chain state to an earlier snapshot.
func (s *Store) Restore(r Root) { s.root = r }
