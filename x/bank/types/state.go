package types

import "github.com/benbjohnson/immutable"

// State is the bank module's slice of the chain store: balances by bech32
// address. Like the wasm state it is a persistent value, so copying the
// struct is a snapshot.
type State struct {
	Balances *immutable.SortedMap[string, Coins]
}

// NewState returns an empty bank state.
func NewState() State {
	return State{Balances: immutable.NewSortedMap[string, Coins](nil)}
}
