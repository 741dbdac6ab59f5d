package keeper

import (
	"crypto/rand"
	"testing"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	"github.com/stretchr/testify/require"

	"github.com/CosmWasm/wasmsim/store"
	bankkeeper "github.com/CosmWasm/wasmsim/x/bank/keeper"
	"github.com/CosmWasm/wasmsim/x/wasm/types"
)

// TestingBech32Prefix is the address prefix test fixtures run with.
const TestingBech32Prefix = "cosmwasm"

// TestKeepers bundles everything CreateTestInput wires up.
type TestKeepers struct {
	WasmKeeper *Keeper
	BankKeeper *bankkeeper.Keeper
	Store      *store.Store
}

// TestBlockInfo is the fixed block context test fixtures run with.
func TestBlockInfo() wasmvmtypes.BlockInfo {
	return wasmvmtypes.BlockInfo{
		Height:  1234567,
		Time:    1571797419879305533,
		ChainID: "testing",
	}
}

// CreateTestInput wires a keeper against an empty chain store with the
// default router chain.
func CreateTestInput(t testing.TB, vmFactory types.VMFactory) TestKeepers {
	t.Helper()
	s := store.NewStore()
	bank := bankkeeper.NewKeeper(s)
	k := NewKeeper(s, vmFactory, bank, TestBlockInfo, TestingBech32Prefix)
	k.SetMessenger(NewMessageHandlerChain(NewWasmMsgHandler(k), NewBankMsgHandler(bank)))
	return TestKeepers{WasmKeeper: k, BankKeeper: bank, Store: s}
}

// RandomBech32Address returns an address that is valid for the testing prefix
// but not derived from any code.
func RandomBech32Address(t testing.TB) string {
	t.Helper()
	bz := make([]byte, types.ContractAddrLen)
	_, err := rand.Read(bz)
	require.NoError(t, err)
	addr, err := EncodeBech32(TestingBech32Prefix, bz)
	require.NoError(t, err)
	return addr
}
