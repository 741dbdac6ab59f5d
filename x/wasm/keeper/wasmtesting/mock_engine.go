package wasmtesting

import (
	"context"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	"github.com/CosmWasm/wasmsim/x/wasm/types"
)

var _ types.WasmEngine = &MockWasmEngine{}

// MockWasmEngine implements types.WasmEngine with configurable callbacks. An
// unset entry-point callback panics when hit, so a test only stubs what it
// exercises; an unset BuildFn makes Build succeed.
type MockWasmEngine struct {
	BuildFn       func(ctx context.Context, code []byte) error
	InstantiateFn func(env wasmvmtypes.Env, info wasmvmtypes.MessageInfo, initMsg []byte, store types.KVStore) (*wasmvmtypes.ContractResult, error)
	ExecuteFn     func(env wasmvmtypes.Env, info wasmvmtypes.MessageInfo, executeMsg []byte, store types.KVStore) (*wasmvmtypes.ContractResult, error)
	ReplyFn       func(env wasmvmtypes.Env, reply wasmvmtypes.Reply, store types.KVStore) (*wasmvmtypes.ContractResult, error)
	QueryFn       func(env wasmvmtypes.Env, queryMsg []byte, store types.KVStore) (*wasmvmtypes.QueryResult, error)
	Logs          []string
}

func (m *MockWasmEngine) Build(ctx context.Context, code []byte) error {
	if m.BuildFn == nil {
		return nil
	}
	return m.BuildFn(ctx, code)
}

func (m *MockWasmEngine) Instantiate(env wasmvmtypes.Env, info wasmvmtypes.MessageInfo, initMsg []byte, store types.KVStore) (*wasmvmtypes.ContractResult, error) {
	if m.InstantiateFn == nil {
		panic("not supposed to be called!")
	}
	return m.InstantiateFn(env, info, initMsg, store)
}

func (m *MockWasmEngine) Execute(env wasmvmtypes.Env, info wasmvmtypes.MessageInfo, executeMsg []byte, store types.KVStore) (*wasmvmtypes.ContractResult, error) {
	if m.ExecuteFn == nil {
		panic("not supposed to be called!")
	}
	return m.ExecuteFn(env, info, executeMsg, store)
}

func (m *MockWasmEngine) Reply(env wasmvmtypes.Env, reply wasmvmtypes.Reply, store types.KVStore) (*wasmvmtypes.ContractResult, error) {
	if m.ReplyFn == nil {
		panic("not supposed to be called!")
	}
	return m.ReplyFn(env, reply, store)
}

func (m *MockWasmEngine) Query(env wasmvmtypes.Env, queryMsg []byte, store types.KVStore) (*wasmvmtypes.QueryResult, error) {
	if m.QueryFn == nil {
		panic("not supposed to be called!")
	}
	return m.QueryFn(env, queryMsg, store)
}

func (m *MockWasmEngine) DebugLogs() []string { return m.Logs }

func (m *MockWasmEngine) ResetDebugInfo() { m.Logs = nil }

// Factory returns a VMFactory handing out the same mock for every contract.
func Factory(m *MockWasmEngine) types.VMFactory {
	return func(_ types.Backend) types.WasmEngine { return m }
}

// OkResult wraps a contract response the way a successful VM call returns it.
func OkResult(res wasmvmtypes.Response) *wasmvmtypes.ContractResult {
	return &wasmvmtypes.ContractResult{Ok: &res}
}

// ErrResult wraps a contract-level failure the way the VM reports it.
func ErrResult(msg string) *wasmvmtypes.ContractResult {
	return &wasmvmtypes.ContractResult{Err: msg}
}
