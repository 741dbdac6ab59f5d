package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CosmWasm/wasmsim/x/wasm/devvm"
	wasmkeeper "github.com/CosmWasm/wasmsim/x/wasm/keeper"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	return New(DefaultConfig(), devvm.Factory)
}

func TestFullContractLifecycle(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	codeID, err := a.Create("alice", []byte(`{"lang":"dev"}`))
	require.NoError(t, err)
	require.Equal(t, uint64(1), codeID)

	var trace []wasmkeeper.TraceEntry
	addr, rsp, err := a.InstantiateContract(ctx, "alice", nil, codeID, []byte(`{"values":{"greeting":"hello"}}`), &trace)
	require.NoError(t, err)
	require.NotEmpty(t, addr)
	require.Equal(t, "instantiate", rsp.Events[0].Type)

	// raw query against chain state
	v, err := a.HandleQuery(ctx, &wasmvmtypes.WasmQuery{
		Raw: &wasmvmtypes.RawQuery{ContractAddr: addr, Key: []byte("greeting")},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(v))

	// execute a write and read it back through a smart query
	_, err = a.ExecuteContract(ctx, "alice", nil, addr, []byte(`{"ops":[{"set":{"key":"counter","value":"1"}}]}`), nil)
	require.NoError(t, err)
	res, err := a.QuerySmart(ctx, addr, []byte(`{"get":{"key":"counter"}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"1"}`, string(res))
}

func TestNestedCallWithReplyPayload(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	codeID, err := a.Create("alice", []byte(`{"lang":"dev"}`))
	require.NoError(t, err)
	parent, _, err := a.InstantiateContract(ctx, "alice", nil, codeID, []byte(`{}`), nil)
	require.NoError(t, err)
	child, _, err := a.InstantiateContract(ctx, "alice", nil, codeID, []byte(`{}`), nil)
	require.NoError(t, err)
	require.NotEqual(t, parent, child)

	// parent calls the child; on success its reply runs the payload ops
	msg := fmt.Sprintf(`{"ops":[{"call":{
		"contract":%q,
		"msg":{"ops":[{"set":{"key":"from-parent","value":"yes"}}]},
		"id":1,
		"reply_on":"success",
		"payload":{"ops":[{"data":{"value":"reply-data"}}]}
	}}]}`, child)

	var trace []wasmkeeper.TraceEntry
	rsp, err := a.ExecuteContract(ctx, "alice", nil, parent, []byte(msg), &trace)
	require.NoError(t, err)
	assert.Equal(t, []byte("reply-data"), rsp.Data)

	// the child's write persisted, the parent recorded the reply outcome
	v, err := a.HandleQuery(ctx, &wasmvmtypes.WasmQuery{Raw: &wasmvmtypes.RawQuery{ContractAddr: child, Key: []byte("from-parent")}})
	require.NoError(t, err)
	assert.Equal(t, "yes", string(v))
	v, err = a.HandleQuery(ctx, &wasmvmtypes.WasmQuery{Raw: &wasmvmtypes.RawQuery{ContractAddr: parent, Key: []byte("reply:1")}})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(v))

	// the trace nests: execute -> [child execute, reply]
	require.Len(t, trace, 1)
	require.Len(t, trace[0].Trace, 2)
	assert.Equal(t, wasmkeeper.TraceExecute, trace[0].Trace[0].Kind)
	assert.Equal(t, wasmkeeper.TraceReply, trace[0].Trace[1].Kind)
}

func TestSiblingRevertEndToEnd(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	codeID, err := a.Create("alice", []byte(`{"lang":"dev"}`))
	require.NoError(t, err)
	parent, _, err := a.InstantiateContract(ctx, "alice", nil, codeID, []byte(`{}`), nil)
	require.NoError(t, err)
	child, _, err := a.InstantiateContract(ctx, "alice", nil, codeID, []byte(`{}`), nil)
	require.NoError(t, err)

	// fund the parent so the first sibling can move coins
	require.NoError(t, a.BankKeeper.SetBalance(parent, []wasmvmtypes.Coin{wasmvmtypes.NewCoin(100, "denom")}))

	msg := fmt.Sprintf(`{"ops":[
		{"send":{"to":"bob","amount":[{"denom":"denom","amount":"40"}]}},
		{"call":{"contract":%q,"msg":{"ops":[{"set":{"key":"a","value":"1"}}]},"id":1}},
		{"call":{"contract":%q,"msg":{"ops":[{"fail":{"error":"third sibling fails"}}]},"id":2}}
	]}`, child, child)

	_, err = a.ExecuteContract(ctx, "alice", nil, parent, []byte(msg), nil)
	require.EqualError(t, err, "third sibling fails")

	// everything rolled back: the bank send and the child's storage write
	assert.Equal(t, "100", a.BankKeeper.GetBalance(parent, "denom").Amount)
	assert.True(t, a.BankKeeper.GetAllBalances("bob").IsZero())
	_, err = a.HandleQuery(ctx, &wasmvmtypes.WasmQuery{Raw: &wasmvmtypes.RawQuery{ContractAddr: child, Key: []byte("a")}})
	require.EqualError(t, err, "Key a not found")
}

func TestInstantiateWithFundsAndBankQuery(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, a.BankKeeper.SetBalance("alice", []wasmvmtypes.Coin{wasmvmtypes.NewCoin(100, "denom")}))
	codeID, err := a.Create("alice", []byte(`{"lang":"dev"}`))
	require.NoError(t, err)

	addr, _, err := a.InstantiateContract(ctx, "alice", []wasmvmtypes.Coin{wasmvmtypes.NewCoin(25, "denom")}, codeID, []byte(`{}`), nil)
	require.NoError(t, err)
	assert.Equal(t, "25", a.BankKeeper.GetBalance(addr, "denom").Amount)
	assert.Equal(t, "75", a.BankKeeper.GetBalance("alice", "denom").Amount)

	// the contract can see its own balance through the backend querier
	res, err := a.QuerySmart(ctx, addr, []byte(fmt.Sprintf(`{"balance":{"address":%q,"denom":"denom"}}`, addr)))
	require.NoError(t, err)
	assert.Contains(t, string(res), `"25"`)
}

func TestBlockClock(t *testing.T) {
	a := newTestApp(t)
	start := a.BlockInfo()

	a.AdvanceBlock(5 * time.Second)
	next := a.BlockInfo()
	assert.Equal(t, start.Height+1, next.Height)
	assert.Equal(t, uint64(start.Time)+uint64(5*time.Second), uint64(next.Time))

	a.SetBlock(42, time.Unix(1_700_000_000, 0))
	assert.Equal(t, uint64(42), a.BlockInfo().Height)
}

func TestContractInfoQueryEndToEnd(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	codeID, err := a.Create("alice", []byte(`{"lang":"dev"}`))
	require.NoError(t, err)
	addr, _, err := a.InstantiateContract(ctx, "alice", nil, codeID, []byte(`{}`), nil)
	require.NoError(t, err)

	bz, err := a.HandleQuery(ctx, &wasmvmtypes.WasmQuery{ContractInfo: &wasmvmtypes.ContractInfoQuery{ContractAddr: addr}})
	require.NoError(t, err)
	assert.Contains(t, string(bz), `"code_id":1`)
}
