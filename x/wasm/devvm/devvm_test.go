package devvm

import (
	"context"
	"encoding/json"
	"testing"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CosmWasm/wasmsim/x/wasm/types"
)

func newEngine(t *testing.T) (types.WasmEngine, *types.StorageAdapter) {
	t.Helper()
	e := Factory(types.Backend{})
	require.NoError(t, e.Build(context.Background(), []byte(`{"lang":"dev"}`)))
	return e, types.NewStorageAdapter(nil)
}

func TestBuildRejectsEmptyCode(t *testing.T) {
	e := Factory(types.Backend{})
	require.Error(t, e.Build(context.Background(), nil))
}

func TestInstantiateSeedsValues(t *testing.T) {
	e, store := newEngine(t)
	res, err := e.Instantiate(wasmvmtypes.Env{}, wasmvmtypes.MessageInfo{Sender: "fred"}, []byte(`{"values":{"a":"1","b":"2"}}`), store)
	require.NoError(t, err)
	require.NotNil(t, res.Ok)
	assert.Equal(t, []byte("1"), store.Get([]byte("a")))
	assert.Equal(t, []byte("2"), store.Get([]byte("b")))
	assert.NotEmpty(t, e.DebugLogs())
}

func TestExecuteOps(t *testing.T) {
	e, store := newEngine(t)
	msg := `{"ops":[
		{"set":{"key":"a","value":"1"}},
		{"attr":{"key":"k","value":"v"}},
		{"event":{"type":"t","attrs":[{"key":"x","value":"y"}]}},
		{"data":{"value":"payload"}},
		{"debug":{"message":"hello"}}
	]}`
	res, err := e.Execute(wasmvmtypes.Env{}, wasmvmtypes.MessageInfo{}, []byte(msg), store)
	require.NoError(t, err)
	require.NotNil(t, res.Ok)
	assert.Equal(t, []byte("1"), store.Get([]byte("a")))
	assert.Equal(t, []wasmvmtypes.EventAttribute{{Key: "k", Value: "v"}}, res.Ok.Attributes)
	require.Len(t, res.Ok.Events, 1)
	assert.Equal(t, "t", res.Ok.Events[0].Type)
	assert.Equal(t, []byte("payload"), res.Ok.Data)
	assert.Equal(t, []string{"hello"}, e.DebugLogs())
}

func TestExecuteFailAborts(t *testing.T) {
	e, store := newEngine(t)
	res, err := e.Execute(wasmvmtypes.Env{}, wasmvmtypes.MessageInfo{}, []byte(`{"ops":[{"fail":{"error":"boom"}}]}`), store)
	require.NoError(t, err)
	assert.Equal(t, "boom", res.Err)
}

func TestExecuteEmitsSubmessages(t *testing.T) {
	e, store := newEngine(t)
	msg := `{"ops":[
		{"send":{"to":"bob","amount":[{"denom":"denom","amount":"5"}]}},
		{"call":{"contract":"other","msg":{"ops":[]},"id":3,"reply_on":"always"}}
	]}`
	res, err := e.Execute(wasmvmtypes.Env{}, wasmvmtypes.MessageInfo{}, []byte(msg), store)
	require.NoError(t, err)
	require.NotNil(t, res.Ok)
	require.Len(t, res.Ok.Messages, 2)

	send := res.Ok.Messages[0]
	require.NotNil(t, send.Msg.Bank)
	assert.Equal(t, "bob", send.Msg.Bank.Send.ToAddress)
	assert.Equal(t, wasmvmtypes.ReplyNever, send.ReplyOn)

	call := res.Ok.Messages[1]
	require.NotNil(t, call.Msg.Wasm)
	assert.Equal(t, "other", call.Msg.Wasm.Execute.ContractAddr)
	assert.Equal(t, uint64(3), call.ID)
	assert.Equal(t, wasmvmtypes.ReplyAlways, call.ReplyOn)
}

func TestReplyRecordsOutcomeAndRunsPayload(t *testing.T) {
	e, store := newEngine(t)
	payload, err := json.Marshal(map[string]any{"ops": []map[string]any{{"data": map[string]string{"value": "d"}}}})
	require.NoError(t, err)

	res, err := e.Reply(wasmvmtypes.Env{}, wasmvmtypes.Reply{
		ID:      9,
		Result:  wasmvmtypes.SubMsgResult{Err: "x"},
		Payload: payload,
	}, store)
	require.NoError(t, err)
	require.NotNil(t, res.Ok)
	assert.Equal(t, []byte("err:x"), store.Get([]byte("reply:9")))
	assert.Equal(t, []byte("d"), res.Ok.Data)
}

func TestQueryGet(t *testing.T) {
	e, store := newEngine(t)
	store.Set([]byte("a"), []byte("1"))

	res, err := e.Query(wasmvmtypes.Env{}, []byte(`{"get":{"key":"a"}}`), store)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"1"}`, string(res.Ok))

	res, err = e.Query(wasmvmtypes.Env{}, []byte(`{"get":{"key":"missing"}}`), store)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":null}`, string(res.Ok))

	res, err = e.Query(wasmvmtypes.Env{}, []byte(`{"nope":{}}`), store)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Err)
}
