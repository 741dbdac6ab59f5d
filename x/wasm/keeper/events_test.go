package keeper

import (
	"testing"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAppResponse(t *testing.T) {
	myContract := "cosmwasm1contract"
	specs := map[string]struct {
		res       wasmvmtypes.Response
		expEvents []wasmvmtypes.Event
	}{
		"attributes and custom events": {
			res: wasmvmtypes.Response{
				Attributes: []wasmvmtypes.EventAttribute{{Key: "k", Value: "v"}},
				Events: []wasmvmtypes.Event{
					{Type: "t", Attributes: []wasmvmtypes.EventAttribute{{Key: "a", Value: "b"}}},
				},
			},
			expEvents: []wasmvmtypes.Event{
				{Type: "execute", Attributes: []wasmvmtypes.EventAttribute{{Key: "_contract_addr", Value: myContract}}},
				{Type: "wasm", Attributes: []wasmvmtypes.EventAttribute{
					{Key: "_contract_addr", Value: myContract},
					{Key: "k", Value: "v"},
				}},
				{Type: "wasm-t", Attributes: []wasmvmtypes.EventAttribute{
					{Key: "_contract_addr", Value: myContract},
					{Key: "a", Value: "b"},
				}},
			},
		},
		"no attributes, no wasm event": {
			res: wasmvmtypes.Response{
				Events: []wasmvmtypes.Event{{Type: "transfer"}},
			},
			expEvents: []wasmvmtypes.Event{
				{Type: "execute", Attributes: []wasmvmtypes.EventAttribute{{Key: "_contract_addr", Value: myContract}}},
				{Type: "wasm-transfer", Attributes: []wasmvmtypes.EventAttribute{{Key: "_contract_addr", Value: myContract}}},
			},
		},
		"empty response": {
			res: wasmvmtypes.Response{},
			expEvents: []wasmvmtypes.Event{
				{Type: "execute", Attributes: []wasmvmtypes.EventAttribute{{Key: "_contract_addr", Value: myContract}}},
			},
		},
		"contract-supplied address attribute dropped": {
			res: wasmvmtypes.Response{
				Attributes: []wasmvmtypes.EventAttribute{
					{Key: "_contract_addr", Value: "spoofed"},
					{Key: "x", Value: "y"},
				},
			},
			expEvents: []wasmvmtypes.Event{
				{Type: "execute", Attributes: []wasmvmtypes.EventAttribute{{Key: "_contract_addr", Value: myContract}}},
				{Type: "wasm", Attributes: []wasmvmtypes.EventAttribute{
					{Key: "_contract_addr", Value: myContract},
					{Key: "x", Value: "y"},
				}},
			},
		},
	}
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			rsp := buildAppResponse(newExecuteEvent(myContract), myContract, &spec.res)
			assert.Equal(t, spec.expEvents, rsp.Events)
		})
	}
}

func TestBuildAppResponseDataPassthrough(t *testing.T) {
	rsp := buildAppResponse(newExecuteEvent("addr"), "addr", &wasmvmtypes.Response{Data: []byte("payload")})
	assert.Equal(t, []byte("payload"), rsp.Data)
}

func TestNewInstantiateEvent(t *testing.T) {
	evt := newInstantiateEvent("myAddr", 42)
	require.Equal(t, "instantiate", evt.Type)
	require.Equal(t, []wasmvmtypes.EventAttribute{
		{Key: "_contract_address", Value: "myAddr"},
		{Key: "code_id", Value: "42"},
	}, []wasmvmtypes.EventAttribute(evt.Attributes))
}

func TestNewReplyEvent(t *testing.T) {
	specs := map[string]struct {
		reply   wasmvmtypes.Reply
		expMode string
	}{
		"success": {
			reply:   wasmvmtypes.Reply{Result: wasmvmtypes.SubMsgResult{Ok: &wasmvmtypes.SubMsgResponse{}}},
			expMode: "handle_success",
		},
		"failure": {
			reply:   wasmvmtypes.Reply{Result: wasmvmtypes.SubMsgResult{Err: "boom"}},
			expMode: "handle_failure",
		},
	}
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			evt := newReplyEvent("myAddr", spec.reply)
			require.Equal(t, "reply", evt.Type)
			require.Equal(t, []wasmvmtypes.EventAttribute{
				{Key: "_contract_addr", Value: "myAddr"},
				{Key: "mode", Value: spec.expMode},
			}, []wasmvmtypes.EventAttribute(evt.Attributes))
		})
	}
}
