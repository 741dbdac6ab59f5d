// Package devvm ships a scripted contract engine for development and tests.
// It interprets a small JSON contract language instead of wasm bytecode, so
// the simulator can run end-to-end — storage writes, events, bank sends,
// nested calls, replies — without a compiled contract or cgo runtime.
package devvm

import (
	"context"
	"encoding/json"
	"fmt"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	"github.com/pkg/errors"

	"github.com/CosmWasm/wasmsim/x/wasm/types"
)

var _ types.WasmEngine = &Engine{}

// Factory wires a fresh dev engine per contract instance.
func Factory(backend types.Backend) types.WasmEngine {
	return &Engine{backend: backend}
}

// Engine is one scripted contract instance.
type Engine struct {
	backend types.Backend
	logs    []string
}

// Build accepts any non-empty payload as "code". The dev language is
// interpreted per message, so there is nothing to compile.
func (e *Engine) Build(_ context.Context, code []byte) error {
	if len(code) == 0 {
		return errors.Wrap(types.ErrEmpty, "contract code")
	}
	return nil
}

type kv struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// op is one instruction of the dev contract language. Exactly one field set.
type op struct {
	Set    *kv       `json:"set,omitempty"`
	Remove *keyOp    `json:"remove,omitempty"`
	Fail   *failOp   `json:"fail,omitempty"`
	Debug  *debugOp  `json:"debug,omitempty"`
	Attr   *kv       `json:"attr,omitempty"`
	Event  *eventOp  `json:"event,omitempty"`
	Data   *dataOp   `json:"data,omitempty"`
	Send   *sendOp   `json:"send,omitempty"`
	Call   *callOp   `json:"call,omitempty"`
}

type keyOp struct {
	Key string `json:"key"`
}

type failOp struct {
	Error string `json:"error"`
}

type debugOp struct {
	Message string `json:"message"`
}

type eventOp struct {
	Type  string `json:"type"`
	Attrs []kv   `json:"attrs,omitempty"`
}

type dataOp struct {
	Value string `json:"value"`
}

type sendOp struct {
	To     string             `json:"to"`
	Amount []wasmvmtypes.Coin `json:"amount"`
}

type callOp struct {
	Contract string          `json:"contract"`
	Msg      json.RawMessage `json:"msg"`
	ID       uint64          `json:"id"`
	ReplyOn  string          `json:"reply_on,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

type contractMsg struct {
	Values map[string]string `json:"values,omitempty"`
	Ops    []op              `json:"ops,omitempty"`
}

type queryMsg struct {
	Get     *keyOp        `json:"get,omitempty"`
	Balance *balanceQuery `json:"balance,omitempty"`
}

type balanceQuery struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
}

func (e *Engine) Instantiate(_ wasmvmtypes.Env, info wasmvmtypes.MessageInfo, initMsg []byte, store types.KVStore) (*wasmvmtypes.ContractResult, error) {
	var msg contractMsg
	if err := json.Unmarshal(initMsg, &msg); err != nil {
		return &wasmvmtypes.ContractResult{Err: err.Error()}, nil
	}
	for k, v := range msg.Values {
		store.Set([]byte(k), []byte(v))
	}
	e.logs = append(e.logs, fmt.Sprintf("instantiated by %s", info.Sender))
	return e.apply(msg.Ops, store), nil
}

func (e *Engine) Execute(_ wasmvmtypes.Env, _ wasmvmtypes.MessageInfo, executeMsg []byte, store types.KVStore) (*wasmvmtypes.ContractResult, error) {
	var msg contractMsg
	if err := json.Unmarshal(executeMsg, &msg); err != nil {
		return &wasmvmtypes.ContractResult{Err: err.Error()}, nil
	}
	return e.apply(msg.Ops, store), nil
}

// Reply records the settled submessage outcome under "reply:<id>" and then
// runs the ops carried in the submessage payload, when any.
func (e *Engine) Reply(_ wasmvmtypes.Env, reply wasmvmtypes.Reply, store types.KVStore) (*wasmvmtypes.ContractResult, error) {
	outcome := "ok"
	if reply.Result.Err != "" {
		outcome = "err:" + reply.Result.Err
	}
	store.Set([]byte(fmt.Sprintf("reply:%d", reply.ID)), []byte(outcome))

	var ops []op
	if len(reply.Payload) != 0 {
		var msg contractMsg
		if err := json.Unmarshal(reply.Payload, &msg); err != nil {
			return &wasmvmtypes.ContractResult{Err: err.Error()}, nil
		}
		ops = msg.Ops
	}
	return e.apply(ops, store), nil
}

func (e *Engine) Query(_ wasmvmtypes.Env, msg []byte, store types.KVStore) (*wasmvmtypes.QueryResult, error) {
	var q queryMsg
	if err := json.Unmarshal(msg, &q); err != nil {
		return &wasmvmtypes.QueryResult{Err: err.Error()}, nil
	}
	switch {
	case q.Get != nil:
		res := struct {
			Value *string `json:"value"`
		}{}
		if v := store.Get([]byte(q.Get.Key)); v != nil {
			s := string(v)
			res.Value = &s
		}
		bz, err := json.Marshal(res)
		if err != nil {
			return nil, err
		}
		return &wasmvmtypes.QueryResult{Ok: bz}, nil
	case q.Balance != nil:
		// host callout through the backend querier
		bz, err := e.backend.Querier.Query(wasmvmtypes.QueryRequest{
			Bank: &wasmvmtypes.BankQuery{
				Balance: &wasmvmtypes.BalanceQuery{Address: q.Balance.Address, Denom: q.Balance.Denom},
			},
		})
		if err != nil {
			return &wasmvmtypes.QueryResult{Err: err.Error()}, nil
		}
		return &wasmvmtypes.QueryResult{Ok: bz}, nil
	}
	return &wasmvmtypes.QueryResult{Err: "unknown query variant"}, nil
}

func (e *Engine) DebugLogs() []string { return e.logs }

func (e *Engine) ResetDebugInfo() { e.logs = nil }

// apply runs the ops in order, building up the contract response. A fail op
// aborts with the scripted error.
func (e *Engine) apply(ops []op, store types.KVStore) *wasmvmtypes.ContractResult {
	var res wasmvmtypes.Response
	for _, o := range ops {
		switch {
		case o.Set != nil:
			store.Set([]byte(o.Set.Key), []byte(o.Set.Value))
		case o.Remove != nil:
			store.Delete([]byte(o.Remove.Key))
		case o.Fail != nil:
			return &wasmvmtypes.ContractResult{Err: o.Fail.Error}
		case o.Debug != nil:
			e.logs = append(e.logs, o.Debug.Message)
		case o.Attr != nil:
			res.Attributes = append(res.Attributes, wasmvmtypes.EventAttribute{Key: o.Attr.Key, Value: o.Attr.Value})
		case o.Event != nil:
			evt := wasmvmtypes.Event{Type: o.Event.Type}
			for _, a := range o.Event.Attrs {
				evt.Attributes = append(evt.Attributes, wasmvmtypes.EventAttribute{Key: a.Key, Value: a.Value})
			}
			res.Events = append(res.Events, evt)
		case o.Data != nil:
			res.Data = []byte(o.Data.Value)
		case o.Send != nil:
			res.Messages = append(res.Messages, newSubMsg(0, "never", wasmvmtypes.CosmosMsg{
				Bank: &wasmvmtypes.BankMsg{
					Send: &wasmvmtypes.SendMsg{ToAddress: o.Send.To, Amount: o.Send.Amount},
				},
			}, nil))
		case o.Call != nil:
			res.Messages = append(res.Messages, newSubMsg(o.Call.ID, o.Call.ReplyOn, wasmvmtypes.CosmosMsg{
				Wasm: &wasmvmtypes.WasmMsg{
					Execute: &wasmvmtypes.ExecuteMsg{ContractAddr: o.Call.Contract, Msg: o.Call.Msg},
				},
			}, o.Call.Payload))
		default:
			return &wasmvmtypes.ContractResult{Err: "unknown op"}
		}
	}
	return &wasmvmtypes.ContractResult{Ok: &res}
}

func newSubMsg(id uint64, replyOn string, msg wasmvmtypes.CosmosMsg, payload []byte) wasmvmtypes.SubMsg {
	sub := wasmvmtypes.SubMsg{ID: id, Msg: msg, Payload: payload}
	switch replyOn {
	case "", "never":
		sub.ReplyOn = wasmvmtypes.ReplyNever
	case "success":
		sub.ReplyOn = wasmvmtypes.ReplySuccess
	case "error":
		sub.ReplyOn = wasmvmtypes.ReplyError
	case "always":
		sub.ReplyOn = wasmvmtypes.ReplyAlways
	default:
		sub.ReplyOn = wasmvmtypes.ReplyNever
	}
	return sub
}
