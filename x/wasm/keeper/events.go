package keeper

import (
	"strconv"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	"github.com/CosmWasm/wasmsim/x/wasm/types"
)

// buildAppResponse assembles the flat event list for one settled contract
// invocation: the call's own event first, then one "wasm" event aggregating
// the contract's attributes (when any), then the contract's custom events
// rewritten with the "wasm-" prefix. The data field passes through unchanged.
func buildAppResponse(customEvent wasmvmtypes.Event, contractAddr string, res *wasmvmtypes.Response) *types.AppResponse {
	events := []wasmvmtypes.Event{customEvent}
	if len(res.Attributes) != 0 {
		events = append(events, newWasmModuleEvent(res.Attributes, contractAddr))
	}
	events = append(events, newCustomEvents(res.Events, contractAddr)...)
	return &types.AppResponse{Events: events, Data: res.Data}
}

// newWasmModuleEvent creates the wasm module event aggregating the attributes
// a contract returned for this invocation.
func newWasmModuleEvent(customAttributes []wasmvmtypes.EventAttribute, contractAddr string) wasmvmtypes.Event {
	return wasmvmtypes.Event{
		Type:       types.WasmModuleEventType,
		Attributes: contractEventAttributes(customAttributes, contractAddr),
	}
}

// newCustomEvents rewrites the events a contract emitted itself, prefixing
// their types and injecting the contract address.
func newCustomEvents(evts []wasmvmtypes.Event, contractAddr string) []wasmvmtypes.Event {
	events := make([]wasmvmtypes.Event, 0, len(evts))
	for _, e := range evts {
		events = append(events, wasmvmtypes.Event{
			Type:       types.CustomContractEventPrefix + e.Type,
			Attributes: contractEventAttributes(e.Attributes, contractAddr),
		})
	}
	return events
}

// contractEventAttributes prepends the contract address issuing the event.
// The address key is reserved for the engine, so a contract-supplied value
// for it is dropped.
func contractEventAttributes(customAttributes []wasmvmtypes.EventAttribute, contractAddr string) []wasmvmtypes.EventAttribute {
	attrs := []wasmvmtypes.EventAttribute{{Key: types.AttributeKeyContractAddr, Value: contractAddr}}
	for _, l := range customAttributes {
		if l.Key != types.AttributeKeyContractAddr {
			attrs = append(attrs, l)
		}
	}
	return attrs
}

func newInstantiateEvent(contractAddr string, codeID uint64) wasmvmtypes.Event {
	return wasmvmtypes.Event{
		Type: types.EventTypeInstantiate,
		Attributes: []wasmvmtypes.EventAttribute{
			{Key: types.AttributeKeyContractAddress, Value: contractAddr},
			{Key: types.AttributeKeyCodeID, Value: strconv.FormatUint(codeID, 10)},
		},
	}
}

func newExecuteEvent(contractAddr string) wasmvmtypes.Event {
	return wasmvmtypes.Event{
		Type: types.EventTypeExecute,
		Attributes: []wasmvmtypes.EventAttribute{
			{Key: types.AttributeKeyContractAddr, Value: contractAddr},
		},
	}
}

func newReplyEvent(contractAddr string, reply wasmvmtypes.Reply) wasmvmtypes.Event {
	mode := types.AttributeValueHandleSuccess
	if reply.Result.Err != "" {
		mode = types.AttributeValueHandleFailure
	}
	return wasmvmtypes.Event{
		Type: types.EventTypeReply,
		Attributes: []wasmvmtypes.EventAttribute{
			{Key: types.AttributeKeyContractAddr, Value: contractAddr},
			{Key: types.AttributeKeyReplyMode, Value: mode},
		},
	}
}
