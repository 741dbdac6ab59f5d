package types

const (
	// WasmModuleEventType is the event type emitted for contract attributes
	WasmModuleEventType = "wasm"
	// CustomContractEventPrefix prefixes the types of events a contract emits itself
	CustomContractEventPrefix = "wasm-"

	EventTypeInstantiate = "instantiate"
	EventTypeExecute     = "execute"
	EventTypeReply       = "reply"
)

// event attributes returned from contract execution
const (
	// AttributeKeyContractAddr identifies the contract on execute, reply and
	// contract-emitted events
	AttributeKeyContractAddr = "_contract_addr"
	// AttributeKeyContractAddress identifies the contract on the instantiate event
	AttributeKeyContractAddress = "_contract_address"
	AttributeKeyCodeID          = "code_id"
	AttributeKeyReplyMode       = "mode"

	AttributeValueHandleSuccess = "handle_success"
	AttributeValueHandleFailure = "handle_failure"
)
