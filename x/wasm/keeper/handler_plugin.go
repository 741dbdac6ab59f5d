package keeper

import (
	"context"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	"github.com/pkg/errors"

	"github.com/CosmWasm/wasmsim/x/wasm/types"
)

// CoinTransferrer moves and burns coins for bank messages.
type CoinTransferrer interface {
	TransferCoins(fromAddr, toAddr string, amt []wasmvmtypes.Coin) error
	Burn(fromAddr string, amt []wasmvmtypes.Coin) error
}

// MessageHandlerChain tries a message against all handlers in order. A
// handler that does not recognize the variant returns types.ErrUnknownMsg and
// the next one is asked; a message no handler accepts fails loudly.
type MessageHandlerChain struct {
	handlers []Messenger
}

var (
	_ Messenger = MessageHandlerChain{}
	_ Messenger = WasmMsgHandler{}
	_ Messenger = BankMsgHandler{}
)

// NewMessageHandlerChain constructor
func NewMessageHandlerChain(first Messenger, others ...Messenger) MessageHandlerChain {
	r := MessageHandlerChain{handlers: append([]Messenger{first}, others...)}
	for i := range r.handlers {
		if r.handlers[i] == nil {
			panic("nil handler")
		}
	}
	return r
}

// DispatchMsg dispatches to the first handler accepting the message variant.
func (m MessageHandlerChain) DispatchMsg(ctx context.Context, contractAddr string, msg wasmvmtypes.CosmosMsg, trace *[]TraceEntry) (*types.AppResponse, error) {
	for _, h := range m.handlers {
		rsp, err := h.DispatchMsg(ctx, contractAddr, msg, trace)
		switch {
		case err == nil:
			return rsp, nil
		case errors.Is(err, types.ErrUnknownMsg):
			continue
		default:
			return nil, err
		}
	}
	return nil, errors.Wrap(types.ErrUnknownMsg, "no handler accepted the message")
}

// WasmMsgHandler routes wasm messages back into the engine.
type WasmMsgHandler struct {
	keeper *Keeper
}

// NewWasmMsgHandler constructor
func NewWasmMsgHandler(k *Keeper) WasmMsgHandler {
	return WasmMsgHandler{keeper: k}
}

// DispatchMsg handles the wasm variants of a cosmos message. The inner
// contract message rides base64-encoded on the wire and arrives here decoded.
func (h WasmMsgHandler) DispatchMsg(ctx context.Context, sender string, msg wasmvmtypes.CosmosMsg, trace *[]TraceEntry) (*types.AppResponse, error) {
	if msg.Wasm == nil {
		return nil, types.ErrUnknownMsg
	}
	switch {
	case msg.Wasm.Execute != nil:
		m := msg.Wasm.Execute
		return h.keeper.ExecuteContract(ctx, sender, m.Funds, m.ContractAddr, m.Msg, trace)
	case msg.Wasm.Instantiate != nil:
		m := msg.Wasm.Instantiate
		_, rsp, err := h.keeper.instantiate(ctx, sender, m.Funds, m.CodeID, m.Msg, m.Label, m.Admin, trace)
		return rsp, err
	case msg.Wasm.UpdateAdmin != nil:
		m := msg.Wasm.UpdateAdmin
		if err := h.keeper.setContractAdmin(m.ContractAddr, sender, m.Admin); err != nil {
			return nil, err
		}
		return &types.AppResponse{}, nil
	case msg.Wasm.ClearAdmin != nil:
		m := msg.Wasm.ClearAdmin
		if err := h.keeper.setContractAdmin(m.ContractAddr, sender, ""); err != nil {
			return nil, err
		}
		return &types.AppResponse{}, nil
	default:
		return nil, errors.Wrap(types.ErrUnknownMsg, "unknown variant of Wasm")
	}
}

// BankMsgHandler handles the bank variants of a cosmos message.
type BankMsgHandler struct {
	bank CoinTransferrer
}

// NewBankMsgHandler constructor
func NewBankMsgHandler(bank CoinTransferrer) BankMsgHandler {
	return BankMsgHandler{bank: bank}
}

// DispatchMsg moves coins out of the sending contract's account. Bank
// operations emit no events of their own.
func (h BankMsgHandler) DispatchMsg(_ context.Context, sender string, msg wasmvmtypes.CosmosMsg, _ *[]TraceEntry) (*types.AppResponse, error) {
	if msg.Bank == nil {
		return nil, types.ErrUnknownMsg
	}
	switch {
	case msg.Bank.Send != nil:
		m := msg.Bank.Send
		if err := h.bank.TransferCoins(sender, m.ToAddress, m.Amount); err != nil {
			return nil, err
		}
		return &types.AppResponse{}, nil
	case msg.Bank.Burn != nil:
		m := msg.Bank.Burn
		if err := h.bank.Burn(sender, m.Amount); err != nil {
			return nil, err
		}
		return &types.AppResponse{}, nil
	default:
		return nil, errors.Wrap(types.ErrUnknownMsg, "unknown variant of Bank")
	}
}
