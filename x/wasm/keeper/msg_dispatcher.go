package keeper

import (
	"context"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	"github.com/pkg/errors"

	"github.com/CosmWasm/wasmsim/store"
	"github.com/CosmWasm/wasmsim/x/wasm/types"
)

// Messenger is an extension point for custom message handling. The engine
// re-enters itself through a Messenger for every submessage a contract emits.
type Messenger interface {
	// DispatchMsg dispatches one message emitted by the given contract.
	DispatchMsg(ctx context.Context, contractAddr string, msg wasmvmtypes.CosmosMsg, trace *[]TraceEntry) (*types.AppResponse, error)
}

// replyer is a subset of keeper that can handle replies to submessages
type replyer interface {
	reply(ctx context.Context, contractAddr string, reply wasmvmtypes.Reply, trace *[]TraceEntry) (*types.AppResponse, error)
}

// MessageDispatcher coordinates submessage dispatch, reply callbacks and the
// transactional revert around a contract response.
type MessageDispatcher struct {
	messenger Messenger
	keeper    replyer
	store     *store.Store
}

// NewMessageDispatcher constructor
func NewMessageDispatcher(messenger Messenger, keeper replyer, store *store.Store) *MessageDispatcher {
	return &MessageDispatcher{messenger: messenger, keeper: keeper, store: store}
}

// DispatchSubmessages processes the submessages of one contract response in
// emission order and folds their outcomes into rsp: events append, a non-nil
// data payload replaces the previous one. Any failure reverts the chain store
// to its state at entry — including the effects of earlier, successful
// siblings — and is returned to the caller.
func (d MessageDispatcher) DispatchSubmessages(ctx context.Context, contractAddr string, msgs []wasmvmtypes.SubMsg, rsp *types.AppResponse, trace *[]TraceEntry) error {
	snapshot := d.store.Snapshot()
	for _, msg := range msgs {
		subRsp, err := d.dispatchSubmsg(ctx, contractAddr, msg, trace)
		if err != nil {
			d.store.Restore(snapshot)
			return err
		}
		rsp.Events = append(rsp.Events, subRsp.Events...)
		if subRsp.Data != nil {
			rsp.Data = subRsp.Data
		}
	}
	return nil
}

// dispatchSubmsg routes one submessage and applies its reply-on policy.
func (d MessageDispatcher) dispatchSubmsg(ctx context.Context, contractAddr string, msg wasmvmtypes.SubMsg, trace *[]TraceEntry) (*types.AppResponse, error) {
	switch msg.ReplyOn {
	case wasmvmtypes.ReplySuccess, wasmvmtypes.ReplyError, wasmvmtypes.ReplyAlways, wasmvmtypes.ReplyNever:
	default:
		return nil, errors.Wrap(types.ErrInvalid, "replyOn value")
	}

	rsp, err := d.messenger.DispatchMsg(ctx, contractAddr, msg.Msg, trace)

	// A failed submessage reverts inside the nested call that failed; here we
	// only decide whether the emitting contract gets a callback.
	if (msg.ReplyOn == wasmvmtypes.ReplySuccess || msg.ReplyOn == wasmvmtypes.ReplyNever) && err != nil {
		return nil, err
	}
	if msg.ReplyOn == wasmvmtypes.ReplyNever || (msg.ReplyOn == wasmvmtypes.ReplyError && err == nil) {
		// no callback: the events survive into the parent, the data does not
		return &types.AppResponse{Events: rsp.Events}, nil
	}

	var result wasmvmtypes.SubMsgResult
	if err == nil {
		result = wasmvmtypes.SubMsgResult{
			Ok: &wasmvmtypes.SubMsgResponse{
				Events: rsp.Events,
				Data:   rsp.Data,
			},
		}
	} else {
		result = wasmvmtypes.SubMsgResult{
			Err: err.Error(),
		}
	}

	reply := wasmvmtypes.Reply{
		ID:      msg.ID,
		Result:  result,
		Payload: msg.Payload,
	}
	replyRsp, replyErr := d.keeper.reply(ctx, contractAddr, reply, trace)
	if replyErr != nil {
		// a failing reply always propagates, even over an inner success
		return nil, replyErr
	}
	if err != nil {
		// the reply handled the failure: the parent sees only the reply's
		// outcome, the failed submessage's events and error are gone
		return replyRsp, nil
	}
	out := &types.AppResponse{
		Events: append(rsp.Events, replyRsp.Events...),
		Data:   rsp.Data,
	}
	if replyRsp.Data != nil {
		out.Data = replyRsp.Data
	}
	return out, nil
}
