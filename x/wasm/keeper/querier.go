package keeper

import (
	"context"
	"encoding/json"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	"github.com/pkg/errors"

	"github.com/CosmWasm/wasmsim/x/wasm/types"
)

// QueryHandler is the querier every engine backend is wired with. It routes
// query callouts from running contracts to the configured plugins.
type QueryHandler struct {
	ctx     context.Context
	plugins QueryPlugins
}

var _ types.Querier = QueryHandler{}

func (k *Keeper) newQueryHandler() QueryHandler {
	return QueryHandler{ctx: context.Background(), plugins: k.queryPlugins}
}

// Query routes the non-nil variant of the request. Unknown variants fail.
func (q QueryHandler) Query(request wasmvmtypes.QueryRequest) ([]byte, error) {
	switch {
	case request.Bank != nil:
		return q.plugins.Bank(q.ctx, request.Bank)
	case request.Custom != nil:
		return q.plugins.Custom(q.ctx, request.Custom)
	case request.Wasm != nil:
		return q.plugins.Wasm(q.ctx, request.Wasm)
	}
	return nil, errors.Wrap(types.ErrUnknownQuery, "variant")
}

// QueryPlugins is an extension point for the query backends available to
// contracts.
type QueryPlugins struct {
	Bank   func(ctx context.Context, request *wasmvmtypes.BankQuery) ([]byte, error)
	Custom func(ctx context.Context, request json.RawMessage) ([]byte, error)
	Wasm   func(ctx context.Context, request *wasmvmtypes.WasmQuery) ([]byte, error)
}

// DefaultQueryPlugins returns the plugins the keeper starts with.
func DefaultQueryPlugins(bank BankKeeper, wasm *Keeper) QueryPlugins {
	return QueryPlugins{
		Bank:   BankQuerier(bank),
		Custom: NoCustomQuerier,
		Wasm:   WasmQuerier(wasm),
	}
}

// Merge returns a copy with the non-nil fields of o taking precedence.
func (e QueryPlugins) Merge(o *QueryPlugins) QueryPlugins {
	if o == nil {
		return e
	}
	if o.Bank != nil {
		e.Bank = o.Bank
	}
	if o.Custom != nil {
		e.Custom = o.Custom
	}
	if o.Wasm != nil {
		e.Wasm = o.Wasm
	}
	return e
}

// BankQuerier answers balance queries from the bank keeper.
func BankQuerier(bank BankKeeper) func(ctx context.Context, request *wasmvmtypes.BankQuery) ([]byte, error) {
	return func(_ context.Context, request *wasmvmtypes.BankQuery) ([]byte, error) {
		switch {
		case request.Balance != nil:
			coin := bank.GetBalance(request.Balance.Address, request.Balance.Denom)
			return json.Marshal(wasmvmtypes.BalanceResponse{Amount: coin})
		case request.AllBalances != nil:
			coins := bank.GetAllBalances(request.AllBalances.Address)
			return json.Marshal(wasmvmtypes.AllBalancesResponse{Amount: wasmvmtypes.Array[wasmvmtypes.Coin](coins)})
		}
		return nil, errors.Wrap(types.ErrUnknownQuery, "unknown variant of Bank")
	}
}

// NoCustomQuerier rejects custom queries. Replace it via WithQueryPlugins.
func NoCustomQuerier(_ context.Context, _ json.RawMessage) ([]byte, error) {
	return nil, errors.Wrap(types.ErrUnknownQuery, "custom")
}

// WasmQuerier routes wasm queries back into the engine.
func WasmQuerier(k *Keeper) func(ctx context.Context, request *wasmvmtypes.WasmQuery) ([]byte, error) {
	return k.HandleQuery
}

// HandleQuery is the router entry for wasm queries.
func (k *Keeper) HandleQuery(ctx context.Context, req *wasmvmtypes.WasmQuery) ([]byte, error) {
	switch {
	case req.Smart != nil:
		return k.QuerySmart(ctx, req.Smart.ContractAddr, req.Smart.Msg)
	case req.Raw != nil:
		return k.QueryRaw(req.Raw.ContractAddr, req.Raw.Key)
	case req.ContractInfo != nil:
		info := k.GetContractInfo(req.ContractInfo.ContractAddr)
		if info == nil {
			return nil, errors.Wrapf(types.ErrNoSuchContract, "address %s", req.ContractInfo.ContractAddr)
		}
		res := wasmvmtypes.ContractInfoResponse{
			CodeID:  info.CodeID,
			Creator: info.Creator,
			Admin:   info.Admin,
			// always reported as pinned; the LRU VM cache may still evict the
			// engine, which is safe because storage is re-seeded on every call
			Pinned: true,
		}
		return json.Marshal(res)
	}
	return nil, errors.Wrap(types.ErrUnknownQuery, "unknown variant of Wasm")
}
