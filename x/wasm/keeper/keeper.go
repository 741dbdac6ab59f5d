package keeper

import (
	"context"
	"encoding/json"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/CosmWasm/wasmsim/store"
	banktypes "github.com/CosmWasm/wasmsim/x/bank/types"
	"github.com/CosmWasm/wasmsim/x/wasm/types"
)

// DefaultVMCacheSize bounds the number of live engine instances. Eviction is
// semantically free: the chain store holds the authoritative contract
// storage, and an engine is re-seeded from it on every call.
const DefaultVMCacheSize = 100

// BankKeeper is the bank surface the wasm engine depends on: coin movement
// for funds and bank messages, balance views for bank queries.
type BankKeeper interface {
	TransferCoins(fromAddr, toAddr string, amt []wasmvmtypes.Coin) error
	Burn(fromAddr string, amt []wasmvmtypes.Coin) error
	GetAllBalances(addr string) banktypes.Coins
	GetBalance(addr, denom string) wasmvmtypes.Coin
}

// Keeper is the contract execution engine: it owns code and instance
// bookkeeping, drives the sandboxed VM through its entry points, dispatches
// submessages and records execution traces. It executes one top-level message
// at a time against the shared chain store; there is no internal locking.
type Keeper struct {
	store        *store.Store
	bank         BankKeeper
	vmFactory    types.VMFactory
	vmCache      *lru.Cache[string, types.WasmEngine]
	messenger    Messenger
	queryPlugins QueryPlugins
	blockFn      func() wasmvmtypes.BlockInfo
	bech32Prefix string
	logger       *zap.Logger
}

// NewKeeper constructor. The message handler defaults to an empty chain that
// rejects every submessage; wire a router with SetMessenger or the
// WithMessageHandler option.
func NewKeeper(
	s *store.Store,
	vmFactory types.VMFactory,
	bank BankKeeper,
	blockFn func() wasmvmtypes.BlockInfo,
	bech32Prefix string,
	opts ...Option,
) *Keeper {
	cache, err := lru.New[string, types.WasmEngine](DefaultVMCacheSize)
	if err != nil {
		panic(err)
	}
	k := &Keeper{
		store:        s,
		bank:         bank,
		vmFactory:    vmFactory,
		vmCache:      cache,
		messenger:    MessageHandlerChain{},
		blockFn:      blockFn,
		bech32Prefix: bech32Prefix,
		logger:       zap.NewNop(),
	}
	k.queryPlugins = DefaultQueryPlugins(bank, k)
	for _, o := range opts {
		o.apply(k)
	}
	return k
}

// SetMessenger wires the message router the engine re-enters for submessages.
func (k *Keeper) SetMessenger(m Messenger) { k.messenger = m }

// Create uploads a contract bytecode and returns its code id. The bytecode is
// not validated here; the VM loader rejects broken code when the first
// instance is built.
func (k *Keeper) Create(creator string, wasmCode []byte) (uint64, error) {
	if creator == "" {
		return 0, errors.Wrap(types.ErrEmpty, "creator")
	}
	state := k.state()
	codeID := state.LastCodeID + 1
	state.Codes = state.Codes.Set(codeID, types.NewCodeInfo(creator, wasmCode))
	state.LastCodeID = codeID
	k.setState(state)
	k.logger.Debug("stored new contract code", zap.Uint64("code_id", codeID))
	return codeID, nil
}

// registerContractInstance derives the next deterministic contract address,
// writes the initial contract metadata and an empty storage map, and bumps
// the instance sequence.
func (k *Keeper) registerContractInstance(sender string, codeID uint64, label, admin string) (string, error) {
	state := k.state()
	instanceID := state.LastInstanceID + 1
	contractAddr, err := EncodeBech32(k.bech32Prefix, BuildContractAddressClassic(codeID, instanceID))
	if err != nil {
		return "", err
	}
	if _, exists := state.Contracts.Get(contractAddr); exists {
		return "", errors.Wrapf(types.ErrDuplicate, "instance %s", contractAddr)
	}
	state.Contracts = state.Contracts.Set(contractAddr, types.NewContractInfo(codeID, sender, admin, label, k.blockFn().Height))
	state.ContractStorage = state.ContractStorage.Set(contractAddr, types.NewContractStorage())
	state.LastInstanceID = instanceID
	k.setState(state)
	return contractAddr, nil
}

// InstantiateContract creates a new instance of the given code and calls its
// instantiate entry point. On any failure the chain store is left exactly as
// it was before the call: no contract metadata, no storage, counters
// unchanged.
func (k *Keeper) InstantiateContract(ctx context.Context, sender string, funds []wasmvmtypes.Coin, codeID uint64, initMsg []byte, trace *[]TraceEntry) (string, *types.AppResponse, error) {
	return k.instantiate(ctx, sender, funds, codeID, initMsg, "", "", trace)
}

func (k *Keeper) instantiate(ctx context.Context, sender string, funds []wasmvmtypes.Coin, codeID uint64, initMsg []byte, label, admin string, trace *[]TraceEntry) (string, *types.AppResponse, error) {
	if sender == "" {
		return "", nil, errors.Wrap(types.ErrEmpty, "sender")
	}
	snapshot := k.store.Snapshot()
	if _, found := k.state().Codes.Get(codeID); !found {
		return "", nil, errors.Wrapf(types.ErrNoSuchCode, "code id %d", codeID)
	}
	contractAddr, err := k.registerContractInstance(sender, codeID, label, admin)
	if err != nil {
		return "", nil, err
	}
	k.logger.Debug("instantiating contract",
		zap.Uint64("code_id", codeID),
		zap.String("contract_address", contractAddr),
	)

	env := types.NewEnv(k.blockFn(), contractAddr)
	info := types.NewInfo(sender, funds)

	if len(funds) != 0 {
		if err := k.bank.TransferCoins(sender, contractAddr, funds); err != nil {
			k.store.Restore(snapshot)
			return "", nil, err
		}
	}

	vm, err := k.buildVM(ctx, contractAddr)
	if err != nil {
		k.store.Restore(snapshot)
		return "", nil, err
	}
	vmStore := types.NewStorageAdapter(k.contractStorage(contractAddr))
	vm.ResetDebugInfo()
	res, err := vm.Instantiate(env, info, initMsg, vmStore)
	logs := vm.DebugLogs()
	if err != nil {
		k.store.Restore(snapshot)
		k.vmCache.Remove(contractAddr)
		return "", nil, errors.Wrap(types.ErrVMError, err.Error())
	}
	k.setContractStorage(contractAddr, vmStore.Current())

	entry := TraceEntry{
		Kind:            TraceInstantiate,
		ContractAddress: contractAddr,
		Env:             env,
		Info:            &info,
		Msg:             json.RawMessage(initMsg),
		Logs:            logs,
	}
	if res.Err != "" {
		// the contract rejected the call: undo the registration and every
		// state write, surface the raw error string
		k.store.Restore(snapshot)
		k.vmCache.Remove(contractAddr)
		entry.Err = res.Err
		entry.StoreSnapshot = k.store.Snapshot()
		appendTrace(trace, entry)
		return contractAddr, nil, errors.New(res.Err)
	}

	rsp := buildAppResponse(newInstantiateEvent(contractAddr, codeID), contractAddr, res.Ok)
	var subTrace []TraceEntry
	err = k.dispatcher().DispatchSubmessages(ctx, contractAddr, res.Ok.Messages, rsp, &subTrace)
	entry.Response = res.Ok
	entry.Trace = subTrace
	if err != nil {
		k.store.Restore(snapshot)
		k.vmCache.Remove(contractAddr)
		entry.Err = err.Error()
		entry.StoreSnapshot = k.store.Snapshot()
		appendTrace(trace, entry)
		return contractAddr, nil, err
	}
	entry.Result = rsp
	entry.StoreSnapshot = k.store.Snapshot()
	appendTrace(trace, entry)
	return contractAddr, rsp, nil
}

// ExecuteContract calls the execute entry point of a registered contract. On
// failure every state write of the call and its submessages is reverted.
func (k *Keeper) ExecuteContract(ctx context.Context, sender string, funds []wasmvmtypes.Coin, contractAddr string, msg []byte, trace *[]TraceEntry) (*types.AppResponse, error) {
	if sender == "" {
		return nil, errors.Wrap(types.ErrEmpty, "sender")
	}
	snapshot := k.store.Snapshot()
	if !k.HasContractInfo(contractAddr) {
		return nil, errors.Wrapf(types.ErrNoSuchContract, "address %s", contractAddr)
	}
	k.logger.Debug("executing contract", zap.String("contract_address", contractAddr))

	env := types.NewEnv(k.blockFn(), contractAddr)
	info := types.NewInfo(sender, funds)

	if len(funds) != 0 {
		if err := k.bank.TransferCoins(sender, contractAddr, funds); err != nil {
			return nil, err
		}
	}

	vm, err := k.buildVM(ctx, contractAddr)
	if err != nil {
		k.store.Restore(snapshot)
		return nil, err
	}
	vmStore := types.NewStorageAdapter(k.contractStorage(contractAddr))
	vm.ResetDebugInfo()
	res, err := vm.Execute(env, info, msg, vmStore)
	logs := vm.DebugLogs()
	if err != nil {
		k.store.Restore(snapshot)
		return nil, errors.Wrap(types.ErrVMError, err.Error())
	}
	k.setContractStorage(contractAddr, vmStore.Current())

	entry := TraceEntry{
		Kind:            TraceExecute,
		ContractAddress: contractAddr,
		Env:             env,
		Info:            &info,
		Msg:             json.RawMessage(msg),
		Logs:            logs,
	}
	if res.Err != "" {
		k.store.Restore(snapshot)
		entry.Err = res.Err
		entry.StoreSnapshot = k.store.Snapshot()
		appendTrace(trace, entry)
		return nil, errors.New(res.Err)
	}

	rsp := buildAppResponse(newExecuteEvent(contractAddr), contractAddr, res.Ok)
	var subTrace []TraceEntry
	err = k.dispatcher().DispatchSubmessages(ctx, contractAddr, res.Ok.Messages, rsp, &subTrace)
	entry.Response = res.Ok
	entry.Trace = subTrace
	if err != nil {
		k.store.Restore(snapshot)
		entry.Err = err.Error()
		entry.StoreSnapshot = k.store.Snapshot()
		appendTrace(trace, entry)
		return nil, err
	}
	entry.Result = rsp
	entry.StoreSnapshot = k.store.Snapshot()
	appendTrace(trace, entry)
	return rsp, nil
}

// reply is only called from the message dispatcher after a submessage
// settled. Same transactional shape as execute.
func (k *Keeper) reply(ctx context.Context, contractAddr string, reply wasmvmtypes.Reply, trace *[]TraceEntry) (*types.AppResponse, error) {
	snapshot := k.store.Snapshot()
	if !k.HasContractInfo(contractAddr) {
		return nil, errors.Wrapf(types.ErrNoSuchContract, "address %s", contractAddr)
	}
	k.logger.Debug("calling reply", zap.String("contract_address", contractAddr), zap.Uint64("id", reply.ID))

	env := types.NewEnv(k.blockFn(), contractAddr)

	vm, err := k.buildVM(ctx, contractAddr)
	if err != nil {
		k.store.Restore(snapshot)
		return nil, err
	}
	vmStore := types.NewStorageAdapter(k.contractStorage(contractAddr))
	vm.ResetDebugInfo()
	res, err := vm.Reply(env, reply, vmStore)
	logs := vm.DebugLogs()
	if err != nil {
		k.store.Restore(snapshot)
		return nil, errors.Wrap(types.ErrVMError, err.Error())
	}
	k.setContractStorage(contractAddr, vmStore.Current())

	replyMsg, _ := json.Marshal(reply)
	entry := TraceEntry{
		Kind:            TraceReply,
		ContractAddress: contractAddr,
		Env:             env,
		Msg:             replyMsg,
		Logs:            logs,
	}
	if res.Err != "" {
		k.store.Restore(snapshot)
		entry.Err = res.Err
		entry.StoreSnapshot = k.store.Snapshot()
		appendTrace(trace, entry)
		return nil, errors.New(res.Err)
	}

	rsp := buildAppResponse(newReplyEvent(contractAddr, reply), contractAddr, res.Ok)
	var subTrace []TraceEntry
	err = k.dispatcher().DispatchSubmessages(ctx, contractAddr, res.Ok.Messages, rsp, &subTrace)
	entry.Response = res.Ok
	entry.Trace = subTrace
	if err != nil {
		k.store.Restore(snapshot)
		entry.Err = err.Error()
		entry.StoreSnapshot = k.store.Snapshot()
		appendTrace(trace, entry)
		return nil, err
	}
	entry.Result = rsp
	entry.StoreSnapshot = k.store.Snapshot()
	appendTrace(trace, entry)
	return rsp, nil
}

// QuerySmart runs a read-only query against the contract. No snapshot is
// taken and nothing is written back: storage writes an engine makes during a
// query are discarded with the adapter.
func (k *Keeper) QuerySmart(ctx context.Context, contractAddr string, req []byte) ([]byte, error) {
	if !k.HasContractInfo(contractAddr) {
		return nil, errors.Wrapf(types.ErrNoSuchContract, "address %s", contractAddr)
	}
	vm, err := k.buildVM(ctx, contractAddr)
	if err != nil {
		return nil, err
	}
	env := types.NewEnv(k.blockFn(), contractAddr)
	res, err := vm.Query(env, req, types.NewStorageAdapter(k.contractStorage(contractAddr)))
	if err != nil {
		return nil, errors.Wrap(types.ErrVMError, err.Error())
	}
	if res.Err != "" {
		return nil, errors.New(res.Err)
	}
	return res.Ok, nil
}

// QueryRaw reads one key of a contract's storage directly.
func (k *Keeper) QueryRaw(contractAddr string, key []byte) ([]byte, error) {
	storage, found := k.state().ContractStorage.Get(contractAddr)
	if !found {
		return nil, errors.Errorf("Contract %s not found", contractAddr)
	}
	v, ok := storage.Get(string(key))
	if !ok {
		return nil, errors.Errorf("Key %s not found", string(key))
	}
	return []byte(v), nil
}

// HandleMsg is the router entry for wasm messages: contracts and hosts enter
// the engine through it.
func (k *Keeper) HandleMsg(ctx context.Context, sender string, msg wasmvmtypes.CosmosMsg, trace *[]TraceEntry) (*types.AppResponse, error) {
	return k.messenger.DispatchMsg(ctx, sender, msg, trace)
}

// setContractAdmin updates the admin of a contract. Only the current admin
// may change it.
func (k *Keeper) setContractAdmin(contractAddr, caller, newAdmin string) error {
	info := k.GetContractInfo(contractAddr)
	if info == nil {
		return errors.Wrapf(types.ErrNoSuchContract, "address %s", contractAddr)
	}
	if info.Admin == "" || info.Admin != caller {
		return errors.Wrap(types.ErrUnauthorized, "can not modify contract")
	}
	info.Admin = newAdmin
	k.setContractInfo(contractAddr, *info)
	return nil
}

// buildVM returns the engine instance pinned for the contract address,
// constructing and caching one when absent. The engine's storage is working
// memory only and is re-seeded from the chain store on every call, so cache
// eviction never changes semantics.
func (k *Keeper) buildVM(ctx context.Context, contractAddr string) (types.WasmEngine, error) {
	if vm, ok := k.vmCache.Get(contractAddr); ok {
		return vm, nil
	}
	contractInfo, found := k.state().Contracts.Get(contractAddr)
	if !found {
		return nil, errors.Wrapf(types.ErrNoSuchContract, "address %s", contractAddr)
	}
	codeInfo, found := k.state().Codes.Get(contractInfo.CodeID)
	if !found {
		return nil, errors.Wrapf(types.ErrNoSuchCode, "code id %d", contractInfo.CodeID)
	}
	backend := types.Backend{
		API:     NewBech32API(k.bech32Prefix),
		Querier: k.newQueryHandler(),
	}
	vm := k.vmFactory(backend)
	if err := vm.Build(ctx, codeInfo.Code); err != nil {
		return nil, errors.Wrap(types.ErrCreateFailed, err.Error())
	}
	k.vmCache.Add(contractAddr, vm)
	return vm, nil
}

func (k *Keeper) dispatcher() *MessageDispatcher {
	return NewMessageDispatcher(k.messenger, k, k.store)
}

// Logger returns the keeper's logger.
func (k *Keeper) Logger() *zap.Logger { return k.logger }
