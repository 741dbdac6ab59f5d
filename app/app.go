// Package app wires the simulator: one chain store, the bank and wasm
// keepers, the message router and the block context. An App is the single
// entry point users drive; it executes one top-level message at a time.
package app

import (
	"context"
	"time"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	"go.uber.org/zap"

	"github.com/CosmWasm/wasmsim/store"
	bankkeeper "github.com/CosmWasm/wasmsim/x/bank/keeper"
	wasmkeeper "github.com/CosmWasm/wasmsim/x/wasm/keeper"
	wasmtypes "github.com/CosmWasm/wasmsim/x/wasm/types"
)

// Config carries the chain identity and the initial block context.
type Config struct {
	ChainID      string
	Bech32Prefix string
	BlockHeight  uint64
	BlockTime    time.Time
}

// DefaultConfig returns a config suitable for tests and local tooling.
func DefaultConfig() Config {
	return Config{
		ChainID:      "wasmsim-1",
		Bech32Prefix: "cosmwasm",
		BlockHeight:  1,
		BlockTime:    time.Unix(1_600_000_000, 0).UTC(),
	}
}

// App is a single-process chain: a value store with a host-advanced block
// clock and the wasm execution engine on top. Not safe for concurrent use.
type App struct {
	chainID      string
	bech32Prefix string
	height       uint64
	blockTime    time.Time

	Store      *store.Store
	WasmKeeper *wasmkeeper.Keeper
	BankKeeper *bankkeeper.Keeper
}

// Option is an extension point to instantiate the app with non default values
type Option func(*appSetup)

type appSetup struct {
	logger      *zap.Logger
	wasmOpts    []wasmkeeper.Option
	extraRoutes []wasmkeeper.Messenger
}

// WithLogger sets the logger shared by all keepers.
func WithLogger(l *zap.Logger) Option {
	return func(s *appSetup) { s.logger = l }
}

// WithWasmOptions forwards options to the wasm keeper.
func WithWasmOptions(opts ...wasmkeeper.Option) Option {
	return func(s *appSetup) { s.wasmOpts = append(s.wasmOpts, opts...) }
}

// WithMessageHandlers appends custom message handlers to the router chain.
func WithMessageHandlers(handlers ...wasmkeeper.Messenger) Option {
	return func(s *appSetup) { s.extraRoutes = append(s.extraRoutes, handlers...) }
}

// New builds an app with an empty chain state.
func New(cfg Config, vmFactory wasmtypes.VMFactory, opts ...Option) *App {
	setup := &appSetup{logger: zap.NewNop()}
	for _, o := range opts {
		o(setup)
	}

	a := &App{
		chainID:      cfg.ChainID,
		bech32Prefix: cfg.Bech32Prefix,
		height:       cfg.BlockHeight,
		blockTime:    cfg.BlockTime,
		Store:        store.NewStore(),
	}
	a.BankKeeper = bankkeeper.NewKeeper(a.Store, bankkeeper.WithLogger(setup.logger))

	wasmOpts := append([]wasmkeeper.Option{wasmkeeper.WithLogger(setup.logger)}, setup.wasmOpts...)
	a.WasmKeeper = wasmkeeper.NewKeeper(a.Store, vmFactory, a.BankKeeper, a.BlockInfo, cfg.Bech32Prefix, wasmOpts...)

	handlers := append([]wasmkeeper.Messenger{
		wasmkeeper.NewWasmMsgHandler(a.WasmKeeper),
		wasmkeeper.NewBankMsgHandler(a.BankKeeper),
	}, setup.extraRoutes...)
	a.WasmKeeper.SetMessenger(wasmkeeper.NewMessageHandlerChain(handlers[0], handlers[1:]...))
	return a
}

// BlockInfo returns the current block context injected into contract calls.
func (a *App) BlockInfo() wasmvmtypes.BlockInfo {
	return wasmvmtypes.BlockInfo{
		Height:  a.height,
		Time:    wasmvmtypes.Uint64(a.blockTime.UnixNano()),
		ChainID: a.chainID,
	}
}

// Bech32Prefix returns the configured address prefix.
func (a *App) Bech32Prefix() string { return a.bech32Prefix }

// SetBlock moves the block clock to an absolute position. Height and time
// must not go backwards.
func (a *App) SetBlock(height uint64, blockTime time.Time) {
	a.height = height
	a.blockTime = blockTime
}

// AdvanceBlock moves to the next block, advancing time by the given duration.
func (a *App) AdvanceBlock(d time.Duration) {
	a.height++
	a.blockTime = a.blockTime.Add(d)
}

// Create uploads a contract bytecode and returns its code id.
func (a *App) Create(creator string, wasmCode []byte) (uint64, error) {
	return a.WasmKeeper.Create(creator, wasmCode)
}

// InstantiateContract creates and initializes a new contract instance.
func (a *App) InstantiateContract(ctx context.Context, sender string, funds []wasmvmtypes.Coin, codeID uint64, initMsg []byte, trace *[]wasmkeeper.TraceEntry) (string, *wasmtypes.AppResponse, error) {
	return a.WasmKeeper.InstantiateContract(ctx, sender, funds, codeID, initMsg, trace)
}

// ExecuteContract runs a message against a contract instance.
func (a *App) ExecuteContract(ctx context.Context, sender string, funds []wasmvmtypes.Coin, contractAddr string, msg []byte, trace *[]wasmkeeper.TraceEntry) (*wasmtypes.AppResponse, error) {
	return a.WasmKeeper.ExecuteContract(ctx, sender, funds, contractAddr, msg, trace)
}

// QuerySmart runs a read-only smart query against a contract instance.
func (a *App) QuerySmart(ctx context.Context, contractAddr string, msg []byte) ([]byte, error) {
	return a.WasmKeeper.QuerySmart(ctx, contractAddr, msg)
}

// HandleMsg routes an arbitrary cosmos message, the way a contract
// submessage would travel.
func (a *App) HandleMsg(ctx context.Context, sender string, msg wasmvmtypes.CosmosMsg, trace *[]wasmkeeper.TraceEntry) (*wasmtypes.AppResponse, error) {
	return a.WasmKeeper.HandleMsg(ctx, sender, msg, trace)
}

// HandleQuery routes a wasm query: smart, raw or contract_info.
func (a *App) HandleQuery(ctx context.Context, req *wasmvmtypes.WasmQuery) ([]byte, error) {
	return a.WasmKeeper.HandleQuery(ctx, req)
}
