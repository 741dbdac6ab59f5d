package keeper

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/CosmWasm/wasmsim/x/wasm/types"
)

// Option is an extension point to instantiate the keeper with non default values
type Option interface {
	apply(*Keeper)
}

type optsFn func(*Keeper)

func (f optsFn) apply(k *Keeper) { f(k) }

// WithLogger sets a logger. Defaults to a nop logger.
func WithLogger(l *zap.Logger) Option {
	return optsFn(func(k *Keeper) { k.logger = l })
}

// WithVMCacheSize bounds the number of live engine instances. Evicted
// contracts get a fresh engine rebuilt from the stored code on next use.
func WithVMCacheSize(size int) Option {
	return optsFn(func(k *Keeper) {
		cache, err := lru.New[string, types.WasmEngine](size)
		if err != nil {
			panic(err)
		}
		k.vmCache = cache
	})
}

// WithMessageHandler sets the router the engine re-enters for submessages.
func WithMessageHandler(m Messenger) Option {
	return optsFn(func(k *Keeper) { k.messenger = m })
}

// WithQueryPlugins overrides the default query backends with the non-nil
// fields of the given plugins.
func WithQueryPlugins(p *QueryPlugins) Option {
	return optsFn(func(k *Keeper) { k.queryPlugins = k.queryPlugins.Merge(p) })
}
