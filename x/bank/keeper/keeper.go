package keeper

import (
	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	"go.uber.org/zap"

	"github.com/CosmWasm/wasmsim/store"
	"github.com/CosmWasm/wasmsim/x/bank/types"
)

// Keeper moves coins between accounts. Balances live in the shared chain
// store, so bank effects revert together with wasm effects on snapshot
// restore.
type Keeper struct {
	store  *store.Store
	logger *zap.Logger
}

// Option is an extension point to instantiate the keeper with non default values
type Option func(*Keeper)

// WithLogger sets a logger. Defaults to a nop logger.
func WithLogger(l *zap.Logger) Option {
	return func(k *Keeper) { k.logger = l }
}

// NewKeeper constructor
func NewKeeper(s *store.Store, opts ...Option) *Keeper {
	k := &Keeper{store: s, logger: zap.NewNop()}
	for _, o := range opts {
		o(k)
	}
	return k
}

// GetAllBalances returns the full balance of an account.
func (k *Keeper) GetAllBalances(addr string) types.Coins {
	balances, ok := k.store.Root().Bank.Balances.Get(addr)
	if !ok {
		return nil
	}
	return balances
}

// GetBalance returns the balance of an account for one denom. The zero coin
// is returned for unknown accounts and denoms.
func (k *Keeper) GetBalance(addr, denom string) wasmvmtypes.Coin {
	amt := k.GetAllBalances(addr).AmountOf(denom)
	return wasmvmtypes.Coin{Denom: denom, Amount: amt.String()}
}

// SetBalance overwrites the balance of an account. Used for genesis and test
// seeding only; regular flows go through TransferCoins.
func (k *Keeper) SetBalance(addr string, coins []wasmvmtypes.Coin) error {
	normalized, err := types.NormalizeCoins(coins)
	if err != nil {
		return err
	}
	k.setBalances(addr, normalized)
	return nil
}

// TransferCoins sends the coin amounts from the source to the destination
// account. Fails without side effects when the source cannot cover them.
func (k *Keeper) TransferCoins(fromAddr, toAddr string, amt []wasmvmtypes.Coin) error {
	normalized, err := types.NormalizeCoins(amt)
	if err != nil {
		return err
	}
	if normalized.IsZero() {
		return nil
	}
	reduced, err := k.GetAllBalances(fromAddr).Sub(normalized)
	if err != nil {
		return err
	}
	k.setBalances(fromAddr, reduced)
	k.setBalances(toAddr, k.GetAllBalances(toAddr).Add(normalized))
	k.logger.Debug("transferred coins",
		zap.String("from", fromAddr),
		zap.String("to", toAddr),
	)
	return nil
}

// Burn destroys the coin amounts in the source account.
func (k *Keeper) Burn(fromAddr string, amt []wasmvmtypes.Coin) error {
	normalized, err := types.NormalizeCoins(amt)
	if err != nil {
		return err
	}
	reduced, err := k.GetAllBalances(fromAddr).Sub(normalized)
	if err != nil {
		return err
	}
	k.setBalances(fromAddr, reduced)
	return nil
}

func (k *Keeper) setBalances(addr string, coins types.Coins) {
	root := k.store.Root()
	if coins.IsZero() {
		root.Bank.Balances = root.Bank.Balances.Delete(addr)
	} else {
		root.Bank.Balances = root.Bank.Balances.Set(addr, coins)
	}
	k.store.SetRoot(root)
}
