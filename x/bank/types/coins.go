package types

import (
	"math/big"
	"sort"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidCoins error for malformed coin inputs
	ErrInvalidCoins = errors.New("invalid coins")

	// ErrInsufficientFunds error when a balance cannot cover a transfer
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Coins is a normalized coin set: sorted by denom, unique denoms, positive
// integer amounts. The zero value is a valid empty set.
type Coins []wasmvmtypes.Coin

// NormalizeCoins validates the given coins and returns them as a normalized
// set. Zero amounts are dropped, equal denoms are merged.
func NormalizeCoins(coins []wasmvmtypes.Coin) (Coins, error) {
	byDenom := make(map[string]*big.Int, len(coins))
	for _, c := range coins {
		if c.Denom == "" {
			return nil, errors.Wrap(ErrInvalidCoins, "empty denom")
		}
		amt, err := parseAmount(c.Amount)
		if err != nil {
			return nil, err
		}
		if prev, ok := byDenom[c.Denom]; ok {
			prev.Add(prev, amt)
		} else {
			byDenom[c.Denom] = amt
		}
	}
	return fromDenomMap(byDenom), nil
}

// Add returns the sum of both coin sets.
func (c Coins) Add(other Coins) Coins {
	m := c.denomMap()
	for _, o := range other {
		amt, _ := parseAmount(o.Amount)
		if prev, ok := m[o.Denom]; ok {
			prev.Add(prev, amt)
		} else {
			m[o.Denom] = amt
		}
	}
	return fromDenomMap(m)
}

// Sub returns the coin set reduced by other. Fails with ErrInsufficientFunds
// when any denom would turn negative.
func (c Coins) Sub(other Coins) (Coins, error) {
	m := c.denomMap()
	for _, o := range other {
		amt, _ := parseAmount(o.Amount)
		prev, ok := m[o.Denom]
		if !ok {
			prev = big.NewInt(0)
			m[o.Denom] = prev
		}
		prev.Sub(prev, amt)
		if prev.Sign() < 0 {
			return nil, errors.Wrapf(ErrInsufficientFunds, "%s%s", prev.String(), o.Denom)
		}
	}
	return fromDenomMap(m), nil
}

// AmountOf returns the amount of the given denom, zero when absent.
func (c Coins) AmountOf(denom string) *big.Int {
	for _, x := range c {
		if x.Denom == denom {
			amt, _ := parseAmount(x.Amount)
			return amt
		}
	}
	return big.NewInt(0)
}

// IsZero returns true for the empty set.
func (c Coins) IsZero() bool { return len(c) == 0 }

func (c Coins) denomMap() map[string]*big.Int {
	m := make(map[string]*big.Int, len(c))
	for _, x := range c {
		amt, _ := parseAmount(x.Amount)
		m[x.Denom] = amt
	}
	return m
}

func fromDenomMap(m map[string]*big.Int) Coins {
	res := make(Coins, 0, len(m))
	for denom, amt := range m {
		if amt.Sign() == 0 {
			continue
		}
		res = append(res, wasmvmtypes.Coin{Denom: denom, Amount: amt.String()})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Denom < res[j].Denom })
	return res
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	amt, ok := new(big.Int).SetString(s, 10)
	if !ok || amt.Sign() < 0 {
		return nil, errors.Wrapf(ErrInvalidCoins, "amount: %q", s)
	}
	return amt, nil
}
