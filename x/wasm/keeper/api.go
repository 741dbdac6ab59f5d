package keeper

import (
	"github.com/pkg/errors"

	"github.com/CosmWasm/wasmsim/x/wasm/types"
)

// NewBech32API returns the address API an engine backend is wired with. All
// conversions use the chain's configured human-readable prefix.
func NewBech32API(hrp string) types.GoAPI {
	return types.GoAPI{
		HumanizeAddress: func(canon []byte) (string, error) {
			if len(canon) == 0 {
				return "", errors.Wrap(types.ErrEmpty, "canonical address")
			}
			return EncodeBech32(hrp, canon)
		},
		CanonicalizeAddress: func(human string) ([]byte, error) {
			gotHRP, bz, err := DecodeBech32(human)
			if err != nil {
				return nil, err
			}
			if gotHRP != hrp {
				return nil, errors.Wrapf(types.ErrInvalid, "prefix %q, expected %q", gotHRP, hrp)
			}
			return bz, nil
		},
		ValidateAddress: func(human string) error {
			gotHRP, _, err := DecodeBech32(human)
			if err != nil {
				return err
			}
			if gotHRP != hrp {
				return errors.Wrapf(types.ErrInvalid, "prefix %q, expected %q", gotHRP, hrp)
			}
			return nil
		},
	}
}
