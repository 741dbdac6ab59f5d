package keeper

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/cosmos/btcutil/bech32"
	"github.com/pkg/errors"

	"github.com/CosmWasm/wasmsim/x/wasm/types"
)

// BuildContractAddressClassic builds the deterministic address for a contract
// from the codeID + instanceID sequence. The construction is bit-exact with
// the wasm module address scheme: a module address over the big-endian
// concatenation of both ids, truncated to types.ContractAddrLen bytes.
func BuildContractAddressClassic(codeID, instanceID uint64) []byte {
	contractID := make([]byte, 16)
	binary.BigEndian.PutUint64(contractID[:8], codeID)
	binary.BigEndian.PutUint64(contractID[8:], instanceID)
	return moduleAddress(types.ModuleName, contractID)[:types.ContractAddrLen]
}

// moduleAddress derives an address owned by a named module:
// SHA256(SHA256("module") || name || 0x00 || key).
func moduleAddress(name string, key []byte) []byte {
	th := sha256.Sum256([]byte("module"))
	h := sha256.New()
	h.Write(th[:])
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write(key)
	return h.Sum(nil)
}

// EncodeBech32 encodes raw address bytes with the given human-readable prefix.
func EncodeBech32(hrp string, bz []byte) (string, error) {
	converted, err := bech32.ConvertBits(bz, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(err, "convert bits")
	}
	return bech32.Encode(hrp, converted)
}

// DecodeBech32 decodes a bech32 address into its prefix and raw bytes.
func DecodeBech32(addr string) (string, []byte, error) {
	hrp, data, err := bech32.DecodeNoLimit(addr)
	if err != nil {
		return "", nil, err
	}
	converted, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, errors.Wrap(err, "convert bits")
	}
	return hrp, converted, nil
}
