package keeper

import (
	"encoding/json"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	"github.com/CosmWasm/wasmsim/store"
	"github.com/CosmWasm/wasmsim/x/wasm/types"
)

// TraceKind tags a trace entry with the VM entry point it records.
type TraceKind string

const (
	TraceInstantiate TraceKind = "instantiate"
	TraceExecute     TraceKind = "execute"
	TraceReply       TraceKind = "reply"
)

// TraceEntry is one node of the hierarchical execution trace. Every
// instantiate, execute and reply invocation that gets a result from the
// contract appends exactly one entry to its caller's trace list; the
// submessages it triggered recurse into Trace. A call rejected before that
// (unknown code or contract, failed fund transfer, engine build or runtime
// error) records no entry.
//
// StoreSnapshot is the chain store as it stood after the call settled:
// post-revert on failure, post-success otherwise. The trace is an audit log,
// not a projection of final state — entries of reverted siblings stay.
type TraceEntry struct {
	Kind            TraceKind                 `json:"kind"`
	ContractAddress string                    `json:"contract_address"`
	Env             wasmvmtypes.Env           `json:"env"`
	Info            *wasmvmtypes.MessageInfo  `json:"info,omitempty"`
	Msg             json.RawMessage           `json:"msg,omitempty"`
	Response        *wasmvmtypes.Response     `json:"response,omitempty"`
	Logs            []string                  `json:"logs,omitempty"`
	StoreSnapshot   store.Root                `json:"-"`
	Result          *types.AppResponse        `json:"result,omitempty"`
	Err             string                    `json:"error,omitempty"`
	Trace           []TraceEntry              `json:"trace,omitempty"`
}

// appendTrace records an entry when the caller asked for tracing.
func appendTrace(trace *[]TraceEntry, entry TraceEntry) {
	if trace != nil {
		*trace = append(*trace, entry)
	}
}
