// Package server exposes a running simulator over HTTP for local tooling.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/CosmWasm/wasmsim/app"
	wasmkeeper "github.com/CosmWasm/wasmsim/x/wasm/keeper"
	wasmtypes "github.com/CosmWasm/wasmsim/x/wasm/types"
)

// Server serves the simulator REST API.
type Server struct {
	app    *app.App
	logger *zap.Logger
	router *mux.Router
}

// New constructor
func New(a *app.App, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{app: a, logger: logger}
	r := mux.NewRouter()
	r.HandleFunc("/block", s.getBlock).Methods(http.MethodGet)
	r.HandleFunc("/block/advance", s.advanceBlock).Methods(http.MethodPost)
	r.HandleFunc("/codes", s.listCodes).Methods(http.MethodGet)
	r.HandleFunc("/codes", s.storeCode).Methods(http.MethodPost)
	r.HandleFunc("/codes/{codeID}/instantiate", s.instantiateContract).Methods(http.MethodPost)
	r.HandleFunc("/contracts", s.listContracts).Methods(http.MethodGet)
	r.HandleFunc("/contracts/{addr}", s.getContractInfo).Methods(http.MethodGet)
	r.HandleFunc("/contracts/{addr}/state", s.getContractState).Methods(http.MethodGet)
	r.HandleFunc("/contracts/{addr}/state/raw", s.queryRaw).Methods(http.MethodGet)
	r.HandleFunc("/contracts/{addr}/smart", s.querySmart).Methods(http.MethodPost)
	r.HandleFunc("/contracts/{addr}/execute", s.executeContract).Methods(http.MethodPost)
	s.router = r
	return s
}

// Router returns the configured HTTP handler.
func (s *Server) Router() http.Handler { return s.router }

type blockResponse struct {
	Height  uint64 `json:"height"`
	Time    string `json:"time"`
	ChainID string `json:"chain_id"`
}

func (s *Server) getBlock(w http.ResponseWriter, _ *http.Request) {
	block := s.app.BlockInfo()
	writeJSON(w, http.StatusOK, blockResponse{
		Height:  block.Height,
		Time:    strconv.FormatUint(uint64(block.Time), 10),
		ChainID: block.ChainID,
	})
}

type advanceBlockRequest struct {
	Seconds int64 `json:"seconds"`
}

func (s *Server) advanceBlock(w http.ResponseWriter, r *http.Request) {
	var req advanceBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Seconds <= 0 {
		req.Seconds = 5
	}
	s.app.AdvanceBlock(time.Duration(req.Seconds) * time.Second)
	s.getBlock(w, r)
}

type codeEntry struct {
	CodeID  uint64 `json:"code_id"`
	Creator string `json:"creator"`
	Size    int    `json:"size"`
}

func (s *Server) listCodes(w http.ResponseWriter, _ *http.Request) {
	res := make([]codeEntry, 0)
	s.app.WasmKeeper.IterateCodeInfos(func(codeID uint64, info wasmtypes.CodeInfo) bool {
		res = append(res, codeEntry{CodeID: codeID, Creator: info.Creator, Size: len(info.Code)})
		return false
	})
	writeJSON(w, http.StatusOK, res)
}

type storeCodeRequest struct {
	Creator string `json:"creator"`
	Code    []byte `json:"code"`
}

func (s *Server) storeCode(w http.ResponseWriter, r *http.Request) {
	var req storeCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	codeID, err := s.app.Create(req.Creator, req.Code)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.logger.Info("stored code", zap.Uint64("code_id", codeID))
	writeJSON(w, http.StatusCreated, map[string]uint64{"code_id": codeID})
}

type runContractRequest struct {
	Sender string             `json:"sender"`
	Funds  []wasmvmtypes.Coin `json:"funds,omitempty"`
	Msg    json.RawMessage    `json:"msg"`
}

type instantiateResponse struct {
	ContractAddress string                   `json:"contract_address"`
	Result          *wasmtypes.AppResponse   `json:"result"`
	Trace           []wasmkeeper.TraceEntry  `json:"trace,omitempty"`
}

func (s *Server) instantiateContract(w http.ResponseWriter, r *http.Request) {
	codeID, err := strconv.ParseUint(mux.Vars(r)["codeID"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req runContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var trace []wasmkeeper.TraceEntry
	addr, rsp, err := s.app.InstantiateContract(r.Context(), req.Sender, req.Funds, codeID, req.Msg, &trace)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.logger.Info("instantiated contract", zap.String("contract_address", addr))
	writeJSON(w, http.StatusCreated, instantiateResponse{ContractAddress: addr, Result: rsp, Trace: trace})
}

type executeResponse struct {
	Result *wasmtypes.AppResponse  `json:"result"`
	Trace  []wasmkeeper.TraceEntry `json:"trace,omitempty"`
}

func (s *Server) executeContract(w http.ResponseWriter, r *http.Request) {
	var req runContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var trace []wasmkeeper.TraceEntry
	rsp, err := s.app.ExecuteContract(r.Context(), req.Sender, req.Funds, mux.Vars(r)["addr"], req.Msg, &trace)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, executeResponse{Result: rsp, Trace: trace})
}

type contractEntry struct {
	ContractAddress string `json:"contract_address"`
	CodeID          uint64 `json:"code_id"`
	Creator         string `json:"creator"`
	Label           string `json:"label,omitempty"`
}

func (s *Server) listContracts(w http.ResponseWriter, _ *http.Request) {
	res := make([]contractEntry, 0)
	s.app.WasmKeeper.IterateContractInfo(func(addr string, info wasmtypes.ContractInfo) bool {
		res = append(res, contractEntry{ContractAddress: addr, CodeID: info.CodeID, Creator: info.Creator, Label: info.Label})
		return false
	})
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getContractInfo(w http.ResponseWriter, r *http.Request) {
	addr := mux.Vars(r)["addr"]
	info := s.app.WasmKeeper.GetContractInfo(addr)
	if info == nil {
		writeError(w, http.StatusNotFound, wasmtypes.ErrNoSuchContract)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type stateEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *Server) getContractState(w http.ResponseWriter, r *http.Request) {
	addr := mux.Vars(r)["addr"]
	res := make([]stateEntry, 0)
	err := s.app.WasmKeeper.IterateContractState(addr, func(key, value []byte) bool {
		res = append(res, stateEntry{Key: string(key), Value: string(value)})
		return false
	})
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) queryRaw(w http.ResponseWriter, r *http.Request) {
	addr := mux.Vars(r)["addr"]
	key := r.URL.Query().Get("key")
	v, err := s.app.WasmKeeper.QueryRaw(addr, []byte(key))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, stateEntry{Key: key, Value: string(v)})
}

func (s *Server) querySmart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Msg json.RawMessage `json:"msg"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.app.QuerySmart(r.Context(), mux.Vars(r)["addr"], req.Msg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
