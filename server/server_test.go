package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CosmWasm/wasmsim/app"
	"github.com/CosmWasm/wasmsim/x/wasm/devvm"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	a := app.New(app.DefaultConfig(), devvm.Factory)
	ts := httptest.NewServer(New(a, nil).Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body string) (*http.Response, []byte) {
	t.Helper()
	res, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer res.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(res.Body)
	require.NoError(t, err)
	return res, buf.Bytes()
}

func getJSON(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(res.Body)
	require.NoError(t, err)
	return res, buf.Bytes()
}

func TestServerLifecycle(t *testing.T) {
	ts := setupServer(t)

	// store code
	res, body := postJSON(t, ts.URL+"/codes", `{"creator":"alice","code":"e30="}`)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))
	var created struct {
		CodeID uint64 `json:"code_id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	require.Equal(t, uint64(1), created.CodeID)

	// instantiate with seeded values
	res, body = postJSON(t, ts.URL+"/codes/1/instantiate", `{"sender":"alice","msg":{"values":{"a":"1"}}}`)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))
	var inst struct {
		ContractAddress string `json:"contract_address"`
	}
	require.NoError(t, json.Unmarshal(body, &inst))
	require.NotEmpty(t, inst.ContractAddress)

	// execute a write
	res, body = postJSON(t, ts.URL+"/contracts/"+inst.ContractAddress+"/execute", `{"sender":"alice","msg":{"ops":[{"set":{"key":"b","value":"2"}}]}}`)
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))

	// full state listing is sorted by key
	res, body = getJSON(t, ts.URL+"/contracts/"+inst.ContractAddress+"/state")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var state []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	require.NoError(t, json.Unmarshal(body, &state))
	require.Len(t, state, 2)
	assert.Equal(t, "a", state[0].Key)
	assert.Equal(t, "b", state[1].Key)

	// raw query hit and miss
	res, body = getJSON(t, ts.URL+"/contracts/"+inst.ContractAddress+"/state/raw?key=b")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `"value":"2"`)

	res, body = getJSON(t, ts.URL+"/contracts/"+inst.ContractAddress+"/state/raw?key=nope")
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, string(body), "Key nope not found")

	// smart query
	res, body = postJSON(t, ts.URL+"/contracts/"+inst.ContractAddress+"/smart", `{"msg":{"get":{"key":"a"}}}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"value":"1"}`, string(body))

	// listings
	res, body = getJSON(t, ts.URL+"/codes")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `"code_id":1`)

	res, body = getJSON(t, ts.URL+"/contracts")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), inst.ContractAddress)
}

func TestServerBlock(t *testing.T) {
	ts := setupServer(t)

	res, body := getJSON(t, ts.URL+"/block")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var block struct {
		Height  uint64 `json:"height"`
		ChainID string `json:"chain_id"`
	}
	require.NoError(t, json.Unmarshal(body, &block))
	assert.Equal(t, "wasmsim-1", block.ChainID)

	res, body = postJSON(t, ts.URL+"/block/advance", `{"seconds":10}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var next struct {
		Height uint64 `json:"height"`
	}
	require.NoError(t, json.Unmarshal(body, &next))
	assert.Equal(t, block.Height+1, next.Height)
}

func TestServerErrors(t *testing.T) {
	ts := setupServer(t)

	res, _ := getJSON(t, ts.URL+"/contracts/cosmwasm1unknown")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body := postJSON(t, ts.URL+"/codes/999/instantiate", `{"sender":"alice","msg":{}}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, string(body), "no such code")

	res, _ = postJSON(t, ts.URL+"/codes", `not json`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
