package rpc

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"lockdropd/crypto"
	"lockdropd/native/lockdrop"
	"lockdropd/storage"
)

func testAddr(tag byte) crypto.Address {
	buf := make([]byte, crypto.AddressLength)
	buf[crypto.AddressLength-1] = tag
	return crypto.NewAddress(crypto.LockPrefix, buf)
}

type stubVenue struct{}

func (stubVenue) ShareBalance(crypto.Address) (*big.Int, error)   { return big.NewInt(0), nil }
func (stubVenue) PendingRewards(crypto.Address) (*big.Int, error) { return big.NewInt(0), nil }
func (stubVenue) RewardBalance(crypto.Address) (*big.Int, error)  { return big.NewInt(0), nil }

type dropSink struct{}

func (dropSink) Deliver(lockdrop.Instruction) error { return nil }

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	proc := lockdrop.NewProcessor(storage.NewMemDB(), testAddr(9), stubVenue{}, dropSink{})
	cfg := &lockdrop.Config{
		Owner:                  testAddr(1),
		Venue:                  testAddr(2),
		ShareToken:             testAddr(3),
		RewardToken:            testAddr(4),
		IncentiveToken:         testAddr(5),
		DelegationProgram:      testAddr(6),
		DepositDenom:           "ulock",
		InitTimestamp:          1000,
		DepositWindow:          1000,
		WithdrawalWindow:       200,
		MinLockDuration:        1,
		MaxLockDuration:        10,
		SecondsPerDurationUnit: 100,
		WeightMultiplier:       1,
		WeightDivider:          10,
		TotalIncentivePool:     big.NewInt(10_000_000),
	}
	if err := proc.Initialize(cfg, 1000); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	server := NewServer(proc, nil)
	server.now = func() uint64 { return 1050 }
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return server, ts
}

func call(t *testing.T, ts *httptest.Server, method string, params interface{}, headers map[string]string) (*http.Response, RPCResponse) {
	t.Helper()
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		payload["params"] = []interface{}{params}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	var decoded RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestDepositAndQueryOverHTTP(t *testing.T) {
	_, ts := newTestServer(t)

	resp, decoded := call(t, ts, "lockdrop_deposit", map[string]interface{}{
		"from":     testAddr(0x0a).String(),
		"duration": 4,
		"denom":    "ulock",
		"amount":   "1000000",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if decoded.Error != nil {
		t.Fatalf("unexpected error: %+v", decoded.Error)
	}

	resp, decoded = call(t, ts, "lockdrop_getUserInfo", map[string]interface{}{
		"address": testAddr(0x0a).String(),
	}, nil)
	if resp.StatusCode != http.StatusOK || decoded.Error != nil {
		t.Fatalf("query failed: status %d, error %+v", resp.StatusCode, decoded.Error)
	}
	info, err := json.Marshal(decoded.Result)
	if err != nil {
		t.Fatalf("remarshal result: %v", err)
	}
	var user lockdrop.UserInfoResponse
	if err := json.Unmarshal(info, &user); err != nil {
		t.Fatalf("decode user info: %v", err)
	}
	if user.TotalPrincipalLocked != "1000000" {
		t.Fatalf("principal = %s, want 1000000", user.TotalPrincipalLocked)
	}

	resp, decoded = call(t, ts, "lockdrop_getLockup", map[string]interface{}{
		"address":  testAddr(0x0a).String(),
		"duration": 4,
	}, nil)
	if resp.StatusCode != http.StatusOK || decoded.Error != nil {
		t.Fatalf("lockup query failed: status %d, error %+v", resp.StatusCode, decoded.Error)
	}
}

func TestEngineErrorsSurfaceAsServerErrors(t *testing.T) {
	_, ts := newTestServer(t)

	resp, decoded := call(t, ts, "lockdrop_deposit", map[string]interface{}{
		"from":     testAddr(0x0a).String(),
		"duration": 99,
		"denom":    "ulock",
		"amount":   "1",
	}, nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if decoded.Error == nil || decoded.Error.Code != codeServerError {
		t.Fatalf("expected server error, got %+v", decoded.Error)
	}
}

func TestInvalidParamsRejected(t *testing.T) {
	_, ts := newTestServer(t)

	resp, decoded := call(t, ts, "lockdrop_deposit", map[string]interface{}{
		"from":     "not-an-address",
		"duration": 4,
		"denom":    "ulock",
		"amount":   "1",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if decoded.Error == nil || decoded.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid params, got %+v", decoded.Error)
	}

	resp, decoded = call(t, ts, "lockdrop_nonsense", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if decoded.Error == nil || decoded.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method not found, got %+v", decoded.Error)
	}
}

func TestMutatingMethodsRequireToken(t *testing.T) {
	server, ts := newTestServer(t)
	server.authToken = "secret"

	params := map[string]interface{}{
		"from":     testAddr(0x0a).String(),
		"duration": 4,
		"denom":    "ulock",
		"amount":   "1",
	}

	resp, decoded := call(t, ts, "lockdrop_deposit", params, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if decoded.Error == nil || decoded.Error.Code != codeUnauthorized {
		t.Fatalf("expected unauthorized, got %+v", decoded.Error)
	}

	resp, _ = call(t, ts, "lockdrop_deposit", params, map[string]string{"Authorization": "Bearer wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong token status = %d, want 401", resp.StatusCode)
	}

	resp, decoded = call(t, ts, "lockdrop_deposit", params, map[string]string{"Authorization": "Bearer secret"})
	if resp.StatusCode != http.StatusOK || decoded.Error != nil {
		t.Fatalf("authorised call failed: status %d, error %+v", resp.StatusCode, decoded.Error)
	}

	// Queries stay open.
	resp, decoded = call(t, ts, "lockdrop_getState", nil, nil)
	if resp.StatusCode != http.StatusOK || decoded.Error != nil {
		t.Fatalf("query blocked: status %d, error %+v", resp.StatusCode, decoded.Error)
	}
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
