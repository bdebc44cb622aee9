package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/celerfi/stellar-exchange-adapter/models"
	"github.com/celerfi/stellar-exchange-adapter/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealth(t *testing.T) {
	trader := newTestTrader(t, &fakeLedger{}, &fakeMarket{}, nil)

	rec := serve(t, NewRouter(trader, nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	latest := func(ctx context.Context) (uint32, error) { return 1234, nil }
	rec = serve(t, NewRouter(trader, latest), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","latestLedger":1234}`, rec.Body.String())

	down := func(ctx context.Context) (uint32, error) { return 0, errors.New("rpc unreachable") }
	rec = serve(t, NewRouter(trader, down), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouterCapabilitiesAndFee(t *testing.T) {
	router := NewRouter(newTestTrader(t, &fakeLedger{}, &fakeMarket{}, nil), nil)

	rec := serve(t, router, http.MethodGet, "/capabilities", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var caps models.Capabilities
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &caps))
	assert.Equal(t, "stellar", caps.Slug)
	assert.Equal(t, "date", caps.ProvidesHistory)

	rec = serve(t, router, http.MethodGet, "/fee", "")
	assert.JSONEq(t, `{"fee":"0.00001"}`, rec.Body.String())
}

func TestRouterStatus(t *testing.T) {
	ledger := &fakeLedger{balances: []models.Balance{
		{Asset: models.NativeAsset(), Amount: dec("10")},
		{Asset: btcAsset(), Amount: dec("0.1")},
	}}
	market := &fakeMarket{ticker: models.Ticker{Bid: dec("1"), Ask: dec("2")}}
	router := NewRouter(newTestTrader(t, ledger, market, nil), nil)

	rec := serve(t, router, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"portfolio":[{"name":"XLM","amount":"10"},{"name":"BTC","amount":"0.1"}],
		"ticker":{"bid":"1","ask":"2"}
	}`, rec.Body.String())
}

func TestRouterPlaceOrder(t *testing.T) {
	ledger := &fakeLedger{result: models.SubmitResult{ResultXDR: offerResultXDR(t, 9001, 0)}}
	router := NewRouter(newTestTrader(t, ledger, &fakeMarket{}, nil), nil)

	rec := serve(t, router, http.MethodPost, "/orders/buy", `{"amount":"100","price":"0.5"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"orderId":"9001"}`, rec.Body.String())

	ledger.result = models.SubmitResult{ResultXDR: offerResultXDR(t, 0, 1)}
	rec = serve(t, router, http.MethodPost, "/orders/sell", `{"amount":"1","price":"2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"orderId":null}`, rec.Body.String())

	rec = serve(t, router, http.MethodPost, "/orders/sell", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterRejectedOrderIsConflict(t *testing.T) {
	ledger := &fakeLedger{submitErrs: []error{&utils.SubmissionError{TransactionCode: "tx_failed", OperationCodes: []string{"op_low_reserve"}}}}
	router := NewRouter(newTestTrader(t, ledger, &fakeMarket{}, nil), nil)

	rec := serve(t, router, http.MethodPost, "/orders/sell", `{"amount":"1","price":"2"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "op_low_reserve")
}

func TestRouterOrderLookupAndCancel(t *testing.T) {
	ledger := &fakeLedger{offers: []models.OpenOffer{
		{ID: 5, Selling: models.NativeAsset(), Buying: btcAsset(), Amount: dec("3"), Price: dec("0.25")},
	}}
	router := NewRouter(newTestTrader(t, ledger, &fakeMarket{}, nil), nil)

	rec := serve(t, router, http.MethodGet, "/orders/5/closed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"closed":false}`, rec.Body.String())

	rec = serve(t, router, http.MethodGet, "/orders/5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var order models.OrderInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.True(t, order.Price.Equal(dec("0.25")))

	rec = serve(t, router, http.MethodDelete, "/orders/5", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, ledger.submitted, 1)

	rec = serve(t, router, http.MethodGet, "/orders/abc/closed", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterTrades(t *testing.T) {
	market := &fakeMarket{}
	router := NewRouter(newTestTrader(t, &fakeLedger{}, market, nil), nil)

	rec := serve(t, router, http.MethodGet, "/trades?since=2024-01-02T00:00:00Z", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1704153600), market.since.Unix())

	rec = serve(t, router, http.MethodGet, "/trades?since=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(&utils.SubmissionError{TransactionCode: "tx_failed"}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(&utils.ConfigurationError{Setting: "portfolio", Err: errors.New("x")}))
	assert.Equal(t, http.StatusBadGateway, statusFor(&utils.NetworkError{Op: "ticker", Err: errors.New("x")}))
	assert.Equal(t, http.StatusBadGateway, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusBadRequest, statusFor(errors.New("bad input")))
}
