package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/celerfi/stellar-exchange-adapter/models"
	"github.com/celerfi/stellar-exchange-adapter/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// LatestLedgerFunc reports the newest ledger a node has seen.
type LatestLedgerFunc func(ctx context.Context) (uint32, error)

type orderRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Price  decimal.Decimal `json:"price"`
}

type orderResponse struct {
	OrderID *string `json:"orderId"`
}

type statusResponse struct {
	Portfolio []models.PortfolioItem `json:"portfolio"`
	Ticker    models.Ticker          `json:"ticker"`
}

// NewRouter exposes the trader's operations as a JSON API. latestLedger may be nil.
func NewRouter(t *Trader, latestLedger LatestLedgerFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"status": "ok"}
		if latestLedger != nil {
			seq, err := latestLedger(r.Context())
			if err != nil {
				writeError(w, http.StatusServiceUnavailable, err)
				return
			}
			body["latestLedger"] = seq
		}
		writeJSON(w, http.StatusOK, body)
	})

	r.Get("/capabilities", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Capabilities())
	})

	r.Get("/fee", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"fee": t.GetFee()})
	})

	r.Get("/portfolio", func(w http.ResponseWriter, r *http.Request) {
		portfolio, err := t.GetPortfolio(r.Context())
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, portfolio)
	})

	r.Get("/ticker", func(w http.ResponseWriter, r *http.Request) {
		ticker, err := t.GetTicker(r.Context())
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, ticker)
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		var resp statusResponse
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			resp.Portfolio, err = t.GetPortfolio(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			resp.Ticker, err = t.GetTicker(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Get("/trades", func(w http.ResponseWriter, r *http.Request) {
		var since time.Time
		if raw := r.URL.Query().Get("since"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			since = parsed
		}
		trades, err := t.GetTrades(r.Context(), since, r.URL.Query().Get("descending") == "true")
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, trades)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/buy", placeOrderHandler(t.Buy))
		r.Post("/sell", placeOrderHandler(t.Sell))

		r.Get("/{orderID}", func(w http.ResponseWriter, r *http.Request) {
			order, err := t.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, http.StatusOK, order)
		})

		r.Get("/{orderID}/closed", func(w http.ResponseWriter, r *http.Request) {
			closed, err := t.CheckOrder(r.Context(), chi.URLParam(r, "orderID"))
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]bool{"closed": closed})
		})

		r.Delete("/{orderID}", func(w http.ResponseWriter, r *http.Request) {
			if err := t.CancelOrder(r.Context(), chi.URLParam(r, "orderID")); err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	return r
}

func placeOrderHandler(place func(context.Context, decimal.Decimal, decimal.Decimal) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		id, err := place(r.Context(), req.Amount, req.Price)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		resp := orderResponse{}
		if id != "" {
			resp.OrderID = &id
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func statusFor(err error) int {
	var (
		subErr *utils.SubmissionError
		cfgErr *utils.ConfigurationError
		netErr *utils.NetworkError
	)
	switch {
	case errors.As(err, &subErr):
		return http.StatusConflict
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	case errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Warn("could not write response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
