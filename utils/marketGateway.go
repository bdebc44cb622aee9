package utils

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/celerfi/stellar-exchange-adapter/models"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const poloniexDateLayout = "2006-01-02 15:04:05"

// PoloniexGateway reads ticker and trade history from Poloniex's public API.
type PoloniexGateway struct {
	client *resty.Client
}

type poloniexTick struct {
	HighestBid string `json:"highestBid"`
	LowestAsk  string `json:"lowestAsk"`
}

type poloniexTrade struct {
	TradeID int64  `json:"tradeID"`
	Date    string `json:"date"`
	Rate    string `json:"rate"`
	Amount  string `json:"amount"`
}

type poloniexError struct {
	Error string `json:"error"`
}

func NewPoloniexGateway(cfg models.GatewayConfig) *PoloniexGateway {
	host := strings.TrimSuffix(cfg.PoloniexUrl, "/")
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(host).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &PoloniexGateway{client: client}
}

func (g *PoloniexGateway) Ticker(ctx context.Context, pair string) (models.Ticker, error) {
	var ticks map[string]poloniexTick
	if err := g.get(ctx, "ticker", map[string]string{"command": "returnTicker"}, &ticks); err != nil {
		return models.Ticker{}, err
	}
	tick, ok := ticks[pair]
	if !ok {
		return models.Ticker{}, errors.Errorf("ticker: pair %s not listed", pair)
	}
	bid, err := ParseAmount(tick.HighestBid)
	if err != nil {
		return models.Ticker{}, errors.Wrap(err, "ticker: bid")
	}
	ask, err := ParseAmount(tick.LowestAsk)
	if err != nil {
		return models.Ticker{}, errors.Wrap(err, "ticker: ask")
	}
	return models.Ticker{Bid: bid, Ask: ask}, nil
}

// TradeHistory returns trades newest first, as Poloniex reports them. A zero
// since asks for the default recent window.
func (g *PoloniexGateway) TradeHistory(ctx context.Context, pair string, since time.Time) ([]models.MarketTrade, error) {
	params := map[string]string{
		"command":      "returnTradeHistory",
		"currencyPair": pair,
	}
	if !since.IsZero() {
		params["start"] = strconv.FormatInt(since.Unix(), 10)
	}

	var raw []poloniexTrade
	if err := g.get(ctx, "trade history", params, &raw); err != nil {
		return nil, err
	}

	trades := make([]models.MarketTrade, 0, len(raw))
	for _, t := range raw {
		date, err := time.ParseInLocation(poloniexDateLayout, t.Date, time.UTC)
		if err != nil {
			return nil, errors.Wrapf(err, "trade %d: date", t.TradeID)
		}
		rate, err := ParseAmount(t.Rate)
		if err != nil {
			return nil, errors.Wrapf(err, "trade %d: rate", t.TradeID)
		}
		amount, err := ParseAmount(t.Amount)
		if err != nil {
			return nil, errors.Wrapf(err, "trade %d: amount", t.TradeID)
		}
		trades = append(trades, models.MarketTrade{TradeID: t.TradeID, Date: date, Rate: rate, Amount: amount})
	}
	return trades, nil
}

func (g *PoloniexGateway) get(ctx context.Context, op string, params map[string]string, out any) error {
	var apiErr poloniexError
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(out).
		SetError(&apiErr).
		Get("/public")
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	if resp.StatusCode() == 429 || resp.StatusCode() >= 500 {
		return &NetworkError{Op: op, Err: errors.Errorf("status %d", resp.StatusCode())}
	}
	if resp.IsError() {
		return errors.Errorf("%s: status %d: %s", op, resp.StatusCode(), apiErr.Error)
	}
	return nil
}
