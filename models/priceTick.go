package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Ticker struct {
	Bid decimal.Decimal `json:"bid"`
	Ask decimal.Decimal `json:"ask"`
}

// MarketTrade is a trade as reported by the market data exchange.
type MarketTrade struct {
	TradeID int64
	Date    time.Time
	Rate    decimal.Decimal
	Amount  decimal.Decimal
}

// Trade is the trading-interface view of a market trade; Date is unix seconds.
type Trade struct {
	TID    int64           `json:"tid"`
	Amount decimal.Decimal `json:"amount"`
	Date   int64           `json:"date"`
	Price  decimal.Decimal `json:"price"`
}
