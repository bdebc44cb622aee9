package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountState is the part of a Horizon account record the trader needs.
type AccountState struct {
	AccountID string
	Sequence  int64
	Balances  []Balance
}

type Balance struct {
	Asset  Asset
	Amount decimal.Decimal
}

// OpenOffer is an offer as listed by Horizon, before any XDR decoding.
type OpenOffer struct {
	ID           int64
	Seller       string
	Selling      Asset
	Buying       Asset
	Amount       decimal.Decimal
	Price        decimal.Decimal
	LastModified time.Time
}

// OfferParams describes one manage-sell-offer operation. ID 0 creates a new
// offer; Amount "0" deletes the offer with the given ID.
type OfferParams struct {
	ID      int64
	Selling Asset
	Buying  Asset
	Amount  string
	Price   string
}

type SubmitResult struct {
	Hash      string
	Ledger    int32
	ResultXDR string
	MetaXDR   string
}

type PortfolioItem struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type OrderInfo struct {
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

type MinimalOrder struct {
	Amount decimal.Decimal `json:"amount"`
	Unit   string          `json:"unit"`
}

type Market struct {
	Pair         [2]string    `json:"pair"`
	MinimalOrder MinimalOrder `json:"minimalOrder"`
}

// Capabilities is the static descriptor of what this exchange adapter offers.
type Capabilities struct {
	Name                string   `json:"name"`
	Slug                string   `json:"slug"`
	Currencies          []string `json:"currencies"`
	Assets              []string `json:"assets"`
	Markets             []Market `json:"markets"`
	Requires            []string `json:"requires"`
	TID                 string   `json:"tid"`
	ProvidesHistory     string   `json:"providesHistory"`
	ProvidesFullHistory bool     `json:"providesFullHistory"`
	Tradable            bool     `json:"tradable"`
	ForceReorderDelay   bool     `json:"forceReorderDelay"`
}

// Config for the gateways
type GatewayConfig struct {
	HorizonUrl  string
	PoloniexUrl string
	Timeout     time.Duration
}
