package models

import "time"

// OfferEvent is one row of the order journal: a placed offer or a drop of all offers.
type OfferEvent struct {
	RecordedAt      time.Time
	LedgerSequence  int32
	TransactionHash string
	Action          string // buy, sell or drop
	SourceAccount   string
	Selling         string
	Buying          string
	OfferID         string
	OfferAmount     string
	OfferPrice      string
	RestingAmount   string
	Status          string
	OrderMatches    []OrderMatch
}

type OrderMatch struct {
	OrderType    string // counter_offer or liquidity_pool
	AmountBought string
	AmountSold   string
	AssetBought  string
	AssetSold    string
	Owner        string // owner of the counter offer
	OfferID      string // matched offer ID
}
