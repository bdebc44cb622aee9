package handlers

import (
	"context"
	"time"

	"github.com/celerfi/stellar-exchange-adapter/models"
	"github.com/celerfi/stellar-exchange-adapter/utils"
)

const (
	ORDERBOOK_TX_STATUS_POSTED            = "posted"
	ORDERBOOK_TX_STATUS_MATCHED           = "matched"
	ORDERBOOK_TX_STATUS_PARTIALLY_MATCHED = "partially_matched"
	ORDERBOOK_TX_STATUS_DROPPED           = "dropped"
)

// Journal records what the trader did on the ledger.
type Journal interface {
	RecordOfferEvents(ctx context.Context, events []models.OfferEvent) error
}

type NopJournal struct{}

func (NopJournal) RecordOfferEvents(context.Context, []models.OfferEvent) error { return nil }

// offerStatus classifies a manage-offer outcome the same way for every side.
func offerStatus(result models.ManageOfferResult) string {
	if len(result.OffersClaimed) == 0 {
		return ORDERBOOK_TX_STATUS_POSTED
	}
	if result.Offer == nil {
		return ORDERBOOK_TX_STATUS_MATCHED
	}
	return ORDERBOOK_TX_STATUS_PARTIALLY_MATCHED
}

func buildOfferEvent(
	action string,
	account string,
	params models.OfferParams,
	submitted models.SubmitResult,
	result models.ManageOfferResult,
	recordedAt time.Time,
) models.OfferEvent {
	event := models.OfferEvent{
		RecordedAt:      recordedAt,
		LedgerSequence:  submitted.Ledger,
		TransactionHash: submitted.Hash,
		Action:          action,
		SourceAccount:   account,
		Selling:         utils.FormatAsset(params.Selling),
		Buying:          utils.FormatAsset(params.Buying),
		OfferAmount:     params.Amount,
		OfferPrice:      params.Price,
		Status:          offerStatus(result),
	}
	if result.Offer != nil {
		event.OfferID = result.Offer.OfferID
		event.RestingAmount = result.Offer.Amount
	}

	for _, claim := range result.OffersClaimed {
		match := models.OrderMatch{
			OrderType:    "counter_offer",
			AmountBought: claim.AmountBought,
			AmountSold:   claim.AmountSold,
			AssetBought:  utils.FormatAsset(claim.AssetBought),
			AssetSold:    utils.FormatAsset(claim.AssetSold),
		}
		if claim.LiquidityPoolID != nil {
			match.OrderType = "liquidity_pool"
			match.Owner = *claim.LiquidityPoolID
		}
		if claim.SellerID != nil {
			match.Owner = *claim.SellerID
		}
		if claim.OfferID != nil {
			match.OfferID = *claim.OfferID
		}
		event.OrderMatches = append(event.OrderMatches, match)
	}
	return event
}

func buildDropEvent(account string, submitted models.SubmitResult, recordedAt time.Time) models.OfferEvent {
	return models.OfferEvent{
		RecordedAt:      recordedAt,
		LedgerSequence:  submitted.Ledger,
		TransactionHash: submitted.Hash,
		Action:          "drop",
		SourceAccount:   account,
		Status:          ORDERBOOK_TX_STATUS_DROPPED,
	}
}
