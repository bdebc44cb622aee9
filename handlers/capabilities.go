package handlers

import (
	"github.com/celerfi/stellar-exchange-adapter/models"
	"github.com/shopspring/decimal"
)

// Capabilities describes the adapter to the trading engine. History is
// date-ordered and not complete.
func Capabilities() models.Capabilities {
	return models.Capabilities{
		Name:       "stellar",
		Slug:       "stellar",
		Currencies: []string{"BTC"},
		Assets:     []string{"XLM"},
		Markets: []models.Market{
			{
				Pair:         [2]string{"BTC", "XLM"},
				MinimalOrder: models.MinimalOrder{Amount: decimal.New(1, -7), Unit: "asset"},
			},
		},
		Requires:            []string{"account", "secret", "env"},
		TID:                 "tid",
		ProvidesHistory:     "date",
		ProvidesFullHistory: false,
		Tradable:            true,
		ForceReorderDelay:   false,
	}
}
