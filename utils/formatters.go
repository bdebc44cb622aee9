package utils

import (
	"fmt"

	"github.com/celerfi/stellar-exchange-adapter/models"
	"github.com/shopspring/decimal"
)

// LedgerDecimals is the number of fractional digits the ledger stores amounts with.
const LedgerDecimals = 7

func FormatAsset(a models.Asset) string {
	switch a.Type {
	case models.AssetTypeNative:
		return "XLM"
	case models.AssetTypeIssued:
		return fmt.Sprintf("%s:%s", a.Code, a.Issuer)
	default:
		return "Unknown"
	}
}

// FormatAmount renders d with the ledger's fixed 7 decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(LedgerDecimals)
}

func ParseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
