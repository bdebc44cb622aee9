package utils

import (
	"testing"

	"github.com/celerfi/stellar-exchange-adapter/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAsset(t *testing.T) {
	assert.Equal(t, "XLM", FormatAsset(models.NativeAsset()))
	assert.Equal(t, "BTC:"+BTCIssuer, FormatAsset(models.IssuedAsset("BTC", BTCIssuer)))
	assert.Equal(t, "Unknown", FormatAsset(models.Asset{Type: models.AssetTypeUnknown}))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "50.0000000", FormatAmount(decimal.NewFromInt(50)))
	assert.Equal(t, "0.3333333", FormatAmount(decimal.NewFromInt(1).Div(decimal.NewFromInt(3))))
	assert.Equal(t, "2.0000000", FormatAmount(decimal.NewFromInt(1).DivRound(decimal.RequireFromString("0.5"), LedgerDecimals)))
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = ParseAmount("12.5000000")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("12.5")))

	_, err = ParseAmount("twelve")
	assert.Error(t, err)
}
