package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/celerfi/stellar-exchange-adapter/models"
	"github.com/celerfi/stellar-exchange-adapter/utils"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	mu sync.Mutex

	sequence   int64
	balances   []models.Balance
	offers     []models.OpenOffer
	listErr    error
	loadErr    error
	submitErrs []error
	result     models.SubmitResult

	loads     int
	lists     int
	submitted []*txnbuild.Transaction
}

func (l *fakeLedger) LoadAccount(ctx context.Context, accountID string) (models.AccountState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads++
	if l.loadErr != nil {
		return models.AccountState{}, l.loadErr
	}
	return models.AccountState{AccountID: accountID, Sequence: l.sequence, Balances: l.balances}, nil
}

func (l *fakeLedger) ListOffers(ctx context.Context, accountID string) ([]models.OpenOffer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lists++
	if l.listErr != nil {
		return nil, l.listErr
	}
	return l.offers, nil
}

func (l *fakeLedger) SubmitTransaction(ctx context.Context, tx *txnbuild.Transaction) (models.SubmitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submitted = append(l.submitted, tx)
	if len(l.submitErrs) > 0 {
		err := l.submitErrs[0]
		l.submitErrs = l.submitErrs[1:]
		if err != nil {
			return models.SubmitResult{}, err
		}
	}
	l.sequence++
	return l.result, nil
}

type fakeMarket struct {
	ticker    models.Ticker
	tickerErr error
	trades    []models.MarketTrade
	since     time.Time
}

func (m *fakeMarket) Ticker(ctx context.Context, pair string) (models.Ticker, error) {
	return m.ticker, m.tickerErr
}

func (m *fakeMarket) TradeHistory(ctx context.Context, pair string, since time.Time) ([]models.MarketTrade, error) {
	m.since = since
	return m.trades, nil
}

type memoryJournal struct {
	mu     sync.Mutex
	events []models.OfferEvent
}

func (j *memoryJournal) RecordOfferEvents(ctx context.Context, events []models.OfferEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, events...)
	return nil
}

func newTestOfferManager(t *testing.T, ledger LedgerGateway) *OfferManager {
	t.Helper()
	kp := keypair.MustRandom()
	om, err := NewOfferManager(ledger, OfferManagerConfig{
		Secret:            kp.Seed(),
		NetworkPassphrase: network.TestNetworkPassphrase,
	})
	require.NoError(t, err)
	return om
}

func newTestTrader(t *testing.T, ledger *fakeLedger, market *fakeMarket, journal Journal) *Trader {
	t.Helper()
	trader, err := NewTrader(TraderConfig{
		Asset:    "XLM",
		Currency: "BTC",
		Pair:     "BTC_STR",
		Retry:    utils.RetryPolicy{Delay: time.Millisecond, Multiplier: 1, MaxAttempts: 5},
	}, ledger, market, newTestOfferManager(t, ledger), utils.DefaultAssetRegistry(), journal)
	require.NoError(t, err)
	return trader
}

func btcAsset() models.Asset {
	return models.IssuedAsset("BTC", utils.BTCIssuer)
}

// offerResultXDR encodes a successful single-operation manage offer result.
// restingID 0 means the offer was fully filled.
func offerResultXDR(t *testing.T, restingID int64, claims int) string {
	t.Helper()
	maker := xdr.MustAddress(keypair.MustRandom().Address())
	success := xdr.ManageOfferSuccessResult{
		Offer: xdr.ManageOfferSuccessResultOffer{Effect: xdr.ManageOfferEffectManageOfferDeleted},
	}
	for i := 0; i < claims; i++ {
		success.OffersClaimed = append(success.OffersClaimed, xdr.ClaimAtom{
			Type: xdr.ClaimAtomTypeClaimAtomTypeOrderBook,
			OrderBook: &xdr.ClaimOfferAtom{
				SellerId:     maker,
				OfferId:      xdr.Int64(100 + i),
				AssetSold:    xdr.MustNewNativeAsset(),
				AmountSold:   1000000000,
				AssetBought:  xdr.MustNewCreditAsset("BTC", utils.BTCIssuer),
				AmountBought: 5000000,
			},
		})
	}
	if restingID != 0 {
		success.Offer = xdr.ManageOfferSuccessResultOffer{
			Effect: xdr.ManageOfferEffectManageOfferCreated,
			Offer: &xdr.OfferEntry{
				SellerId: maker,
				OfferId:  xdr.Int64(restingID),
				Selling:  xdr.MustNewCreditAsset("BTC", utils.BTCIssuer),
				Buying:   xdr.MustNewNativeAsset(),
				Amount:   500000000,
				Price:    xdr.Price{N: 2, D: 1},
			},
		}
	}

	manageResult := xdr.ManageSellOfferResult{
		Code:    xdr.ManageSellOfferResultCodeManageSellOfferSuccess,
		Success: &success,
	}
	results := []xdr.OperationResult{{
		Code: xdr.OperationResultCodeOpInner,
		Tr: &xdr.OperationResultTr{
			Type:                  xdr.OperationTypeManageSellOffer,
			ManageSellOfferResult: &manageResult,
		},
	}}
	encoded, err := xdr.MarshalBase64(xdr.TransactionResult{
		FeeCharged: 100,
		Result: xdr.TransactionResultResult{
			Code:    xdr.TransactionResultCodeTxSuccess,
			Results: &results,
		},
	})
	require.NoError(t, err)
	return encoded
}
