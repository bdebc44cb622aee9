package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/celerfi/stellar-exchange-adapter/models"
	"github.com/celerfi/stellar-exchange-adapter/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// firstFetchLimit is the row count at which the market caps a history request.
const firstFetchLimit = 50000

var fee = decimal.RequireFromString("0.00001")

// MarketDataGateway supplies ticker and trade history for a currency pair.
type MarketDataGateway interface {
	Ticker(ctx context.Context, pair string) (models.Ticker, error)
	TradeHistory(ctx context.Context, pair string, since time.Time) ([]models.MarketTrade, error)
}

type TraderConfig struct {
	Asset    string
	Currency string
	Pair     string
	Retry    utils.RetryPolicy
}

// Trader exposes the trading interface over one Stellar account. Buy, Sell
// and CancelOrder are serialized because the ledger accepts only one
// transaction per sequence number.
type Trader struct {
	ledger   LedgerGateway
	market   MarketDataGateway
	offers   *OfferManager
	journal  Journal
	registry *utils.AssetRegistry
	retry    utils.RetryPolicy
	log      *logrus.Entry
	now      func() time.Time

	assetSymbol    string
	currencySymbol string
	asset          models.Asset
	currency       models.Asset
	pair           string

	mu sync.Mutex
}

func NewTrader(
	cfg TraderConfig,
	ledger LedgerGateway,
	market MarketDataGateway,
	offers *OfferManager,
	registry *utils.AssetRegistry,
	journal Journal,
) (*Trader, error) {
	known := strings.Join(registry.Symbols(), ", ")
	asset, err := registry.Resolve(cfg.Asset)
	if err != nil {
		return nil, &utils.ConfigurationError{Setting: "asset", Err: fmt.Errorf("%w (known: %s)", err, known)}
	}
	currency, err := registry.Resolve(cfg.Currency)
	if err != nil {
		return nil, &utils.ConfigurationError{Setting: "currency", Err: fmt.Errorf("%w (known: %s)", err, known)}
	}
	if journal == nil {
		journal = NopJournal{}
	}
	return &Trader{
		ledger:         ledger,
		market:         market,
		offers:         offers,
		journal:        journal,
		registry:       registry,
		retry:          cfg.Retry,
		log:            logrus.WithField("exchange", "stellar"),
		now:            time.Now,
		assetSymbol:    cfg.Asset,
		currencySymbol: cfg.Currency,
		asset:          asset,
		currency:       currency,
		pair:           cfg.Pair,
	}, nil
}

func (t *Trader) GetPortfolio(ctx context.Context) ([]models.PortfolioItem, error) {
	var portfolio []models.PortfolioItem
	err := t.retry.Do(ctx, "getPortfolio", utils.IsRetryable, func(ctx context.Context) error {
		account, err := t.ledger.LoadAccount(ctx, t.offers.AccountID())
		if err != nil {
			return err
		}
		assetBalance, assetOK := findBalance(account.Balances, t.asset)
		currencyBalance, currencyOK := findBalance(account.Balances, t.currency)
		if !assetOK || !currencyOK {
			held := t.balanceLabels(account.Balances)
			t.log.WithFields(logrus.Fields{
				"asset":    t.assetSymbol,
				"currency": t.currencySymbol,
				"balances": held,
			}).Error("unable to set the portfolio")
			return &utils.ConfigurationError{
				Setting: "portfolio",
				Err:     fmt.Errorf("account holds no %s/%s balance (holds %s)", t.assetSymbol, t.currencySymbol, strings.Join(held, ", ")),
			}
		}
		portfolio = []models.PortfolioItem{
			{Name: t.assetSymbol, Amount: assetBalance},
			{Name: t.currencySymbol, Amount: currencyBalance},
		}
		return nil
	})
	return portfolio, err
}

// balanceLabels names each balance by its registry symbol, or by code:issuer
// for assets the registry does not know.
func (t *Trader) balanceLabels(balances []models.Balance) []string {
	labels := make([]string, 0, len(balances))
	for _, b := range balances {
		label, ok := t.registry.Symbol(b.Asset)
		if !ok {
			label = utils.FormatAsset(b.Asset)
		}
		labels = append(labels, label+"="+b.Amount.String())
	}
	return labels
}

func findBalance(balances []models.Balance, asset models.Asset) (decimal.Decimal, bool) {
	for _, b := range balances {
		if b.Asset.Equal(asset) {
			return b.Amount, true
		}
	}
	return decimal.Zero, false
}

func (t *Trader) GetTicker(ctx context.Context) (models.Ticker, error) {
	var ticker models.Ticker
	err := t.retry.Do(ctx, "getTicker", utils.IsRetryable, func(ctx context.Context) error {
		var err error
		ticker, err = t.market.Ticker(ctx, t.pair)
		return err
	})
	return ticker, err
}

func (t *Trader) GetFee() decimal.Decimal {
	return fee
}

// Buy offers the currency for the asset. The ledger prices offers in terms of
// the selling asset, so the amount becomes amount*price and the price 1/price.
func (t *Trader) Buy(ctx context.Context, amount, price decimal.Decimal) (string, error) {
	if !price.IsPositive() {
		return "", fmt.Errorf("buy: price must be positive, got %s", price)
	}
	params := models.OfferParams{
		Selling: t.currency,
		Buying:  t.asset,
		Amount:  utils.FormatAmount(amount.Mul(price)),
		Price:   utils.FormatAmount(decimal.NewFromInt(1).DivRound(price, utils.LedgerDecimals)),
	}
	return t.placeOffer(ctx, "buy", params)
}

func (t *Trader) Sell(ctx context.Context, amount, price decimal.Decimal) (string, error) {
	if !price.IsPositive() {
		return "", fmt.Errorf("sell: price must be positive, got %s", price)
	}
	params := models.OfferParams{
		Selling: t.asset,
		Buying:  t.currency,
		Amount:  utils.FormatAmount(amount),
		Price:   utils.FormatAmount(price),
	}
	return t.placeOffer(ctx, "sell", params)
}

// placeOffer returns the id of the offer left on the book, or "" when the
// offer was filled immediately.
func (t *Trader) placeOffer(ctx context.Context, side string, params models.OfferParams) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.log.WithFields(logrus.Fields{"amount": params.Amount, "price": params.Price}).Debugf("%s called", side)

	var (
		submitted models.SubmitResult
		result    models.ManageOfferResult
	)
	err := t.retry.Do(ctx, side, t.retryOnBadSeq(side), func(ctx context.Context) error {
		var err error
		submitted, err = t.offers.ManageOffer(ctx, params)
		return err
	})
	if err != nil {
		t.log.WithError(err).Errorf("%s failed", side)
		return "", err
	}

	result, err = utils.DecodeManageOfferSubmission(submitted.ResultXDR)
	if err != nil {
		return "", fmt.Errorf("%s: decode result: %w", side, err)
	}

	event := buildOfferEvent(side, t.offers.AccountID(), params, submitted, result, t.now().UTC())
	if err := t.journal.RecordOfferEvents(ctx, []models.OfferEvent{event}); err != nil {
		t.log.WithError(err).Warn("could not journal offer")
	}

	if result.Offer == nil {
		t.log.WithField("claims", len(result.OffersClaimed)).Debugf("%s filled immediately", side)
		return "", nil
	}
	t.log.WithField("offer", result.Offer.OfferID).Debugf("%s new order", side)
	return result.Offer.OfferID, nil
}

func (t *Trader) retryOnBadSeq(op string) func(error) bool {
	return func(err error) bool {
		if errors.Is(err, utils.ErrSequenceConflict) {
			t.log.WithField("op", op).Debug("`tx_bad_seq` caught, retry")
			return true
		}
		return utils.IsRetryable(err)
	}
}

// CancelOrder drops every open offer of the account, not only orderID.
func (t *Trader) CancelOrder(ctx context.Context, orderID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.log.WithField("order", orderID).Debug("cancelOrder called")
	return t.retry.Do(ctx, "cancelOrder", nil, func(ctx context.Context) error {
		submitted, err := t.offers.DropOffers(ctx)
		if err != nil {
			return err
		}
		if submitted != nil {
			event := buildDropEvent(t.offers.AccountID(), *submitted, t.now().UTC())
			if err := t.journal.RecordOfferEvents(ctx, []models.OfferEvent{event}); err != nil {
				t.log.WithError(err).Warn("could not journal drop")
			}
		}
		return nil
	})
}

// CheckOrder reports true once the offer is no longer open.
func (t *Trader) CheckOrder(ctx context.Context, orderID string) (bool, error) {
	offer, err := t.findOffer(ctx, orderID)
	if err != nil {
		return false, err
	}
	return offer == nil, nil
}

// GetOrder returns the open offer's price, remaining amount and last
// modification time, or a zeroed result at the epoch once it is gone.
func (t *Trader) GetOrder(ctx context.Context, orderID string) (models.OrderInfo, error) {
	offer, err := t.findOffer(ctx, orderID)
	if err != nil {
		return models.OrderInfo{}, err
	}
	if offer == nil {
		return models.OrderInfo{Date: time.Unix(0, 0).UTC()}, nil
	}
	return models.OrderInfo{Price: offer.Price, Amount: offer.Amount, Date: offer.LastModified}, nil
}

func (t *Trader) ListOffers(ctx context.Context) ([]models.OpenOffer, error) {
	var offers []models.OpenOffer
	err := t.retry.Do(ctx, "listOffers", utils.IsRetryable, func(ctx context.Context) error {
		var err error
		offers, err = t.ledger.ListOffers(ctx, t.offers.AccountID())
		return err
	})
	return offers, err
}

func (t *Trader) findOffer(ctx context.Context, orderID string) (*models.OpenOffer, error) {
	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid order id %q: %w", orderID, err)
	}
	offers, err := t.ListOffers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range offers {
		if offers[i].ID == id {
			return &offers[i], nil
		}
	}
	return nil, nil
}

// GetTrades returns market trades oldest first unless descending is set.
func (t *Trader) GetTrades(ctx context.Context, since time.Time, descending bool) ([]models.Trade, error) {
	firstFetch := !since.IsZero()

	var raw []models.MarketTrade
	err := t.retry.Do(ctx, "getTrades", utils.IsRetryable, func(ctx context.Context) error {
		var err error
		raw, err = t.market.TradeHistory(ctx, t.pair, since)
		return err
	})
	if err != nil {
		return nil, err
	}
	if firstFetch && len(raw) == firstFetchLimit {
		return nil, fmt.Errorf("%w: %d trades returned since %s", utils.ErrHistoryTruncated, len(raw), since.UTC().Format(time.RFC3339))
	}

	trades := make([]models.Trade, len(raw))
	for i, trade := range raw {
		idx := i
		if !descending {
			idx = len(raw) - 1 - i
		}
		trades[idx] = models.Trade{
			TID:    trade.TradeID,
			Amount: trade.Amount,
			Date:   trade.Date.Unix(),
			Price:  trade.Rate,
		}
	}
	return trades, nil
}
