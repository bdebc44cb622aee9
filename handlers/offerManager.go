package handlers

import (
	"context"
	"fmt"

	"github.com/celerfi/stellar-exchange-adapter/models"
	"github.com/celerfi/stellar-exchange-adapter/utils"
	"github.com/sirupsen/logrus"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/price"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

// LedgerGateway is the part of the ledger's HTTP API the trader relies on.
type LedgerGateway interface {
	LoadAccount(ctx context.Context, accountID string) (models.AccountState, error)
	ListOffers(ctx context.Context, accountID string) ([]models.OpenOffer, error)
	SubmitTransaction(ctx context.Context, tx *txnbuild.Transaction) (models.SubmitResult, error)
}

type OfferManagerConfig struct {
	AccountID         string
	Secret            string
	NetworkPassphrase string
	BaseFee           int64
	TimeoutSeconds    int64
}

// OfferManager builds, signs and submits manage-offer transactions for one account.
type OfferManager struct {
	ledger     LedgerGateway
	accountID  string
	signer     *keypair.Full
	passphrase string
	baseFee    int64
	timeout    int64
}

func NewOfferManager(ledger LedgerGateway, cfg OfferManagerConfig) (*OfferManager, error) {
	signer, err := keypair.ParseFull(cfg.Secret)
	if err != nil {
		return nil, &utils.ConfigurationError{Setting: "secret", Err: err}
	}
	if cfg.AccountID == "" {
		cfg.AccountID = signer.Address()
	}
	if _, err := utils.ParseAccountID(cfg.AccountID); err != nil {
		return nil, &utils.ConfigurationError{Setting: "account", Err: err}
	}
	if cfg.BaseFee == 0 {
		cfg.BaseFee = txnbuild.MinBaseFee
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 300
	}
	return &OfferManager{
		ledger:     ledger,
		accountID:  cfg.AccountID,
		signer:     signer,
		passphrase: cfg.NetworkPassphrase,
		baseFee:    cfg.BaseFee,
		timeout:    cfg.TimeoutSeconds,
	}, nil
}

func (m *OfferManager) AccountID() string {
	return m.accountID
}

// ManageOffer submits a single manage-sell-offer operation against the
// account's current sequence number.
func (m *OfferManager) ManageOffer(ctx context.Context, params models.OfferParams) (models.SubmitResult, error) {
	op, err := buildManageOffer(params)
	if err != nil {
		return models.SubmitResult{}, err
	}

	account, err := m.ledger.LoadAccount(ctx, m.accountID)
	if err != nil {
		return models.SubmitResult{}, fmt.Errorf("load account: %w", err)
	}

	return m.submit(ctx, account, []txnbuild.Operation{op})
}

// DropOffers cancels every open offer of the account in one transaction.
// With no open offers nothing is built or submitted and the result is nil.
func (m *OfferManager) DropOffers(ctx context.Context) (*models.SubmitResult, error) {
	offers, err := m.ledger.ListOffers(ctx, m.accountID)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	if len(offers) == 0 {
		return nil, nil
	}

	ops := make([]txnbuild.Operation, 0, len(offers))
	for _, offer := range offers {
		op, err := deleteOfferOp(offer)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}

	account, err := m.ledger.LoadAccount(ctx, m.accountID)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	result, err := m.submit(ctx, account, ops)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"offers": len(offers), "hash": result.Hash}).Info("dropped open offers")
	return &result, nil
}

func (m *OfferManager) submit(ctx context.Context, account models.AccountState, ops []txnbuild.Operation) (models.SubmitResult, error) {
	source := txnbuild.NewSimpleAccount(account.AccountID, account.Sequence)
	tx, err := txnbuild.NewTransaction(
		txnbuild.TransactionParams{
			SourceAccount:        &source,
			IncrementSequenceNum: true,
			Operations:           ops,
			BaseFee:              m.baseFee,
			Preconditions: txnbuild.Preconditions{
				TimeBounds: txnbuild.NewTimeout(m.timeout),
			},
		},
	)
	if err != nil {
		return models.SubmitResult{}, fmt.Errorf("failed to build transaction: %w", err)
	}

	tx, err = tx.Sign(m.passphrase, m.signer)
	if err != nil {
		return models.SubmitResult{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	result, err := m.ledger.SubmitTransaction(ctx, tx)
	if err != nil {
		return models.SubmitResult{}, fmt.Errorf("submit transaction: %w", err)
	}
	return result, nil
}

func buildManageOffer(params models.OfferParams) (*txnbuild.ManageSellOffer, error) {
	selling, err := utils.ToTxnAsset(params.Selling)
	if err != nil {
		return nil, fmt.Errorf("selling asset: %w", err)
	}
	buying, err := utils.ToTxnAsset(params.Buying)
	if err != nil {
		return nil, fmt.Errorf("buying asset: %w", err)
	}
	offerPrice, err := price.Parse(params.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", params.Price, err)
	}
	return &txnbuild.ManageSellOffer{
		Selling: selling,
		Buying:  buying,
		Amount:  params.Amount,
		Price:   offerPrice,
		OfferID: params.ID,
	}, nil
}

// deleteOfferOp mirrors the offer's own assets with amount 0 and price 1.
func deleteOfferOp(offer models.OpenOffer) (*txnbuild.ManageSellOffer, error) {
	selling, err := utils.ToTxnAsset(offer.Selling)
	if err != nil {
		return nil, fmt.Errorf("offer %d selling asset: %w", offer.ID, err)
	}
	buying, err := utils.ToTxnAsset(offer.Buying)
	if err != nil {
		return nil, fmt.Errorf("offer %d buying asset: %w", offer.ID, err)
	}
	return &txnbuild.ManageSellOffer{
		Selling: selling,
		Buying:  buying,
		Amount:  "0",
		Price:   xdr.Price{N: 1, D: 1},
		OfferID: offer.ID,
	}, nil
}
