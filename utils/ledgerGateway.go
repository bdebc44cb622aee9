package utils

import (
	"context"
	"time"

	"github.com/celerfi/stellar-exchange-adapter/models"
	"github.com/pkg/errors"
	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/txnbuild"
)

const offersPageLimit = 200

// HorizonGateway talks to the ledger through a Horizon server.
type HorizonGateway struct {
	client horizonclient.ClientInterface
}

func NewHorizonGateway(client horizonclient.ClientInterface) *HorizonGateway {
	return &HorizonGateway{client: client}
}

func (g *HorizonGateway) LoadAccount(ctx context.Context, accountID string) (models.AccountState, error) {
	if err := ctx.Err(); err != nil {
		return models.AccountState{}, err
	}
	account, err := g.client.AccountDetail(horizonclient.AccountRequest{AccountID: accountID})
	if err != nil {
		return models.AccountState{}, classifyHorizonError("load account", err)
	}
	seq, err := account.GetSequenceNumber()
	if err != nil {
		return models.AccountState{}, errors.Wrap(err, "load account: sequence number")
	}

	state := models.AccountState{AccountID: account.AccountID, Sequence: seq}
	for _, b := range account.Balances {
		if b.LiquidityPoolId != "" {
			continue
		}
		amount, err := ParseAmount(b.Balance)
		if err != nil {
			return models.AccountState{}, errors.Wrap(err, "load account: balance")
		}
		state.Balances = append(state.Balances, models.Balance{
			Asset:  FromHorizonAsset(b.Type, b.Code, b.Issuer),
			Amount: amount,
		})
	}
	return state, nil
}

// ListOffers returns every open offer of the account, following Horizon's paging.
func (g *HorizonGateway) ListOffers(ctx context.Context, accountID string) ([]models.OpenOffer, error) {
	var (
		offers []models.OpenOffer
		cursor string
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := g.client.Offers(horizonclient.OfferRequest{
			ForAccount: accountID,
			Cursor:     cursor,
			Limit:      offersPageLimit,
		})
		if err != nil {
			return nil, classifyHorizonError("list offers", err)
		}
		records := page.Embedded.Records
		for _, rec := range records {
			offer, err := openOfferFromRecord(rec)
			if err != nil {
				return nil, err
			}
			offers = append(offers, offer)
		}
		if len(records) < offersPageLimit {
			return offers, nil
		}
		cursor = records[len(records)-1].PagingToken()
	}
}

func openOfferFromRecord(rec hProtocol.Offer) (models.OpenOffer, error) {
	amount, err := ParseAmount(rec.Amount)
	if err != nil {
		return models.OpenOffer{}, errors.Wrapf(err, "offer %d", rec.ID)
	}
	price, err := ParseAmount(rec.Price)
	if err != nil {
		return models.OpenOffer{}, errors.Wrapf(err, "offer %d", rec.ID)
	}
	offer := models.OpenOffer{
		ID:      rec.ID,
		Seller:  rec.Seller,
		Selling: FromHorizonAsset(rec.Selling.Type, rec.Selling.Code, rec.Selling.Issuer),
		Buying:  FromHorizonAsset(rec.Buying.Type, rec.Buying.Code, rec.Buying.Issuer),
		Amount:  amount,
		Price:   price,
	}
	if rec.LastModifiedTime != nil {
		offer.LastModified = rec.LastModifiedTime.UTC()
	} else {
		offer.LastModified = time.Unix(0, 0).UTC()
	}
	return offer, nil
}

func (g *HorizonGateway) SubmitTransaction(ctx context.Context, tx *txnbuild.Transaction) (models.SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return models.SubmitResult{}, err
	}
	resp, err := g.client.SubmitTransaction(tx)
	if err != nil {
		return models.SubmitResult{}, classifyHorizonError("submit transaction", err)
	}
	return models.SubmitResult{
		Hash:      resp.Hash,
		Ledger:    resp.Ledger,
		ResultXDR: resp.ResultXdr,
		MetaXDR:   resp.ResultMetaXdr,
	}, nil
}

// classifyHorizonError turns Horizon failures into the adapter's error taxonomy:
// rejected transactions keep their result codes, transport and 5xx/429
// failures are network errors, anything else is returned wrapped.
func classifyHorizonError(op string, err error) error {
	herr := horizonclient.GetError(err)
	if herr == nil {
		return &NetworkError{Op: op, Err: err}
	}
	if codes, cerr := herr.ResultCodes(); cerr == nil && codes != nil && codes.TransactionCode != "" {
		return &SubmissionError{
			TransactionCode: codes.TransactionCode,
			OperationCodes:  codes.OperationCodes,
			Err:             err,
		}
	}
	status := herr.Problem.Status
	if status == 429 || status >= 500 {
		return &NetworkError{Op: op, Err: err}
	}
	return errors.Wrap(err, op)
}
