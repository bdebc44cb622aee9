package utils

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/celerfi/stellar-exchange-adapter/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stellar/go/amount"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// priceDivisionPrecision is the number of fractional digits kept when a
// price ratio does not terminate.
const priceDivisionPrecision = 20

var decoderLog = logrus.WithField("component", "xdr-decoder")

// DecodePrice returns n/d as an exact decimal string.
func DecodePrice(p xdr.Price) (string, error) {
	if p.D == 0 {
		return "", fmt.Errorf("%w: %d/%d", ErrDivisionInvariant, p.N, p.D)
	}
	n := decimal.NewFromInt32(int32(p.N))
	d := decimal.NewFromInt32(int32(p.D))
	return n.DivRound(d, priceDivisionPrecision).String(), nil
}

// DecodeAccountID strkey-encodes the ed25519 key behind an account id.
func DecodeAccountID(id xdr.AccountId) (string, error) {
	if id.Type != xdr.PublicKeyTypePublicKeyTypeEd25519 || id.Ed25519 == nil {
		return "", fmt.Errorf("unsupported public key type %v", id.Type)
	}
	return strkey.Encode(strkey.VersionByteAccountID, id.Ed25519[:])
}

func mustAccountID(id xdr.AccountId) string {
	address, err := DecodeAccountID(id)
	if err != nil {
		decoderLog.WithError(err).Warn("could not encode account id")
		return ""
	}
	return address
}

func trimAssetCode(code []byte) string {
	return strings.TrimRight(string(code), "\x00")
}

func DecodeAsset(a xdr.Asset) models.Asset {
	switch a.Type {
	case xdr.AssetTypeAssetTypeNative:
		return models.NativeAsset()
	case xdr.AssetTypeAssetTypeCreditAlphanum4:
		credit := a.MustAlphaNum4()
		return models.IssuedAsset(trimAssetCode(credit.AssetCode[:]), mustAccountID(credit.Issuer))
	case xdr.AssetTypeAssetTypeCreditAlphanum12:
		credit := a.MustAlphaNum12()
		return models.IssuedAsset(trimAssetCode(credit.AssetCode[:]), mustAccountID(credit.Issuer))
	default:
		tag := tagName(a.Type.String(), int32(a.Type))
		decoderLog.WithField("switchName", tag).Warn("unknown asset type, skip it")
		return models.Asset{Type: models.AssetTypeUnknown, Tag: tag}
	}
}

// decodeTrustLineAsset returns the asset for classic trustlines and the pool
// id for pool share trustlines.
func decodeTrustLineAsset(a xdr.TrustLineAsset) (*models.Asset, *string) {
	switch a.Type {
	case xdr.AssetTypeAssetTypePoolShare:
		if a.LiquidityPoolId == nil {
			return nil, nil
		}
		id := hex.EncodeToString(a.LiquidityPoolId[:])
		return nil, &id
	case xdr.AssetTypeAssetTypeNative:
		asset := models.NativeAsset()
		return &asset, nil
	case xdr.AssetTypeAssetTypeCreditAlphanum4:
		asset := models.IssuedAsset(trimAssetCode(a.AlphaNum4.AssetCode[:]), mustAccountID(a.AlphaNum4.Issuer))
		return &asset, nil
	case xdr.AssetTypeAssetTypeCreditAlphanum12:
		asset := models.IssuedAsset(trimAssetCode(a.AlphaNum12.AssetCode[:]), mustAccountID(a.AlphaNum12.Issuer))
		return &asset, nil
	default:
		tag := tagName(a.Type.String(), int32(a.Type))
		decoderLog.WithField("switchName", tag).Warn("unknown trustline asset type, skip it")
		asset := models.Asset{Type: models.AssetTypeUnknown, Tag: tag}
		return &asset, nil
	}
}

func DecodeOfferEntry(o xdr.OfferEntry) (models.Offer, error) {
	price, err := DecodePrice(o.Price)
	if err != nil {
		return models.Offer{}, fmt.Errorf("offer %d: %w", o.OfferId, err)
	}
	return models.Offer{
		OfferID:  fmt.Sprintf("%d", uint64(o.OfferId)),
		SellerID: mustAccountID(o.SellerId),
		Selling:  DecodeAsset(o.Selling),
		Buying:   DecodeAsset(o.Buying),
		Amount:   amount.String(o.Amount),
		Price:    price,
		Flags:    uint32(o.Flags),
	}, nil
}

func DecodeClaimAtom(c xdr.ClaimAtom) models.ClaimAtom {
	var (
		sellerID, offerID, poolID *string
		sold, bought              xdr.Asset
		amountSold, amountBought  xdr.Int64
	)

	switch c.Type {
	case xdr.ClaimAtomTypeClaimAtomTypeV0:
		v0 := c.MustV0()
		seller, err := strkey.Encode(strkey.VersionByteAccountID, v0.SellerEd25519[:])
		if err == nil {
			sellerID = &seller
		}
		id := fmt.Sprintf("%d", uint64(v0.OfferId))
		offerID = &id
		sold, amountSold, bought, amountBought = v0.AssetSold, v0.AmountSold, v0.AssetBought, v0.AmountBought
	case xdr.ClaimAtomTypeClaimAtomTypeOrderBook:
		ob := c.MustOrderBook()
		seller := mustAccountID(ob.SellerId)
		sellerID = &seller
		id := fmt.Sprintf("%d", uint64(ob.OfferId))
		offerID = &id
		sold, amountSold, bought, amountBought = ob.AssetSold, ob.AmountSold, ob.AssetBought, ob.AmountBought
	case xdr.ClaimAtomTypeClaimAtomTypeLiquidityPool:
		lp := c.MustLiquidityPool()
		id := hex.EncodeToString(lp.LiquidityPoolId[:])
		poolID = &id
		sold, amountSold, bought, amountBought = lp.AssetSold, lp.AmountSold, lp.AssetBought, lp.AmountBought
	default:
		tag := tagName(c.Type.String(), int32(c.Type))
		decoderLog.WithField("switchName", tag).Warn("unknown claim atom type, skip it")
		unknown := models.Asset{Type: models.AssetTypeUnknown, Tag: tag}
		return models.ClaimAtom{Tag: tag, AssetSold: unknown, AssetBought: unknown}
	}

	return models.ClaimAtom{
		SellerID:        sellerID,
		OfferID:         offerID,
		LiquidityPoolID: poolID,
		AssetSold:       DecodeAsset(sold),
		AmountSold:      amount.String(amountSold),
		AssetBought:     DecodeAsset(bought),
		AmountBought:    amount.String(amountBought),
	}
}

func DecodeManageOfferResult(r xdr.ManageSellOfferResult) (models.ManageOfferResult, error) {
	if r.Code != xdr.ManageSellOfferResultCodeManageSellOfferSuccess || r.Success == nil {
		return models.ManageOfferResult{}, fmt.Errorf("manage offer failed: %s", r.Code.String())
	}
	return decodeManageOfferSuccess(*r.Success)
}

func decodeManageOfferSuccess(success xdr.ManageOfferSuccessResult) (models.ManageOfferResult, error) {
	result := models.ManageOfferResult{
		OffersClaimed: make([]models.ClaimAtom, 0, len(success.OffersClaimed)),
	}
	for _, claim := range success.OffersClaimed {
		result.OffersClaimed = append(result.OffersClaimed, DecodeClaimAtom(claim))
	}

	switch success.Offer.Effect {
	case xdr.ManageOfferEffectManageOfferDeleted:
		result.Effect = models.ManageOfferDeleted
		return result, nil
	case xdr.ManageOfferEffectManageOfferCreated:
		result.Effect = models.ManageOfferCreated
	default:
		result.Effect = models.ManageOfferUpdated
	}

	if success.Offer.Offer == nil {
		return result, fmt.Errorf("manage offer effect %s carries no offer", success.Offer.Effect.String())
	}
	offer, err := DecodeOfferEntry(*success.Offer.Offer)
	if err != nil {
		return result, err
	}
	result.Offer = &offer
	return result, nil
}

// DecodeManageOfferSubmission decodes the base64 TransactionResult of a
// single manage-sell-offer transaction.
func DecodeManageOfferSubmission(resultXDR string) (models.ManageOfferResult, error) {
	var txResult xdr.TransactionResult
	if err := xdr.SafeUnmarshalBase64(resultXDR, &txResult); err != nil {
		return models.ManageOfferResult{}, fmt.Errorf("failed to unmarshal result XDR: %w", err)
	}
	if txResult.Result.Code != xdr.TransactionResultCodeTxSuccess {
		return models.ManageOfferResult{}, fmt.Errorf("transaction failed: %s", txResult.Result.Code.String())
	}
	opResults := txResult.Result.Results
	if opResults == nil || len(*opResults) == 0 {
		return models.ManageOfferResult{}, fmt.Errorf("transaction result has no operation results")
	}
	tr := (*opResults)[0].Tr
	if tr == nil || tr.ManageSellOfferResult == nil {
		return models.ManageOfferResult{}, fmt.Errorf("first operation is not a manage sell offer")
	}
	return DecodeManageOfferResult(*tr.ManageSellOfferResult)
}

func DecodeAccountEntry(a xdr.AccountEntry) models.AccountEntry {
	balance := amount.String(a.Balance)
	seqNum := fmt.Sprintf("%d", int64(a.SeqNum))
	numSubEntries := uint32(a.NumSubEntries)
	flags := uint32(a.Flags)
	homeDomain := string(a.HomeDomain)
	thresholds := base64.StdEncoding.EncodeToString(a.Thresholds[:])

	entry := models.AccountEntry{
		AccountID:     mustAccountID(a.AccountId),
		Balance:       &balance,
		SeqNum:        &seqNum,
		NumSubEntries: &numSubEntries,
		Flags:         &flags,
		HomeDomain:    &homeDomain,
		Thresholds:    &thresholds,
	}
	if a.InflationDest != nil {
		dest := mustAccountID(*a.InflationDest)
		entry.InflationDest = &dest
	}
	for _, signer := range a.Signers {
		key, err := signer.Key.GetAddress()
		if err != nil {
			decoderLog.WithError(err).Warn("unknown signer key, skip it")
			continue
		}
		entry.Signers = append(entry.Signers, models.Signer{Key: key, Weight: uint32(signer.Weight)})
	}
	if v1 := a.Ext.V1; v1 != nil {
		entry.Liabilities = &models.Liabilities{
			Buying:  amount.String(v1.Liabilities.Buying),
			Selling: amount.String(v1.Liabilities.Selling),
		}
		if v2 := v1.Ext.V2; v2 != nil {
			sponsored := uint32(v2.NumSponsored)
			sponsoring := uint32(v2.NumSponsoring)
			entry.NumSponsored = &sponsored
			entry.NumSponsoring = &sponsoring
		}
	}
	return entry
}

func DecodeTrustLineEntry(t xdr.TrustLineEntry) models.TrustLineEntry {
	balance := amount.String(t.Balance)
	limit := amount.String(t.Limit)
	flags := uint32(t.Flags)

	entry := models.TrustLineEntry{
		AccountID: mustAccountID(t.AccountId),
		Balance:   &balance,
		Limit:     &limit,
		Flags:     &flags,
	}
	entry.Asset, entry.LiquidityPoolID = decodeTrustLineAsset(t.Asset)
	if v1 := t.Ext.V1; v1 != nil {
		entry.Liabilities = &models.Liabilities{
			Buying:  amount.String(v1.Liabilities.Buying),
			Selling: amount.String(v1.Liabilities.Selling),
		}
	}
	return entry
}

// DecodeLedgerEntryData decodes account, trustline and offer entries. Other
// entry types become an unknown placeholder carrying the discriminant name.
func DecodeLedgerEntryData(d xdr.LedgerEntryData) (models.LedgerEntryData, error) {
	switch d.Type {
	case xdr.LedgerEntryTypeAccount:
		account := DecodeAccountEntry(d.MustAccount())
		return models.LedgerEntryData{Type: models.LedgerEntryAccount, Account: &account}, nil
	case xdr.LedgerEntryTypeTrustline:
		trustLine := DecodeTrustLineEntry(d.MustTrustLine())
		return models.LedgerEntryData{Type: models.LedgerEntryTrustLine, TrustLine: &trustLine}, nil
	case xdr.LedgerEntryTypeOffer:
		offer, err := DecodeOfferEntry(d.MustOffer())
		if err != nil {
			return models.LedgerEntryData{}, err
		}
		return models.LedgerEntryData{Type: models.LedgerEntryOffer, Offer: &offer}, nil
	default:
		return unknownEntryData(d.Type), nil
	}
}

func unknownEntryData(t xdr.LedgerEntryType) models.LedgerEntryData {
	tag := tagName(t.String(), int32(t))
	decoderLog.WithField("switchName", tag).Warn("Unknown switch name for entryData. Skip it")
	return models.LedgerEntryData{Type: models.LedgerEntryUnknown, Tag: tag}
}

// decodeLedgerKey keeps only the identity of a removed entry.
func decodeLedgerKey(k xdr.LedgerKey) models.LedgerEntryData {
	switch k.Type {
	case xdr.LedgerEntryTypeAccount:
		return models.LedgerEntryData{
			Type:    models.LedgerEntryAccount,
			Account: &models.AccountEntry{AccountID: mustAccountID(k.MustAccount().AccountId)},
		}
	case xdr.LedgerEntryTypeTrustline:
		key := k.MustTrustLine()
		trustLine := models.TrustLineEntry{AccountID: mustAccountID(key.AccountId)}
		trustLine.Asset, trustLine.LiquidityPoolID = decodeTrustLineAsset(key.Asset)
		return models.LedgerEntryData{Type: models.LedgerEntryTrustLine, TrustLine: &trustLine}
	case xdr.LedgerEntryTypeOffer:
		key := k.MustOffer()
		return models.LedgerEntryData{
			Type: models.LedgerEntryOffer,
			Offer: &models.Offer{
				OfferID:  fmt.Sprintf("%d", uint64(key.OfferId)),
				SellerID: mustAccountID(key.SellerId),
			},
		}
	default:
		return unknownEntryData(k.Type)
	}
}

func DecodeLedgerEntry(e xdr.LedgerEntry) (models.LedgerEntry, error) {
	data, err := DecodeLedgerEntryData(e.Data)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	return models.LedgerEntry{
		LastModifiedLedgerSeq: uint32(e.LastModifiedLedgerSeq),
		Data:                  data,
	}, nil
}

// DecodeLedgerEntryChange never fails on an unrecognized change type; it logs
// a warning and returns an unknown placeholder.
func DecodeLedgerEntryChange(c xdr.LedgerEntryChange) (models.LedgerEntryChange, error) {
	var (
		changeType models.LedgerEntryChangeType
		entry      *xdr.LedgerEntry
	)
	switch c.Type {
	case xdr.LedgerEntryChangeTypeLedgerEntryCreated:
		changeType, entry = models.ChangeCreated, c.Created
	case xdr.LedgerEntryChangeTypeLedgerEntryUpdated:
		changeType, entry = models.ChangeUpdated, c.Updated
	case xdr.LedgerEntryChangeTypeLedgerEntryState:
		changeType, entry = models.ChangeState, c.State
	case xdr.LedgerEntryChangeTypeLedgerEntryRestored:
		changeType, entry = models.ChangeRestored, c.Restored
	case xdr.LedgerEntryChangeTypeLedgerEntryRemoved:
		if c.Removed == nil {
			return models.LedgerEntryChange{}, fmt.Errorf("removed change carries no ledger key")
		}
		removed := decodeLedgerKey(*c.Removed)
		return models.LedgerEntryChange{Type: models.ChangeRemoved, Removed: &removed}, nil
	default:
		tag := tagName(c.Type.String(), int32(c.Type))
		decoderLog.WithField("switchName", tag).Warn("Unknown switch name for change. Skip it")
		return models.LedgerEntryChange{Type: models.ChangeUnknown, Tag: tag}, nil
	}

	if entry == nil {
		return models.LedgerEntryChange{}, fmt.Errorf("%s change carries no ledger entry", changeType)
	}
	decoded, err := DecodeLedgerEntry(*entry)
	if err != nil {
		return models.LedgerEntryChange{}, err
	}
	return models.LedgerEntryChange{Type: changeType, Entry: &decoded}, nil
}

func DecodeOperationMeta(op xdr.OperationMeta) (models.OperationMeta, error) {
	meta := models.OperationMeta{Changes: make([]models.LedgerEntryChange, 0, len(op.Changes))}
	for _, change := range op.Changes {
		decoded, err := DecodeLedgerEntryChange(change)
		if err != nil {
			return meta, err
		}
		meta.Changes = append(meta.Changes, decoded)
	}
	return meta, nil
}

// DecodeTransactionMeta decodes base64 TransactionMeta versions 0 to 4.
// Unknown discriminants nested inside the binary are rejected by the XDR
// reader itself, so they surface as an unmarshal error rather than a
// placeholder.
func DecodeTransactionMeta(metaXDR string) (models.TransactionMeta, error) {
	var meta xdr.TransactionMeta
	if err := xdr.SafeUnmarshalBase64(metaXDR, &meta); err != nil {
		return models.TransactionMeta{}, fmt.Errorf("failed to unmarshal meta XDR: %w", err)
	}

	var ops []xdr.OperationMeta
	switch meta.V {
	case 0:
		if meta.Operations != nil {
			ops = *meta.Operations
		}
	case 1:
		ops = meta.MustV1().Operations
	case 2:
		ops = meta.MustV2().Operations
	case 3:
		ops = meta.MustV3().Operations
	case 4:
		for _, op := range meta.MustV4().Operations {
			ops = append(ops, xdr.OperationMeta{Changes: op.Changes})
		}
	default:
		decoderLog.WithField("version", meta.V).Warn("unsupported transaction meta version, skip operations")
		return models.TransactionMeta{Version: meta.V}, nil
	}

	result := models.TransactionMeta{Version: meta.V, Operations: make([]models.OperationMeta, 0, len(ops))}
	for _, op := range ops {
		decoded, err := DecodeOperationMeta(op)
		if err != nil {
			return result, err
		}
		result.Operations = append(result.Operations, decoded)
	}
	return result, nil
}

func tagName(name string, value int32) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("unknown(%d)", value)
}
