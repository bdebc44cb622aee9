package models

import "fmt"

type AssetType string

const (
	AssetTypeNative  AssetType = "native"
	AssetTypeIssued  AssetType = "issued"
	AssetTypeUnknown AssetType = "unknown"
)

// Asset is the ledger representation of a tradable symbol.
type Asset struct {
	Type   AssetType `json:"type" yaml:"type"`
	Code   string    `json:"code,omitempty" yaml:"code"`
	Issuer string    `json:"issuer,omitempty" yaml:"issuer"`
	// Tag holds the raw discriminant name when Type is unknown.
	Tag string `json:"tag,omitempty" yaml:"-"`
}

func NativeAsset() Asset {
	return Asset{Type: AssetTypeNative}
}

func IssuedAsset(code, issuer string) Asset {
	return Asset{Type: AssetTypeIssued, Code: code, Issuer: issuer}
}

func (a Asset) IsNative() bool {
	return a.Type == AssetTypeNative
}

// Validate checks that issued assets carry both code and issuer and native ones carry neither.
func (a Asset) Validate() error {
	switch a.Type {
	case AssetTypeNative:
		if a.Code != "" || a.Issuer != "" {
			return fmt.Errorf("native asset must not carry code or issuer")
		}
	case AssetTypeIssued:
		if a.Code == "" || a.Issuer == "" {
			return fmt.Errorf("issued asset needs both code and issuer")
		}
		if len(a.Code) > 12 {
			return fmt.Errorf("asset code %q longer than 12 characters", a.Code)
		}
	default:
		return fmt.Errorf("unsupported asset type %q", a.Type)
	}
	return nil
}

func (a Asset) Equal(b Asset) bool {
	return a.Type == b.Type && a.Code == b.Code && a.Issuer == b.Issuer
}

// Offer is a decoded OfferEntry snapshot.
type Offer struct {
	OfferID  string `json:"offerId"`
	SellerID string `json:"sellerId"`
	Selling  Asset  `json:"selling"`
	Buying   Asset  `json:"buying"`
	Amount   string `json:"amount"`
	Price    string `json:"price"`
	Flags    uint32 `json:"flags"`
}

// ClaimAtom is one trade produced by an offer operation. Liquidity pool
// claims have no seller or offer id; order book claims have no pool id.
// Tag is set only for an unrecognized claim type.
type ClaimAtom struct {
	Tag             string  `json:"tag,omitempty"`
	SellerID        *string `json:"sellerId,omitempty"`
	OfferID         *string `json:"offerId,omitempty"`
	LiquidityPoolID *string `json:"liquidityPoolId,omitempty"`
	AssetSold       Asset   `json:"assetSold"`
	AmountSold      string  `json:"amountSold"`
	AssetBought     Asset   `json:"assetBought"`
	AmountBought    string  `json:"amountBought"`
}

type ManageOfferEffect string

const (
	ManageOfferCreated ManageOfferEffect = "created"
	ManageOfferUpdated ManageOfferEffect = "updated"
	ManageOfferDeleted ManageOfferEffect = "deleted"
)

// ManageOfferResult holds the claims made by an offer operation and the offer
// left resting on the book. Offer is nil when the effect is deleted.
type ManageOfferResult struct {
	Effect        ManageOfferEffect `json:"effect"`
	OffersClaimed []ClaimAtom       `json:"offersClaimed"`
	Offer         *Offer            `json:"offer"`
}

type Liabilities struct {
	Buying  string `json:"buying"`
	Selling string `json:"selling"`
}

type Signer struct {
	Key    string `json:"key"`
	Weight uint32 `json:"weight"`
}

// AccountEntry fields that only exist in extension arms are nil when the
// entry was written without that extension.
type AccountEntry struct {
	AccountID     string       `json:"accountId"`
	Balance       *string      `json:"balance,omitempty"`
	SeqNum        *string      `json:"seqNum,omitempty"`
	NumSubEntries *uint32      `json:"numSubEntries,omitempty"`
	InflationDest *string      `json:"inflationDest,omitempty"`
	Flags         *uint32      `json:"flags,omitempty"`
	HomeDomain    *string      `json:"homeDomain,omitempty"`
	Thresholds    *string      `json:"thresholds,omitempty"`
	Signers       []Signer     `json:"signers,omitempty"`
	Liabilities   *Liabilities `json:"liabilities,omitempty"`
	NumSponsored  *uint32      `json:"numSponsored,omitempty"`
	NumSponsoring *uint32      `json:"numSponsoring,omitempty"`
}

type TrustLineEntry struct {
	AccountID       string       `json:"accountId"`
	Asset           *Asset       `json:"asset,omitempty"`
	LiquidityPoolID *string      `json:"liquidityPoolId,omitempty"`
	Balance         *string      `json:"balance,omitempty"`
	Limit           *string      `json:"limit,omitempty"`
	Flags           *uint32      `json:"flags,omitempty"`
	Liabilities     *Liabilities `json:"liabilities,omitempty"`
}

type LedgerEntryType string

const (
	LedgerEntryAccount   LedgerEntryType = "account"
	LedgerEntryTrustLine LedgerEntryType = "trustline"
	LedgerEntryOffer     LedgerEntryType = "offer"
	LedgerEntryUnknown   LedgerEntryType = "unknown"
)

// LedgerEntryData carries exactly one of Account, TrustLine or Offer, or
// none of them when Type is unknown.
type LedgerEntryData struct {
	Type      LedgerEntryType `json:"type"`
	Tag       string          `json:"tag,omitempty"`
	Account   *AccountEntry   `json:"account,omitempty"`
	TrustLine *TrustLineEntry `json:"trustLine,omitempty"`
	Offer     *Offer          `json:"offer,omitempty"`
}

type LedgerEntry struct {
	LastModifiedLedgerSeq uint32          `json:"lastModifiedLedgerSeq"`
	Data                  LedgerEntryData `json:"data"`
}

type LedgerEntryChangeType string

const (
	ChangeCreated  LedgerEntryChangeType = "created"
	ChangeUpdated  LedgerEntryChangeType = "updated"
	ChangeState    LedgerEntryChangeType = "state"
	ChangeRemoved  LedgerEntryChangeType = "removed"
	ChangeRestored LedgerEntryChangeType = "restored"
	ChangeUnknown  LedgerEntryChangeType = "unknown"
)

// LedgerEntryChange wraps a full entry for created, updated, state and
// restored changes and an identity-only record for removed ones.
type LedgerEntryChange struct {
	Type    LedgerEntryChangeType `json:"type"`
	Tag     string                `json:"tag,omitempty"`
	Entry   *LedgerEntry          `json:"entry,omitempty"`
	Removed *LedgerEntryData      `json:"removed,omitempty"`
}

type OperationMeta struct {
	Changes []LedgerEntryChange `json:"changes"`
}

type TransactionMeta struct {
	Version    int32           `json:"version"`
	Operations []OperationMeta `json:"operations"`
}
