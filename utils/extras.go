package utils

import (
	"fmt"

	"github.com/celerfi/stellar-exchange-adapter/models"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

// ParseAccountID decodes a G... address into its XDR account id.
func ParseAccountID(address string) (xdr.AccountId, error) {
	var accountID xdr.AccountId

	if len(address) == 0 {
		return accountID, fmt.Errorf("empty address string")
	}
	if address[0] != 'G' {
		return accountID, fmt.Errorf("invalid address format: must start with G")
	}

	rawBytes, err := strkey.Decode(strkey.VersionByteAccountID, address)
	if err != nil {
		return accountID, fmt.Errorf("failed to decode account address: %w", err)
	}

	var uint256 xdr.Uint256
	copy(uint256[:], rawBytes)
	accountID.Type = xdr.PublicKeyTypePublicKeyTypeEd25519
	accountID.Ed25519 = &uint256
	return accountID, nil
}

// ToTxnAsset maps an asset onto the transaction builder's representation.
func ToTxnAsset(a models.Asset) (txnbuild.Asset, error) {
	switch a.Type {
	case models.AssetTypeNative:
		return txnbuild.NativeAsset{}, nil
	case models.AssetTypeIssued:
		if err := a.Validate(); err != nil {
			return nil, err
		}
		return txnbuild.CreditAsset{Code: a.Code, Issuer: a.Issuer}, nil
	default:
		return nil, fmt.Errorf("cannot trade asset of type %q", a.Type)
	}
}

// FromHorizonAsset converts the type/code/issuer triple Horizon uses in its JSON.
func FromHorizonAsset(assetType, code, issuer string) models.Asset {
	switch assetType {
	case "native":
		return models.NativeAsset()
	case "credit_alphanum4", "credit_alphanum12":
		return models.IssuedAsset(code, issuer)
	default:
		return models.Asset{Type: models.AssetTypeUnknown, Tag: assetType}
	}
}
