package utils

import (
	"fmt"
	"os"
	"sort"

	"github.com/celerfi/stellar-exchange-adapter/models"
	"gopkg.in/yaml.v3"
)

const BTCIssuer = "GD5H2WSHTWVTZI5BR3V5XTRBCFDMEOKFMXR4Y4PU337K7WS55UAADI5T"

// AssetRegistry maps trading symbols to ledger assets. It is read-only after construction.
type AssetRegistry struct {
	assets map[string]models.Asset
}

type assetsFile struct {
	Assets map[string]models.Asset `yaml:"assets"`
}

func NewAssetRegistry(assets map[string]models.Asset) (*AssetRegistry, error) {
	registry := &AssetRegistry{assets: make(map[string]models.Asset, len(assets))}
	for symbol, asset := range assets {
		if err := asset.Validate(); err != nil {
			return nil, fmt.Errorf("asset %s: %w", symbol, err)
		}
		registry.assets[symbol] = asset
	}
	return registry, nil
}

// DefaultAssetRegistry knows the native lumen and the BTC anchor asset.
func DefaultAssetRegistry() *AssetRegistry {
	return &AssetRegistry{assets: map[string]models.Asset{
		"XLM": models.NativeAsset(),
		"BTC": models.IssuedAsset("BTC", BTCIssuer),
	}}
}

// LoadAssetRegistry reads a YAML file of the form
//
//	assets:
//	  XLM: {type: native}
//	  BTC: {type: issued, code: BTC, issuer: G...}
func LoadAssetRegistry(path string) (*AssetRegistry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assets file: %w", err)
	}
	var file assetsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse assets file: %w", err)
	}
	if len(file.Assets) == 0 {
		return nil, fmt.Errorf("assets file %s defines no assets", path)
	}
	return NewAssetRegistry(file.Assets)
}

func (r *AssetRegistry) Resolve(symbol string) (models.Asset, error) {
	asset, ok := r.assets[symbol]
	if !ok {
		return models.Asset{}, fmt.Errorf("%w: %s", ErrUnknownAsset, symbol)
	}
	return asset, nil
}

// Symbol is the reverse lookup used when labelling balances.
func (r *AssetRegistry) Symbol(asset models.Asset) (string, bool) {
	for symbol, a := range r.assets {
		if a.Equal(asset) {
			return symbol, true
		}
	}
	return "", false
}

func (r *AssetRegistry) Symbols() []string {
	symbols := make([]string, 0, len(r.assets))
	for symbol := range r.assets {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
