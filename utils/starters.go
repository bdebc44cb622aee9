package utils

import (
	"context"
	"net/http"
	"time"

	"github.com/celerfi/stellar-exchange-adapter/models"
	"github.com/stellar/go/clients/horizonclient"
	client "github.com/stellar/go/clients/rpcclient"
	"github.com/stellar/go/network"
)

// NetworkPassphrase picks the testnet for the development environment and
// the public network otherwise.
func NetworkPassphrase(env string) string {
	if env == "development" {
		return network.TestNetworkPassphrase
	}
	return network.PublicNetworkPassphrase
}

// NewHorizonClient connects to cfg.HorizonUrl, or to the public Horizon of
// the network env selects when it is empty.
func NewHorizonClient(env string, cfg models.GatewayConfig) *horizonclient.Client {
	horizonUrl := cfg.HorizonUrl
	if horizonUrl == "" {
		if env == "development" {
			horizonUrl = "https://horizon-testnet.stellar.org"
		} else {
			horizonUrl = "https://horizon.stellar.org"
		}
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &horizonclient.Client{
		HorizonURL: horizonUrl,
		HTTP:       &http.Client{Timeout: timeout},
	}
}

// GetNodeLatestLedger asks a Stellar RPC node for its latest ledger.
func GetNodeLatestLedger(ctx context.Context, rpcUrl string) (uint32, error) {
	rpcClient := client.NewClient(rpcUrl, nil)
	health, err := rpcClient.GetHealth(ctx)
	if err != nil {
		return 0, err
	}
	return health.LatestLedger, nil
}
