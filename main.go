package main

import (
	"context"
	"fmt"
	"os"

	"github.com/celerfi/stellar-exchange-adapter/config"
	"github.com/celerfi/stellar-exchange-adapter/handlers"
	"github.com/celerfi/stellar-exchange-adapter/models"
	"github.com/celerfi/stellar-exchange-adapter/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app holds what the commands share once the environment is wired.
type app struct {
	trader  *handlers.Trader
	journal *utils.OrderJournal
}

var rootCmd = &cobra.Command{
	Use:   "stellar-trader",
	Short: "Stellar DEX exchange adapter",
	Long: `stellar-trader places and cancels offers on the Stellar DEX for one account,
decodes the ledger's transaction results and serves the trading interface over HTTP.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(config.LOG_LEVEL, config.LOG_FILE)
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(ctx context.Context) (*app, error) {
	if missing := config.Missing(); len(missing) > 0 {
		return nil, &utils.ConfigurationError{Setting: "environment", Err: fmt.Errorf("missing %v", missing)}
	}

	registry := utils.DefaultAssetRegistry()
	if config.ASSETS_FILE != "" {
		var err error
		registry, err = utils.LoadAssetRegistry(config.ASSETS_FILE)
		if err != nil {
			return nil, &utils.ConfigurationError{Setting: "ASSETS_FILE", Err: err}
		}
	}

	gateways := models.GatewayConfig{HorizonUrl: config.HORIZON_URL, PoloniexUrl: config.POLONIEX_URL}
	ledger := utils.NewHorizonGateway(utils.NewHorizonClient(config.STELLAR_ENV, gateways))
	market := utils.NewPoloniexGateway(gateways)

	offers, err := handlers.NewOfferManager(ledger, handlers.OfferManagerConfig{
		AccountID:         config.STELLAR_ACCOUNT,
		Secret:            config.STELLAR_SECRET,
		NetworkPassphrase: utils.NetworkPassphrase(config.STELLAR_ENV),
	})
	if err != nil {
		return nil, err
	}

	a := &app{}
	var journal handlers.Journal = handlers.NopJournal{}
	if config.DatabaseConfigured() {
		a.journal, err = utils.ConnectJournal(ctx, utils.JournalURL(config.DB_USER, config.DB_PASSWORD, config.DB_HOST, config.DB_NAME))
		if err != nil {
			return nil, err
		}
		journal = a.journal
	}

	retry := utils.DefaultRetryPolicy()
	retry.Delay = config.RETRY_DELAY
	retry.MaxAttempts = config.RETRY_MAX_ATTEMPTS

	a.trader, err = handlers.NewTrader(handlers.TraderConfig{
		Asset:    config.TRADE_ASSET,
		Currency: config.TRADE_CURRENCY,
		Pair:     config.MARKET_PAIR,
		Retry:    retry,
	}, ledger, market, offers, registry, journal)
	if err != nil {
		a.close()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"env":      config.STELLAR_ENV,
		"asset":    config.TRADE_ASSET,
		"currency": config.TRADE_CURRENCY,
	}).Debug("New Stellar Trader")
	return a, nil
}

func (a *app) close() {
	if a.journal != nil {
		a.journal.Close()
	}
}
