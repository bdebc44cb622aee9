package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/celerfi/stellar-exchange-adapter/config"
	"github.com/celerfi/stellar-exchange-adapter/handlers"
	"github.com/celerfi/stellar-exchange-adapter/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd, portfolioCmd, buyCmd, sellCmd, cancelCmd, offersCmd, decodeResultCmd, decodeMetaCmd)
}

// withApp wires the trader for commands that talk to the network.
func withApp(run func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		return run(ctx, a, args)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the trading interface over HTTP",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		var latestLedger handlers.LatestLedgerFunc
		if config.RPC_URL != "" {
			latestLedger = func(ctx context.Context) (uint32, error) {
				return utils.GetNodeLatestLedger(ctx, config.RPC_URL)
			}
		}
		srv := &http.Server{
			Addr:              config.HTTP_ADDR,
			Handler:           handlers.NewRouter(a.trader, latestLedger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logrus.WithField("addr", srv.Addr).Info("serving trading interface")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	}),
}

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Show the asset and currency balances",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		portfolio, err := a.trader.GetPortfolio(ctx)
		if err != nil {
			return err
		}
		return printJSON(portfolio)
	}),
}

func parseAmountPrice(args []string) (decimal.Decimal, decimal.Decimal, error) {
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("amount: %w", err)
	}
	price, err := decimal.NewFromString(args[1])
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("price: %w", err)
	}
	return amount, price, nil
}

func placeCmd(use, short string, place func(*handlers.Trader) func(context.Context, decimal.Decimal, decimal.Decimal) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <amount> <price>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			amount, price, err := parseAmountPrice(args)
			if err != nil {
				return err
			}
			id, err := place(a.trader)(ctx, amount, price)
			if err != nil {
				return err
			}
			if id == "" {
				fmt.Println("offer filled immediately")
				return nil
			}
			fmt.Println(id)
			return nil
		}),
	}
}

var buyCmd = placeCmd("buy", "Buy the asset with the currency", func(t *handlers.Trader) func(context.Context, decimal.Decimal, decimal.Decimal) (string, error) {
	return t.Buy
})

var sellCmd = placeCmd("sell", "Sell the asset for the currency", func(t *handlers.Trader) func(context.Context, decimal.Decimal, decimal.Decimal) (string, error) {
	return t.Sell
})

var cancelCmd = &cobra.Command{
	Use:   "cancel [order-id]",
	Short: "Drop every open offer of the account",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		orderID := ""
		if len(args) == 1 {
			orderID = args[0]
		}
		return a.trader.CancelOrder(ctx, orderID)
	}),
}

var offersCmd = &cobra.Command{
	Use:   "offers",
	Short: "List the account's open offers",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		offers, err := a.trader.ListOffers(ctx)
		if err != nil {
			return err
		}
		return printJSON(offers)
	}),
}

var decodeResultCmd = &cobra.Command{
	Use:   "decode-result <base64-result-xdr>",
	Short: "Decode a manage offer TransactionResult",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := utils.DecodeManageOfferSubmission(args[0])
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var decodeMetaCmd = &cobra.Command{
	Use:   "decode-meta <base64-meta-xdr>",
	Short: "Decode a TransactionMeta into ledger entry changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := utils.DecodeTransactionMeta(args[0])
		if err != nil {
			return err
		}
		return printJSON(meta)
	},
}
