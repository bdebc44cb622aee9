package utils

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/celerfi/stellar-exchange-adapter/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

var offerEventColumns = []string{
	"recorded_at", "ledger_sequence", "transaction_hash", "action",
	"source_account", "selling", "buying", "offer_id", "offer_amount",
	"offer_price", "resting_amount", "status", "order_matches",
}

// OrderJournal appends offer events to the offer_events table.
type OrderJournal struct {
	db *pgxpool.Pool
}

func JournalURL(user, password, host, name string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:5432/%s", user, password, host, name)
}

func ConnectJournal(ctx context.Context, databaseUrl string) (*OrderJournal, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseUrl)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	poolConfig.MaxConns = 5
	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}

	logrus.WithField("host", poolConfig.ConnConfig.Host).Info("connected to order journal database")
	return &OrderJournal{db: dbPool}, nil
}

func (j *OrderJournal) Close() {
	j.db.Close()
}

func (j *OrderJournal) RecordOfferEvents(ctx context.Context, events []models.OfferEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := j.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"offer_events"},
		offerEventColumns,
		pgx.CopyFromSlice(len(events), func(i int) ([]interface{}, error) {
			return offerEventRow(events[i])
		}),
	)
	if err != nil {
		return fmt.Errorf("error inserting offer events: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing offer events: %w", err)
	}
	return nil
}

func offerEventRow(e models.OfferEvent) ([]interface{}, error) {
	orderMatchesJSON, err := json.Marshal(e.OrderMatches)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order matches to JSON: %w", err)
	}
	return []interface{}{
		e.RecordedAt, e.LedgerSequence, e.TransactionHash, e.Action,
		e.SourceAccount, e.Selling, e.Buying, e.OfferID, e.OfferAmount,
		e.OfferPrice, e.RestingAmount, e.Status, orderMatchesJSON,
	}, nil
}
