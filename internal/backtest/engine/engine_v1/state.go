package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-strategy/internal/logger"
	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
	"go.uber.org/zap"
)

// BacktestState stores the trades and the equity curve of a run in an
// in-memory DuckDB database so they can be exported as Parquet.
type BacktestState struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewBacktestState(logger *logger.Logger) (*BacktestState, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))

		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &BacktestState{
		logger: logger,
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the trades and equity tables.
func (b *BacktestState) Initialize() error {
	_, err := b.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			type TEXT,
			symbol TEXT,
			node_id TEXT,
			entry_time TIMESTAMP,
			exit_time TIMESTAMP,
			entry_price DOUBLE,
			exit_price DOUBLE,
			lots DOUBLE,
			pips DOUBLE,
			profit DOUBLE,
			costs DOUBLE,
			reason TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create trades table: %w", err)
	}

	_, err = b.db.Exec(`
		CREATE TABLE IF NOT EXISTS equity (
			time TIMESTAMP,
			balance DOUBLE,
			equity DOUBLE,
			drawdown DOUBLE,
			drawdown_percent DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create equity table: %w", err)
	}

	return nil
}

// RecordTrades inserts trades in one transaction.
func (b *BacktestState) RecordTrades(trades []types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, t := range trades {
		_, err := b.sq.
			Insert("trades").
			Columns(
				"id", "type", "symbol", "node_id", "entry_time", "exit_time",
				"entry_price", "exit_price", "lots", "pips", "profit", "costs", "reason",
			).
			Values(
				t.ID, string(t.Type), t.Symbol, t.NodeID, t.EntryTime, t.ExitTime,
				t.EntryPrice, t.ExitPrice, t.Lots, t.Pips, t.Profit, t.Costs, string(t.Reason),
			).
			RunWith(tx).
			Exec()
		if err != nil {
			tx.Rollback()

			return fmt.Errorf("failed to insert trade %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trades: %w", err)
	}

	return nil
}

// RecordEquity inserts the equity curve in one transaction.
func (b *BacktestState) RecordEquity(points []types.EquityPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, p := range points {
		_, err := b.sq.
			Insert("equity").
			Columns("time", "balance", "equity", "drawdown", "drawdown_percent").
			Values(p.Time, p.Balance, p.Equity, p.Drawdown, p.DrawdownPercent).
			RunWith(tx).
			Exec()
		if err != nil {
			tx.Rollback()

			return fmt.Errorf("failed to insert equity point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit equity curve: %w", err)
	}

	return nil
}

// GetAllTrades returns the stored trades ordered by exit time.
func (b *BacktestState) GetAllTrades() ([]types.Trade, error) {
	rows, err := b.sq.
		Select(
			"id", "type", "symbol", "node_id", "entry_time", "exit_time",
			"entry_price", "exit_price", "lots", "pips", "profit", "costs", "reason",
		).
		From("trades").
		OrderBy("exit_time ASC", "entry_time ASC").
		RunWith(b.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []types.Trade

	for rows.Next() {
		var t types.Trade

		var tradeType, reason string

		err := rows.Scan(
			&t.ID, &tradeType, &t.Symbol, &t.NodeID, &t.EntryTime, &t.ExitTime,
			&t.EntryPrice, &t.ExitPrice, &t.Lots, &t.Pips, &t.Profit, &t.Costs, &reason,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		t.Type = types.TradeType(tradeType)
		t.Reason = types.ExitReason(reason)
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

// NodeProfit is the net result of the trades one action node produced.
type NodeProfit struct {
	NodeID string
	Trades int
	Profit float64
}

// ProfitByNode aggregates trades per action node, most profitable first.
func (b *BacktestState) ProfitByNode() ([]NodeProfit, error) {
	rows, err := b.sq.
		Select("node_id", "COUNT(*)", "SUM(profit)").
		From("trades").
		GroupBy("node_id").
		OrderBy("SUM(profit) DESC", "node_id ASC").
		RunWith(b.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate trades: %w", err)
	}
	defer rows.Close()

	var result []NodeProfit

	for rows.Next() {
		var np NodeProfit
		if err := rows.Scan(&np.NodeID, &np.Trades, &np.Profit); err != nil {
			return nil, fmt.Errorf("failed to scan node profit: %w", err)
		}

		result = append(result, np)
	}

	return result, rows.Err()
}

// EquityCount returns the number of stored equity samples.
func (b *BacktestState) EquityCount() (int, error) {
	var count int

	err := b.sq.Select("COUNT(*)").From("equity").RunWith(b.db).QueryRow().Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count equity points: %w", err)
	}

	return count, nil
}

// Write exports the trades and the equity curve as Parquet files into path
// and returns their paths.
func (b *BacktestState) Write(path string) (string, string, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create results directory", err)
	}

	tradesPath := filepath.Join(path, "trades.parquet")
	equityPath := filepath.Join(path, "equity.parquet")

	// squirrel has no COPY
	for table, target := range map[string]string{"trades": tradesPath, "equity": equityPath} {
		quoted := strings.ReplaceAll(target, "'", "''")
		if _, err := b.db.Exec(fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, table, quoted)); err != nil {
			return "", "", errors.Wrapf(errors.ErrCodeResultWriteFailed, err, "failed to export %s to Parquet", table)
		}
	}

	b.logger.Info("Successfully exported backtest results to Parquet files",
		zap.String("trades", tradesPath),
		zap.String("equity", equityPath),
	)

	return tradesPath, equityPath, nil
}

// Cleanup drops every table and recreates them empty.
func (b *BacktestState) Cleanup() error {
	_, err := b.db.Exec(`
		DROP TABLE IF EXISTS trades;
		DROP TABLE IF EXISTS equity;
	`)
	if err != nil {
		return fmt.Errorf("failed to cleanup state: %w", err)
	}

	return b.Initialize()
}

func (b *BacktestState) Close() error {
	return b.db.Close()
}
