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

// BacktestSignalLog records every signal the interpreter emits in a DuckDB
// table, in emission order.
type BacktestSignalLog struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewBacktestSignalLog(logger *logger.Logger) (*BacktestSignalLog, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))

		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		db.Close()

		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	signalLog := &BacktestSignalLog{
		logger: logger,
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := signalLog.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return signalLog, nil
}

// Log appends a signal.
func (l *BacktestSignalLog) Log(signal types.Signal) error {
	if l == nil || l.db == nil {
		return fmt.Errorf("signal log or database is nil")
	}

	var nextID int
	if err := l.db.QueryRow("SELECT nextval('signal_id_seq')").Scan(&nextID); err != nil {
		return fmt.Errorf("failed to get next ID from sequence: %w", err)
	}

	_, err := l.sq.
		Insert("signals").
		Columns("id", "time", "type", "symbol", "node_id", "reason").
		Values(nextID, signal.Time, string(signal.Type), signal.Symbol, signal.NodeID, signal.Reason).
		RunWith(l.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert signal: %w", err)
	}

	return nil
}

// GetSignals returns the signals in the order they were logged. An empty
// signalType returns every type.
func (l *BacktestSignalLog) GetSignals(signalType types.SignalType) ([]types.Signal, error) {
	if l == nil || l.db == nil {
		return nil, fmt.Errorf("signal log or database is nil")
	}

	query := l.sq.
		Select("time", "type", "symbol", "node_id", "reason").
		From("signals").
		OrderBy("id ASC")

	if signalType != "" {
		query = query.Where(squirrel.Eq{"type": string(signalType)})
	}

	rows, err := query.RunWith(l.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	var signals []types.Signal

	for rows.Next() {
		var s types.Signal

		var signalTypeStr string

		if err := rows.Scan(&s.Time, &signalTypeStr, &s.Symbol, &s.NodeID, &s.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}

		s.Type = types.SignalType(signalTypeStr)
		signals = append(signals, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signals: %w", err)
	}

	return signals, nil
}

// Write saves the signals to signals.parquet in path and returns the file path.
func (l *BacktestSignalLog) Write(path string) (string, error) {
	if l == nil || l.db == nil || l.logger == nil {
		return "", fmt.Errorf("signal log, database, or logger is nil")
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create directory", err)
	}

	signalsPath := filepath.Join(path, "signals.parquet")
	quoted := strings.ReplaceAll(signalsPath, "'", "''")

	if _, err := l.db.Exec(fmt.Sprintf(`COPY signals TO '%s' (FORMAT PARQUET)`, quoted)); err != nil {
		return "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to export signals to Parquet", err)
	}

	l.logger.Info("Successfully exported signals to Parquet file",
		zap.String("signals", signalsPath),
	)

	return signalsPath, nil
}

// Cleanup resets the database state.
func (l *BacktestSignalLog) Cleanup() error {
	if l == nil || l.db == nil {
		return fmt.Errorf("signal log or database is nil")
	}

	_, err := l.db.Exec(`
		DROP TABLE IF EXISTS signals;
		DROP SEQUENCE IF EXISTS signal_id_seq;
	`)
	if err != nil {
		return fmt.Errorf("failed to cleanup signals table: %w", err)
	}

	return l.initialize()
}

func (l *BacktestSignalLog) Close() error {
	if l == nil || l.db == nil {
		return nil
	}

	return l.db.Close()
}

func (l *BacktestSignalLog) initialize() error {
	if _, err := l.db.Exec(`CREATE SEQUENCE IF NOT EXISTS signal_id_seq`); err != nil {
		return fmt.Errorf("failed to create sequence: %w", err)
	}

	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS signals (
			id INTEGER PRIMARY KEY,
			time TIMESTAMP,
			type TEXT,
			symbol TEXT,
			node_id TEXT,
			reason TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create signals table: %w", err)
	}

	return nil
}
