package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy/internal/logger"
	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
	"go.uber.org/zap"
)

type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
	loaded bool
}

// NewDataSource opens a DuckDB database at path (":memory:" for an in-memory
// one). Market data is attached later by Initialize.
func NewDataSource(path string, logger *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

func readFunction(path string) (string, error) {
	quoted := strings.ReplaceAll(path, "'", "''")

	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return fmt.Sprintf("read_parquet('%s')", quoted), nil
	case ".csv":
		return fmt.Sprintf("read_csv_auto('%s', header = true)", quoted), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unsupported data file %s: expected .csv or .parquet", path)
	}
}

// Initialize implements DataSource.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	source, err := readFunction(path)
	if err != nil {
		return err
	}

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS market_data;`); err != nil {
		return fmt.Errorf("failed to drop existing view: %w", err)
	}

	// squirrel has no CREATE VIEW
	query := fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT
			CAST(time AS TIMESTAMP) AS time,
			CAST(symbol AS VARCHAR) AS symbol,
			CAST(open AS DOUBLE) AS open,
			CAST(high AS DOUBLE) AS high,
			CAST(low AS DOUBLE) AS low,
			CAST(close AS DOUBLE) AS close,
			CAST(volume AS DOUBLE) AS volume
		FROM %s;
	`, source)

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to load market data from %s", path)
	}

	d.loaded = true

	return nil
}

func (d *DuckDBDataSource) where(symbol optional.Option[string], start optional.Option[time.Time], end optional.Option[time.Time]) squirrel.And {
	conditions := squirrel.And{}

	if symbol.IsSome() {
		conditions = append(conditions, squirrel.Eq{"symbol": symbol.Unwrap()})
	}

	if start.IsSome() {
		conditions = append(conditions, squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		conditions = append(conditions, squirrel.LtOrEq{"time": end.Unwrap()})
	}

	return conditions
}

func (d *DuckDBDataSource) checkLoaded() error {
	if !d.loaded {
		return errors.New(errors.ErrCodeDataSourceUnavailable, "data source is not initialized")
	}

	return nil
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(symbol optional.Option[string], start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	if err := d.checkLoaded(); err != nil {
		return 0, err
	}

	query, args, err := d.sq.Select("COUNT(*)").From("market_data").Where(d.where(symbol, start, end)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll(symbol optional.Option[string], start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		if err := d.checkLoaded(); err != nil {
			yield(types.Bar{}, err)
			return
		}

		query, args, err := d.sq.
			Select("time", "symbol", "open", "high", "low", "close", "volume").
			From("market_data").
			Where(d.where(symbol, start, end)).
			OrderBy("time ASC", "symbol ASC").
			ToSql()
		if err != nil {
			yield(types.Bar{}, fmt.Errorf("failed to build query: %w", err))
			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			bar, err := scanBar(rows)
			if err != nil {
				yield(types.Bar{}, err)
				return
			}

			if !yield(bar, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.Bar{}, fmt.Errorf("error iterating rows: %w", err))
		}
	}
}

// GetRange implements DataSource.
func (d *DuckDBDataSource) GetRange(symbol string, start time.Time, end time.Time, interval optional.Option[Interval]) ([]types.Bar, error) {
	if err := d.checkLoaded(); err != nil {
		return nil, err
	}

	query, args, err := d.buildGetRangeQuery(symbol, start, end, interval)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bar range", err)
	}
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		bar, err := scanBar(rows)
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return bars, nil
}

func (d *DuckDBDataSource) buildGetRangeQuery(symbol string, start time.Time, end time.Time, interval optional.Option[Interval]) (string, []any, error) {
	if interval.IsNone() {
		query, args, err := d.sq.
			Select("time", "symbol", "open", "high", "low", "close", "volume").
			From("market_data").
			Where(squirrel.And{
				squirrel.Eq{"symbol": symbol},
				squirrel.GtOrEq{"time": start},
				squirrel.LtOrEq{"time": end},
			}).
			OrderBy("time ASC").
			ToSql()
		if err != nil {
			return "", nil, fmt.Errorf("failed to build query: %w", err)
		}

		return query, args, nil
	}

	minutes, err := getIntervalMinutes(interval.Unwrap())
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid interval", err)
	}

	// arg_min/arg_max pick the first open and last close of each bucket
	query := fmt.Sprintf(`
		SELECT
			time_bucket(INTERVAL '%d minutes', time) AS bucket,
			symbol,
			arg_min(open, time) AS open,
			MAX(high) AS high,
			MIN(low) AS low,
			arg_max(close, time) AS close,
			SUM(volume) AS volume
		FROM market_data
		WHERE symbol = $1 AND time >= $2 AND time <= $3
		GROUP BY bucket, symbol
		ORDER BY bucket ASC
	`, minutes)

	return query, []any{symbol, start, end}, nil
}

// Symbols implements DataSource.
func (d *DuckDBDataSource) Symbols() ([]string, error) {
	if err := d.checkLoaded(); err != nil {
		return nil, err
	}

	rows, err := d.db.Query("SELECT DISTINCT symbol FROM market_data ORDER BY symbol")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to get symbols", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}

		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbols: %w", err)
	}

	return symbols, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBar(row scanner) (types.Bar, error) {
	var bar types.Bar

	err := row.Scan(&bar.Time, &bar.Symbol, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume)
	if err != nil {
		return types.Bar{}, fmt.Errorf("failed to scan bar: %w", err)
	}

	return bar, nil
}
