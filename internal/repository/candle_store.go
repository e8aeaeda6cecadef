package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	pkgch "SignalDesk/pkg/clickhouse"
	applogger "SignalDesk/pkg/logger"
)

// insertChunk caps rows per multi-VALUES insert.
const insertChunk = 2000

// CHCandleStore reads and writes OHLCV buckets in ClickHouse.
type CHCandleStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHCandleStore(ch *pkgch.Client, database string) *CHCandleStore {
	if database == "" {
		database = "signaldesk"
	}
	return &CHCandleStore{db: ch.DB(), database: database}
}

// SetLogger injects a structured logger.
func (s *CHCandleStore) SetLogger(l *applogger.Logger) { s.l = l }

// Schema returns the idempotent DDL for the candle tables.
func Schema(database string) []string {
	stmts := []string{fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database)}
	for _, tf := range []domrepo.Timeframe{domrepo.TF1m, domrepo.TF5m, domrepo.TF15m, domrepo.TF1h} {
		stmts = append(stmts, fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s.candles_%s (symbol String, bucket DateTime, open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)",
			database, tf))
	}
	return stmts
}

func (s *CHCandleStore) GetCandles(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.Candle, error) {
	start := time.Now()
	table, err := s.table(tf)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`
        SELECT bucket, symbol, open, high, low, close, vol
        FROM %s FINAL
        WHERE symbol = ? AND bucket >= ? AND bucket <= ?
        ORDER BY bucket ASC
    `, table)
	out, err := s.query(ctx, q, 1024, symbol, from, to)
	if err != nil {
		s.logErr("clickhouse get_candles", table, symbol, err)
		return nil, fmt.Errorf("get candles: %w", err)
	}
	s.logOK("clickhouse get_candles ok", table, symbol, len(out), start)
	return out, nil
}

func (s *CHCandleStore) GetLatestNCandles(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	start := time.Now()
	table, err := s.table(tf)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`
        SELECT bucket, symbol, open, high, low, close, vol
        FROM %s FINAL
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `, table)
	out, err := s.query(ctx, q, n, symbol, n)
	if err != nil {
		s.logErr("clickhouse latest_candles", table, symbol, err)
		return nil, fmt.Errorf("get latest candles: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	s.logOK("clickhouse latest_candles ok", table, symbol, len(out), start)
	return out, nil
}

// StoreCandles upserts closed candles; ReplacingMergeTree keeps the last write per bucket.
func (s *CHCandleStore) StoreCandles(ctx context.Context, tf domrepo.Timeframe, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	table, err := s.table(tf)
	if err != nil {
		return err
	}
	for lo := 0; lo < len(candles); lo += insertChunk {
		hi := min(lo+insertChunk, len(candles))
		q, args := buildInsert(table, candles[lo:hi])
		if len(args) == 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.logErr("clickhouse store_candles", table, candles[lo].Symbol, err)
			return fmt.Errorf("store candles: %w", err)
		}
	}
	return nil
}

func (s *CHCandleStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHCandleStore) table(tf domrepo.Timeframe) (string, error) {
	if !domrepo.IsValidTimeframe(tf) {
		return "", fmt.Errorf("unsupported timeframe: %s", tf)
	}
	return tableName(s.database, tf), nil
}

func tableName(database string, tf domrepo.Timeframe) string {
	return fmt.Sprintf("%s.candles_%s", database, tf)
}

func buildInsert(table string, candles []models.Candle) (string, []any) {
	values := make([]string, 0, len(candles))
	args := make([]any, 0, len(candles)*7)
	for _, c := range candles {
		if c.Symbol == "" || c.Time.IsZero() {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, c.Symbol, c.Time.UTC(), c.Open, c.High, c.Low, c.Close, c.Volume)
	}
	q := fmt.Sprintf("INSERT INTO %s (symbol, bucket, open, high, low, close, vol) VALUES %s", table, strings.Join(values, ","))
	return q, args
}

func (s *CHCandleStore) query(ctx context.Context, q string, capHint int, args ...any) ([]models.Candle, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Candle, 0, capHint)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Time, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHCandleStore) logErr(op, table, symbol string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(op+" error",
		applogger.String("table", table),
		applogger.String("symbol", symbol),
		applogger.Error(err),
	)
}

func (s *CHCandleStore) logOK(msg, table, symbol string, rows int, start time.Time) {
	if s.l == nil {
		return
	}
	s.l.Debug(msg,
		applogger.String("table", table),
		applogger.String("symbol", symbol),
		applogger.Int("rows", rows),
		applogger.Duration("duration_ms", time.Since(start)),
	)
}

var (
	_ domrepo.CandleStore  = (*CHCandleStore)(nil)
	_ domrepo.CandleWriter = (*CHCandleStore)(nil)
)
