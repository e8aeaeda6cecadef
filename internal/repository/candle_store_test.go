package repository

import (
	"strings"
	"testing"
	"time"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCoversEveryTimeframe(t *testing.T) {
	stmts := Schema("signaldesk")
	require.Len(t, stmts, 5)
	assert.Equal(t, "CREATE DATABASE IF NOT EXISTS signaldesk", stmts[0])
	for _, tf := range []string{"1m", "5m", "15m", "1h"} {
		found := false
		for _, s := range stmts[1:] {
			if strings.Contains(s, "signaldesk.candles_"+tf+" ") {
				found = true
			}
		}
		assert.True(t, found, "missing table for %s", tf)
	}
}

func TestTableRejectsUnknownTimeframe(t *testing.T) {
	s := &CHCandleStore{database: "signaldesk"}
	_, err := s.table(domrepo.Timeframe("4h"))
	require.Error(t, err)

	name, err := s.table(domrepo.TF15m)
	require.NoError(t, err)
	assert.Equal(t, "signaldesk.candles_15m", name)
}

func TestBuildInsertSkipsIncompleteRows(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q, args := buildInsert("signaldesk.candles_1m", []models.Candle{
		{Symbol: "BTCUSDT", Time: ts, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Symbol: "", Time: ts, Open: 1, High: 2, Low: 0.5, Close: 1.5},
		{Symbol: "BTCUSDT", Time: ts.Add(time.Minute), Open: 1.5, High: 2, Low: 1, Close: 1.8, Volume: 3},
	})
	assert.Equal(t, 2, strings.Count(q, "(?, ?, ?, ?, ?, ?, ?)"))
	require.Len(t, args, 14)
	assert.Equal(t, "BTCUSDT", args[0])
	assert.Equal(t, ts, args[1])
}
