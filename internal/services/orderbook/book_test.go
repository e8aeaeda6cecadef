package orderbook

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalDesk/internal/domain/models"
)

func lvl(price, size string) models.RawLevel {
	return models.RawLevel{json.Number(price), json.Number(size)}
}

func u64(v uint64) *uint64 { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func baseBook(t *testing.T) models.OrderBook {
	t.Helper()
	book, err := FromSnapshot("BTCUSDT", models.DepthSnapshot{
		LastUpdateID: 100,
		Bids:         []models.RawLevel{lvl("100", "1"), lvl("101", "2"), lvl("99", "0")},
		Asks:         []models.RawLevel{lvl("103", "1"), lvl("102", "0.5")},
	})
	require.NoError(t, err)
	return book
}

func assertLadder(t *testing.T, book models.OrderBook) {
	t.Helper()
	for i, l := range book.Bids {
		assert.True(t, l.Size.IsPositive(), "bid %d size %s", i, l.Size)
		if i > 0 {
			assert.True(t, l.Price.LessThan(book.Bids[i-1].Price), "bids not strictly descending at %d", i)
		}
	}
	for i, l := range book.Asks {
		assert.True(t, l.Size.IsPositive(), "ask %d size %s", i, l.Size)
		if i > 0 {
			assert.True(t, l.Price.GreaterThan(book.Asks[i-1].Price), "asks not strictly ascending at %d", i)
		}
	}
}

func TestFromSnapshot_SortsAndDropsZeroSizes(t *testing.T) {
	book := baseBook(t)

	require.Len(t, book.Bids, 2)
	require.Len(t, book.Asks, 2)
	assert.True(t, book.Bids[0].Price.Equal(dec("101")))
	assert.True(t, book.Bids[1].Price.Equal(dec("100")))
	assert.True(t, book.Asks[0].Price.Equal(dec("102")))
	assert.True(t, book.Asks[1].Price.Equal(dec("103")))
	assert.Equal(t, uint64(100), book.LastUpdateID)
	assertLadder(t, book)
}

func TestFromSnapshot_AcceptsStringsAndNumbers(t *testing.T) {
	payload := []byte(`{"lastUpdateId":7,"bids":[[100.5,"2"],["100.50","3"]],"asks":[["101",0.25]]}`)
	var snap models.DepthSnapshot
	require.NoError(t, json.Unmarshal(payload, &snap))

	book, err := FromSnapshot("ETHUSDT", snap)
	require.NoError(t, err)

	require.Len(t, book.Bids, 1, "100.5 and 100.50 are one level")
	assert.True(t, book.Bids[0].Size.Equal(dec("3")))
	assert.True(t, book.Asks[0].Size.Equal(dec("0.25")))
}

func TestFromSnapshot_RejectsMalformedLevels(t *testing.T) {
	tests := []struct {
		name  string
		level models.RawLevel
	}{
		{"garbage price", lvl("abc", "1")},
		{"negative size", lvl("100", "-1")},
		{"zero price", lvl("0", "1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromSnapshot("X", models.DepthSnapshot{Bids: []models.RawLevel{tt.level}})
			require.Error(t, err)
			var le *LevelError
			assert.True(t, errors.As(err, &le))
		})
	}
}

func TestApplyDiff_Desync(t *testing.T) {
	book := baseBook(t)

	_, err := ApplyDiff(book, models.DepthDiff{FirstUpdateID: u64(150), FinalUpdateID: 160})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDesync))

	var de *DesyncError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, uint64(100), de.LastUpdateID)
	assert.Equal(t, uint64(150), de.FirstUpdateID)
	assert.Equal(t, uint64(160), de.FinalUpdateID)
}

func TestApplyDiff_AcceptsPrevFinalChain(t *testing.T) {
	book := baseBook(t)

	next, err := ApplyDiff(book, models.DepthDiff{PrevFinalUpdateID: u64(100), FinalUpdateID: 101})
	require.NoError(t, err)
	assert.Equal(t, uint64(101), next.LastUpdateID)

	// U is past last+1, only the pu chain makes this continuous.
	next, err = ApplyDiff(book, models.DepthDiff{FirstUpdateID: u64(105), FinalUpdateID: 110, PrevFinalUpdateID: u64(100)})
	require.NoError(t, err)
	assert.Equal(t, uint64(110), next.LastUpdateID)
}

func TestApplyDiff_BridgingWindow(t *testing.T) {
	book := baseBook(t)

	next, err := ApplyDiff(book, models.DepthDiff{FirstUpdateID: u64(95), FinalUpdateID: 105})
	require.NoError(t, err)
	assert.Equal(t, uint64(105), next.LastUpdateID)

	// U absent defaults to u.
	next, err = ApplyDiff(book, models.DepthDiff{FinalUpdateID: 101})
	require.NoError(t, err)
	assert.Equal(t, uint64(101), next.LastUpdateID)

	_, err = ApplyDiff(book, models.DepthDiff{FinalUpdateID: 102})
	assert.ErrorIs(t, err, ErrDesync)
}

func TestApplyDiff_StaleIsNoop(t *testing.T) {
	book := baseBook(t)

	res := TryApplyDiff(book, models.DepthDiff{
		FirstUpdateID: u64(90),
		FinalUpdateID: 100,
		Bids:          []models.RawLevel{lvl("101", "0")},
	})
	assert.Equal(t, OutcomeStale, res.Outcome)
	assert.NoError(t, res.Err)
	assert.Equal(t, book, res.Book)
}

func TestApplyDiff_MergesLevels(t *testing.T) {
	book := baseBook(t)

	next, err := ApplyDiff(book, models.DepthDiff{
		FirstUpdateID: u64(101),
		FinalUpdateID: 102,
		Bids:          []models.RawLevel{lvl("101", "0"), lvl("100", "5"), lvl("100.5", "1")},
		Asks:          []models.RawLevel{lvl("102.5", "4"), lvl("103", "0")},
	})
	require.NoError(t, err)

	require.Len(t, next.Bids, 2)
	assert.True(t, next.Bids[0].Price.Equal(dec("100.5")))
	assert.True(t, next.Bids[1].Price.Equal(dec("100")))
	assert.True(t, next.Bids[1].Size.Equal(dec("5")))

	require.Len(t, next.Asks, 2)
	assert.True(t, next.Asks[0].Price.Equal(dec("102")))
	assert.True(t, next.Asks[1].Price.Equal(dec("102.5")))
	assertLadder(t, next)
}

func TestApplyDiff_DoesNotAliasInput(t *testing.T) {
	book := baseBook(t)
	before := Clone(book)

	next, err := ApplyDiff(book, models.DepthDiff{
		FinalUpdateID: 101,
		Bids:          []models.RawLevel{lvl("100", "9")},
	})
	require.NoError(t, err)
	assert.Equal(t, before, book, "input must be untouched")

	next.Bids[0].Size = dec("42")
	next.Asks[0].Size = dec("42")
	assert.Equal(t, before, book, "mutating the result must not reach the input")

	stale := TryApplyDiff(book, models.DepthDiff{FinalUpdateID: 50})
	stale.Book.Bids[0].Size = dec("42")
	assert.Equal(t, before, book)
}

func TestTryApplyDiff_InvalidLevelKeepsBook(t *testing.T) {
	book := baseBook(t)

	res := TryApplyDiff(book, models.DepthDiff{FinalUpdateID: 101, Asks: []models.RawLevel{lvl("x", "1")}})
	assert.Equal(t, OutcomeInvalid, res.Outcome)
	var le *LevelError
	assert.True(t, errors.As(res.Err, &le))
	assert.Equal(t, book.LastUpdateID, res.Book.LastUpdateID)
}

func TestApplyDiff_RandomSequenceKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	book := baseBook(t)
	last := book.LastUpdateID

	for i := 0; i < 500; i++ {
		first := last + 1
		if rng.Intn(5) == 0 {
			first = last - uint64(rng.Intn(3)) // overlapping window
		}
		final := first + uint64(rng.Intn(4))
		if rng.Intn(10) == 0 {
			final = last // stale
		}

		var bids, asks []models.RawLevel
		for j := 0; j < 1+rng.Intn(4); j++ {
			bids = append(bids, lvl(fmt.Sprintf("%d", 90+rng.Intn(12)), fmt.Sprintf("%d", rng.Intn(3))))
			asks = append(asks, lvl(fmt.Sprintf("%d", 102+rng.Intn(12)), fmt.Sprintf("%d", rng.Intn(3))))
		}

		res := TryApplyDiff(book, models.DepthDiff{FirstUpdateID: u64(first), FinalUpdateID: final, Bids: bids, Asks: asks})
		require.NotEqual(t, OutcomeDesync, res.Outcome, "step %d", i)
		require.GreaterOrEqual(t, res.Book.LastUpdateID, book.LastUpdateID)
		assertLadder(t, res.Book)

		book = res.Book
		last = book.LastUpdateID
	}
}

func TestDepthDiff_UnmarshalBinancePayload(t *testing.T) {
	payload := []byte(`{"e":"depthUpdate","E":1700000000000,"s":"BTCUSDT","U":157,"u":160,"pu":149,"b":[["0.0024","10"]],"a":[["0.0026","100"]]}`)
	var diff models.DepthDiff
	require.NoError(t, json.Unmarshal(payload, &diff))

	require.NotNil(t, diff.FirstUpdateID)
	assert.Equal(t, uint64(157), *diff.FirstUpdateID)
	assert.Equal(t, uint64(160), diff.FinalUpdateID)
	require.NotNil(t, diff.PrevFinalUpdateID)
	assert.Equal(t, uint64(149), *diff.PrevFinalUpdateID)
	assert.Equal(t, "depthUpdate", diff.EventType)
	assert.Equal(t, int64(1700000000000), diff.EventTime)

	var bare models.DepthDiff
	require.NoError(t, json.Unmarshal([]byte(`{"u":5,"b":[],"a":[]}`), &bare))
	assert.Nil(t, bare.FirstUpdateID)
	assert.Nil(t, bare.PrevFinalUpdateID)
}
