package binance

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"SignalDesk/internal/domain/models"
	drepo "SignalDesk/internal/domain/repository"
	xhttp "SignalDesk/pkg/http"
)

// Binance accepts only these depth limits.
var validLimits = []int{5, 10, 20, 50, 100, 500, 1000, 5000}

// SnapshotClient fetches order-book snapshots from the spot REST API.
type SnapshotClient struct {
	client *xhttp.Client
}

func NewSnapshotClient(restURL string, timeout time.Duration) drepo.SnapshotSource {
	return &SnapshotClient{
		client: xhttp.NewClient(
			xhttp.WithBaseURL(restURL),
			xhttp.WithTimeout(timeout),
			xhttp.WithRetry(2, 250*time.Millisecond),
		),
	}
}

// FetchSnapshot returns GET /api/v3/depth for symbol, rounding limit up to a supported value.
func (c *SnapshotClient) FetchSnapshot(ctx context.Context, symbol string, limit int) (models.DepthSnapshot, error) {
	var snap models.DepthSnapshot
	q := url.Values{
		"symbol": {strings.ToUpper(symbol)},
		"limit":  {strconv.Itoa(normalizeLimit(limit))},
	}
	if err := c.client.GetJSON(ctx, "/api/v3/depth", q, &snap); err != nil {
		return models.DepthSnapshot{}, fmt.Errorf("binance snapshot %s: %w", symbol, err)
	}
	return snap, nil
}

func normalizeLimit(limit int) int {
	for _, l := range validLimits {
		if limit <= l {
			return l
		}
	}
	return validLimits[len(validLimits)-1]
}
