package scoring

import "SignalDesk/internal/domain/models"

// DefaultWeights is the stock ensemble.
func DefaultWeights() []models.StrategyWeight {
	return []models.StrategyWeight{
		{ID: models.StrategyTrendFollowing, Name: "Trend Following", Weight: 0.30, Enabled: true},
		{ID: models.StrategyMomentum, Name: "Momentum", Weight: 0.25, Enabled: true},
		{ID: models.StrategyMeanReversion, Name: "Mean Reversion", Weight: 0.20, Enabled: true},
		{ID: models.StrategyBreakout, Name: "Breakout", Weight: 0.15, Enabled: true},
		{ID: models.StrategyScalp, Name: "Scalp", Weight: 0.10, Enabled: true},
	}
}
