package models

import "context"

// MarketDataService resolves a token mint into its current market metrics.
type MarketDataService interface {
	FetchMetrics(ctx context.Context, mint string) (*AssetMetrics, error)
}
