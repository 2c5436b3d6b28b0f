package models

// AssetMetrics is the market data of one token. A nil field means the provider did not report it.
type AssetMetrics struct {
	PriceUSD     *float64 `json:"price_usd,omitempty"`
	MarketCapUSD *float64 `json:"market_cap_usd,omitempty"`
}

// CapBounds is the inclusive market cap range in USD. A nil bound leaves that side open.
type CapBounds struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}
