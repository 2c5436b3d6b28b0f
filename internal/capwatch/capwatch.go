package capwatch

import (
	"context"
	"fmt"

	"github.com/core-coin/capwatch/internal/filter"
	"github.com/core-coin/capwatch/internal/metrics"
	"github.com/core-coin/capwatch/internal/models"
	"github.com/core-coin/capwatch/pkg/logger"
)

const notAvailable = "n/a"

// Settings is the read-only configuration the pipeline needs.
// It is never mutated after construction and is shared by concurrent events.
type Settings struct {
	ChatID string
	Bounds models.CapBounds
}

// Capwatch is the main struct of the application.
// It runs every inbound event through enrichment, the market cap filter and alert delivery,
// and logs why each event did or did not produce an alert.
type Capwatch struct {
	logger   *logger.Logger
	settings Settings
	metrics  *metrics.Metrics

	marketData  models.MarketDataService
	notificator models.NotificationService
}

// NewCapwatch creates a new Capwatch instance. metrics may be nil.
func NewCapwatch(
	marketData models.MarketDataService,
	notificator models.NotificationService,
	logger *logger.Logger,
	settings Settings,
	metrics *metrics.Metrics,
) *Capwatch {
	return &Capwatch{
		marketData:  marketData,
		notificator: notificator,
		logger:      logger,
		settings:    settings,
		metrics:     metrics,
	}
}

// ProcessEvent runs one event through the pipeline.
// Missing mint, unknown market cap and filter rejection are successful no-ops;
// only *EnrichmentError and *DeliveryError are returned.
func (c *Capwatch) ProcessEvent(ctx context.Context, event *models.InboundEvent) error {
	signature := event.Signature
	mint, ok := event.PrimaryMint()

	c.logger.Infow("intake_event",
		"signature", signature,
		"mint", mint,
		"transfers", len(event.Transfers()),
		"type", event.Type,
		"source", event.Source,
	)
	if c.metrics != nil {
		c.metrics.IncEventsReceived()
	}

	if !ok {
		c.logger.Warnw("skip_event", "signature", signature, "reason", "missing_mint")
		c.record(metrics.OutcomeSkippedMissingMint)
		return nil
	}

	assetMetrics, err := c.marketData.FetchMetrics(ctx, mint)
	if err != nil {
		c.logger.Errorw("external_api_error",
			"signature", signature,
			"mint", mint,
			"source", sourceMoralis,
			"error", err,
		)
		c.record(metrics.OutcomeEnrichmentFailed)
		return &EnrichmentError{Signature: signature, Mint: mint, Source: sourceMoralis, Err: err}
	}

	if assetMetrics == nil || assetMetrics.MarketCapUSD == nil {
		c.logger.Warnw("skip_event", "signature", signature, "mint", mint, "reason", "missing_market_cap")
		c.record(metrics.OutcomeSkippedMissingMarketCap)
		return nil
	}
	marketCap := *assetMetrics.MarketCapUSD

	outcome, bound := filter.Explain(marketCap, c.settings.Bounds)
	if !outcome.Pass {
		c.logger.Infow("market_cap_filter_decision",
			"signature", signature,
			"mint", mint,
			"market_cap_usd", marketCap,
			"decision", "fail",
			"reason", outcome.Reason,
			"bound", string(bound),
		)
		c.record(metrics.OutcomeFilteredOut)
		return nil
	}

	c.logger.Infow("market_cap_filter_decision",
		"signature", signature,
		"mint", mint,
		"market_cap_usd", marketCap,
		"decision", "pass",
		"reason", filter.ReasonWithinRange,
	)

	return c.sendAlert(ctx, mint, signature, assetMetrics.PriceUSD, marketCap)
}

func (c *Capwatch) sendAlert(ctx context.Context, mint, signature string, price *float64, marketCap float64) error {
	message := FormatAlert(mint, signature, price, marketCap)

	if err := c.notificator.SendMessage(ctx, c.settings.ChatID, message); err != nil {
		c.logger.Errorw("alert_delivery_failed",
			"signature", signature,
			"mint", mint,
			"chat_id", c.settings.ChatID,
			"source", sourceTelegram,
			"error", err,
		)
		c.record(metrics.OutcomeDeliveryFailed)
		return &DeliveryError{Signature: signature, Mint: mint, Source: sourceTelegram, Err: err}
	}

	c.logger.Infow("alert_delivered", "signature", signature, "mint", mint, "chat_id", c.settings.ChatID)
	c.record(metrics.OutcomeDelivered)
	return nil
}

func (c *Capwatch) record(outcome string) {
	if c.metrics != nil {
		c.metrics.IncOutcome(outcome)
	}
}

// FormatAlert renders the alert text. The price falls back to "n/a" when unknown.
func FormatAlert(mint, signature string, price *float64, marketCap float64) string {
	priceLine := notAvailable
	if price != nil {
		priceLine = fmt.Sprintf("%.6f", *price)
	}

	return fmt.Sprintf(
		"Solana token alert\nMint: %s\nSignature: %s\nMarket cap (USD): %.2f\nPrice (USD): %s",
		mint, signature, marketCap, priceLine,
	)
}
