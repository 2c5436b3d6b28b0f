package models

import "context"

type CapwatchI interface {
	// ProcessEvent runs one inbound event through enrichment, filtering and delivery.
	// Skips return nil; only enrichment and delivery failures are errors.
	ProcessEvent(ctx context.Context, event *InboundEvent) error
}

type APIServer interface {
	Start()
	Shutdown() error
}
