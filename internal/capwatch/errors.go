package capwatch

import "fmt"

const (
	sourceMoralis  = "moralis"
	sourceTelegram = "telegram"
)

// EnrichmentError reports that market data could not be fetched for an event.
type EnrichmentError struct {
	Signature string
	Mint      string
	Source    string
	Err       error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrichment failed (source=%s signature=%s mint=%s): %v", e.Source, e.Signature, e.Mint, e.Err)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }

// DeliveryError reports that an alert passed the filter but could not be sent.
type DeliveryError struct {
	Signature string
	Mint      string
	Source    string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("alert delivery failed (source=%s signature=%s mint=%s): %v", e.Source, e.Signature, e.Mint, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
