// Package filter decides whether a token's market cap qualifies it for an alert.
package filter

import "github.com/core-coin/capwatch/internal/models"

const (
	// ReasonOutOfCapRange is reported for both bound violations.
	ReasonOutOfCapRange = "out_of_cap_range"
	// ReasonWithinRange accompanies a pass in decision logs.
	ReasonWithinRange = "within_range"
)

// Bound names the side of the range that rejected a market cap.
type Bound string

const (
	BoundNone Bound = ""
	BoundMin  Bound = "min"
	BoundMax  Bound = "max"
)

// Outcome is the result of an admission check. Reason is empty on pass.
type Outcome struct {
	Pass   bool
	Reason string
}

var passOutcome = Outcome{Pass: true}

func failOutcome() Outcome {
	return Outcome{Pass: false, Reason: ReasonOutOfCapRange}
}

// Evaluate checks marketCap against the inclusive bounds.
func Evaluate(marketCap float64, bounds models.CapBounds) Outcome {
	outcome, _ := Explain(marketCap, bounds)
	return outcome
}

// Explain is Evaluate that also reports which bound fired, for log narration.
func Explain(marketCap float64, bounds models.CapBounds) (Outcome, Bound) {
	if bounds.Min != nil && marketCap < *bounds.Min {
		return failOutcome(), BoundMin
	}
	if bounds.Max != nil && marketCap > *bounds.Max {
		return failOutcome(), BoundMax
	}
	return passOutcome, BoundNone
}
