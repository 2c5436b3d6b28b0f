package models

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// InboundEvent is one transaction delivered by the Helius enhanced webhook.
type InboundEvent struct {
	// Signature is the transaction signature.
	Signature string `json:"signature"`
	// Type is the Helius transaction type (SWAP, TRANSFER, ...). Informational only.
	Type string `json:"type,omitempty"`
	// Source is the program or venue Helius attributed the transaction to. Informational only.
	Source string `json:"source,omitempty"`
	// Slot is the slot the transaction landed in.
	Slot uint64 `json:"slot,omitempty"`
	// Timestamp is the block time in unix seconds.
	Timestamp int64 `json:"timestamp,omitempty"`
	// TokenTransfers is the top level transfer list of the enhanced transaction format.
	TokenTransfers []TokenTransfer `json:"tokenTransfers,omitempty"`
	// Events holds the pre-parsed events, including nested token transfers.
	Events InboundEvents `json:"events"`
}

type InboundEvents struct {
	TokenTransfers []TokenTransfer `json:"tokenTransfers,omitempty"`
}

// TokenTransfer is a single SPL token movement inside a transaction.
type TokenTransfer struct {
	// Mint is the token mint address.
	Mint            string   `json:"mint"`
	FromUserAccount *string  `json:"fromUserAccount,omitempty"`
	ToUserAccount   *string  `json:"toUserAccount,omitempty"`
	TokenAmount     *float64 `json:"tokenAmount,omitempty"`
}

// Transfers returns all transfer records, nested events first.
func (e *InboundEvent) Transfers() []TokenTransfer {
	if len(e.TokenTransfers) == 0 {
		return e.Events.TokenTransfers
	}
	transfers := make([]TokenTransfer, 0, len(e.Events.TokenTransfers)+len(e.TokenTransfers))
	transfers = append(transfers, e.Events.TokenTransfers...)
	return append(transfers, e.TokenTransfers...)
}

// PrimaryMint returns the mint of the first transfer record.
// Multi-asset transactions (swaps) are reduced to this single mint.
func (e *InboundEvent) PrimaryMint() (string, bool) {
	transfers := e.Transfers()
	if len(transfers) == 0 {
		return "", false
	}
	return transfers[0].Mint, true
}

// DecodeInboundEvents accepts either a single transaction object or an array of them,
// the latter being what Helius actually posts.
func DecodeInboundEvents(body []byte) ([]*InboundEvent, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty payload")
	}

	if trimmed[0] == '[' {
		var events []*InboundEvent
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return nil, errors.Wrap(err, "failed to decode event batch")
		}
		for i, event := range events {
			if event == nil {
				return nil, errors.Errorf("event %d is null", i)
			}
		}
		return events, nil
	}

	var event InboundEvent
	if err := json.Unmarshal(trimmed, &event); err != nil {
		return nil, errors.Wrap(err, "failed to decode event")
	}
	return []*InboundEvent{&event}, nil
}
