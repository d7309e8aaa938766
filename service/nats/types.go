package nats

import (
	"time"

	"github.com/brojonat/suiscope/service/translate"
)

// ExplainedEvent is published to "explained.{type}" after a transaction has
// been translated.
type ExplainedEvent struct {
	Digest     string   `json:"digest"`
	Type       string   `json:"type"`
	Status     string   `json:"status"`
	Protocol   string   `json:"protocol,omitempty"`
	Sender     string   `json:"sender"`
	Recipients []string `json:"recipients,omitempty"`
	Summary    string   `json:"summary"`

	NetGasFee int64   `json:"net_gas_fee"`
	TotalUSD  float64 `json:"total_usd"`

	Timestamp   *time.Time `json:"timestamp,omitempty"`
	PublishedAt time.Time  `json:"published_at"`
}

// Subject returns the subject this event is published to.
func (e *ExplainedEvent) Subject() string {
	return SubjectPrefix + e.Type
}

// FromTranslation converts a translated transaction to an event.
func FromTranslation(tx *translate.TranslatedTransaction) *ExplainedEvent {
	event := &ExplainedEvent{
		Digest:      tx.Digest,
		Type:        string(tx.Type),
		Status:      tx.Status,
		Protocol:    tx.Protocol,
		Sender:      tx.Sender.Address,
		Summary:     tx.Summary,
		NetGasFee:   tx.Gas.NetGasFee,
		TotalUSD:    tx.FinancialSummary.TotalUSD,
		PublishedAt: time.Now().UTC(),
	}

	for _, r := range tx.Recipients {
		event.Recipients = append(event.Recipients, r.Address)
	}
	if tx.TimestampMs != nil {
		ts := time.UnixMilli(*tx.TimestampMs).UTC()
		event.Timestamp = &ts
	}

	return event
}
