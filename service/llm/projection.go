package llm

import (
	"github.com/brojonat/suiscope/service/translate"
)

// Projection is the reduced view of a translated transaction handed to the
// model. Raw chain data never reaches the prompt.
type Projection struct {
	Digest       string                `json:"digest"`
	Status       string                `json:"status"`
	TimestampMs  *int64                `json:"timestamp_ms,omitempty"`
	Sender       string                `json:"sender"`
	Recipients   []string              `json:"recipients"`
	Type         string                `json:"type"`
	Protocol     string                `json:"protocol,omitempty"`
	GasFeeSUI    float64               `json:"gas_fee_sui"`
	NetGasFee    int64                 `json:"net_gas_fee"`
	ObjectStats  translate.ObjectStats `json:"object_stats"`
	MoveCalls    []string              `json:"move_calls"`
	Summary      string                `json:"summary"`
	PlainEnglish string                `json:"plain_english"`
}

// NewProjection builds the prompt projection of tx.
func NewProjection(tx *translate.TranslatedTransaction) Projection {
	p := Projection{
		Digest:       tx.Digest,
		Status:       tx.Status,
		TimestampMs:  tx.TimestampMs,
		Sender:       tx.Sender.Address,
		Recipients:   make([]string, 0, len(tx.Recipients)),
		Type:         string(tx.Type),
		Protocol:     tx.Protocol,
		GasFeeSUI:    tx.Gas.GasFeeSUI,
		NetGasFee:    tx.Gas.NetGasFee,
		ObjectStats:  tx.ObjectStats,
		MoveCalls:    make([]string, 0, len(tx.MoveCalls)),
		Summary:      tx.Summary,
		PlainEnglish: tx.PlainEnglish,
	}
	for _, r := range tx.Recipients {
		p.Recipients = append(p.Recipients, r.Address)
	}
	for _, mc := range tx.MoveCalls {
		p.MoveCalls = append(p.MoveCalls, mc.Module+"::"+mc.Function+" - "+mc.PlainEnglish)
	}
	return p
}
