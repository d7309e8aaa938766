package llm

import (
	"fmt"
	"strings"
)

// Mode selects the response schema requested from the model.
type Mode string

const (
	ModeFull   Mode = "full"
	ModeSimple Mode = "simple"
)

// ParseMode maps a user-supplied mode name, defaulting to full.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeFull:
		return ModeFull, nil
	case ModeSimple:
		return ModeSimple, nil
	default:
		return "", fmt.Errorf("unknown explanation mode %q (want full or simple)", s)
	}
}

// Explanation is the model's narrative. Simple mode fills only Overview and
// PlainEnglish. Partial is set when the response was not valid JSON and the
// fields were recovered by pattern extraction.
type Explanation struct {
	Mode    Mode `json:"mode"`
	Partial bool `json:"partial,omitempty"`

	Overview        string           `json:"overview"`
	PlainEnglish    PlainEnglish     `json:"plain_english"`
	Classification  *Classification  `json:"classification,omitempty"`
	TransactionType *TransactionType `json:"transaction_type,omitempty"`
	DetailedFlow    []string         `json:"detailed_flow,omitempty"`
	Technical       *Technical       `json:"technical_details,omitempty"`
	Security        *Security        `json:"security,omitempty"`
	Educational     *Educational     `json:"educational,omitempty"`
}

// PlainEnglish is the three-tier explanation.
type PlainEnglish struct {
	Simple    string `json:"simple"`
	Detailed  string `json:"detailed,omitempty"`
	Technical string `json:"technical,omitempty"`
}

type Classification struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}

type TransactionType struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Technical struct {
	GasAnalysis   string `json:"gas_analysis,omitempty"`
	ObjectChanges string `json:"object_changes,omitempty"`
	MoveCalls     string `json:"move_calls,omitempty"`
}

type Security struct {
	RiskLevel       string   `json:"risk_level"`
	Concerns        []string `json:"concerns,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

type Educational struct {
	Concepts  []string `json:"concepts,omitempty"`
	LearnMore string   `json:"learn_more,omitempty"`
}
