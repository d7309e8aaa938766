// Package translate turns a raw Sui transaction into a structured,
// human-readable TranslatedTransaction. Everything here is pure: no I/O,
// no shared mutable state, identical input gives identical output.
package translate

import (
	"strconv"

	"github.com/brojonat/suiscope/service/sui"
)

// DefaultSUIPriceUSD is the placeholder price used for rough USD estimates.
const DefaultSUIPriceUSD = 1.0

// Options configures a Translator.
type Options struct {
	SUIPriceUSD   float64
	BuySellPolicy BuySellPolicy
}

// Translator is safe for concurrent use.
type Translator struct {
	priceUSD float64
	policy   BuySellPolicy
}

// New creates a Translator. Zero options select the defaults.
func New(opts Options) *Translator {
	if opts.SUIPriceUSD <= 0 {
		opts.SUIPriceUSD = DefaultSUIPriceUSD
	}
	if opts.BuySellPolicy == "" {
		opts.BuySellPolicy = PolicyAlwaysBuy
	}
	return &Translator{priceUSD: opts.SUIPriceUSD, policy: opts.BuySellPolicy}
}

// Fingerprint identifies the options that shape a translation. Translations
// produced under different fingerprints must not be shared.
func (t *Translator) Fingerprint() string {
	return string(t.policy) + "|" + strconv.FormatFloat(t.priceUSD, 'g', -1, 64)
}

// Translate builds the full translation of raw. enrichment may be nil. A nil
// or empty raw transaction still yields a complete, minimal result.
func (t *Translator) Translate(raw *sui.RawTransaction, enrichment *Enrichment) *TranslatedTransaction {
	if raw == nil {
		raw = &sui.RawTransaction{}
	}
	coins := coinResolver{enrichment: enrichment}

	balances := AnalyzeBalanceChanges(raw.BalanceChanges, raw.Sender)
	objects := AnalyzeObjectChanges(raw.ObjectChanges)
	events := AnalyzeEvents(raw.Events)
	txType := Classify(raw, balances, objects, events, t.policy)

	tx := &TranslatedTransaction{
		Digest:      raw.Digest,
		Status:      raw.Status,
		Error:       raw.Error,
		TimestampMs: raw.TimestampMs,
		Checkpoint:  raw.Checkpoint,
		Kind:        raw.Kind,
		Type:        txType,
		Protocol:    events.Protocol,
		Sender:      newAddress(raw.Sender, RoleSender, enrichment),
		Recipients:  []Address{},
		Assets:      []Asset{},
		Gas:         gasInfo(raw.GasUsed, t.priceUSD),
		MoveCalls:   buildMoveCalls(raw),
		Objects:     buildObjects(raw.ObjectChanges),
		Events:      buildEvents(raw.Events),
		ObjectStats: objectStats(objects),
	}
	if tx.Status == "" {
		tx.Status = sui.StatusFailure
	}
	if tx.Protocol == "" && enrichment != nil {
		tx.Protocol = enrichment.Protocol
	}

	if tx.Succeeded() {
		tx.Recipients = extractRecipients(raw, enrichment)
		tx.Assets = buildAssets(senderLegs(balances, tx.Gas), coins, t.priceUSD)
		tx.FinancialSummary = buildFinancialSummary(tx.Assets)
		tx.Steps = buildSteps(raw, tx.Gas, coins)
		tx.Execution = buildExecution(raw, protocolInteractions(raw, enrichment), coins)
	} else {
		tx.Steps = failedSteps(raw)
	}

	tx.Flow = buildFlow(tx)

	n := narrator{raw: raw, tx: tx, obj: objects, ev: events}
	tx.PlainEnglish = n.plainEnglish()
	tx.Summary = n.summary()
	tx.TechnicalSummary = n.technicalSummary()
	tx.ObjectSummary = n.objectSummary()
	tx.GasSummary = n.gasSummary()

	return tx
}
