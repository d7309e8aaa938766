package explain

import (
	"errors"
	"fmt"

	"github.com/brojonat/suiscope/service/sui"
)

// Kind classifies a failure for the presentation layer.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindUpstream     Kind = "upstream"
	KindEnrichment   Kind = "enrichment"
	KindInternal     Kind = "internal"
)

// Error carries a Kind alongside the underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of err. Unrecognised errors are internal.
func KindOf(err error) Kind {
	var e *Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &e):
		return e.Kind
	case errors.Is(err, sui.ErrInvalidIdentifier):
		return KindInvalidInput
	case errors.Is(err, sui.ErrTransactionNotFound):
		return KindNotFound
	case errors.Is(err, sui.ErrUpstream):
		return KindUpstream
	default:
		return KindInternal
	}
}

var messages = map[Kind]string{
	KindInvalidInput: "The transaction identifier is not a valid digest or explorer link.",
	KindNotFound:     "No transaction with this digest exists on the network.",
	KindUpstream:     "The Sui RPC node could not be reached.",
	KindEnrichment:   "Additional details could not be loaded.",
	KindInternal:     "Something went wrong while explaining this transaction.",
}

var remedies = map[Kind]string{
	KindInvalidInput: "Paste a Base58 transaction digest, a 0x-prefixed hex digest, or a Suiscan/SuiVision/Sui Explorer transaction URL.",
	KindNotFound:     "Check that the digest is complete and that you are querying the right network (mainnet, testnet or devnet).",
	KindUpstream:     "Wait a moment and try again. If the problem persists, configure a different RPC endpoint.",
	KindEnrichment:   "The core explanation is still available. Try again later for the extra details.",
	KindInternal:     "Try again. If it keeps failing, report the digest so it can be investigated.",
}

// Message returns the user-facing description of a kind.
func Message(kind Kind) string {
	if m, ok := messages[kind]; ok {
		return m
	}
	return messages[KindInternal]
}

// Remedy returns the suggested user action for a kind.
func Remedy(kind Kind) string {
	if r, ok := remedies[kind]; ok {
		return r
	}
	return remedies[KindInternal]
}
