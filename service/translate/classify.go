package translate

import (
	"fmt"
	"strings"

	"github.com/brojonat/suiscope/service/sui"
)

// BuySellPolicy decides between buy and sell when a transaction moves
// exactly one non-native coin type in both directions.
type BuySellPolicy string

const (
	// PolicyAlwaysBuy always reports buy.
	PolicyAlwaysBuy BuySellPolicy = "always-buy"
	// PolicySenderNet reports sell when the sender's net change in the
	// coin is negative, buy otherwise.
	PolicySenderNet BuySellPolicy = "sender-net"
)

// ParseBuySellPolicy parses a policy name. Empty selects PolicyAlwaysBuy.
func ParseBuySellPolicy(s string) (BuySellPolicy, error) {
	switch BuySellPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyAlwaysBuy:
		return PolicyAlwaysBuy, nil
	case PolicySenderNet:
		return PolicySenderNet, nil
	default:
		return "", fmt.Errorf("unknown buy/sell policy %q (want %q or %q)", s, PolicyAlwaysBuy, PolicySenderNet)
	}
}

// Classify assigns exactly one type. Rules are evaluated in order and the
// first match wins:
//
//  1. mint-like or NFT creation with no incoming balance: mint
//  2. burn-like deletion with no outgoing balance (or no balances): burn
//  3. swap event, or 2+ coin types moving both ways: swap
//  4. one coin type moving both ways: buy, or sell under PolicySenderNet
//  5. direct transfer or single-recipient pay: transfer
//  6. otherwise: call
//
// Failed transactions are always unknown.
func Classify(raw *sui.RawTransaction, b BalanceAnalysis, o ObjectAnalysis, e EventAnalysis, policy BuySellPolicy) TransactionType {
	if !raw.Succeeded() {
		return TypeUnknown
	}

	switch {
	case (o.MintLike || o.NFTCreated) && !b.HasIncoming:
		return TypeMint
	case o.BurnLike && (!b.HasOutgoing || len(raw.BalanceChanges) == 0):
		return TypeBurn
	case e.Swap || (b.CoinTypeCount >= 2 && b.HasIncoming && b.HasOutgoing):
		return TypeSwap
	case b.HasIncoming && b.HasOutgoing && b.CoinTypeCount == 1:
		if policy == PolicySenderNet && b.SenderNetOf(b.CoinNet[0].CoinType) < 0 {
			return TypeSell
		}
		return TypeBuy
	case isDirectTransfer(raw):
		return TypeTransfer
	default:
		return TypeCall
	}
}

// isDirectTransfer reports a single native transfer, a single-recipient pay,
// or a programmable transaction that only splits, merges and sends coins to
// one recipient.
func isDirectTransfer(raw *sui.RawTransaction) bool {
	switch raw.Kind {
	case sui.KindSingle, sui.KindBatch:
		if len(raw.Commands) != 1 {
			return false
		}
		cmd := raw.Commands[0]
		switch cmd.Kind {
		case sui.CommandTransferSui, sui.CommandPayAllSui:
			return cmd.Recipient != ""
		case sui.CommandPay, sui.CommandPaySui:
			return len(uniqueStrings(cmd.Recipients)) == 1
		}
		return false

	case sui.KindProgrammable:
		recipient := ""
		sawTransfer := false
		for _, cmd := range raw.Commands {
			switch cmd.Kind {
			case sui.CommandSplitCoins, sui.CommandMergeCoins:
			case sui.CommandTransferObjects:
				if cmd.Recipient == "" {
					return false
				}
				if sawTransfer && !sameAddress(cmd.Recipient, recipient) {
					return false
				}
				recipient = cmd.Recipient
				sawTransfer = true
			default:
				return false
			}
		}
		return sawTransfer
	}
	return false
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		dup := false
		for _, o := range out {
			if sameAddress(o, s) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	return out
}
