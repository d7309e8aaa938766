package translate

import (
	"fmt"
	"strings"

	"github.com/brojonat/suiscope/service/sui"
)

const failedNarrative = "This transaction failed."

func formatAmount(display float64, symbol string) string {
	return fmt.Sprintf("%.4f %s", display, symbol)
}

func formatAsset(a *Asset) string {
	d := a.Display
	if d < 0 {
		d = -d
	}
	return formatAmount(d, a.Symbol)
}

// narrator builds the deterministic text fields from an assembled
// translation.
type narrator struct {
	raw *sui.RawTransaction
	tx  *TranslatedTransaction
	obj ObjectAnalysis
	ev  EventAnalysis
}

func (n narrator) sender() string {
	return n.tx.Sender.Display
}

func (n narrator) recipientPhrase() string {
	switch len(n.tx.Recipients) {
	case 0:
		return ""
	case 1:
		return " to " + n.tx.Recipients[0].Display
	default:
		return fmt.Sprintf(" to %d recipients", len(n.tx.Recipients))
	}
}

func (n narrator) protocolPhrase() string {
	if n.tx.Protocol == "" {
		return ""
	}
	return " on " + n.tx.Protocol
}

// transferredAmount sums the SUI amounts named by transfer and pay commands.
// Pay moves arbitrary coins and is left out. ok is false when no command
// carries a SUI amount.
func (n narrator) transferredAmount() (uint64, bool) {
	var total uint64
	found := false
	for _, cmd := range n.raw.Commands {
		if cmd.Amount != nil {
			total += *cmd.Amount
			found = true
		}
		if cmd.Kind == sui.CommandPaySui {
			for _, a := range cmd.Amounts {
				total += a
				found = true
			}
		}
	}
	return total, found
}

func (n narrator) plainEnglish() string {
	if !n.tx.Succeeded() {
		return failedNarrative
	}

	fs := n.tx.FinancialSummary
	var b strings.Builder
	switch n.tx.Type {
	case TypeTransfer:
		if amount, ok := n.transferredAmount(); ok {
			fmt.Fprintf(&b, "%s sent %s%s.", n.sender(), formatAmount(mistToSui(int64(amount)), "SUI"), n.recipientPhrase())
		} else if fs.PrimaryAsset != nil && fs.PrimaryAsset.Direction == DirectionOut {
			fmt.Fprintf(&b, "%s sent %s%s.", n.sender(), formatAsset(fs.PrimaryAsset), n.recipientPhrase())
		} else {
			fmt.Fprintf(&b, "%s transferred assets%s.", n.sender(), n.recipientPhrase())
		}

	case TypeSwap:
		if fs.PrimaryAsset != nil && fs.SecondaryAsset != nil {
			fmt.Fprintf(&b, "%s swapped %s for %s%s.", n.sender(), formatAsset(fs.PrimaryAsset), formatAsset(fs.SecondaryAsset), n.protocolPhrase())
		} else {
			fmt.Fprintf(&b, "%s swapped tokens%s.", n.sender(), n.protocolPhrase())
		}

	case TypeBuy:
		if fs.PrimaryAsset != nil && fs.SecondaryAsset != nil {
			fmt.Fprintf(&b, "%s bought %s for %s%s.", n.sender(), formatAsset(fs.SecondaryAsset), formatAsset(fs.PrimaryAsset), n.protocolPhrase())
		} else {
			fmt.Fprintf(&b, "%s bought assets%s.", n.sender(), n.protocolPhrase())
		}

	case TypeSell:
		if fs.PrimaryAsset != nil && fs.SecondaryAsset != nil {
			fmt.Fprintf(&b, "%s sold %s for %s%s.", n.sender(), formatAsset(fs.PrimaryAsset), formatAsset(fs.SecondaryAsset), n.protocolPhrase())
		} else {
			fmt.Fprintf(&b, "%s sold assets%s.", n.sender(), n.protocolPhrase())
		}

	case TypeMint:
		what := "new tokens"
		if n.obj.NFTCreated {
			what = "an NFT"
		}
		fmt.Fprintf(&b, "%s minted %s, creating %d new object(s).", n.sender(), what, n.obj.Created)

	case TypeBurn:
		fmt.Fprintf(&b, "%s burned tokens, deleting %d object(s).", n.sender(), n.obj.Deleted)

	default:
		switch len(n.tx.MoveCalls) {
		case 0:
			fmt.Fprintf(&b, "%s executed a transaction with %d command(s).", n.sender(), len(n.raw.Commands))
		case 1:
			mc := n.tx.MoveCalls[0]
			fmt.Fprintf(&b, "%s called %s::%s%s.", n.sender(), mc.Module, mc.Function, n.protocolPhrase())
		default:
			mc := n.tx.MoveCalls[0]
			fmt.Fprintf(&b, "%s called %s::%s and %d other function(s)%s.", n.sender(), mc.Module, mc.Function, len(n.tx.MoveCalls)-1, n.protocolPhrase())
		}
	}

	fmt.Fprintf(&b, " The network fee was %s.", formatAmount(n.tx.Gas.GasFeeSUI, "SUI"))
	return b.String()
}

var typeTitles = map[TransactionType]string{
	TypeTransfer: "Transfer",
	TypeSwap:     "Swap",
	TypeBuy:      "Buy",
	TypeSell:     "Sell",
	TypeMint:     "Mint",
	TypeBurn:     "Burn",
	TypeCall:     "Contract call",
	TypeUnknown:  "Failed transaction",
}

func (n narrator) summary() string {
	title := typeTitles[n.tx.Type]
	if !n.tx.Succeeded() {
		return title
	}
	fs := n.tx.FinancialSummary
	switch {
	case n.tx.Type == TypeCall && len(n.tx.MoveCalls) > 0:
		mc := n.tx.MoveCalls[0]
		title += fmt.Sprintf(" to %s::%s", mc.Module, mc.Function)
	case fs.PrimaryAsset != nil:
		title += " of " + formatAsset(fs.PrimaryAsset)
	}
	return title + n.protocolPhrase()
}

func (n narrator) technicalSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s with %d command(s) and %d Move call(s).", describeKind(n.raw.Kind), len(n.raw.Commands), len(n.tx.MoveCalls))
	fmt.Fprintf(&b, " %d balance change(s), %d object change(s), %d event(s).",
		len(n.raw.BalanceChanges), n.tx.ObjectStats.Total(), len(n.raw.Events))

	var signals []string
	if n.ev.Swap {
		signals = append(signals, "swap")
	}
	if n.ev.Mint {
		signals = append(signals, "mint")
	}
	if n.ev.Burn {
		signals = append(signals, "burn")
	}
	if len(signals) > 0 {
		fmt.Fprintf(&b, " Event signals: %s.", strings.Join(signals, ", "))
	}

	if n.tx.Succeeded() {
		fmt.Fprintf(&b, " Status: %s.", sui.StatusSuccess)
	} else if n.raw.Error != "" {
		fmt.Fprintf(&b, " Status: failed (%s).", n.raw.Error)
	} else {
		b.WriteString(" Status: failed.")
	}
	return b.String()
}

func (n narrator) objectSummary() string {
	s := n.tx.ObjectStats
	if s.Total() == 0 {
		return "No objects were changed."
	}
	var parts []string
	add := func(count int, verb string) {
		if count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", count, verb))
		}
	}
	add(s.Created, "created")
	add(s.Modified, "modified")
	add(s.Deleted, "deleted")
	add(s.Transferred, "transferred")
	add(s.Wrapped, "wrapped")
	add(s.Published, "published")
	return fmt.Sprintf("%d object(s) changed: %s.", s.Total(), strings.Join(parts, ", "))
}

func (n narrator) gasSummary() string {
	g := n.tx.Gas
	return fmt.Sprintf("Gas fee %s (computation %s, storage %s, rebate %s); about $%.2f.",
		formatAmount(g.GasFeeSUI, "SUI"),
		formatAmount(mistToSui(int64(g.ComputationCost)), "SUI"),
		formatAmount(mistToSui(int64(g.StorageCost)), "SUI"),
		formatAmount(g.StorageRebateSUI, "SUI"),
		g.EstimatedUSD,
	)
}
