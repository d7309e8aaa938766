package translate

import (
	"fmt"

	"github.com/brojonat/suiscope/service/sui"
)

// stepBuilder numbers every step so ids stay unique even when two steps
// share a coin type or recipient.
type stepBuilder struct {
	steps []Step
}

func (b *stepBuilder) add(prefix, stepType, title, description, amount, address string) {
	b.steps = append(b.steps, Step{
		ID:          fmt.Sprintf("%s-%d", prefix, len(b.steps)),
		Type:        stepType,
		Title:       title,
		Description: description,
		Amount:      amount,
		Address:     address,
	})
}

// failedSteps is the whole step list of a failed transaction.
func failedSteps(raw *sui.RawTransaction) []Step {
	desc := "The transaction was rejected during execution."
	if raw.Error != "" {
		desc = "Execution error: " + raw.Error
	}
	return []Step{{
		ID:          "failed",
		Type:        StepAction,
		Title:       "Transaction Failed",
		Description: desc,
	}}
}

// payAmount formats one amount of a pay command. PaySui is always SUI. Pay
// spends arbitrary coins, so the coin is taken from the sender's single
// outgoing non-native balance change; otherwise the raw amount is shown.
func payAmount(raw *sui.RawTransaction, kind sui.CommandKind, amount uint64, coins coinResolver) string {
	if kind == sui.CommandPaySui {
		return formatAmount(mistToSui(int64(amount)), "SUI")
	}
	if coinType, ok := paidCoinType(raw); ok {
		return formatAmount(toDisplay(int64(amount), coins.decimals(coinType)), coins.symbol(coinType))
	}
	return fmt.Sprintf("%d coin units", amount)
}

func paidCoinType(raw *sui.RawTransaction) (string, bool) {
	found := ""
	for _, bc := range raw.BalanceChanges {
		if bc.Amount >= 0 || bc.CoinType == sui.NativeCoinType || !sameAddress(bc.Owner, raw.Sender) {
			continue
		}
		if found != "" && found != bc.CoinType {
			return "", false
		}
		found = bc.CoinType
	}
	return found, found != ""
}

type stepShape int

const (
	shapeDirectSui stepShape = iota
	shapePay
	shapeObjectTransfer
	shapeProgrammable
)

func classifyShape(raw *sui.RawTransaction) stepShape {
	if raw.Kind == sui.KindProgrammable {
		return shapeProgrammable
	}
	if len(raw.Commands) == 0 {
		return shapeProgrammable
	}
	switch raw.Commands[0].Kind {
	case sui.CommandTransferSui:
		return shapeDirectSui
	case sui.CommandPay, sui.CommandPaySui, sui.CommandPayAllSui:
		return shapePay
	case sui.CommandTransferObject:
		return shapeObjectTransfer
	}
	return shapeProgrammable
}

// buildSteps emits the narrative steps for a successful transaction,
// branching on the transaction's structural shape, and always ends with a
// gas step.
func buildSteps(raw *sui.RawTransaction, gas GasInfo, coins coinResolver) []Step {
	b := &stepBuilder{}

	switch classifyShape(raw) {
	case shapeDirectSui:
		for _, cmd := range raw.Commands {
			if cmd.Kind != sui.CommandTransferSui {
				continue
			}
			amount := ""
			desc := fmt.Sprintf("Send SUI to %s", truncateAddress(cmd.Recipient))
			if cmd.Amount != nil {
				amount = formatAmount(mistToSui(int64(*cmd.Amount)), "SUI")
				desc = fmt.Sprintf("Send %s to %s", amount, truncateAddress(cmd.Recipient))
			}
			b.add("transfer", StepTransfer, "Transfer SUI", desc, amount, cmd.Recipient)
		}

	case shapePay:
		for _, cmd := range raw.Commands {
			switch cmd.Kind {
			case sui.CommandPayAllSui:
				b.add("transfer", StepTransfer, "Pay All SUI",
					fmt.Sprintf("Send the entire SUI balance to %s", truncateAddress(cmd.Recipient)), "", cmd.Recipient)
			case sui.CommandPay, sui.CommandPaySui:
				for i, r := range cmd.Recipients {
					amount := ""
					if i < len(cmd.Amounts) {
						amount = payAmount(raw, cmd.Kind, cmd.Amounts[i], coins)
					}
					b.add("transfer", StepTransfer, "Payment",
						fmt.Sprintf("Pay %s to %s", orDefault(amount, "coins"), truncateAddress(r)), amount, r)
				}
			}
		}

	case shapeObjectTransfer:
		for _, cmd := range raw.Commands {
			if cmd.Kind != sui.CommandTransferObject {
				continue
			}
			b.add("transfer", StepTransfer, "Transfer Object",
				fmt.Sprintf("Send object %s to %s", truncateAddress(cmd.ObjectID), truncateAddress(cmd.Recipient)), "", cmd.Recipient)
		}

	case shapeProgrammable:
		for _, in := range raw.Inputs {
			if in.Type == "object" {
				b.add("input", StepInput, "Use Object",
					fmt.Sprintf("Uses object %s", truncateAddress(in.ObjectID)), "", in.ObjectID)
				continue
			}
			b.add("input", StepInput, "Provide Value",
				fmt.Sprintf("Provides %s value %s", orDefault(in.ValueType, "pure"), truncateAddress(in.Value)), "", "")
		}
		for _, cmd := range raw.Commands {
			switch {
			case cmd.Kind == sui.CommandMoveCall && cmd.MoveCall != nil:
				mc := cmd.MoveCall
				b.add("call", StepAction, fmt.Sprintf("Call %s::%s", mc.Module, mc.Function),
					glossFunction(mc.Module, mc.Function), "", mc.Package)
			case cmd.Kind == sui.CommandTransferObjects && cmd.Recipient != "":
				b.add("transfer", StepTransfer, "Transfer Objects",
					fmt.Sprintf("Send objects to %s", truncateAddress(cmd.Recipient)), "", cmd.Recipient)
			}
		}
		addBalanceOutputs(b, raw, gas, coins)
	}

	b.add("gas", StepAction, "Pay Gas",
		fmt.Sprintf("Paid %s in network fees", formatAmount(gas.GasFeeSUI, "SUI")),
		formatAmount(gas.GasFeeSUI, "SUI"), raw.Sender)

	return b.steps
}

// addBalanceOutputs emits one output step per balance change, split into
// sent and received from the sender's point of view. The gas share of the
// sender's native change is excluded.
func addBalanceOutputs(b *stepBuilder, raw *sui.RawTransaction, gas GasInfo, coins coinResolver) {
	gasAdjusted := false
	for _, bc := range raw.BalanceChanges {
		amount := bc.Amount
		isSender := sameAddress(bc.Owner, raw.Sender)
		if isSender && bc.CoinType == sui.NativeCoinType && !gasAdjusted {
			amount += gas.NetGasFee
			gasAdjusted = true
		}
		if amount == 0 {
			continue
		}

		symbol := coins.symbol(bc.CoinType)
		display := toDisplay(magnitudeInt(amount), coins.decimals(bc.CoinType))
		formatted := formatAmount(display, symbol)
		owner := orDefault(truncateAddress(bc.Owner), "a shared object")

		switch {
		case isSender && amount < 0:
			b.add("output", StepOutput, "Sent "+symbol, "You sent "+formatted, formatted, bc.Owner)
		case isSender:
			b.add("output", StepOutput, "Received "+symbol, "You received "+formatted, formatted, bc.Owner)
		case amount > 0:
			b.add("output", StepOutput, "Received "+symbol, owner+" received "+formatted, formatted, bc.Owner)
		default:
			b.add("output", StepOutput, "Sent "+symbol, owner+" sent "+formatted, formatted, bc.Owner)
		}
	}
}

func magnitudeInt(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
