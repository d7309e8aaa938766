package translate

import (
	"fmt"
	"strings"

	"github.com/brojonat/suiscope/service/sui"
)

const sharedOwner = "shared"

// buildExecution produces the command-level view of a programmable
// transaction. Other kinds return nil.
func buildExecution(raw *sui.RawTransaction, protocols []string, coins coinResolver) *ExecutionFlow {
	if raw.Kind != sui.KindProgrammable {
		return nil
	}

	ex := &ExecutionFlow{
		Steps:                make([]ExecutionStep, 0, len(raw.Commands)),
		CrossContractCalls:   []CrossCall{},
		ObjectLifecycle:      make([]ObjectLifecycle, 0, len(raw.ObjectChanges)),
		ValueFlows:           []ValueFlow{},
		ProtocolInteractions: protocols,
	}

	var prevPackage string
	var packages []string
	for i, cmd := range raw.Commands {
		step := ExecutionStep{Index: i, Command: string(cmd.Kind)}
		switch {
		case cmd.Kind == sui.CommandMoveCall && cmd.MoveCall != nil:
			mc := cmd.MoveCall
			step.Target = fmt.Sprintf("%s::%s::%s", truncateAddress(mc.Package), mc.Module, mc.Function)
			step.Description = glossFunction(mc.Module, mc.Function)
			if ex.EntryPoint == "" {
				ex.EntryPoint = step.Target
			}
			if prevPackage != "" && !strings.EqualFold(shortPackageID(prevPackage), shortPackageID(mc.Package)) {
				ex.CrossContractCalls = append(ex.CrossContractCalls, CrossCall{
					FromPackage: prevPackage,
					ToPackage:   mc.Package,
					Function:    mc.Module + "::" + mc.Function,
				})
			}
			prevPackage = mc.Package
			packages = appendUnique(packages, shortPackageID(mc.Package))
		default:
			step.Target = truncateAddress(cmd.Recipient)
			step.Description = describeCommand(cmd)
		}
		ex.Steps = append(ex.Steps, step)
	}
	if ex.EntryPoint == "" && len(raw.Commands) > 0 {
		ex.EntryPoint = string(raw.Commands[0].Kind)
	}

	for _, oc := range raw.ObjectChanges {
		owner := oc.Owner
		if oc.Recipient != "" {
			owner = oc.Recipient
		}
		ex.ObjectLifecycle = append(ex.ObjectLifecycle, ObjectLifecycle{
			ObjectID:  oc.ObjectID,
			Type:      oc.ObjectType,
			Category:  CategorizeObjectType(oc.ObjectType),
			Operation: string(oc.Operation),
			Owner:     owner,
		})
	}

	ex.ValueFlows = valueFlows(raw.BalanceChanges, coins)

	coinTypes := 0
	var seen []string
	for _, f := range ex.ValueFlows {
		if !contains(seen, f.CoinType) {
			seen = append(seen, f.CoinType)
			coinTypes++
		}
	}
	ex.Summary = fmt.Sprintf("Executed %d command(s) across %d package(s); %d object(s) changed; value moved in %d coin type(s).",
		len(raw.Commands), len(packages), len(raw.ObjectChanges), coinTypes)
	return ex
}

// valueFlows infers, per coin type, a movement from the largest payer to
// every receiver of that coin.
func valueFlows(changes []sui.BalanceChange, coins coinResolver) []ValueFlow {
	var coinOrder []string
	for _, bc := range changes {
		coinOrder = appendUnique(coinOrder, bc.CoinType)
	}

	flows := []ValueFlow{}
	for _, coinType := range coinOrder {
		var payer *sui.BalanceChange
		for i := range changes {
			bc := &changes[i]
			if bc.CoinType != coinType || bc.Amount >= 0 {
				continue
			}
			if payer == nil || bc.Amount < payer.Amount {
				payer = bc
			}
		}
		if payer == nil {
			continue
		}
		for _, bc := range changes {
			if bc.CoinType != coinType || bc.Amount <= 0 {
				continue
			}
			flows = append(flows, ValueFlow{
				From:     orDefault(payer.Owner, sharedOwner),
				To:       orDefault(bc.Owner, sharedOwner),
				CoinType: coinType,
				Symbol:   coins.symbol(coinType),
				Amount:   bc.Amount,
				Display:  toDisplay(bc.Amount, coins.decimals(coinType)),
			})
		}
	}
	return flows
}

func describeCommand(cmd sui.Command) string {
	switch cmd.Kind {
	case sui.CommandSplitCoins:
		return fmt.Sprintf("Splits a coin into %d part(s)", len(cmd.Amounts))
	case sui.CommandMergeCoins:
		return "Merges coins together"
	case sui.CommandTransferObjects:
		return "Transfers objects to " + orDefault(truncateAddress(cmd.Recipient), "a computed address")
	case sui.CommandPublish:
		return "Publishes a new package"
	case sui.CommandUpgrade:
		return "Upgrades an existing package"
	case sui.CommandMakeMoveVec:
		return "Builds a vector of values"
	}
	return string(cmd.Kind)
}

// protocolInteractions lists protocols seen in events and Move call modules,
// in first-seen order, plus the enrichment protocol.
func protocolInteractions(raw *sui.RawTransaction, enrichment *Enrichment) []string {
	out := []string{}
	for _, ev := range raw.Events {
		if p := protocolFromModule(ev.Module); p != "" {
			out = appendUnique(out, p)
		}
	}
	for _, cmd := range raw.Commands {
		if cmd.MoveCall == nil {
			continue
		}
		if p := protocolFromModule(cmd.MoveCall.Module); p != "" {
			out = appendUnique(out, p)
		}
	}
	if enrichment != nil && enrichment.Protocol != "" {
		out = appendUnique(out, enrichment.Protocol)
	}
	return out
}

func appendUnique(list []string, s string) []string {
	if contains(list, s) {
		return list
	}
	return append(list, s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
