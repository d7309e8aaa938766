package translate

import (
	"github.com/brojonat/suiscope/service/sui"
)

func newAddress(addr, role string, enrichment *Enrichment) Address {
	a := Address{
		Address: addr,
		Display: truncateAddress(addr),
		Role:    role,
	}
	if enrichment != nil {
		a.Label = enrichment.Labels[addr]
	}
	return a
}

// extractRecipients collects receiving balance owners other than the sender
// in first-seen order, then adds recipients named by transfer commands.
// Addresses are unique, compared case-insensitively.
func extractRecipients(raw *sui.RawTransaction, enrichment *Enrichment) []Address {
	var addrs []string
	add := func(a string) {
		if a == "" || sameAddress(a, raw.Sender) {
			return
		}
		for _, seen := range addrs {
			if sameAddress(seen, a) {
				return
			}
		}
		addrs = append(addrs, a)
	}

	for _, bc := range raw.BalanceChanges {
		if bc.Amount > 0 {
			add(bc.Owner)
		}
	}
	for _, cmd := range raw.Commands {
		add(cmd.Recipient)
		for _, r := range cmd.Recipients {
			add(r)
		}
	}

	out := make([]Address, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, newAddress(a, RoleRecipient, enrichment))
	}
	return out
}
