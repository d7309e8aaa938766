package translate

import (
	"math"
	"strings"

	"github.com/brojonat/suiscope/service/sui"
)

// CoinAmount is a signed amount of one coin type in minor units.
type CoinAmount struct {
	CoinType string
	Amount   int64
}

// BalanceAnalysis summarizes the balance-change list.
type BalanceAnalysis struct {
	NativeNet     int64
	CoinNet       []CoinAmount // non-native coin types, first-seen order, unique
	HasIncoming   bool
	HasOutgoing   bool
	CoinTypeCount int // distinct non-native coin types
	SenderNet     []CoinAmount // sender's net per coin type incl. native, first-seen order
}

// Net returns the net change of coinType across all owners.
func (b BalanceAnalysis) Net(coinType string) int64 {
	if coinType == sui.NativeCoinType {
		return b.NativeNet
	}
	return amountOf(b.CoinNet, coinType)
}

// SenderNetOf returns the sender's net change of coinType.
func (b BalanceAnalysis) SenderNetOf(coinType string) int64 {
	return amountOf(b.SenderNet, coinType)
}

// ObjectAnalysis summarizes the object-change list.
type ObjectAnalysis struct {
	Created     int
	Mutated     int
	Deleted     int
	Transferred int
	Wrapped     int
	Published   int

	NFTCreated bool
	MintLike   bool
	BurnLike   bool
}

// EventAnalysis summarizes the emitted events.
type EventAnalysis struct {
	Types    []string
	Swap     bool
	Mint     bool
	Burn     bool
	Protocol string
}

type objectSignal int

const (
	signalNFT objectSignal = iota
	signalMint
)

// createdMarkers are matched against lower-cased type tags of created
// objects.
var createdMarkers = []struct {
	marker string
	signal objectSignal
}{
	{"nft", signalNFT},
	{"cap::", signalMint},
	{"supply", signalMint},
	{"treasury", signalMint},
}

// deletedMarkers are matched against lower-cased type tags of deleted
// objects.
var deletedMarkers = []string{"burn"}

type eventSignal int

const (
	eventSwap eventSignal = iota
	eventMint
	eventBurn
)

var eventMarkers = []struct {
	marker string
	signal eventSignal
}{
	{"swap", eventSwap},
	{"exchange", eventSwap},
	{"trade", eventSwap},
	{"mint", eventMint},
	{"burn", eventBurn},
}

// protocolMarkers map module-name substrings to protocol names. First match
// wins.
var protocolMarkers = []struct {
	marker string
	name   string
}{
	{"cetus", "Cetus"},
	{"turbos", "Turbos"},
	{"deepbook", "DeepBook"},
	{"aftermath", "Aftermath"},
	{"kriya", "Kriya"},
	{"flowx", "FlowX"},
	{"navi", "NAVI"},
	{"scallop", "Scallop"},
	{"suilend", "Suilend"},
	{"bluefin", "Bluefin"},
}

// AnalyzeBalanceChanges folds the balance changes into a BalanceAnalysis.
// Incoming and outgoing are set by any single positive or negative entry,
// not by net totals.
func AnalyzeBalanceChanges(changes []sui.BalanceChange, sender string) BalanceAnalysis {
	var a BalanceAnalysis
	for _, bc := range changes {
		if bc.CoinType == sui.NativeCoinType {
			a.NativeNet = saturatingAdd(a.NativeNet, bc.Amount)
		} else {
			a.CoinNet = addAmount(a.CoinNet, bc.CoinType, bc.Amount)
		}
		if sender != "" && sameAddress(bc.Owner, sender) {
			a.SenderNet = addAmount(a.SenderNet, bc.CoinType, bc.Amount)
		}
		if bc.Amount > 0 {
			a.HasIncoming = true
		}
		if bc.Amount < 0 {
			a.HasOutgoing = true
		}
	}
	a.CoinTypeCount = len(a.CoinNet)
	return a
}

// AnalyzeObjectChanges tallies operations and tests type tags against the
// created and deleted marker lists.
func AnalyzeObjectChanges(changes []sui.ObjectChange) ObjectAnalysis {
	var a ObjectAnalysis
	for _, oc := range changes {
		typeTag := strings.ToLower(oc.ObjectType)
		switch oc.Operation {
		case sui.ObjectCreated:
			a.Created++
			for _, m := range createdMarkers {
				if !strings.Contains(typeTag, m.marker) {
					continue
				}
				switch m.signal {
				case signalNFT:
					a.NFTCreated = true
				case signalMint:
					a.MintLike = true
				}
			}
		case sui.ObjectDeleted:
			a.Deleted++
			for _, m := range deletedMarkers {
				if strings.Contains(typeTag, m) {
					a.BurnLike = true
				}
			}
		case sui.ObjectMutated:
			a.Mutated++
		case sui.ObjectTransferred:
			a.Transferred++
		case sui.ObjectWrapped:
			a.Wrapped++
		case sui.ObjectPublished:
			a.Published++
		}
	}
	return a
}

// AnalyzeEvents tests event type tags against the event markers and
// attributes at most one protocol from the emitting module name.
func AnalyzeEvents(events []sui.Event) EventAnalysis {
	a := EventAnalysis{Types: make([]string, 0, len(events))}
	for _, ev := range events {
		a.Types = append(a.Types, ev.Type)

		typeTag := strings.ToLower(ev.Type)
		for _, m := range eventMarkers {
			if !strings.Contains(typeTag, m.marker) {
				continue
			}
			switch m.signal {
			case eventSwap:
				a.Swap = true
			case eventMint:
				a.Mint = true
			case eventBurn:
				a.Burn = true
			}
		}

		if a.Protocol == "" {
			a.Protocol = protocolFromModule(ev.Module)
		}
	}
	return a
}

func protocolFromModule(module string) string {
	m := strings.ToLower(module)
	if m == "" {
		return ""
	}
	for _, p := range protocolMarkers {
		if strings.Contains(m, p.marker) {
			return p.name
		}
	}
	return ""
}

// saturatingAdd clamps to the int64 bounds so sums of saturated amounts
// keep their sign.
func saturatingAdd(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}

func addAmount(list []CoinAmount, coinType string, amount int64) []CoinAmount {
	for i := range list {
		if list[i].CoinType == coinType {
			list[i].Amount = saturatingAdd(list[i].Amount, amount)
			return list
		}
	}
	return append(list, CoinAmount{CoinType: coinType, Amount: amount})
}

func amountOf(list []CoinAmount, coinType string) int64 {
	for _, c := range list {
		if c.CoinType == coinType {
			return c.Amount
		}
	}
	return 0
}

// sameAddress compares addresses ignoring case.
func sameAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}
