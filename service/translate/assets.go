package translate

import (
	"math"

	"github.com/brojonat/suiscope/service/sui"
)

const nativeDecimals = 9

// coinResolver resolves symbols and decimals, preferring enrichment data.
type coinResolver struct {
	enrichment *Enrichment
}

func (r coinResolver) symbol(coinType string) string {
	if r.enrichment != nil {
		if info, ok := r.enrichment.Coins[coinType]; ok && info.Symbol != "" {
			return info.Symbol
		}
	}
	return CoinSymbol(coinType)
}

func (r coinResolver) decimals(coinType string) int {
	if coinType == sui.NativeCoinType {
		return nativeDecimals
	}
	if r.enrichment != nil {
		if info, ok := r.enrichment.Coins[coinType]; ok && info.Decimals > 0 {
			return info.Decimals
		}
	}
	return nativeDecimals
}

// senderLegs returns the sender's net change per coin type with the net gas
// fee added back to the native leg, so gas alone never shows as a transfer.
// Zero legs are dropped.
func senderLegs(b BalanceAnalysis, gas GasInfo) []CoinAmount {
	legs := make([]CoinAmount, 0, len(b.SenderNet))
	for _, c := range b.SenderNet {
		amount := c.Amount
		if c.CoinType == sui.NativeCoinType {
			amount = saturatingAdd(amount, gas.NetGasFee)
		}
		if amount == 0 {
			continue
		}
		legs = append(legs, CoinAmount{CoinType: c.CoinType, Amount: amount})
	}
	return legs
}

func buildAssets(legs []CoinAmount, coins coinResolver, priceUSD float64) []Asset {
	assets := make([]Asset, 0, len(legs))
	for _, l := range legs {
		assets = append(assets, newAsset(l, coins, priceUSD))
	}
	return assets
}

func newAsset(l CoinAmount, coins coinResolver, priceUSD float64) Asset {
	display := toDisplay(l.Amount, coins.decimals(l.CoinType))
	direction := DirectionIn
	if l.Amount < 0 {
		direction = DirectionOut
	}
	abs := display
	if abs < 0 {
		abs = -abs
	}
	return Asset{
		CoinType:  l.CoinType,
		Symbol:    coins.symbol(l.CoinType),
		Amount:    l.Amount,
		Display:   display,
		Direction: direction,
		USDValue:  usdValue(l.CoinType, abs, priceUSD),
	}
}

// buildFinancialSummary picks the largest outgoing leg as primary and the
// largest incoming leg as secondary. With no outgoing leg, the largest
// incoming leg is primary. Ties keep the first-seen leg.
func buildFinancialSummary(assets []Asset) FinancialSummary {
	var out, in *Asset
	for i := range assets {
		a := &assets[i]
		switch a.Direction {
		case DirectionOut:
			if out == nil || outweighs(a, out) {
				out = a
			}
		case DirectionIn:
			if in == nil || outweighs(a, in) {
				in = a
			}
		}
	}

	var fs FinancialSummary
	switch {
	case out != nil:
		p := *out
		fs.PrimaryAsset = &p
		if in != nil {
			s := *in
			fs.SecondaryAsset = &s
		}
	case in != nil:
		p := *in
		fs.PrimaryAsset = &p
	}

	if fs.PrimaryAsset != nil {
		fs.TotalUSD = fs.PrimaryAsset.USDValue
		fs.IsIncoming = fs.PrimaryAsset.Direction == DirectionIn
	}
	if fs.TotalUSD == 0 && fs.SecondaryAsset != nil {
		fs.TotalUSD = fs.SecondaryAsset.USDValue
	}
	return fs
}

// outweighs compares assets by USD value when both have one, otherwise by
// display amount. Minor units are not comparable across decimals.
func outweighs(a, b *Asset) bool {
	if a.USDValue != 0 && b.USDValue != 0 {
		return math.Abs(a.USDValue) > math.Abs(b.USDValue)
	}
	return math.Abs(a.Display) > math.Abs(b.Display)
}
