package translate

import (
	"math"
	"strings"

	"github.com/brojonat/suiscope/service/sui"
)

// stableMarkers identify coin types assumed pegged 1:1 to USD.
var stableMarkers = []string{"usdc", "stable", "usd"}

// gasInfo derives fees from the raw gas summary. The USD estimate uses the
// configured placeholder price.
func gasInfo(g sui.GasUsed, priceUSD float64) GasInfo {
	fee := g.ComputationCost + g.StorageCost
	net := int64(fee) - int64(g.StorageRebate)
	return GasInfo{
		ComputationCost:         g.ComputationCost,
		StorageCost:             g.StorageCost,
		StorageRebate:           g.StorageRebate,
		NonRefundableStorageFee: g.NonRefundableStorageFee,
		GasUsed:                 g.ComputationCost,
		GasFee:                  fee,
		NetGasFee:               net,
		GrossFeeSUI:             mistToSui(int64(fee)),
		GasFeeSUI:               mistToSui(net),
		StorageRebateSUI:        mistToSui(int64(g.StorageRebate)),
		EstimatedUSD:            roundCents(mistToSui(net) * priceUSD),
	}
}

func mistToSui(mist int64) float64 {
	return float64(mist) / sui.MistPerSui
}

// toDisplay converts minor units using the coin's decimals.
func toDisplay(amount int64, decimals int) float64 {
	return float64(amount) / math.Pow10(decimals)
}

// usdValue estimates the USD value of a display amount. Coins that are
// neither native nor stable-like have no estimate.
func usdValue(coinType string, display, priceUSD float64) float64 {
	if coinType == sui.NativeCoinType {
		return roundCents(display * priceUSD)
	}
	lower := strings.ToLower(coinType)
	for _, m := range stableMarkers {
		if strings.Contains(lower, m) {
			return roundCents(display)
		}
	}
	return 0
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
