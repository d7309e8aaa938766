package translate

import (
	"fmt"
	"strings"

	"github.com/brojonat/suiscope/service/sui"
)

// functionGlosses gives a plain-English reading of common Move functions,
// keyed by function name.
var functionGlosses = map[string]string{
	"transfer":                  "Transfers an object to a new owner",
	"public_transfer":           "Transfers an object to a new owner",
	"split":                     "Splits a coin into smaller coins",
	"join":                      "Merges coins into one",
	"merge":                     "Merges coins into one",
	"swap":                      "Swaps one token for another",
	"swap_a2b":                  "Swaps token A for token B",
	"swap_b2a":                  "Swaps token B for token A",
	"swap_exact_base_for_quote": "Sells an exact amount of the base token",
	"swap_exact_quote_for_base": "Buys the base token with an exact amount of the quote token",
	"swap_exact_input":          "Swaps an exact input amount",
	"swap_exact_output":         "Swaps for an exact output amount",
	"flash_swap":                "Borrows tokens for an atomic swap",
	"repay_flash_swap":          "Repays a flash swap",
	"mint":                      "Creates new tokens or objects",
	"mint_and_transfer":         "Creates new tokens and sends them to a recipient",
	"mint_to":                   "Creates new tokens for a recipient",
	"burn":                      "Destroys tokens or objects",
	"request_add_stake":         "Stakes SUI with a validator",
	"request_withdraw_stake":    "Withdraws staked SUI from a validator",
	"stake":                     "Stakes tokens",
	"unstake":                   "Unstakes tokens",
	"deposit":                   "Deposits assets into a protocol",
	"withdraw":                  "Withdraws assets from a protocol",
	"borrow":                    "Borrows assets from a lending pool",
	"repay":                     "Repays borrowed assets",
	"add_liquidity":             "Adds liquidity to a pool",
	"remove_liquidity":          "Removes liquidity from a pool",
	"open_position":             "Opens a liquidity position",
	"close_position":            "Closes a liquidity position",
	"collect_fee":               "Collects earned trading fees",
	"claim":                     "Claims tokens or rewards",
	"claim_rewards":             "Claims accumulated rewards",
	"place_limit_order":         "Places a limit order",
	"place_market_order":        "Places a market order",
	"cancel_order":              "Cancels an open order",
	"list":                      "Lists an item for sale",
	"delist":                    "Removes an item from sale",
	"buy":                       "Purchases a listed item",
	"purchase":                  "Purchases a listed item",
	"vote":                      "Casts a governance vote",
	"create":                    "Creates a new object",
	"new":                       "Creates a new object",
	"destroy_zero":              "Destroys an empty coin",
	"zero":                      "Creates an empty coin",
	"into_balance":              "Converts a coin into a balance",
	"from_balance":              "Converts a balance into a coin",
	"set_display":               "Updates object display metadata",
	"update_metadata":           "Updates metadata",
}

// packageDescriptions names the framework packages.
var packageDescriptions = map[string]string{
	"0x1":    "Move standard library",
	"0x2":    "Sui framework",
	"0x3":    "Sui system",
	"0xdee9": "DeepBook",
}

// kindExplanations describe transaction kinds for the technical summary.
var kindExplanations = map[sui.TransactionKind]string{
	sui.KindSingle:       "Single-operation transaction",
	sui.KindBatch:        "Batch of operations executed together",
	sui.KindProgrammable: "Programmable transaction block executed atomically",
}

// glossFunction returns the plain-English gloss for a function, falling
// back to a generic description.
func glossFunction(module, function string) string {
	if g, ok := functionGlosses[function]; ok {
		return g
	}
	return fmt.Sprintf("Calls %s.%s", module, function)
}

// describePackage returns a readable name for a package id.
func describePackage(pkg string) string {
	if d, ok := packageDescriptions[shortPackageID(pkg)]; ok {
		return d
	}
	return "package " + truncateAddress(pkg)
}

func describeKind(kind sui.TransactionKind) string {
	if d, ok := kindExplanations[kind]; ok {
		return d
	}
	if kind == "" {
		return "Transaction of unknown kind"
	}
	return string(kind) + " transaction"
}

// shortPackageID strips leading zeros so 0x000...02 and 0x2 compare equal.
func shortPackageID(id string) string {
	lower := strings.ToLower(id)
	if !strings.HasPrefix(lower, "0x") {
		return lower
	}
	trimmed := strings.TrimLeft(lower[2:], "0")
	if trimmed == "" {
		trimmed = "0"
	}
	return "0x" + trimmed
}

// CoinSymbol derives a ticker from a coin type tag, e.g.
// 0x5d4b...::coin::COIN becomes COIN.
func CoinSymbol(coinType string) string {
	if parts := strings.SplitN(coinType, "::", 2); len(parts) == 2 && shortPackageID(parts[0]) == "0x2" && parts[1] == "sui::SUI" {
		return "SUI"
	}
	t := coinType
	if i := strings.Index(t, "<"); i >= 0 {
		t = t[:i]
	}
	parts := strings.Split(t, "::")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return coinType
	}
	return parts[len(parts)-1]
}

// truncateAddress shortens addresses longer than ten characters to the
// first six and last four.
func truncateAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
