package sui

import (
	"net/url"
	"strings"
)

// knownProviders are matched against the RPC host, first match wins.
var knownProviders = []string{"shinami", "blockvision", "blastapi", "ankr", "quiknode", "quicknode", "chainbase", "allthatnode"}

// EndpointLabel extracts a short identifier from a Sui RPC URL for metrics
// labeling. API keys in the path or query never appear in the label.
// Examples:
//   - "https://fullnode.mainnet.sui.io:443" -> "mainnet"
//   - "https://api.shinami.com/node/v1/KEY" -> "shinami"
//   - "https://sui-mainnet.blastapi.io/KEY" -> "blastapi"
func EndpointLabel(rpcURL string) string {
	parsed, err := url.Parse(rpcURL)
	if err != nil || parsed.Hostname() == "" {
		return "unknown"
	}
	host := strings.ToLower(parsed.Hostname())

	for _, p := range knownProviders {
		if strings.Contains(host, p) {
			if p == "quicknode" {
				return "quiknode"
			}
			return p
		}
	}

	if strings.HasSuffix(host, ".sui.io") {
		for _, network := range []string{"mainnet", "testnet", "devnet"} {
			if strings.Contains(host, network) {
				return network
			}
		}
	}

	return host
}
