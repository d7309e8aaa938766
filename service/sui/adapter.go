package sui

import (
	"context"
	"encoding/json"
	"fmt"

	sui_sdk "github.com/block-vision/sui-go-sdk/sui"
)

// RPCClient is the subset of Sui JSON-RPC we need. Methods return the raw
// JSON result so the parser owns decoding.
type RPCClient interface {
	GetTransactionBlock(ctx context.Context, digest string) (json.RawMessage, error)
	GetCoinMetadata(ctx context.Context, coinType string) (json.RawMessage, error)
}

// transactionBlockOptions asks the node for every section the parser reads.
var transactionBlockOptions = map[string]bool{
	"showInput":          true,
	"showEffects":        true,
	"showEvents":         true,
	"showBalanceChanges": true,
	"showObjectChanges":  true,
}

// realRPCClient adapts the block-vision SDK to RPCClient.
type realRPCClient struct {
	api sui_sdk.ISuiAPI
}

// NewRPCClient dials nothing; the SDK client is a thin HTTP JSON-RPC wrapper
// around url.
func NewRPCClient(url string) RPCClient {
	return &realRPCClient{api: sui_sdk.NewSuiClient(url)}
}

func (r *realRPCClient) GetTransactionBlock(ctx context.Context, digest string) (json.RawMessage, error) {
	return r.call(ctx, "sui_getTransactionBlock", digest, transactionBlockOptions)
}

func (r *realRPCClient) GetCoinMetadata(ctx context.Context, coinType string) (json.RawMessage, error) {
	return r.call(ctx, "suix_getCoinMetadata", coinType)
}

func (r *realRPCClient) call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	result, err := r.api.SuiCall(ctx, method, params...)
	if err != nil {
		return nil, err
	}

	var b []byte
	switch v := result.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		b, err = json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to re-encode %s result: %w", method, err)
		}
	}
	return unwrapEnvelope(b)
}

// unwrapEnvelope strips a JSON-RPC envelope when the SDK hands back the
// whole response body instead of the result member.
func unwrapEnvelope(b []byte) (json.RawMessage, error) {
	var env struct {
		JSONRPC string          `json:"jsonrpc"`
		Result  json.RawMessage `json:"result"`
		Error   *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(b, &env); err != nil || env.JSONRPC == "" {
		return b, nil
	}
	if env.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", env.Error.Code, env.Error.Message)
	}
	return env.Result, nil
}
