package translate

import (
	"encoding/json"

	"github.com/brojonat/suiscope/service/sui"
)

// TransactionType is the single classification assigned to a transaction.
type TransactionType string

const (
	TypeTransfer TransactionType = "transfer"
	TypeSwap     TransactionType = "swap"
	TypeBuy      TransactionType = "buy"
	TypeSell     TransactionType = "sell"
	TypeMint     TransactionType = "mint"
	TypeBurn     TransactionType = "burn"
	TypeCall     TransactionType = "call"
	TypeUnknown  TransactionType = "unknown" // failed transactions only
)

// AllTypes lists every classification in a stable order.
var AllTypes = []TransactionType{
	TypeTransfer, TypeSwap, TypeBuy, TypeSell, TypeMint, TypeBurn, TypeCall, TypeUnknown,
}

// Address roles.
const (
	RoleSender    = "sender"
	RoleRecipient = "recipient"
)

// Asset directions, relative to the sender.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Object categories.
const (
	CategoryNFT     = "nft"
	CategoryCoin    = "coin"
	CategoryCustom  = "custom"
	CategoryPackage = "package"
)

// Step types.
const (
	StepInput    = "input"
	StepOutput   = "output"
	StepAction   = "action"
	StepTransfer = "transfer"
)

// TranslatedTransaction is the structured interpretation of one
// transaction. It is built once by Translate and never mutated.
type TranslatedTransaction struct {
	Digest      string              `json:"digest"`
	Status      string              `json:"status"`
	Error       string              `json:"error,omitempty"`
	TimestampMs *int64              `json:"timestamp_ms,omitempty"`
	Checkpoint  *uint64             `json:"checkpoint,omitempty"`
	Kind        sui.TransactionKind `json:"kind"`
	Type        TransactionType     `json:"type"`
	Protocol    string              `json:"protocol,omitempty"`

	Summary          string `json:"summary"`
	TechnicalSummary string `json:"technical_summary"`
	PlainEnglish     string `json:"plain_english"`
	ObjectSummary    string `json:"object_summary"`
	GasSummary       string `json:"gas_summary"`

	Sender     Address   `json:"sender"`
	Recipients []Address `json:"recipients"`

	Assets           []Asset          `json:"assets"`
	Gas              GasInfo          `json:"gas"`
	MoveCalls        []MoveCallInfo   `json:"move_calls"`
	Objects          []ObjectInfo     `json:"objects"`
	Events           []EventInfo      `json:"events"`
	ObjectStats      ObjectStats      `json:"object_stats"`
	FinancialSummary FinancialSummary `json:"financial_summary"`

	Flow      FlowGraph      `json:"flow"`
	Steps     []Step         `json:"steps"`
	Execution *ExecutionFlow `json:"execution,omitempty"`
}

// Succeeded reports whether the underlying transaction executed.
func (t *TranslatedTransaction) Succeeded() bool {
	return t.Status == sui.StatusSuccess
}

// Address is a participant with its shortened display form.
type Address struct {
	Address string `json:"address"`
	Display string `json:"display"`
	Role    string `json:"role"`
	Label   string `json:"label,omitempty"`
}

// Asset is the sender's net movement of one coin type.
type Asset struct {
	CoinType  string  `json:"coin_type"`
	Symbol    string  `json:"symbol"`
	Amount    int64   `json:"amount"` // minor units, signed
	Display   float64 `json:"display"`
	Direction string  `json:"direction"`
	USDValue  float64 `json:"usd_value"`
}

// GasInfo is the gas accounting of a transaction. Minor-unit fields are
// exact; *SUI fields divide by sui.MistPerSui.
type GasInfo struct {
	ComputationCost         uint64  `json:"computation_cost"`
	StorageCost             uint64  `json:"storage_cost"`
	StorageRebate           uint64  `json:"storage_rebate"`
	NonRefundableStorageFee uint64  `json:"non_refundable_storage_fee"`
	GasUsed                 uint64  `json:"gas_used"`
	GasFee                  uint64  `json:"gas_fee"`
	NetGasFee               int64   `json:"net_gas_fee"`
	GrossFeeSUI             float64 `json:"gross_fee_sui"`
	GasFeeSUI               float64 `json:"gas_fee_sui"` // net fee, the displayed figure
	StorageRebateSUI        float64 `json:"storage_rebate_sui"`
	EstimatedUSD            float64 `json:"estimated_usd"`
}

// MoveCallInfo describes one smart-contract invocation.
type MoveCallInfo struct {
	Package       string   `json:"package"`
	Module        string   `json:"module"`
	Function      string   `json:"function"`
	Description   string   `json:"description"`
	PlainEnglish  string   `json:"plain_english"`
	Arguments     []string `json:"arguments"`
	TypeArguments []string `json:"type_arguments,omitempty"`
}

// ObjectInfo is one changed object with its heuristic category.
type ObjectInfo struct {
	ObjectID  string `json:"object_id"`
	Type      string `json:"type"`
	Category  string `json:"category"`
	Operation string `json:"operation"`
}

// EventInfo is one emitted event.
type EventInfo struct {
	Type   string          `json:"type"`
	Module string          `json:"module"`
	Sender string          `json:"sender"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// ObjectStats counts object changes by operation.
type ObjectStats struct {
	Created     int `json:"created"`
	Modified    int `json:"modified"`
	Deleted     int `json:"deleted"`
	Transferred int `json:"transferred"`
	Wrapped     int `json:"wrapped"`
	Published   int `json:"published"`
}

// Total is the number of object changes counted.
func (s ObjectStats) Total() int {
	return s.Created + s.Modified + s.Deleted + s.Transferred + s.Wrapped + s.Published
}

// FinancialSummary picks the headline legs of the sender's value movement.
type FinancialSummary struct {
	PrimaryAsset   *Asset  `json:"primary_asset,omitempty"`
	SecondaryAsset *Asset  `json:"secondary_asset,omitempty"`
	TotalUSD       float64 `json:"total_usd"`
	IsIncoming     bool    `json:"is_incoming"`
}

// FlowGraph is the fixed-stage lifecycle graph rendered by the UI.
type FlowGraph struct {
	Nodes []FlowNode `json:"nodes"`
	Edges []FlowEdge `json:"edges"`
}

// FlowNode is one stage or participant.
type FlowNode struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Position    Position `json:"position"`
}

// Position is a layout hint for the presentation layer.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// FlowEdge connects two nodes.
type FlowEdge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Label    string `json:"label"`
	Animated bool   `json:"animated"`
}

// Step is one entry of the narrative step list. IDs are unique within a
// transaction.
type Step struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Amount      string `json:"amount,omitempty"`
	Address     string `json:"address,omitempty"`
}

// ExecutionFlow is the detailed command-level view of a programmable
// transaction.
type ExecutionFlow struct {
	EntryPoint           string            `json:"entry_point"`
	Steps                []ExecutionStep   `json:"steps"`
	CrossContractCalls   []CrossCall       `json:"cross_contract_calls"`
	ObjectLifecycle      []ObjectLifecycle `json:"object_lifecycle"`
	ValueFlows           []ValueFlow       `json:"value_flows"`
	ProtocolInteractions []string          `json:"protocol_interactions"`
	Summary              string            `json:"summary"`
}

// ExecutionStep is one command in execution order.
type ExecutionStep struct {
	Index       int    `json:"index"`
	Command     string `json:"command"`
	Target      string `json:"target,omitempty"`
	Description string `json:"description"`
}

// CrossCall records a change of package between consecutive Move calls.
type CrossCall struct {
	FromPackage string `json:"from_package"`
	ToPackage   string `json:"to_package"`
	Function    string `json:"function"`
}

// ObjectLifecycle is the fate of one object during execution.
type ObjectLifecycle struct {
	ObjectID  string `json:"object_id"`
	Type      string `json:"type"`
	Category  string `json:"category"`
	Operation string `json:"operation"`
	Owner     string `json:"owner,omitempty"`
}

// ValueFlow is an inferred movement of one coin between two owners.
type ValueFlow struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	CoinType string  `json:"coin_type"`
	Symbol   string  `json:"symbol"`
	Amount   int64   `json:"amount"`
	Display  float64 `json:"display"`
}

// Enrichment is optional secondary data merged into a translation. All
// fields are additive; nothing here changes the classification.
type Enrichment struct {
	Coins    map[string]CoinInfo `json:"coins,omitempty"`  // keyed by coin type
	Labels   map[string]string   `json:"labels,omitempty"` // keyed by address
	Protocol string              `json:"protocol,omitempty"`
}

// CoinInfo is display metadata for a coin type.
type CoinInfo struct {
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}
