package sui

import "encoding/json"

// MistPerSui is the number of minor units (MIST) in one SUI.
const MistPerSui = 1_000_000_000

// NativeCoinType is the coin type tag of the native SUI coin.
const NativeCoinType = "0x2::sui::SUI"

// TransactionKind is the top-level shape of a transaction.
type TransactionKind string

const (
	KindSingle       TransactionKind = "Single"
	KindBatch        TransactionKind = "Batch"
	KindProgrammable TransactionKind = "ProgrammableTransaction"
)

// CommandKind identifies a single command inside a transaction.
type CommandKind string

const (
	CommandTransferSui     CommandKind = "TransferSui"
	CommandTransferObject  CommandKind = "TransferObject"
	CommandPay             CommandKind = "Pay"
	CommandPaySui          CommandKind = "PaySui"
	CommandPayAllSui       CommandKind = "PayAllSui"
	CommandMoveCall        CommandKind = "MoveCall"
	CommandSplitCoins      CommandKind = "SplitCoins"
	CommandMergeCoins      CommandKind = "MergeCoins"
	CommandTransferObjects CommandKind = "TransferObjects"
	CommandPublish         CommandKind = "Publish"
	CommandUpgrade         CommandKind = "Upgrade"
	CommandMakeMoveVec     CommandKind = "MakeMoveVec"
)

// ObjectOperation is the lifecycle event recorded for an object.
type ObjectOperation string

const (
	ObjectCreated     ObjectOperation = "created"
	ObjectMutated     ObjectOperation = "mutated"
	ObjectDeleted     ObjectOperation = "deleted"
	ObjectTransferred ObjectOperation = "transferred"
	ObjectWrapped     ObjectOperation = "wrapped"
	ObjectPublished   ObjectOperation = "published"
)

// Execution statuses reported by the node.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// RawTransaction is a fetched Sui transaction block.
// This is our domain model, independent of the RPC response format.
type RawTransaction struct {
	Digest         string          `json:"digest"`
	Sender         string          `json:"sender"`
	Kind           TransactionKind `json:"kind"`
	Commands       []Command       `json:"commands"`
	Inputs         []Input         `json:"inputs"`
	BalanceChanges []BalanceChange `json:"balance_changes"`
	ObjectChanges  []ObjectChange  `json:"object_changes"`
	Events         []Event         `json:"events"`
	GasUsed        GasUsed         `json:"gas_used"`
	Status         string          `json:"status"`
	Error          string          `json:"error,omitempty"`
	TimestampMs    *int64          `json:"timestamp_ms,omitempty"`
	Checkpoint     *uint64         `json:"checkpoint,omitempty"`
}

// Succeeded reports whether the transaction executed successfully.
func (t *RawTransaction) Succeeded() bool {
	return t.Status == StatusSuccess
}

// Command is one command of a transaction. Only the fields relevant to
// the command kind are populated.
type Command struct {
	Kind       CommandKind `json:"kind"`
	Recipient  string      `json:"recipient,omitempty"`
	Recipients []string    `json:"recipients,omitempty"`
	Amount     *uint64     `json:"amount,omitempty"`
	Amounts    []uint64    `json:"amounts,omitempty"`
	ObjectID   string      `json:"object_id,omitempty"`
	MoveCall   *MoveCall   `json:"move_call,omitempty"`
}

// MoveCall is a smart-contract function invocation.
type MoveCall struct {
	Package       string   `json:"package"`
	Module        string   `json:"module"`
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments,omitempty"`
	Arguments     []string `json:"arguments,omitempty"`
}

// Input is a value or object provided to a programmable transaction.
type Input struct {
	Type      string `json:"type"` // "pure" or "object"
	ValueType string `json:"value_type,omitempty"`
	Value     string `json:"value,omitempty"`
	ObjectID  string `json:"object_id,omitempty"`
}

// BalanceChange is a signed delta in an owner's balance of one coin type.
type BalanceChange struct {
	Owner    string `json:"owner"` // empty for shared or immutable owners
	CoinType string `json:"coin_type"`
	Amount   int64  `json:"amount"`
}

// ObjectChange is a lifecycle event for an on-chain object.
type ObjectChange struct {
	ObjectID   string          `json:"object_id"`
	ObjectType string          `json:"object_type"`
	Operation  ObjectOperation `json:"operation"`
	Owner      string          `json:"owner,omitempty"`
	Recipient  string          `json:"recipient,omitempty"`
	Modules    []string        `json:"modules,omitempty"`
}

// Event is an event emitted during execution.
type Event struct {
	Type      string          `json:"type"`
	PackageID string          `json:"package_id,omitempty"`
	Module    string          `json:"module"`
	Sender    string          `json:"sender"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// GasUsed is the gas summary of a transaction, in MIST.
type GasUsed struct {
	ComputationCost         uint64 `json:"computation_cost"`
	StorageCost             uint64 `json:"storage_cost"`
	StorageRebate           uint64 `json:"storage_rebate"`
	NonRefundableStorageFee uint64 `json:"non_refundable_storage_fee"`
}

// CoinMetadata is display metadata for a coin type.
type CoinMetadata struct {
	CoinType string `json:"coin_type"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
}
