package sui

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Wire shapes of a sui_getTransactionBlock response. Only the fields the
// domain model needs are decoded.
type transactionBlockResponse struct {
	Digest      string `json:"digest"`
	Transaction *struct {
		Data struct {
			Sender      string          `json:"sender"`
			Transaction json.RawMessage `json:"transaction"`
		} `json:"data"`
	} `json:"transaction"`
	Effects *struct {
		Status struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"status"`
		GasUsed struct {
			ComputationCost         string `json:"computationCost"`
			StorageCost             string `json:"storageCost"`
			StorageRebate           string `json:"storageRebate"`
			NonRefundableStorageFee string `json:"nonRefundableStorageFee"`
		} `json:"gasUsed"`
	} `json:"effects"`
	Events         []wireEvent         `json:"events"`
	BalanceChanges []wireBalanceChange `json:"balanceChanges"`
	ObjectChanges  []wireObjectChange  `json:"objectChanges"`
	TimestampMs    string              `json:"timestampMs"`
	Checkpoint     string              `json:"checkpoint"`
}

type wireTransactionKind struct {
	Kind         string                       `json:"kind"`
	Inputs       []wireInput                  `json:"inputs"`
	Transactions []map[string]json.RawMessage `json:"transactions"`
}

type wireInput struct {
	Type       string          `json:"type"`
	ValueType  string          `json:"valueType"`
	Value      json.RawMessage `json:"value"`
	ObjectType string          `json:"objectType"`
	ObjectID   string          `json:"objectId"`
}

type wireEvent struct {
	PackageID         string          `json:"packageId"`
	TransactionModule string          `json:"transactionModule"`
	Sender            string          `json:"sender"`
	Type              string          `json:"type"`
	ParsedJSON        json.RawMessage `json:"parsedJson"`
}

type wireBalanceChange struct {
	Owner    json.RawMessage `json:"owner"`
	CoinType string          `json:"coinType"`
	Amount   string          `json:"amount"`
}

type wireObjectChange struct {
	Type       string          `json:"type"`
	ObjectType string          `json:"objectType"`
	ObjectID   string          `json:"objectId"`
	PackageID  string          `json:"packageId"`
	Owner      json.RawMessage `json:"owner"`
	Recipient  json.RawMessage `json:"recipient"`
	Modules    []string        `json:"modules"`
}

type wireMoveCall struct {
	Package       string            `json:"package"`
	Module        string            `json:"module"`
	Function      string            `json:"function"`
	TypeArguments []string          `json:"type_arguments"`
	Arguments     []json.RawMessage `json:"arguments"`
}

// ParseTransactionBlock decodes a sui_getTransactionBlock result (queried
// with showInput, showEffects, showEvents, showBalanceChanges and
// showObjectChanges) into a RawTransaction. Missing collections decode as
// empty slices.
func ParseTransactionBlock(data []byte) (*RawTransaction, error) {
	var resp transactionBlockResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode transaction block: %w", err)
	}
	if resp.Transaction == nil {
		return nil, errors.New("transaction block has no transaction data")
	}

	tx := &RawTransaction{
		Digest:         resp.Digest,
		Sender:         resp.Transaction.Data.Sender,
		Commands:       []Command{},
		Inputs:         []Input{},
		BalanceChanges: make([]BalanceChange, 0, len(resp.BalanceChanges)),
		ObjectChanges:  make([]ObjectChange, 0, len(resp.ObjectChanges)),
		Events:         make([]Event, 0, len(resp.Events)),
		Status:         StatusFailure,
	}

	if len(resp.Transaction.Data.Transaction) > 0 {
		var kind wireTransactionKind
		if err := json.Unmarshal(resp.Transaction.Data.Transaction, &kind); err != nil {
			return nil, fmt.Errorf("failed to decode transaction kind: %w", err)
		}
		tx.Kind = TransactionKind(kind.Kind)
		tx.Inputs = parseInputs(kind.Inputs)
		tx.Commands = parseCommands(kind.Transactions, tx.Inputs)
	}

	if resp.Effects != nil {
		tx.Status = resp.Effects.Status.Status
		tx.Error = resp.Effects.Status.Error
		tx.GasUsed = GasUsed{
			ComputationCost:         parseUint(resp.Effects.GasUsed.ComputationCost),
			StorageCost:             parseUint(resp.Effects.GasUsed.StorageCost),
			StorageRebate:           parseUint(resp.Effects.GasUsed.StorageRebate),
			NonRefundableStorageFee: parseUint(resp.Effects.GasUsed.NonRefundableStorageFee),
		}
	}

	for _, bc := range resp.BalanceChanges {
		tx.BalanceChanges = append(tx.BalanceChanges, BalanceChange{
			Owner:    parseOwner(bc.Owner),
			CoinType: bc.CoinType,
			Amount:   parseSignedAmount(bc.Amount),
		})
	}

	for _, oc := range resp.ObjectChanges {
		change := ObjectChange{
			ObjectID:   oc.ObjectID,
			ObjectType: oc.ObjectType,
			Operation:  ObjectOperation(oc.Type),
			Owner:      parseOwner(oc.Owner),
			Recipient:  parseOwner(oc.Recipient),
			Modules:    oc.Modules,
		}
		if change.Operation == ObjectPublished {
			change.ObjectID = oc.PackageID
			change.ObjectType = "package"
		}
		tx.ObjectChanges = append(tx.ObjectChanges, change)
	}

	for _, ev := range resp.Events {
		tx.Events = append(tx.Events, Event{
			Type:      ev.Type,
			PackageID: ev.PackageID,
			Module:    ev.TransactionModule,
			Sender:    ev.Sender,
			Data:      ev.ParsedJSON,
		})
	}

	if resp.TimestampMs != "" {
		if ts, err := strconv.ParseInt(resp.TimestampMs, 10, 64); err == nil {
			tx.TimestampMs = &ts
		}
	}
	if resp.Checkpoint != "" {
		if cp, err := strconv.ParseUint(resp.Checkpoint, 10, 64); err == nil {
			tx.Checkpoint = &cp
		}
	}

	return tx, nil
}

func parseInputs(wire []wireInput) []Input {
	inputs := make([]Input, 0, len(wire))
	for _, in := range wire {
		input := Input{
			Type:      in.Type,
			ValueType: in.ValueType,
			ObjectID:  in.ObjectID,
		}
		if len(in.Value) > 0 {
			input.Value = rawToString(in.Value)
		}
		inputs = append(inputs, input)
	}
	return inputs
}

// parseCommands handles both programmable commands and the legacy
// Single/Batch transaction shapes. Each entry is a single-key object whose
// key names the command.
func parseCommands(wire []map[string]json.RawMessage, inputs []Input) []Command {
	commands := make([]Command, 0, len(wire))
	for _, entry := range wire {
		for key, body := range entry {
			if cmd, ok := parseCommand(key, body, inputs); ok {
				commands = append(commands, cmd)
			}
		}
	}
	return commands
}

func parseCommand(key string, body json.RawMessage, inputs []Input) (Command, bool) {
	switch CommandKind(key) {
	case CommandMoveCall:
		var mc wireMoveCall
		if err := json.Unmarshal(body, &mc); err != nil {
			return Command{}, false
		}
		args := make([]string, 0, len(mc.Arguments))
		for _, a := range mc.Arguments {
			args = append(args, renderArgument(a, inputs))
		}
		return Command{
			Kind: CommandMoveCall,
			MoveCall: &MoveCall{
				Package:       mc.Package,
				Module:        mc.Module,
				Function:      mc.Function,
				TypeArguments: mc.TypeArguments,
				Arguments:     args,
			},
		}, true

	case CommandTransferObjects:
		// [[objects...], recipient]
		var parts []json.RawMessage
		if err := json.Unmarshal(body, &parts); err != nil || len(parts) != 2 {
			return Command{Kind: CommandTransferObjects}, true
		}
		return Command{
			Kind:      CommandTransferObjects,
			Recipient: resolveAddress(parts[1], inputs),
		}, true

	case CommandSplitCoins:
		// [coin, [amounts...]]
		var parts []json.RawMessage
		cmd := Command{Kind: CommandSplitCoins}
		if err := json.Unmarshal(body, &parts); err != nil || len(parts) != 2 {
			return cmd, true
		}
		var amounts []json.RawMessage
		if err := json.Unmarshal(parts[1], &amounts); err == nil {
			for _, a := range amounts {
				if v, err := strconv.ParseUint(renderArgument(a, inputs), 10, 64); err == nil {
					cmd.Amounts = append(cmd.Amounts, v)
				}
			}
		}
		return cmd, true

	case CommandMergeCoins, CommandPublish, CommandUpgrade, CommandMakeMoveVec:
		return Command{Kind: CommandKind(key)}, true

	case CommandTransferSui:
		var legacy struct {
			Recipient string  `json:"recipient"`
			Amount    *uint64 `json:"amount"`
		}
		if err := json.Unmarshal(body, &legacy); err != nil {
			return Command{}, false
		}
		return Command{Kind: CommandTransferSui, Recipient: legacy.Recipient, Amount: legacy.Amount}, true

	case CommandTransferObject:
		var legacy struct {
			Recipient string `json:"recipient"`
			ObjectRef struct {
				ObjectID string `json:"objectId"`
			} `json:"objectRef"`
		}
		if err := json.Unmarshal(body, &legacy); err != nil {
			return Command{}, false
		}
		return Command{Kind: CommandTransferObject, Recipient: legacy.Recipient, ObjectID: legacy.ObjectRef.ObjectID}, true

	case CommandPay, CommandPaySui:
		var legacy struct {
			Recipients []string `json:"recipients"`
			Amounts    []uint64 `json:"amounts"`
		}
		if err := json.Unmarshal(body, &legacy); err != nil {
			return Command{}, false
		}
		return Command{Kind: CommandKind(key), Recipients: legacy.Recipients, Amounts: legacy.Amounts}, true

	case CommandPayAllSui:
		var legacy struct {
			Recipient string `json:"recipient"`
		}
		if err := json.Unmarshal(body, &legacy); err != nil {
			return Command{}, false
		}
		return Command{Kind: CommandPayAllSui, Recipient: legacy.Recipient}, true

	case "Call":
		// legacy name for MoveCall
		return parseCommand(string(CommandMoveCall), body, inputs)
	}
	return Command{}, false
}

// renderArgument turns a programmable-transaction argument reference into a
// display string. Pure inputs are replaced by their value.
func renderArgument(raw json.RawMessage, inputs []Input) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var ref struct {
		Input        *int  `json:"Input"`
		Result       *int  `json:"Result"`
		NestedResult []int `json:"NestedResult"`
	}
	if err := json.Unmarshal(raw, &ref); err == nil {
		switch {
		case ref.Input != nil:
			if *ref.Input >= 0 && *ref.Input < len(inputs) {
				in := inputs[*ref.Input]
				if in.Type == "object" {
					return in.ObjectID
				}
				return in.Value
			}
			return fmt.Sprintf("Input(%d)", *ref.Input)
		case ref.Result != nil:
			return fmt.Sprintf("Result(%d)", *ref.Result)
		case len(ref.NestedResult) == 2:
			return fmt.Sprintf("NestedResult(%d,%d)", ref.NestedResult[0], ref.NestedResult[1])
		}
	}
	return rawToString(raw)
}

// resolveAddress returns the address a recipient argument points at, or
// empty when it is not a pure address input.
func resolveAddress(raw json.RawMessage, inputs []Input) string {
	v := renderArgument(raw, inputs)
	if strings.HasPrefix(v, "0x") {
		return v
	}
	return ""
}

// parseOwner extracts an address from an owner value. Shared and immutable
// owners have no address.
func parseOwner(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.HasPrefix(s, "0x") {
			return s
		}
		return ""
	}
	var owner struct {
		AddressOwner string `json:"AddressOwner"`
		ObjectOwner  string `json:"ObjectOwner"`
	}
	if err := json.Unmarshal(raw, &owner); err != nil {
		return ""
	}
	if owner.AddressOwner != "" {
		return owner.AddressOwner
	}
	return owner.ObjectOwner
}

func parseUint(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}

// parseSignedAmount saturates at the int64 bounds; u128 balances beyond that
// are not representable in the model.
func parseSignedAmount(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			if strings.HasPrefix(s, "-") {
				return math.MinInt64
			}
			return math.MaxInt64
		}
		return 0
	}
	return v
}

func rawToString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
