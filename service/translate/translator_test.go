package translate

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/brojonat/suiscope/service/sui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	senderAddr    = "0xaaaa000000000000000000000000000000000000000000000000000000001111"
	recipientAddr = "0xbbbb000000000000000000000000000000000000000000000000000000002222"
	otherAddr     = "0xcccc000000000000000000000000000000000000000000000000000000003333"
)

func newTestTranslator() *Translator {
	return New(Options{})
}

func transferSuiTx() *sui.RawTransaction {
	return &sui.RawTransaction{
		Digest: "transfer-digest",
		Sender: senderAddr,
		Kind:   sui.KindSingle,
		Commands: []sui.Command{
			{Kind: sui.CommandTransferSui, Recipient: recipientAddr, Amount: u64(5_000_000_000)},
		},
		Status:  sui.StatusSuccess,
		GasUsed: sui.GasUsed{ComputationCost: 1_000_000, StorageCost: 500_000, StorageRebate: 0},
	}
}

func swapTx() *sui.RawTransaction {
	ts := int64(1_700_000_000_000)
	return &sui.RawTransaction{
		Digest: "swap-digest",
		Sender: senderAddr,
		Kind:   sui.KindProgrammable,
		Inputs: []sui.Input{
			{Type: "pure", ValueType: "u64", Value: "25000000"},
			{Type: "object", ObjectID: "0x00pool0000000000000000000000000000000000000000000000000000000abc"},
		},
		Commands: []sui.Command{
			{Kind: sui.CommandSplitCoins, Amounts: []uint64{25_000_000}},
			{Kind: sui.CommandMoveCall, MoveCall: &sui.MoveCall{Package: "0x1eab", Module: "pool_script", Function: "swap_a2b", Arguments: []string{"0xpool", "Result(0)"}}},
			{Kind: sui.CommandMoveCall, MoveCall: &sui.MoveCall{Package: "0x2", Module: "coin", Function: "join"}},
			{Kind: sui.CommandTransferObjects, Recipient: senderAddr},
		},
		BalanceChanges: []sui.BalanceChange{
			{Owner: senderAddr, CoinType: sui.NativeCoinType, Amount: -2_000_000},
			{Owner: senderAddr, CoinType: usdcType, Amount: -25_000_000},
			{Owner: senderAddr, CoinType: cetusType, Amount: 400_000_000},
			{Owner: otherAddr, CoinType: usdcType, Amount: 25_000_000},
			{Owner: otherAddr, CoinType: cetusType, Amount: -400_000_000},
		},
		ObjectChanges: []sui.ObjectChange{
			{ObjectID: "0xc1", ObjectType: "0x2::coin::Coin<" + cetusType + ">", Operation: sui.ObjectCreated, Owner: senderAddr},
			{ObjectID: "0xpool", ObjectType: "0x1eab::pool::Pool<A, B>", Operation: sui.ObjectMutated},
		},
		Events: []sui.Event{
			{Type: "0x1eab::pool::SwapEvent", Module: "cetus_pool_script", Sender: senderAddr},
		},
		GasUsed:     sui.GasUsed{ComputationCost: 1_000_000, StorageCost: 2_000_000, StorageRebate: 1_000_000},
		Status:      sui.StatusSuccess,
		TimestampMs: &ts,
	}
}

// Scenario: direct SUI transfer.
func TestTranslate_Transfer(t *testing.T) {
	tx := newTestTranslator().Translate(transferSuiTx(), nil)

	assert.Equal(t, TypeTransfer, tx.Type)
	assert.Contains(t, tx.PlainEnglish, "0xaaaa...1111 sent 5.0000 SUI")
	assert.Contains(t, tx.PlainEnglish, "to 0xbbbb...2222")

	assert.Equal(t, uint64(1_500_000), tx.Gas.GasFee)
	assert.Equal(t, int64(1_500_000), tx.Gas.NetGasFee)
	assert.InDelta(t, 0.0015, tx.Gas.GasFeeSUI, 1e-12)
	assert.Contains(t, tx.GasSummary, "0.0015 SUI")

	assert.Equal(t, RoleSender, tx.Sender.Role)
	assert.Equal(t, "0xaaaa...1111", tx.Sender.Display)
	require.Len(t, tx.Recipients, 1)
	assert.Equal(t, recipientAddr, tx.Recipients[0].Address)
	assert.Equal(t, RoleRecipient, tx.Recipients[0].Role)

	assert.Empty(t, tx.MoveCalls, "no move calls outside programmable transactions")
	assert.Nil(t, tx.Execution)

	require.Len(t, tx.Steps, 2)
	assert.Equal(t, "transfer-0", tx.Steps[0].ID)
	assert.Equal(t, StepTransfer, tx.Steps[0].Type)
	assert.Equal(t, "5.0000 SUI", tx.Steps[0].Amount)
	assert.Equal(t, "gas-1", tx.Steps[1].ID)
}

// Scenario: failed transaction.
func TestTranslate_Failed(t *testing.T) {
	raw := transferSuiTx()
	raw.Status = sui.StatusFailure
	raw.Error = "InsufficientCoinBalance"
	raw.BalanceChanges = []sui.BalanceChange{{Owner: recipientAddr, CoinType: sui.NativeCoinType, Amount: 10}}

	tx := newTestTranslator().Translate(raw, nil)

	assert.Equal(t, TypeUnknown, tx.Type)
	assert.Equal(t, sui.StatusFailure, tx.Status)
	assert.Equal(t, "This transaction failed.", tx.PlainEnglish)
	require.Len(t, tx.Steps, 1)
	assert.Equal(t, "failed", tx.Steps[0].ID)
	assert.Equal(t, StepAction, tx.Steps[0].Type)
	assert.Equal(t, "Transaction Failed", tx.Steps[0].Title)
	assert.Contains(t, tx.Steps[0].Description, "InsufficientCoinBalance")

	assert.Empty(t, tx.Recipients)
	assert.Empty(t, tx.Assets)
	assert.Nil(t, tx.FinancialSummary.PrimaryAsset)
	for _, e := range tx.Flow.Edges {
		assert.NotEqual(t, NodeCompletion, e.Source, "no recipient edges for failed transactions")
	}
	assert.Len(t, tx.Flow.Nodes, len(flowStages))
	assert.Contains(t, tx.TechnicalSummary, "InsufficientCoinBalance")
	assert.Equal(t, int64(1_500_000), tx.Gas.NetGasFee, "gas is still charged")
}

// Scenario: NFT creation without incoming balance.
func TestTranslate_Mint(t *testing.T) {
	raw := &sui.RawTransaction{
		Sender: senderAddr,
		Kind:   sui.KindProgrammable,
		Status: sui.StatusSuccess,
		ObjectChanges: []sui.ObjectChange{
			{ObjectID: "0xn1", ObjectType: "0x2::nft::Collectible", Operation: sui.ObjectCreated},
		},
		BalanceChanges: []sui.BalanceChange{},
	}

	tx := newTestTranslator().Translate(raw, nil)

	assert.Equal(t, TypeMint, tx.Type)
	assert.Contains(t, tx.PlainEnglish, "minted an NFT")
	require.Len(t, tx.Objects, 1)
	assert.Equal(t, CategoryNFT, tx.Objects[0].Category)
	assert.Equal(t, 1, tx.ObjectStats.Created)
}

// Scenario: two-coin swap with a swap event.
func TestTranslate_Swap(t *testing.T) {
	tx := newTestTranslator().Translate(swapTx(), nil)

	assert.Equal(t, TypeSwap, tx.Type)
	assert.Equal(t, "Cetus", tx.Protocol)

	fs := tx.FinancialSummary
	require.NotNil(t, fs.PrimaryAsset)
	require.NotNil(t, fs.SecondaryAsset)
	assert.Equal(t, usdcType, fs.PrimaryAsset.CoinType)
	assert.Equal(t, DirectionOut, fs.PrimaryAsset.Direction)
	assert.Equal(t, cetusType, fs.SecondaryAsset.CoinType)
	assert.Equal(t, DirectionIn, fs.SecondaryAsset.Direction)
	assert.False(t, fs.IsIncoming)
	assert.InDelta(t, 0.03, fs.TotalUSD, 1e-9, "usdc is pegged 1:1")

	// Native leg equals the gas fee and is dropped after adding gas back.
	require.Len(t, tx.Assets, 2)
	assert.Equal(t, "USDC", tx.Assets[0].Symbol)
	assert.Equal(t, "CETUS", tx.Assets[1].Symbol)

	assert.Contains(t, tx.PlainEnglish, "swapped 0.0250 USDC for 0.4000 CETUS on Cetus")

	require.Len(t, tx.MoveCalls, 2)
	assert.Equal(t, "Swaps token A for token B", tx.MoveCalls[0].PlainEnglish)
	assert.Equal(t, []string{"0xpool", "Result(0)"}, tx.MoveCalls[0].Arguments)
	assert.Contains(t, tx.MoveCalls[1].Description, "Sui framework")

	require.Len(t, tx.Recipients, 1, "sender is never a recipient")
	assert.Equal(t, otherAddr, tx.Recipients[0].Address)

	require.NotNil(t, tx.Execution)
	assert.Equal(t, "0x1eab::pool_script::swap_a2b", tx.Execution.EntryPoint)
	require.Len(t, tx.Execution.CrossContractCalls, 1)
	assert.Equal(t, "0x1eab", tx.Execution.CrossContractCalls[0].FromPackage)
	assert.Equal(t, "0x2", tx.Execution.CrossContractCalls[0].ToPackage)
	assert.Equal(t, []string{"Cetus"}, tx.Execution.ProtocolInteractions)
	assert.Len(t, tx.Execution.Steps, 4)
	assert.Len(t, tx.Execution.ObjectLifecycle, 2)
}

// Scenario: coin object categorization.
func TestCategorizeObjectType(t *testing.T) {
	tests := []struct {
		typeTag string
		want    string
	}{
		{"0x2::coin::Coin<0x3::mytoken::MYTOKEN>", CategoryCoin},
		{"0x2::nft::Collectible", CategoryNFT},
		{"0x5::NFT::Art", CategoryNFT},
		{"package", CategoryPackage},
		{"0x2::package::UpgradeCap", CategoryPackage},
		{"0x1eab::pool::Pool<A, B>", CategoryCustom},
		{"", CategoryCustom},
	}
	for _, tt := range tests {
		t.Run(tt.typeTag, func(t *testing.T) {
			got := CategorizeObjectType(tt.typeTag)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, CategorizeObjectType(tt.typeTag), "categorization is idempotent")
		})
	}
}

func TestTranslate_Deterministic(t *testing.T) {
	tr := newTestTranslator()
	enrichment := &Enrichment{
		Coins:  map[string]CoinInfo{usdcType: {Symbol: "USDC", Decimals: 6}, cetusType: {Symbol: "CETUS", Decimals: 9}},
		Labels: map[string]string{otherAddr: "Cetus Pool", senderAddr: "Alice"},
	}

	for _, raw := range []*sui.RawTransaction{transferSuiTx(), swapTx(), {}} {
		first, err := json.Marshal(tr.Translate(raw, enrichment))
		require.NoError(t, err)
		for i := 0; i < 20; i++ {
			again, err := json.Marshal(tr.Translate(raw, enrichment))
			require.NoError(t, err)
			require.Equal(t, string(first), string(again))
		}
	}
}

func TestTranslate_EmptyInput(t *testing.T) {
	tr := newTestTranslator()
	for _, raw := range []*sui.RawTransaction{nil, {}} {
		tx := tr.Translate(raw, nil)
		require.NotNil(t, tx)
		assert.Equal(t, TypeUnknown, tx.Type)
		assert.Equal(t, sui.StatusFailure, tx.Status)
		assert.NotNil(t, tx.Recipients)
		assert.NotNil(t, tx.MoveCalls)
		assert.NotNil(t, tx.Objects)
		assert.NotNil(t, tx.Events)
		assert.NotEmpty(t, tx.Flow.Nodes)
		assert.Equal(t, "failed", tx.Steps[0].ID)
	}

	// A successful but otherwise empty transaction is a call.
	tx := tr.Translate(&sui.RawTransaction{Status: sui.StatusSuccess, Kind: sui.KindProgrammable}, nil)
	assert.Equal(t, TypeCall, tx.Type)
	assert.Equal(t, "No objects were changed.", tx.ObjectSummary)
}

func TestTranslate_Enrichment(t *testing.T) {
	enrichment := &Enrichment{
		Coins:    map[string]CoinInfo{usdcType: {Symbol: "wUSDC", Decimals: 6}},
		Labels:   map[string]string{otherAddr: "Cetus Pool"},
		Protocol: "Aggregator",
	}
	tx := newTestTranslator().Translate(swapTx(), enrichment)

	require.NotNil(t, tx.FinancialSummary.PrimaryAsset)
	assert.Equal(t, "wUSDC", tx.FinancialSummary.PrimaryAsset.Symbol)
	assert.InDelta(t, 25.0, -tx.FinancialSummary.PrimaryAsset.Display, 1e-9, "enrichment decimals apply")
	assert.Equal(t, "Cetus Pool", tx.Recipients[0].Label)
	assert.Equal(t, "Cetus", tx.Protocol, "event attribution wins over enrichment")
	assert.Equal(t, []string{"Cetus", "Aggregator"}, tx.Execution.ProtocolInteractions)

	raw := transferSuiTx()
	tx = newTestTranslator().Translate(raw, &Enrichment{Protocol: "Wallet"})
	assert.Equal(t, "Wallet", tx.Protocol)
}

func TestTranslate_RecipientsAreUnique(t *testing.T) {
	raw := &sui.RawTransaction{
		Sender: senderAddr,
		Kind:   sui.KindBatch,
		Status: sui.StatusSuccess,
		Commands: []sui.Command{
			{Kind: sui.CommandPay, Recipients: []string{recipientAddr, otherAddr, recipientAddr}},
			{Kind: sui.CommandTransferSui, Recipient: otherAddr},
			{Kind: sui.CommandTransferSui, Recipient: senderAddr},
		},
		BalanceChanges: []sui.BalanceChange{
			{Owner: otherAddr, CoinType: sui.NativeCoinType, Amount: 3},
			{Owner: recipientAddr, CoinType: sui.NativeCoinType, Amount: 1},
			{Owner: recipientAddr, CoinType: usdcType, Amount: 1},
			{Owner: senderAddr, CoinType: sui.NativeCoinType, Amount: -4},
		},
	}

	tx := newTestTranslator().Translate(raw, nil)

	var got []string
	for _, r := range tx.Recipients {
		got = append(got, r.Address)
	}
	assert.Equal(t, []string{otherAddr, recipientAddr}, got, "balance owners first, in first-seen order")
}

func TestTranslate_FlowGraphInvariants(t *testing.T) {
	tr := newTestTranslator()
	cases := map[string]*sui.RawTransaction{
		"transfer": transferSuiTx(),
		"swap":     swapTx(),
		"empty":    {},
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			tx := tr.Translate(raw, nil)
			ids := map[string]bool{}
			for _, n := range tx.Flow.Nodes {
				assert.False(t, ids[n.ID], "duplicate node %s", n.ID)
				ids[n.ID] = true
			}
			assert.True(t, ids[NodeSender])
			for _, e := range tx.Flow.Edges {
				assert.True(t, ids[e.Source], "dangling source %s", e.Source)
				assert.True(t, ids[e.Target], "dangling target %s", e.Target)
			}
			for i := range tx.Recipients {
				id := fmt.Sprintf("recipient-%d", i)
				found := false
				for _, e := range tx.Flow.Edges {
					if e.Source == NodeCompletion && e.Target == id {
						found = true
						assert.Equal(t, CompletionLabel(tx.Type), e.Label)
					}
				}
				assert.True(t, found, "missing completion edge to %s", id)
			}
		})
	}
}

func TestTranslate_GasArithmetic(t *testing.T) {
	gases := []sui.GasUsed{
		{},
		{ComputationCost: 1_000_000, StorageCost: 500_000},
		{ComputationCost: 750_000, StorageCost: 2_000_000, StorageRebate: 1_978_000, NonRefundableStorageFee: 19_980},
		{ComputationCost: 1_000, StorageCost: 0, StorageRebate: 5_000_000},
	}
	for _, g := range gases {
		raw := transferSuiTx()
		raw.GasUsed = g
		tx := newTestTranslator().Translate(raw, nil)

		want := int64(g.ComputationCost) + int64(g.StorageCost) - int64(g.StorageRebate)
		assert.Equal(t, want, tx.Gas.NetGasFee)
		assert.Equal(t, float64(want)/1_000_000_000, tx.Gas.GasFeeSUI)
	}
}

func TestTranslate_StepIDsUnique(t *testing.T) {
	raw := swapTx()
	// Zero-sum legs across owners in the same coin type.
	raw.BalanceChanges = append(raw.BalanceChanges,
		sui.BalanceChange{Owner: recipientAddr, CoinType: usdcType, Amount: 1},
		sui.BalanceChange{Owner: otherAddr, CoinType: usdcType, Amount: -1},
	)
	tx := newTestTranslator().Translate(raw, nil)

	seen := map[string]bool{}
	for _, s := range tx.Steps {
		assert.False(t, seen[s.ID], "duplicate step id %s", s.ID)
		seen[s.ID] = true
	}
	assert.Equal(t, "gas", tx.Steps[len(tx.Steps)-1].ID[:3], "gas step is last")
}

func TestTranslate_AllTypesComplete(t *testing.T) {
	tr := newTestTranslator()
	valid := map[TransactionType]bool{}
	for _, ty := range AllTypes {
		valid[ty] = true
	}
	for _, raw := range []*sui.RawTransaction{transferSuiTx(), swapTx(), {}, {Status: sui.StatusSuccess}} {
		tx := tr.Translate(raw, nil)
		assert.True(t, valid[tx.Type])
		if tx.Type == TypeUnknown {
			assert.False(t, tx.Succeeded())
		}
	}
}

func payTx(kind sui.CommandKind, amount uint64, coinType string) *sui.RawTransaction {
	raw := &sui.RawTransaction{
		Sender: senderAddr,
		Kind:   sui.KindSingle,
		Status: sui.StatusSuccess,
		Commands: []sui.Command{
			{Kind: kind, Recipients: []string{recipientAddr}, Amounts: []uint64{amount}},
		},
	}
	if coinType != "" {
		raw.BalanceChanges = []sui.BalanceChange{
			{Owner: senderAddr, CoinType: coinType, Amount: -int64(amount)},
			{Owner: recipientAddr, CoinType: coinType, Amount: int64(amount)},
		}
	}
	return raw
}

func TestTranslate_PayAmounts(t *testing.T) {
	enrichment := &Enrichment{Coins: map[string]CoinInfo{usdcType: {Symbol: "USDC", Decimals: 6}}}

	tests := []struct {
		name string
		raw  *sui.RawTransaction
		want string
	}{
		{"pay resolves the spent coin", payTx(sui.CommandPay, 2_500_000, usdcType), "2.5000 USDC"},
		{"pay without a coin leg shows raw units", payTx(sui.CommandPay, 2_500_000, ""), "2500000 coin units"},
		{"pay sui is always SUI", payTx(sui.CommandPaySui, 2_500_000_000, sui.NativeCoinType), "2.5000 SUI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := newTestTranslator().Translate(tt.raw, enrichment)
			require.NotEmpty(t, tx.Steps)
			assert.Equal(t, "Payment", tx.Steps[0].Title)
			assert.Equal(t, tt.want, tx.Steps[0].Amount)
		})
	}
}

func TestNarrator_TransferredAmountIgnoresPay(t *testing.T) {
	_, ok := narrator{raw: payTx(sui.CommandPay, 2_500_000, usdcType)}.transferredAmount()
	assert.False(t, ok, "pay amounts are not SUI")

	amount, ok := narrator{raw: payTx(sui.CommandPaySui, 2_500_000_000, "")}.transferredAmount()
	assert.True(t, ok)
	assert.Equal(t, uint64(2_500_000_000), amount)

	tx := newTestTranslator().Translate(payTx(sui.CommandPay, 2_500_000, usdcType), nil)
	assert.NotContains(t, tx.PlainEnglish, "0.0025 SUI")
}

func TestTranslate_PrimaryAssetComparesValueAcrossDecimals(t *testing.T) {
	raw := &sui.RawTransaction{
		Sender:   senderAddr,
		Kind:     sui.KindProgrammable,
		Status:   sui.StatusSuccess,
		Commands: []sui.Command{{Kind: sui.CommandTransferObjects, Recipient: recipientAddr}},
		BalanceChanges: []sui.BalanceChange{
			{Owner: senderAddr, CoinType: sui.NativeCoinType, Amount: -10_000_000},
			{Owner: senderAddr, CoinType: usdcType, Amount: -1_000_000},
			{Owner: recipientAddr, CoinType: sui.NativeCoinType, Amount: 10_000_000},
			{Owner: recipientAddr, CoinType: usdcType, Amount: 1_000_000},
		},
	}
	enrichment := &Enrichment{Coins: map[string]CoinInfo{usdcType: {Symbol: "USDC", Decimals: 6}}}

	tx := newTestTranslator().Translate(raw, enrichment)

	require.NotNil(t, tx.FinancialSummary.PrimaryAsset)
	assert.Equal(t, usdcType, tx.FinancialSummary.PrimaryAsset.CoinType, "1 USDC outweighs 0.01 SUI")
	assert.InDelta(t, 1.0, tx.FinancialSummary.TotalUSD, 1e-9)
}

func TestBuildFinancialSummary_FallsBackToDisplay(t *testing.T) {
	fs := buildFinancialSummary([]Asset{
		{CoinType: usdcType, Symbol: "USDC", Amount: -2_000_000, Display: -2, Direction: DirectionOut, USDValue: 2},
		{CoinType: cetusType, Symbol: "CETUS", Amount: -5_000_000, Display: -5, Direction: DirectionOut},
	})

	require.NotNil(t, fs.PrimaryAsset)
	assert.Equal(t, cetusType, fs.PrimaryAsset.CoinType, "without a USD value on both sides the display amount decides")
}

func TestTranslate_RecipientsExcludeDebitedOwners(t *testing.T) {
	tx := newTestTranslator().Translate(swapTx(), nil)

	var got []string
	for _, r := range tx.Recipients {
		got = append(got, r.Address)
	}
	// otherAddr gains USDC, so it is listed once even though it also pays CETUS.
	assert.Equal(t, []string{otherAddr}, got)

	raw := transferSuiTx()
	raw.BalanceChanges = []sui.BalanceChange{
		{Owner: senderAddr, CoinType: sui.NativeCoinType, Amount: -5_001_500_000},
		{Owner: otherAddr, CoinType: sui.NativeCoinType, Amount: -1},
		{Owner: recipientAddr, CoinType: sui.NativeCoinType, Amount: 5_000_000_001},
	}
	tx = newTestTranslator().Translate(raw, nil)

	got = got[:0]
	for _, r := range tx.Recipients {
		got = append(got, r.Address)
	}
	assert.Equal(t, []string{recipientAddr}, got, "an owner that only loses funds is not a recipient")
}
