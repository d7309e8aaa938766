package translate

import (
	"math"
	"testing"

	"github.com/brojonat/suiscope/service/sui"
	"github.com/stretchr/testify/assert"
)

const (
	usdcType  = "0xa1ec::usdc::USDC"
	cetusType = "0x06864::cetus::CETUS"
)

func TestAnalyzeBalanceChanges_Empty(t *testing.T) {
	a := AnalyzeBalanceChanges(nil, "0xaa")
	assert.Equal(t, BalanceAnalysis{}, a)
}

func TestAnalyzeBalanceChanges(t *testing.T) {
	changes := []sui.BalanceChange{
		{Owner: "0xAA", CoinType: sui.NativeCoinType, Amount: -1_000},
		{Owner: "0xbb", CoinType: sui.NativeCoinType, Amount: 900},
		{Owner: "0xaa", CoinType: usdcType, Amount: 50},
		{Owner: "0xpool", CoinType: usdcType, Amount: -50},
		{Owner: "0xpool", CoinType: cetusType, Amount: 7},
	}

	a := AnalyzeBalanceChanges(changes, "0xaa")

	assert.Equal(t, int64(-100), a.NativeNet)
	assert.Equal(t, []CoinAmount{{usdcType, 0}, {cetusType, 7}}, a.CoinNet)
	assert.Equal(t, 2, a.CoinTypeCount, "native coin is not counted")
	assert.True(t, a.HasIncoming)
	assert.True(t, a.HasOutgoing)
	assert.Equal(t, []CoinAmount{{sui.NativeCoinType, -1_000}, {usdcType, 50}}, a.SenderNet, "sender matched case-insensitively")
	assert.Equal(t, int64(50), a.SenderNetOf(usdcType))
	assert.Equal(t, int64(0), a.SenderNetOf(cetusType))
	assert.Equal(t, int64(-100), a.Net(sui.NativeCoinType))
	assert.Equal(t, int64(7), a.Net(cetusType))
}

func TestAnalyzeBalanceChanges_FlagsUseAnyEntry(t *testing.T) {
	// Net zero, but both directions are present.
	a := AnalyzeBalanceChanges([]sui.BalanceChange{
		{Owner: "0xaa", CoinType: usdcType, Amount: 10},
		{Owner: "0xaa", CoinType: usdcType, Amount: -10},
	}, "0xaa")
	assert.True(t, a.HasIncoming)
	assert.True(t, a.HasOutgoing)
	assert.Equal(t, int64(0), a.Net(usdcType))
}

func TestAnalyzeBalanceChanges_SaturatedAmountsKeepSign(t *testing.T) {
	a := AnalyzeBalanceChanges([]sui.BalanceChange{
		{Owner: "0xaa", CoinType: sui.NativeCoinType, Amount: math.MaxInt64},
		{Owner: "0xaa", CoinType: sui.NativeCoinType, Amount: math.MaxInt64},
		{Owner: "0xaa", CoinType: usdcType, Amount: math.MinInt64},
		{Owner: "0xaa", CoinType: usdcType, Amount: -5},
	}, "0xaa")

	assert.Equal(t, int64(math.MaxInt64), a.NativeNet)
	assert.Equal(t, int64(math.MaxInt64), a.SenderNetOf(sui.NativeCoinType))
	assert.Equal(t, int64(math.MinInt64), a.Net(usdcType))
	assert.Equal(t, int64(math.MinInt64), a.SenderNetOf(usdcType))
}

func TestSaturatingAdd(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{1, 2, 3},
		{-1, -2, -3},
		{math.MaxInt64, 1, math.MaxInt64},
		{math.MaxInt64 - 1, 1, math.MaxInt64},
		{math.MinInt64, -1, math.MinInt64},
		{math.MaxInt64, math.MinInt64, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, saturatingAdd(tt.a, tt.b), "%d + %d", tt.a, tt.b)
	}
}

func TestAnalyzeObjectChanges_Markers(t *testing.T) {
	tests := []struct {
		name   string
		change sui.ObjectChange
		want   ObjectAnalysis
	}{
		{
			name:   "nft created",
			change: sui.ObjectChange{Operation: sui.ObjectCreated, ObjectType: "0x2::nft::Collectible"},
			want:   ObjectAnalysis{Created: 1, NFTCreated: true},
		},
		{
			name:   "treasury cap created",
			change: sui.ObjectChange{Operation: sui.ObjectCreated, ObjectType: "0x2::coin::TreasuryCap<0x5::tok::TOK>"},
			want:   ObjectAnalysis{Created: 1, MintLike: true},
		},
		{
			name:   "cap marker",
			change: sui.ObjectChange{Operation: sui.ObjectCreated, ObjectType: "0x5::admin_cap::AdminCap"},
			want:   ObjectAnalysis{Created: 1, MintLike: true},
		},
		{
			name:   "supply created",
			change: sui.ObjectChange{Operation: sui.ObjectCreated, ObjectType: "0x2::balance::Supply<0x5::tok::TOK>"},
			want:   ObjectAnalysis{Created: 1, MintLike: true},
		},
		{
			name:   "plain created",
			change: sui.ObjectChange{Operation: sui.ObjectCreated, ObjectType: "0x2::coin::Coin<0x2::sui::SUI>"},
			want:   ObjectAnalysis{Created: 1},
		},
		{
			name:   "burn deleted",
			change: sui.ObjectChange{Operation: sui.ObjectDeleted, ObjectType: "0x5::burner::BurnTicket"},
			want:   ObjectAnalysis{Deleted: 1, BurnLike: true},
		},
		{
			name:   "nft deleted is not mint",
			change: sui.ObjectChange{Operation: sui.ObjectDeleted, ObjectType: "0x2::nft::Collectible"},
			want:   ObjectAnalysis{Deleted: 1},
		},
		{
			name:   "burn marker ignored on create",
			change: sui.ObjectChange{Operation: sui.ObjectCreated, ObjectType: "0x5::burn::Receipt"},
			want:   ObjectAnalysis{Created: 1},
		},
		{
			name:   "mutated",
			change: sui.ObjectChange{Operation: sui.ObjectMutated, ObjectType: "0x5::nft::Art"},
			want:   ObjectAnalysis{Mutated: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalyzeObjectChanges([]sui.ObjectChange{tt.change}))
		})
	}
}

func TestAnalyzeObjectChanges_Counts(t *testing.T) {
	a := AnalyzeObjectChanges([]sui.ObjectChange{
		{Operation: sui.ObjectCreated},
		{Operation: sui.ObjectMutated},
		{Operation: sui.ObjectMutated},
		{Operation: sui.ObjectDeleted},
		{Operation: sui.ObjectTransferred},
		{Operation: sui.ObjectWrapped},
		{Operation: sui.ObjectPublished},
	})
	assert.Equal(t, 1, a.Created)
	assert.Equal(t, 2, a.Mutated)
	assert.Equal(t, 1, a.Deleted)
	assert.Equal(t, 1, a.Transferred)
	assert.Equal(t, 1, a.Wrapped)
	assert.Equal(t, 1, a.Published)
}

func TestAnalyzeEvents(t *testing.T) {
	a := AnalyzeEvents([]sui.Event{
		{Type: "0x1::pool::SwapEvent", Module: "router"},
		{Type: "0x2::market::TradeFilled", Module: "cetus_router"},
		{Type: "0x3::x::MintEvent", Module: "turbos_pool"},
		{Type: "0x3::x::BurnEvent"},
	})

	assert.Equal(t, []string{"0x1::pool::SwapEvent", "0x2::market::TradeFilled", "0x3::x::MintEvent", "0x3::x::BurnEvent"}, a.Types)
	assert.True(t, a.Swap)
	assert.True(t, a.Mint)
	assert.True(t, a.Burn)
	assert.Equal(t, "Cetus", a.Protocol, "first matching module wins")
}

func TestAnalyzeEvents_MarkerList(t *testing.T) {
	for _, marker := range []string{"swap", "exchange", "trade"} {
		a := AnalyzeEvents([]sui.Event{{Type: "0x1::m::" + marker}})
		assert.True(t, a.Swap, marker)
	}
	a := AnalyzeEvents([]sui.Event{{Type: "0x1::m::Deposit", Module: "unknown"}})
	assert.False(t, a.Swap)
	assert.False(t, a.Mint)
	assert.False(t, a.Burn)
	assert.Empty(t, a.Protocol)
}

func TestProtocolFromModule(t *testing.T) {
	for _, p := range protocolMarkers {
		assert.Equal(t, p.name, protocolFromModule("x_"+p.marker+"_y"))
	}
	assert.Equal(t, "", protocolFromModule(""))
}
