package nats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brojonat/suiscope/service/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTranslation(t *testing.T) {
	ts := int64(1_700_000_000_000)
	tx := &translate.TranslatedTransaction{
		Digest:      "D1",
		Status:      "success",
		Type:        translate.TypeSwap,
		Protocol:    "Cetus",
		Summary:     "Swap on Cetus",
		TimestampMs: &ts,
		Sender:      translate.Address{Address: "0xaa"},
		Recipients:  []translate.Address{{Address: "0xbb"}, {Address: "0xcc"}},
		Gas:         translate.GasInfo{NetGasFee: 1_500_000},
	}
	tx.FinancialSummary.TotalUSD = 12.5

	event := FromTranslation(tx)

	assert.Equal(t, "D1", event.Digest)
	assert.Equal(t, "swap", event.Type)
	assert.Equal(t, "explained.swap", event.Subject())
	assert.Equal(t, "0xaa", event.Sender)
	assert.Equal(t, []string{"0xbb", "0xcc"}, event.Recipients)
	assert.Equal(t, int64(1_500_000), event.NetGasFee)
	assert.Equal(t, 12.5, event.TotalUSD)
	require.NotNil(t, event.Timestamp)
	assert.Equal(t, time.UnixMilli(ts).UTC(), *event.Timestamp)
	assert.WithinDuration(t, time.Now(), event.PublishedAt, 5*time.Second)
}

func TestFromTranslation_NoTimestamp(t *testing.T) {
	event := FromTranslation(&translate.TranslatedTransaction{Digest: "D2", Type: translate.TypeUnknown})
	assert.Nil(t, event.Timestamp)
	assert.Empty(t, event.Recipients)
	assert.Equal(t, "explained.unknown", event.Subject())
}

func TestFilterSubject(t *testing.T) {
	assert.Equal(t, "explained.*", FilterSubject(""))
	assert.Equal(t, "explained.mint", FilterSubject("mint"))
}

func TestMockPublisher(t *testing.T) {
	ctx := context.Background()
	m := NewMockPublisher()

	require.NoError(t, m.PublishExplained(ctx, &ExplainedEvent{Digest: "A", Type: "swap"}))
	require.NoError(t, m.PublishExplained(ctx, &ExplainedEvent{Digest: "B", Type: "transfer"}))

	events := m.GetPublishedEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "explained.swap", events[0].Subject())
	assert.Equal(t, "explained.transfer", events[1].Subject())

	m.SetPublishError(errors.New("nats down"))
	assert.Error(t, m.PublishExplained(ctx, &ExplainedEvent{Digest: "C"}))
	assert.Equal(t, 2, m.GetPublishedEventCount())

	require.NoError(t, m.Close())
	assert.True(t, m.IsClosed())
}
