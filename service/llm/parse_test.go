package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullResponse = `{
  "overview": "Alice sent 5 SUI to Bob.",
  "plain_english": {"simple": "Money moved.", "detailed": "5 SUI left Alice.", "technical": "TransferSui command."},
  "classification": {"category": "transfer", "subcategory": "native", "confidence": 0.95},
  "transaction_type": {"name": "Transfer", "description": "Native coin transfer"},
  "detailed_flow": ["Alice signs", "Coins move", "Gas is paid"],
  "technical_details": {"gas_analysis": "Cheap", "object_changes": "One coin mutated", "move_calls": "None"},
  "security": {"risk_level": "low", "concerns": [], "recommendations": ["Verify the recipient"]},
  "educational": {"concepts": ["gas"], "learn_more": "https://docs.sui.io"}
}`

func TestParseExplanation_StrictJSON(t *testing.T) {
	e, err := ParseExplanation(fullResponse, ModeFull)
	require.NoError(t, err)

	assert.False(t, e.Partial)
	assert.Equal(t, ModeFull, e.Mode)
	assert.Equal(t, "Alice sent 5 SUI to Bob.", e.Overview)
	assert.Equal(t, "TransferSui command.", e.PlainEnglish.Technical)
	require.NotNil(t, e.Classification)
	assert.Equal(t, "transfer", e.Classification.Category)
	assert.Equal(t, 0.95, e.Classification.Confidence)
	assert.Len(t, e.DetailedFlow, 3)
	require.NotNil(t, e.Security)
	assert.Equal(t, "low", e.Security.RiskLevel)
	require.NotNil(t, e.Educational)
	assert.Equal(t, []string{"gas"}, e.Educational.Concepts)
}

func TestParseExplanation_SimpleMode(t *testing.T) {
	e, err := ParseExplanation(`{"overview": "A swap.", "plain_english": {"simple": "Traded one coin for another."}}`, ModeSimple)
	require.NoError(t, err)
	assert.False(t, e.Partial)
	assert.Equal(t, ModeSimple, e.Mode)
	assert.Equal(t, "A swap.", e.Overview)
	assert.Nil(t, e.Security)
}

func TestParseExplanation_FencedJSON(t *testing.T) {
	text := "Here you go:\n```json\n{\"overview\": \"Minted an NFT.\"}\n```\nThanks!"
	e, err := ParseExplanation(text, ModeSimple)
	require.NoError(t, err)
	assert.False(t, e.Partial)
	assert.Equal(t, "Minted an NFT.", e.Overview)
	assert.Equal(t, "Minted an NFT.", e.PlainEnglish.Simple, "simple tier falls back to overview")
}

func TestParseExplanation_EmbeddedJSON(t *testing.T) {
	e, err := ParseExplanation(`Sure! {"overview": "Burned a ticket."} Let me know.`, ModeSimple)
	require.NoError(t, err)
	assert.False(t, e.Partial)
	assert.Equal(t, "Burned a ticket.", e.Overview)
}

func TestParseExplanation_RegexFallback(t *testing.T) {
	// Truncated mid-object, so no candidate is valid JSON.
	text := `{"overview": "Swapped \"USDC\" for SUI.", "plain_english": {"simple": "A trade."}, "security": {"risk_level": "medium", "concerns": [`
	e, err := ParseExplanation(text, ModeFull)
	require.NoError(t, err)

	assert.True(t, e.Partial)
	assert.Equal(t, `Swapped "USDC" for SUI.`, e.Overview)
	assert.Equal(t, "A trade.", e.PlainEnglish.Simple)
	require.NotNil(t, e.Security)
	assert.Equal(t, "medium", e.Security.RiskLevel)
}

func TestParseExplanation_PlainProse(t *testing.T) {
	e, err := ParseExplanation("This transaction moves coins between two wallets.", ModeFull)
	require.NoError(t, err)
	assert.True(t, e.Partial)
	assert.Equal(t, "This transaction moves coins between two wallets.", e.Overview)
}

func TestParseExplanation_Empty(t *testing.T) {
	_, err := ParseExplanation("  \n ", ModeFull)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeFull, m)

	m, err = ParseMode("SIMPLE")
	require.NoError(t, err)
	assert.Equal(t, ModeSimple, m)

	_, err = ParseMode("verbose")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
	assert.Equal(t, "...", truncate("é", 1), "never splits a rune")
}
