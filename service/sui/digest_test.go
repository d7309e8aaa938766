package sui

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDigestBytes() []byte {
	return bytes.Repeat([]byte{0xab}, DigestLength)
}

func TestNormalizeDigest(t *testing.T) {
	raw := testDigestBytes()
	b58 := base58.Encode(raw)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"base58", b58, b58},
		{"base58 with whitespace", "  " + b58 + "\n", b58},
		{"hex", "0x" + hex.EncodeToString(raw), b58},
		{"upper hex prefix", "0X" + hex.EncodeToString(raw), b58},
		{"suiscan url", "https://suiscan.xyz/mainnet/tx/" + b58, b58},
		{"suivision url", "https://suivision.xyz/txblock/" + b58 + "?tab=Overview", b58},
		{"explorer url trailing slash", "https://explorer.sui.io/txblock/" + b58 + "/", b58},
		{"url with hex digest", "https://suiscan.xyz/mainnet/tx/0x" + hex.EncodeToString(raw), b58},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDigest(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDigest_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"bad base58 alphabet", "0OIl" + base58.Encode(testDigestBytes())[4:]},
		{"short base58", base58.Encode([]byte{1, 2, 3})},
		{"bad hex", "0xzz"},
		{"short hex", "0x" + hex.EncodeToString([]byte{1, 2, 3})},
		{"url without digest", "https://suiscan.xyz/mainnet/account/0x1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeDigest(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidIdentifier)
		})
	}
}
