package sui

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mr-tron/base58"
)

// DigestLength is the byte length of a decoded transaction digest.
const DigestLength = 32

var (
	// ErrInvalidIdentifier is returned when a user-supplied identifier is not
	// a digest or an explorer URL containing one.
	ErrInvalidIdentifier = errors.New("invalid transaction identifier")

	// ErrTransactionNotFound is returned when the node has no transaction
	// for a well-formed digest.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrUpstream wraps transport and node failures.
	ErrUpstream = errors.New("upstream rpc failure")
)

// explorerPathMarkers are the URL path segments that precede a digest on
// the known explorers (suiscan, suivision, explorer.sui.io).
var explorerPathMarkers = []string{"tx", "txblock", "transaction"}

// NormalizeDigest turns a user-supplied identifier into a canonical Base58
// digest. Accepted forms are a Base58 digest, a 0x-prefixed hex digest, and
// an explorer URL whose path ends in tx/<digest> or txblock/<digest>.
func NormalizeDigest(identifier string) (string, error) {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	}

	if strings.Contains(id, "://") {
		d, err := digestFromURL(id)
		if err != nil {
			return "", err
		}
		id = d
	}

	if strings.HasPrefix(id, "0x") || strings.HasPrefix(id, "0X") {
		raw, err := hex.DecodeString(id[2:])
		if err != nil {
			return "", fmt.Errorf("%w: bad hex: %v", ErrInvalidIdentifier, err)
		}
		if len(raw) != DigestLength {
			return "", fmt.Errorf("%w: hex digest must be %d bytes, got %d", ErrInvalidIdentifier, DigestLength, len(raw))
		}
		return base58.Encode(raw), nil
	}

	raw, err := base58.Decode(id)
	if err != nil {
		return "", fmt.Errorf("%w: bad base58: %v", ErrInvalidIdentifier, err)
	}
	if len(raw) != DigestLength {
		return "", fmt.Errorf("%w: digest must be %d bytes, got %d", ErrInvalidIdentifier, DigestLength, len(raw))
	}
	return id, nil
}

func digestFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: bad url: %v", ErrInvalidIdentifier, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 2; i >= 0; i-- {
		for _, marker := range explorerPathMarkers {
			if strings.EqualFold(segments[i], marker) && segments[i+1] != "" {
				return segments[i+1], nil
			}
		}
	}
	return "", fmt.Errorf("%w: no digest in url path %q", ErrInvalidIdentifier, u.Path)
}
