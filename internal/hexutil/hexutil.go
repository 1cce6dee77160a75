// Package hexutil provides encoding helpers for JSON-RPC quantity values.
package hexutil

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// EncodeUint64 encodes v as a 0x-prefixed hexadecimal quantity with no
// leading zeros, the canonical wire form for block numbers and indices.
func EncodeUint64(v uint64) string {
	return "0x" + strconv.FormatUint(v, 16)
}

// DecodeUint64 decodes a 0x-prefixed hexadecimal quantity.
func DecodeUint64(s string) (uint64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if trimmed == "" {
		return 0, fmt.Errorf("hexutil: empty quantity %q", s)
	}
	v, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("hexutil: invalid quantity %q: %w", s, err)
	}
	return v, nil
}

// CanonicalChainID normalizes a chain identifier to a canonical base-10
// string. Hexadecimal (0x-prefixed) and decimal inputs are both accepted;
// values wider than 64 bits are handled via math/big. When the input cannot
// be interpreted as a number the trimmed raw string is returned as-is, so
// callers always get a usable directory-name-shaped identifier back.
// Empty input is the caller's error and returns an empty string.
func CanonicalChainID(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		if n, ok := new(big.Int).SetString(trimmed[2:], 16); ok {
			return n.String()
		}
		return trimmed
	}

	if n, ok := new(big.Int).SetString(trimmed, 10); ok {
		return n.String()
	}
	return trimmed
}
