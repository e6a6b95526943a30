package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex — 캐시 키용 요청 해시.
func SHA256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
