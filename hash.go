package msdrive

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/tonimelisma/msdrive/pkg/quickxorhash"
)

// VerifyContent checks downloaded or uploaded content against the hashes the
// service reported for the item. It prefers QuickXorHash (present on both
// personal and business drives) and falls back to SHA1. Returns false when
// any available hash disagrees; returns true when no comparable hash is
// present, since absence is not corruption.
func VerifyContent(hashes *Hashes, data []byte) bool {
	if hashes == nil {
		return true
	}

	if hashes.QuickXorHash != "" {
		return hashes.QuickXorHash == quickxorhash.SumBase64(data)
	}

	if hashes.SHA1Hash != "" {
		sum := sha1.Sum(data)
		return strings.EqualFold(hashes.SHA1Hash, hex.EncodeToString(sum[:]))
	}

	return true
}
