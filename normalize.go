package msdrive

import "golang.org/x/text/unicode/norm"

// NormalizeName returns the NFC form of an item name. The service stores
// names in the form the client sent, so the same file uploaded from macOS
// (NFD) and Linux (NFC) can come back with different byte sequences; compare
// normalized forms when matching server names against local ones.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}
