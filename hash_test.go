package msdrive

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tonimelisma/msdrive/pkg/quickxorhash"
)

func TestVerifyContent(t *testing.T) {
	data := []byte("The quick brown fox jumps over the lazy dog")
	sha := sha1.Sum(data)

	tests := []struct {
		name   string
		hashes *Hashes
		want   bool
	}{
		{"nil hashes", nil, true},
		{"no comparable hash", &Hashes{CRC32Hash: "whatever"}, true},
		{"quickxor match", &Hashes{QuickXorHash: quickxorhash.SumBase64(data)}, true},
		{"quickxor mismatch", &Hashes{QuickXorHash: "AAAAAAAAAAAAAAAAAAAAAAAAAAA="}, false},
		{"sha1 match", &Hashes{SHA1Hash: hex.EncodeToString(sha[:])}, true},
		{"sha1 match uppercase", &Hashes{SHA1Hash: "2FD4E1C67A2D28FCED849EE1BB76E7391B93EB12"}, true},
		{"sha1 mismatch", &Hashes{SHA1Hash: "0000000000000000000000000000000000000000"}, false},
		{"quickxor takes precedence", &Hashes{
			QuickXorHash: quickxorhash.SumBase64(data),
			SHA1Hash:     "0000000000000000000000000000000000000000",
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyContent(tt.hashes, data))
		})
	}
}
