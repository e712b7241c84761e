// Package apikey issues bearer tokens and derives the hashes stored for them.
package apikey

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// Prefix marks tokens issued by this server.
const Prefix = "rk_"

// Generate returns a new random token. Only its hash should be persisted.
func Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return Prefix + strings.ReplaceAll(id.String(), "-", ""), nil
}

// Hash returns the hex sha256 digest of token.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
