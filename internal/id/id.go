package id

import (
	"strings"

	"github.com/google/uuid"
)

// Prefixes for generated identifiers.
const (
	PrefixTransaction = "tx"
	PrefixObligation  = "ob"
	PrefixGoal        = "goal"
	PrefixEnvelope    = "custom"
)

// New returns an identifier like "tx_3f6c...".
func New(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// IsCustomEnvelope reports whether an envelope id was generated for a user-created envelope.
func IsCustomEnvelope(id string) bool {
	return strings.HasPrefix(id, PrefixEnvelope+"_")
}

// Short returns the first block of the identifier's uuid, for display.
// "tx_3f6c1a2b-..." -> "tx_3f6c1a2b"
func Short(id string) string {
	prefix, rest, ok := strings.Cut(id, "_")
	if !ok {
		return id
	}
	block, _, _ := strings.Cut(rest, "-")
	return prefix + "_" + block
}
