package cache

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/vectorview/ai"
)

// Fixed store keys shared by every console instance pointed at the same
// server.
const (
	// HashKey is the hash holding the cached vectors, one field per
	// (provider, model, input) triple.
	HashKey = "vectorview:emb:cache"

	// LogKey is the sorted set scoring each cache field by its last
	// read/write time in unix milliseconds.
	LogKey = "vectorview:emb:cache:log"
)

// inputPrefixLen is how many characters of the base64-encoded input survive
// into the cache field. 30 input bytes fill it exactly.
const inputPrefixLen = 40

// HashField derives the cache field for an input under the given provider
// configuration: "{provider}:{model}:{inputHash}". The derivation is pure,
// so identical (input, provider, model) always yields the identical field.
//
// The inputHash segment is a truncated base64 encoding of the raw input,
// not a digest: two inputs sharing their first encoded 40 characters
// collide and silently shadow each other in the cache. That is inherited
// behavior the rest of the system tolerates (the cache is best-effort);
// DigestField is the collision-free alternative.
func HashField(input []byte, config *ai.Config) string {
	encoded := base64.StdEncoding.EncodeToString(input)
	if len(encoded) > inputPrefixLen {
		encoded = encoded[:inputPrefixLen]
	}
	return fmt.Sprintf("%s:%s:%s", config.Provider, config.Model(), encoded)
}

// DigestField derives a collision-resistant cache field with the same
// "{provider}:{model}:{inputHash}" shape, using a 128 bit BLAKE2b digest of
// the full input in place of the truncated encoding.
func DigestField(input []byte, config *ai.Config) string {
	h, _ := blake2b.New(16, nil)
	h.Write(input)
	sum := h.Sum(nil)
	return fmt.Sprintf("%s:%s:%s", config.Provider, config.Model(), hex.EncodeToString(sum))
}
