package novelty

import (
	"math/bits"

	"github.com/cespare/xxhash/v2"

	"github.com/jonathan/autopost/internal/types"
)

// Fingerprint computes the SimHash of a shingle set.
//
// Each shingle is hashed to 64 bits. A signed weight per bit position is
// incremented when the shingle's hash has the bit set and decremented otherwise;
// the fingerprint bit is 1 when its weight ends positive. Iteration order does not
// matter. An empty set fingerprints to 0.
func Fingerprint(set ShingleSet) types.Fingerprint {
	if len(set) == 0 {
		return 0
	}

	var weights [types.FingerprintBits]int
	for shingle := range set {
		h := xxhash.Sum64String(shingle)
		for bit := 0; bit < types.FingerprintBits; bit++ {
			if h&(uint64(1)<<bit) != 0 {
				weights[bit]++
			} else {
				weights[bit]--
			}
		}
	}

	var result uint64
	for bit := 0; bit < types.FingerprintBits; bit++ {
		if weights[bit] > 0 {
			result |= uint64(1) << bit
		}
	}
	return types.Fingerprint(result)
}

// HammingDistance counts the differing bits of two fingerprints.
func HammingDistance(a, b types.Fingerprint) int {
	return bits.OnesCount64(uint64(a ^ b))
}
