package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodePrefix is the brand prefix shared by transaction IDs and reset codes.
// Callers distinguish the two by context, not by format.
const CodePrefix = "KS1"

// NewCode generates a short, human-typable identifier of the shape
// "<prefix>-<3 digits>-<3 digits>" with each group uniform over [100, 999].
//
// No uniqueness is guaranteed at generation time; callers must treat the
// store's uniqueness constraint as the gate and retry on collision.
func NewCode(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, codeGroup(), codeGroup())
}

func codeGroup() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(900))
	if err != nil {
		// crypto/rand reading from the OS entropy pool does not fail in
		// practice; an identifier generator cannot usefully return an error.
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	return n.Int64() + 100
}
