package snake

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeAlphabet excludes visually ambiguous characters: 0 1 I L O and
// their lowercase look-alikes i l o.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

const codeLength = 4

var codeAlphabetSize = big.NewInt(int64(len(codeAlphabet)))

// generateInviteCode draws codeLength characters uniformly from
// codeAlphabet using a cryptographically strong source. Each character
// comes from rand.Int, not a byte modulo the alphabet length, since the
// alphabet's 54 characters don't evenly divide 256 and a modulo would
// skew the low characters slightly over-represented.
func generateInviteCode() (string, error) {
	out := make([]byte, codeLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, codeAlphabetSize)
		if err != nil {
			return "", fmt.Errorf("snake: generate invite code: %w", err)
		}
		out[i] = codeAlphabet[n.Int64()]
	}
	return string(out), nil
}
