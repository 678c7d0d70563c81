package pacchetto

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"strings"
)

// RandomDigits returns a string of n decimal digits, used for pickup and
// delivery codes. Leading zeros are kept.
func RandomDigits(n int) string {
	var seed [8]byte
	// Read never returns an error; it crashes the program instead.
	crand.Read(seed[:])
	r := newChaCha(binary.LittleEndian.Uint64(seed[:]))

	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(byte('0' + r.IntN(10)))
	}
	return b.String()
}

func newChaCha(seed uint64) *rand.Rand {
	var seedBytes [32]byte
	binary.LittleEndian.PutUint64(seedBytes[0:8], seed)
	return rand.New(rand.NewChaCha8(seedBytes))
}
