package session

import "math/rand"

// codeAlphabet deliberately drops 0/O and 1/I: codes are read aloud and
// typed by hand.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

func genCode(rnd *rand.Rand) string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rnd.Intn(len(codeAlphabet))]
	}
	return string(b)
}
