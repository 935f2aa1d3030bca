package game

import "math/rand/v2"

// codeAlphabet is the 36-symbol alphabet join codes draw from
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// codeLength is the fixed join code length
const codeLength = 3

// NewJoinCode generates a short human-enterable join code. Collisions are
// possible with a 3-character code; CreateGame retries against the store and
// the store's uniqueness constraint is the final arbiter.
func NewJoinCode() string {
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(code)
}
