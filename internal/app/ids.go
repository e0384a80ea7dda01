package app

import (
	"crypto/rand"
)

const tokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	for i := range b {
		b[i] = tokenAlphabet[int(b[i])%len(tokenAlphabet)]
	}
	return string(b)
}

// newOrderToken returns a short human-readable order identifier like ORD-7K2Q9X.
func newOrderToken() string {
	return "ORD-" + randomToken(6)
}

// newTransactionID returns a payment transaction identifier like TXN4F8A0B12CZ.
func newTransactionID() string {
	return "TXN" + randomToken(10)
}
