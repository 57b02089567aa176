// Package cryptox holds the password-derived login material shared by the
// client and the server. The password itself never leaves the client: it is
// stretched into a master key with Argon2id and only a hash of that key, the
// verifier, is sent.
package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Changing any of them invalidates every stored verifier.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	KeySize      = 32
)

func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, KeySize)
}

func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// VerifierMatches compares in constant time.
func VerifierMatches(stored, candidate []byte) bool {
	return subtle.ConstantTimeCompare(stored, candidate) == 1
}

// FakeSalt derives a stable salt for an unknown address, so salt lookups
// look the same whether or not the address is registered. size is capped at
// the HMAC-SHA256 output length.
func FakeSalt(secret []byte, address string, size int) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte("salt:" + address))
	sum := mac.Sum(nil)
	if size > len(sum) {
		size = len(sum)
	}
	return sum[:size]
}
