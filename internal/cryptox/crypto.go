// Package cryptox derives login verifiers from passwords. The password never
// leaves the client: the server stores only the salt and the verifier, and the
// client caches both so the unlock challenge can be checked offline.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 32
	keySize  = 32
)

// DeriveMasterKey stretches password with argon2id.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keySize)
}

// MakeVerifier returns the value sent to (and stored by) the server.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// VerifierFor is DeriveMasterKey followed by MakeVerifier.
func VerifierFor(password []byte, salt []byte) []byte {
	return MakeVerifier(DeriveMasterKey(password, salt))
}

// Matches compares two verifiers in constant time.
func Matches(saved, candidate []byte) bool {
	return len(saved) > 0 && subtle.ConstantTimeCompare(saved, candidate) == 1
}
