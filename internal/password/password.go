// Package password derives and checks salted credential hashes.
//
// Every scheme persists hashes as "salt:digest" with both halves
// hex-encoded, so stored credentials stay readable across schemes even
// though verification always uses the scheme the server is configured
// with.
package password

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const saltBytes = 10

// Hasher turns a plaintext password into its stored representation and
// checks candidates against one.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, stored string) bool
}

// GenerateSalt returns a hex-encoded random salt.
func GenerateSalt() string {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b)
}

// splitStored separates "salt:digest". A stored value without the
// separator is treated as unparseable, never as an error.
func splitStored(stored string) (salt, digest string, ok bool) {
	salt, digest, ok = strings.Cut(stored, ":")
	if !ok || salt == "" {
		return "", "", false
	}
	return salt, digest, true
}

// HMACHasher is the scheme the stored data was created with: the hex
// salt string keys an HMAC-SHA256 over the password. It is not a
// memory-hard KDF; see ScryptHasher for the hardened alternative.
type HMACHasher struct{}

func (HMACHasher) Hash(password string) (string, error) {
	salt := GenerateSalt()
	return salt + ":" + hmacDigest(salt, password), nil
}

func (HMACHasher) Verify(password, stored string) bool {
	salt, digest, ok := splitStored(stored)
	if !ok {
		return false
	}
	return hmac.Equal([]byte(hmacDigest(salt, password)), []byte(digest))
}

func hmacDigest(salt, password string) string {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}

// scrypt parameters per the current OWASP recommendation.
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

// ScryptHasher is the memory-hard scheme for deployments that do not
// need compatibility with existing HMAC records.
type ScryptHasher struct{}

func (ScryptHasher) Hash(password string) (string, error) {
	salt := GenerateSalt()
	digest, err := scryptDigest(salt, password)
	if err != nil {
		return "", err
	}
	return salt + ":" + digest, nil
}

func (ScryptHasher) Verify(password, stored string) bool {
	salt, digest, ok := splitStored(stored)
	if !ok {
		return false
	}
	candidate, err := scryptDigest(salt, password)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(digest)) == 1
}

func scryptDigest(salt, password string) (string, error) {
	key, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// ForScheme returns the hasher for a configured scheme name, defaulting
// to HMAC for unknown values.
func ForScheme(scheme string) Hasher {
	if scheme == "scrypt" {
		return ScryptHasher{}
	}
	return HMACHasher{}
}
