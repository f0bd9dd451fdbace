package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"regexp"

	"strot/pkg/types"

	"golang.org/x/crypto/bcrypt"
)

var legacyHashReg = regexp.MustCompile(`^[0-9a-f]{64}$`)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// IsLegacyHash reports whether hash is an unsalted hex SHA-256 digest from
// the earlier session backend. Such hashes still verify and are replaced with
// bcrypt on the next successful login.
func IsLegacyHash(hash string) bool {
	return legacyHashReg.MatchString(hash)
}

func VerifyPassword(password, hash string) error {
	if IsLegacyHash(hash) {
		sum := sha256.Sum256([]byte(password))
		if subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(hash)) == 1 {
			return nil
		}
		return types.ErrInvalidCredentials
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return types.ErrInvalidCredentials
		}
		return err
	}

	return nil
}
