package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash of the supplied password using the default cost.
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, bcrypt.DefaultCost)
}

// HashPasswordWithCost returns a bcrypt hash using an explicit work factor.
// Costs outside bcrypt's accepted range fall back to the default cost.
func HashPasswordWithCost(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares the hashed password with the plaintext candidate.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// GenerateToken returns a random URL-safe token of the requested byte length.
func GenerateToken(length int) (string, error) {
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// RandomDigits returns a zero-padded numeric string of the given width drawn uniformly
// from 1..10^digits-1, reading entropy from source (crypto/rand when nil).
func RandomDigits(source io.Reader, digits int) (string, error) {
	if digits <= 0 || digits > 18 {
		return "", errors.New("crypto: digits must be between 1 and 18")
	}
	if source == nil {
		source = rand.Reader
	}

	upper := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	upper.Sub(upper, big.NewInt(1)) // values 0..upper-1, shifted to 1..upper

	n, err := rand.Int(source, upper)
	if err != nil {
		return "", fmt.Errorf("crypto: random digits: %w", err)
	}
	n.Add(n, big.NewInt(1))

	value := n.String()
	if pad := digits - len(value); pad > 0 {
		value = strings.Repeat("0", pad) + value
	}
	return value, nil
}
