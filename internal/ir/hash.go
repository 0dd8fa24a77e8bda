package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefix for content-addressed expression identity.
// Version suffix enables future algorithm migration.
const DomainExpression = "jsonfilter/expression/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ExpressionHash returns a stable fingerprint of expr, computed over its
// canonical JSON form. Two expressions with the same tokens in the same order
// hash identically; holes are significant.
func ExpressionHash(expr Expression) (string, error) {
	canonical, err := MarshalCanonical(expr)
	if err != nil {
		return "", fmt.Errorf("ExpressionHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainExpression, canonical), nil
}

// MustExpressionHash is like ExpressionHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustExpressionHash(expr Expression) string {
	hash, err := ExpressionHash(expr)
	if err != nil {
		panic(err)
	}
	return hash
}
