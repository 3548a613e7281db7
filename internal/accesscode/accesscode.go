// Package accesscode generates the bearer codes that identify interviews and
// public links to anonymous candidates.
package accesscode

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"

	"github.com/jonathan/interview-agent/internal/db"
	"github.com/jonathan/interview-agent/internal/types"
)

const (
	// Alphabet is the set of characters a code is drawn from.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// Length is the number of characters in a code.
	Length = 8
	// MaxAttempts bounds how many codes are tried before giving up on collisions.
	MaxAttempts = 5
)

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generate returns a new random code.
func Generate() (string, error) {
	buf := make([]byte, Length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to generate access code: %w", err)
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf), nil
}

// Valid reports whether s has the shape of a code.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// Insert calls insert with fresh codes until it succeeds or fails with
// anything other than a unique violation. Returns the code that was stored.
func Insert(ctx context.Context, insert func(ctx context.Context, code string) error) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		code, err := Generate()
		if err != nil {
			return "", err
		}
		err = insert(ctx, code)
		if err == nil {
			return code, nil
		}
		if !db.IsUniqueViolation(err) {
			return "", err
		}
		log.Printf("[accesscode] collision on attempt %d, retrying", attempt)
		lastErr = err
	}
	return "", &types.ConflictError{
		Resource: "access code",
		Message:  fmt.Sprintf("no unique code after %d attempts", MaxAttempts),
		Cause:    lastErr,
	}
}
