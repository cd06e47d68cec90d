package checkin

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
)

// Attendance and community codes are short and human-typable: 6 characters
// over A-Z0-9 give 36^6 (about 2.1e9) combinations.
const (
	codeAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DefaultCodeLength = 6

	maxCodeAttempts = 5
)

// ErrCodeSpaceExhausted is returned when repeated draws keep colliding with
// existing codes.
var ErrCodeSpaceExhausted = errors.New("could not generate a collision-free code")

// GenerateCode draws length characters independently and uniformly from the
// code alphabet. Generation alone does not guarantee uniqueness; use
// UniqueCode when the code must not collide with an existing set.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// UniqueCode generates codes until taken reports a free one, retrying a
// bounded number of fresh draws before giving up with ErrCodeSpaceExhausted.
func UniqueCode(ctx context.Context, length int, taken func(ctx context.Context, code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := GenerateCode(length)
		if err != nil {
			return "", err
		}
		inUse, err := taken(ctx, code)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}
