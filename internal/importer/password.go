package importer

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	upperChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerChars  = "abcdefghijkmnpqrstuvwxyz"
	digitChars  = "23456789"
	symbolChars = "!@#$%&*+-?"
)

// MinPasswordLength guarantees room for one character from each class.
const MinPasswordLength = 8

// GeneratePassword returns a random password of exactly length characters
// containing at least one uppercase letter, one lowercase letter, one digit
// and one symbol, shuffled so the class positions are not predictable.
// Ambiguous characters (O/0, l/1) are excluded from the alphabets.
func GeneratePassword(length int) (string, error) {
	if length < MinPasswordLength {
		length = MinPasswordLength
	}

	all := upperChars + lowerChars + digitChars + symbolChars
	buf := make([]byte, 0, length)

	for _, set := range []string{upperChars, lowerChars, digitChars, symbolChars} {
		ch, err := pick(set)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}
	for len(buf) < length {
		ch, err := pick(all)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}

	// Fisher-Yates with crypto randomness.
	for i := len(buf) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf), nil
}

func pick(set string) (byte, error) {
	i, err := randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("random source: %w", err)
	}
	return int(v.Int64()), nil
}
