// Package confirmation issues booking references shaped like AB1234CD.
package confirmation

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"
)

const (
	CodeLength = 8
	letters    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits     = "0123456789"
)

var codePattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{4}[A-Z]{2}$`)

type Generator struct {
	random io.Reader
}

// NewGenerator draws from crypto/rand unless a reader is supplied.
func NewGenerator(random io.Reader) *Generator {
	if random == nil {
		random = rand.Reader
	}
	return &Generator{random: random}
}

// Generate returns two letters, four digits and two letters. Uniqueness is
// left to the reservation store.
func (g *Generator) Generate() (string, error) {
	code := make([]byte, 0, CodeLength)
	for _, alphabet := range []string{letters, letters, digits, digits, digits, digits, letters, letters} {
		c, err := g.pick(alphabet)
		if err != nil {
			return "", fmt.Errorf("generate confirmation code: %w", err)
		}
		code = append(code, c)
	}
	return string(code), nil
}

func (g *Generator) pick(alphabet string) (byte, error) {
	n, err := rand.Int(g.random, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, err
	}
	return alphabet[n.Int64()], nil
}

// IsValid checks the format only.
func IsValid(code string) bool {
	return len(code) == CodeLength && codePattern.MatchString(code)
}
