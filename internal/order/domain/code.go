package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

var orderCodePattern = regexp.MustCompile(`^ORD-[0-9]{10,16}-[0-9A-Z]{5}$`)

// NewOrderCode returns ORD-<unix millis>-<5 random base36 characters>.
func NewOrderCode(now time.Time) (string, error) {
	suffix := make([]byte, 5)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("order code entropy: %w", err)
		}
		suffix[i] = codeAlphabet[n.Int64()]
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix), nil
}

func ValidOrderCode(code string) bool {
	return orderCodePattern.MatchString(code)
}
