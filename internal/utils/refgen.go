package utils

import (
	"crypto/rand"
	"fmt"
	"time"
)

const refAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratePaymentRef returns a correlation reference for one charge attempt.
// The millisecond timestamp component keeps references unique per attempt
// and sortable; the gateway echoes it back on the direct callback.
func GeneratePaymentRef() string {
	ms := fmt.Sprintf("%d", time.Now().UnixMilli())
	if len(ms) > 9 {
		ms = ms[len(ms)-9:]
	}
	return "POS" + ms
}

// GenerateStockInRef returns a short delivery reference like REF-4K2M9A.
func GenerateStockInRef() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = refAlphabet[int(buf[i])%len(refAlphabet)]
	}
	return "REF-" + string(buf), nil
}
