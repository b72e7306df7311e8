package utils

import (
    "crypto/rand"
    "math/big"
    "strconv"
    "strings"
    "time"
)

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateOrderNumber returns a customer-facing order identifier of the form
// PF-<millis base36>-<6 random base36 chars>.  The timestamp component keeps
// numbers roughly sortable; the random suffix makes collisions negligible.
// Uniqueness is additionally enforced by the UNIQUE constraint on
// orders.order_number.
func GenerateOrderNumber() string {
    ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
    suffix := make([]byte, 6)
    for i := range suffix {
        n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36Alphabet))))
        if err != nil {
            // crypto/rand failing means the process is in deep trouble;
            // fall back to a time-derived digit rather than panicking.
            suffix[i] = base36Alphabet[time.Now().UnixNano()%36]
            continue
        }
        suffix[i] = base36Alphabet[n.Int64()]
    }
    return "PF-" + ts + "-" + string(suffix)
}
