package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var orderNumberPattern = regexp.MustCompile(`^PF-[0-9A-Z]+-[0-9A-Z]{6}$`)

func TestGenerateOrderNumberFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		n := GenerateOrderNumber()
		assert.Regexp(t, orderNumberPattern, n)
	}
}

func TestGenerateOrderNumberUniqueness(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		n := GenerateOrderNumber()
		assert.False(t, seen[n], "duplicate order number %s", n)
		seen[n] = true
	}
}
