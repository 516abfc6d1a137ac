package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateJoinCodeIsRandomEnough(t *testing.T) {
	const n = 1000
	codes := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		codes[GenerateJoinCode()] = true
	}
	assert.Len(t, codes, n)
}

func TestGenerateJoinCodeShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateJoinCode()
		assert.NotEmpty(t, code)
		assert.LessOrEqual(t, len(code), 32)
		assert.False(t, strings.HasSuffix(code, "_"))
		assert.False(t, strings.HasSuffix(code, "-"))
		assert.NotContains(t, code, "+")
		assert.NotContains(t, code, "/")
	}
}
