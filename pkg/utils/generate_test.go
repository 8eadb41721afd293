package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderCode(t *testing.T) {
	now := time.Unix(1700000000, 0)

	code, err := GenerateOrderCode(now)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ORD1700000000[0-9a-f]{8}$`), code)

	other, err := GenerateOrderCode(now)
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}

func TestGenerateTicketCode(t *testing.T) {
	now := time.Unix(1700000000, 0)
	orderID := uuid.MustParse("abcdef12-3456-4789-8abc-def012345678")

	code, err := GenerateTicketCode(now, orderID)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^TKT1700000000abcdef[0-9a-f]{6}$`), code)
	assert.LessOrEqual(t, len(code), 40)
}

func TestGenerateRandomHex(t *testing.T) {
	s, err := GenerateRandomHex(4)
	require.NoError(t, err)
	assert.Len(t, s, 8)
}
