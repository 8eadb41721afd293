package qrcode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_ProducesPNG(t *testing.T) {
	enc := NewEncoder()

	png, err := enc.Encode(`{"ticket_id":"TKT1700000000abcdef123456","event_id":"e","user_id":"u","order_id":"ORD1"}`)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")))
}

func TestEncoder_EmptyPayload(t *testing.T) {
	_, err := NewEncoder().Encode("")
	assert.Error(t, err)
}
