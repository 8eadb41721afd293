package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ==================== UUID & TOKEN ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// ==================== ORDER & TICKET CODES ====================

// GenerateRandomHex returns n random bytes hex-encoded (2n chars)
func GenerateRandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// GenerateOrderCode format: ORD<unix-seconds><8 hex random>
func GenerateOrderCode(now time.Time) (string, error) {
	suffix, err := GenerateRandomHex(4)
	if err != nil {
		return "", fmt.Errorf("generate order code: %w", err)
	}
	return fmt.Sprintf("ORD%d%s", now.Unix(), suffix), nil
}

// GenerateTicketCode format: TKT<unix-seconds><6 hex of order id><6 hex random>
func GenerateTicketCode(now time.Time, orderID uuid.UUID) (string, error) {
	suffix, err := GenerateRandomHex(3)
	if err != nil {
		return "", fmt.Errorf("generate ticket code: %w", err)
	}
	orderHex := strings.ReplaceAll(orderID.String(), "-", "")
	return fmt.Sprintf("TKT%d%s%s", now.Unix(), orderHex[:6], suffix), nil
}
