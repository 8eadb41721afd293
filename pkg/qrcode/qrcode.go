package qrcode

import (
	"fmt"

	goqr "github.com/skip2/go-qrcode"
)

// Encoder renders a QR payload into a PNG image.
type Encoder struct {
	Size  int
	Level goqr.RecoveryLevel
}

// NewEncoder: low error correction, 290px (box 10 x 29 modules incl. border)
func NewEncoder() *Encoder {
	return &Encoder{
		Size:  290,
		Level: goqr.Low,
	}
}

func (e *Encoder) Encode(payload string) ([]byte, error) {
	png, err := goqr.Encode(payload, e.Level, e.Size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
