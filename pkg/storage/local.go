package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	DirQRCodes              = "qr_codes"
	DirPaymentConfirmations = "payment_confirmations"
)

// LocalStore menyimpan file media (QR ticket, screenshot pembayaran) di disk.
// Path yang dikembalikan relatif terhadap root, contoh "qr_codes/qr_TKT123.png".
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create media root %s: %w", root, err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStore{root: root, baseURL: baseURL}, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Save(ctx context.Context, dir, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	full := filepath.Join(s.root, dir)
	if err := os.MkdirAll(full, 0755); err != nil {
		return "", fmt.Errorf("create media dir %s: %w", dir, err)
	}

	if err := os.WriteFile(filepath.Join(full, name), data, 0644); err != nil {
		return "", fmt.Errorf("write media file %s/%s: %w", dir, name, err)
	}

	return path.Join(dir, name), nil
}

func (s *LocalStore) Remove(ctx context.Context, rel string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove media file %s: %w", rel, err)
	}
	return nil
}

// URL returns the public URL for a stored path, "" for empty paths
func (s *LocalStore) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.baseURL + rel
}
