package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ReceiptStore writes payment receipts uploaded with the payer action to
// local disk, one file per souscription reference.
type ReceiptStore struct {
	dir string
}

// NewReceiptStore ensures the uploads directory exists.
func NewReceiptStore(dir string) (*ReceiptStore, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &ReceiptStore{dir: dir}, nil
}

// Save stores the receipt bytes and returns the stored path. The original
// filename only contributes its extension; the name on disk is derived
// from the souscription reference.
func (s *ReceiptStore) Save(reference, originalName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".bin"
	}
	name := fmt.Sprintf("recu_%s_%d%s", sanitize(reference), time.Now().Unix(), ext)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write receipt: %w", err)
	}
	return path, nil
}

func sanitize(raw string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, raw)
}
