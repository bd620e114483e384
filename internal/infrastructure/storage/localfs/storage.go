package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage keeps raw document content on the local filesystem, one file per
// document under its case directory. The returned location is the relative
// key, opaque to callers.
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/documents"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

func (s *Storage) Upload(_ context.Context, caseID, documentID string, data []byte, filename, _ string) (string, error) {
	key := filepath.Join(sanitizeSegment(caseID), documentID+"_"+sanitizeSegment(filename))

	path := filepath.Join(s.basePath, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create case dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return key, nil
}

func (s *Storage) Download(_ context.Context, location string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.basePath, location))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func sanitizeSegment(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
