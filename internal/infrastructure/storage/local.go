package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps attachment files on the local filesystem under a single
// directory. Stored names are random, the original name survives only in the
// attachment record.
type LocalStore struct {
	dir string
}

// NewLocalStore ensures the upload directory exists and returns a store
// rooted at it.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Save(originalName string, content io.Reader) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate file name: %w", err)
	}

	name := hex.EncodeToString(buf)
	if ext := sanitizeExt(filepath.Ext(originalName)); ext != "" {
		name += ext
	}

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	return name, nil
}

func (s *LocalStore) Open(fileName string) (io.ReadCloser, error) {
	path, err := s.resolve(fileName)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *LocalStore) Remove(fileName string) error {
	path, err := s.resolve(fileName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolve rejects names that would escape the upload directory.
func (s *LocalStore) resolve(fileName string) (string, error) {
	if fileName == "" || fileName != filepath.Base(fileName) {
		return "", fmt.Errorf("invalid file name %q", fileName)
	}
	return filepath.Join(s.dir, fileName), nil
}

func sanitizeExt(ext string) string {
	if len(ext) > 16 {
		return ""
	}
	for _, r := range strings.TrimPrefix(ext, ".") {
		ok := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
		if !ok {
			return ""
		}
	}
	return ext
}
