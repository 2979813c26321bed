package documents

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/claimflow/claimflow-go/internal/domain/claims"
)

// LocalStore keeps attachments on the local filesystem under Root.
type LocalStore struct {
	Root string
}

// NewLocalStore creates a filesystem store rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	if dir == "" {
		dir = ".data/documents"
	}
	return &LocalStore{Root: dir}
}

// Put writes body to a new file under Root/claims/<claim>. Existing files
// are never overwritten. The locator is a file URL.
func (s *LocalStore) Put(ctx context.Context, claimID, name string, body io.Reader) (claims.Document, error) {
	if err := ctx.Err(); err != nil {
		return claims.Document{}, err
	}
	key, clean, err := newKey("", claimID, name)
	if err != nil {
		return claims.Document{}, err
	}

	dest := filepath.Join(s.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return claims.Document{}, fmt.Errorf("%w: %v", ErrDocumentStore, err)
	}

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return claims.Document{}, fmt.Errorf("%w: %v", ErrDocumentStore, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return claims.Document{}, fmt.Errorf("%w: %v", ErrDocumentStore, err)
	}
	if err := f.Close(); err != nil {
		return claims.Document{}, fmt.Errorf("%w: %v", ErrDocumentStore, err)
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		abs = dest
	}
	return claims.Document{Name: clean, Locator: "file://" + filepath.ToSlash(abs)}, nil
}

// Link returns the file URL itself; local files need no signing.
func (s *LocalStore) Link(ctx context.Context, locator string) (string, error) {
	if !strings.HasPrefix(locator, "file://") {
		return "", fmt.Errorf("%w: not a file locator %q", claims.ErrValidation, locator)
	}
	return locator, nil
}
