// Package documents stores claim attachments and hands back opaque locators.
package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/claimflow/claimflow-go/internal/domain/claims"
)

// ErrDocumentStore is returned when the backing store fails.
var ErrDocumentStore = errors.New("document store failure")

// Store persists attachment bodies.
type Store interface {
	// Put stores body under the claim and returns the resulting document.
	Put(ctx context.Context, claimID, name string, body io.Reader) (claims.Document, error)
}

// BuildKey constructs the object key for a claim attachment. objectID
// keeps two uploads with the same name apart.
func BuildKey(prefix, claimID, objectID, name string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if claimID == "" || strings.ContainsAny(claimID, "/\\") {
		return "", fmt.Errorf("%w: invalid claim id %q", claims.ErrValidation, claimID)
	}
	if objectID == "" || strings.ContainsAny(objectID, "/\\-") {
		return "", fmt.Errorf("%w: invalid object id %q", claims.ErrValidation, objectID)
	}
	key := fmt.Sprintf("claims/%s/%s-%s", claimID, objectID, clean)
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key, nil
}

// ParseKey extracts the claim id, object id and file name from an object key.
func ParseKey(prefix, key string) (claimID, objectID, name string, ok bool) {
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		if !strings.HasPrefix(key, prefix+"/") {
			return "", "", "", false
		}
		key = strings.TrimPrefix(key, prefix+"/")
	}
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != "claims" || parts[1] == "" {
		return "", "", "", false
	}
	objectID, name, ok = strings.Cut(parts[2], "-")
	if !ok || objectID == "" || name == "" {
		return "", "", "", false
	}
	return parts[1], objectID, name, true
}

// newKey builds a fresh key for one upload and returns it with the stored name.
func newKey(prefix, claimID, name string) (key, clean string, err error) {
	clean, err = cleanName(name)
	if err != nil {
		return "", "", err
	}
	key, err = BuildKey(prefix, claimID, ulid.Make().String(), clean)
	if err != nil {
		return "", "", err
	}
	return key, clean, nil
}
