package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/google/uuid"
)

// Upload is one file handed in by the transport layer.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Store persists uploaded media and returns opaque URLs. The rest of the
// system never interprets the URLs, so backends are interchangeable.
type Store interface {
	Store(ctx context.Context, upload Upload) (string, error)
}

// LocalStore writes uploads to a directory and serves them by path. It backs
// dev deployments; production swaps in an object storage implementation.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore builds a filesystem-backed store rooted at dir.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating upload dir")
	}
	return &LocalStore{dir: dir, baseURL: baseURL}, nil
}

func (s *LocalStore) Store(_ context.Context, upload Upload) (string, error) {
	name := fmt.Sprintf("%s%s", uuid.New(), filepath.Ext(upload.Name))
	if err := os.WriteFile(filepath.Join(s.dir, name), upload.Data, 0o644); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing upload")
	}
	return s.baseURL + "/" + name, nil
}
