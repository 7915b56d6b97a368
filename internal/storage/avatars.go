package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AvatarStore saves uploaded avatar images and returns a public URL for
// the stored file. Image hosting is an external collaborator; callers only
// depend on this contract.
type AvatarStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

var ErrUnsupportedType = errors.New("unsupported image type")

const maxAvatarBytes = 5 << 20

// DiskStore writes avatars to a local directory served under urlPrefix.
type DiskStore struct {
	dir       string
	urlPrefix string
}

func NewDiskStore(dir, urlPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("avatar dir: %w", err)
	}
	return &DiskStore{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}, nil
}

func (s *DiskStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		return "", ErrUnsupportedType
	}

	// Stored name is random; the original filename never touches the
	// filesystem.
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}

	_, err = io.Copy(f, io.LimitReader(r, maxAvatarBytes))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}

	return s.urlPrefix + "/" + name, nil
}
