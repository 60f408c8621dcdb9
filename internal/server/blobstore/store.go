// Package blobstore keeps file bytes addressed by the SHA-1 of their content.
// Objects are laid out as <hash[0:2]>/<hash[2:4]>/<hash>.
package blobstore

import (
	"context"
	"errors"
	"fmt"
)

var ErrInvalidHash = errors.New("invalid content hash")

type Store interface {
	Put(ctx context.Context, hash string, data []byte) error
	Get(ctx context.Context, hash string) ([]byte, error)
	Exists(ctx context.Context, hash string) (bool, error)
}

// Key returns the object key for a content hash.
func Key(hash string) (string, error) {
	if !validHash(hash) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}
	return hash[0:2] + "/" + hash[2:4] + "/" + hash, nil
}

func validHash(hash string) bool {
	if len(hash) != 40 {
		return false
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
