package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"

	"casedocs/internal/repository"
)

// ContentHash returns the hex SHA-1 of b. Used for duplicate detection only, not integrity.
func ContentHash(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

// Deduplicator answers whether a (content hash, source url) pair is already ingested.
type Deduplicator struct {
	docs repository.DocumentRepository
}

func NewDeduplicator(docs repository.DocumentRepository) Deduplicator {
	return Deduplicator{docs: docs}
}

// Exists propagates store errors; an error never means "not a duplicate".
func (d Deduplicator) Exists(ctx context.Context, hash, url string) (bool, error) {
	return d.docs.Exists(ctx, hash, url)
}
