// Package repository implements vault entry persistence across four backends:
// a file-backed JSON document, embedded sqlite, postgres, and mongodb. All
// backends enforce uniqueness on (category, value_hash) and (category, token)
// so concurrent tokenization of the same value leaves exactly one entry.
package repository

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	apperrors "github.com/sivd/piivault/internal/errors"
	"github.com/sivd/piivault/internal/vault/domain"
)

// fileDocument is the persisted layout:
// {"tokens": {"<token>": {"v": payload, "m": {...}, "createdAt": ISO8601}}}.
type fileDocument struct {
	Tokens map[string]fileEntry `json:"tokens"`
}

type fileEntry struct {
	Value     string       `json:"v"`
	Metadata  fileMetadata `json:"m"`
	CreatedAt string       `json:"createdAt"`
}

type fileMetadata struct {
	Category  string `json:"category"`
	ValueHash string `json:"value_hash"`
}

// FileRepository persists vault entries in a single JSON document.
//
// The read-modify-write cycle is guarded by an in-process mutex, which makes
// it safe for concurrent goroutines but NOT for multiple writer processes
// sharing the same file. That is a known limitation of this backend; use the
// sqlite, postgres, or mongo backend when more than one process writes.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileRepository creates a FileRepository, initializing the document on
// disk when it does not exist yet.
func NewFileRepository(path string) (*FileRepository, error) {
	repo := &FileRepository{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := repo.write(&fileDocument{Tokens: map[string]fileEntry{}}); err != nil {
			return nil, err
		}
	}

	return repo, nil
}

// Insert adds an entry unless its (category, value_hash) or (category, token)
// already exists, in which case the call is a no-op.
func (r *FileRepository) Insert(ctx context.Context, entry *domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}

	for token, existing := range doc.Tokens {
		if existing.Metadata.Category != entry.Category.String() {
			continue
		}
		if existing.Metadata.ValueHash == entry.ValueHash || token == entry.Token {
			return nil
		}
	}

	doc.Tokens[entry.Token] = fileEntry{
		Value: entry.Payload,
		Metadata: fileMetadata{
			Category:  entry.Category.String(),
			ValueHash: entry.ValueHash,
		},
		CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	return r.write(doc)
}

// GetByToken returns the entry stored under a (category, token) pair.
func (r *FileRepository) GetByToken(
	ctx context.Context,
	category domain.Category,
	token string,
) (*domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return nil, err
	}

	stored, ok := doc.Tokens[token]
	if !ok || stored.Metadata.Category != category.String() {
		return nil, domain.ErrEntryNotFound
	}

	return decodeFileEntry(token, stored)
}

// GetTokenByValueHash scans the document for the canonical token of a
// (category, value_hash) pair.
func (r *FileRepository) GetTokenByValueHash(
	ctx context.Context,
	category domain.Category,
	valueHash string,
) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return "", err
	}

	for token, stored := range doc.Tokens {
		if stored.Metadata.Category == category.String() && stored.Metadata.ValueHash == valueHash {
			return token, nil
		}
	}

	return "", domain.ErrEntryNotFound
}

// ListAll returns up to limit entries, newest first.
func (r *FileRepository) ListAll(ctx context.Context, limit int) ([]*domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.Entry, 0, len(doc.Tokens))
	for token, stored := range doc.Tokens {
		entry, err := decodeFileEntry(token, stored)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

func (r *FileRepository) read() (*fileDocument, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to read vault file")
	}

	doc := &fileDocument{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "vault file is not valid JSON")
	}

	if doc.Tokens == nil {
		doc.Tokens = map[string]fileEntry{}
	}

	return doc, nil
}

func (r *FileRepository) write(doc *fileDocument) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal vault document")
	}

	if err := os.WriteFile(r.path, raw, 0o600); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to write vault file")
	}

	return nil
}

func decodeFileEntry(token string, stored fileEntry) (*domain.Entry, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, stored.CreatedAt)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid createdAt in vault file")
	}

	return &domain.Entry{
		Category:  domain.Category(stored.Metadata.Category),
		ValueHash: stored.Metadata.ValueHash,
		Token:     token,
		Payload:   stored.Value,
		CreatedAt: createdAt,
	}, nil
}
