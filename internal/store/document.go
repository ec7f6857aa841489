package store

import (
	"context"
	"errors"
	"fmt"

	"propstack/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
)

// DocumentStore persists the whole taxonomy document under one key.
type DocumentStore interface {
	// Load returns the persisted document, seeding it from the original on first use.
	Load(ctx context.Context) (*domain.Node, error)
	// Save overwrites the persisted document.
	Save(ctx context.Context, root *domain.Node) error
	// Reset overwrites the persisted document with the original one.
	Reset(ctx context.Context) error
	// Clear removes the persisted document; the next Load seeds it again.
	Clear(ctx context.Context) error
	// Original returns a copy of the seed document.
	Original() *domain.Node
}

type documentStore struct {
	kv       KeyValueStore
	key      string
	original *domain.Node
	seed     []byte
}

func NewDocumentStore(kv KeyValueStore, key string, original *domain.Node) (DocumentStore, error) {
	if key == "" {
		key = DefaultKey
	}

	seed, err := domain.EncodeDocument(original)
	if err != nil {
		return nil, fmt.Errorf("failed to encode original document: %w", err)
	}

	return &documentStore{
		kv:       kv,
		key:      key,
		original: original.Clone(),
		seed:     seed,
	}, nil
}

func (s *documentStore) Load(ctx context.Context) (*domain.Node, error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrKeyNotFound) {
		log.Infof("🌱 Seeding %s from the original taxonomy", s.key)
		if err := s.kv.Set(ctx, s.key, s.seed); err != nil {
			return nil, fmt.Errorf("%w: failed to seed %s: %w", ErrPersistenceUnavailable, s.key, err)
		}
		return s.original.Clone(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrPersistenceUnavailable, s.key, err)
	}

	root, err := domain.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.key, err)
	}
	return root, nil
}

func (s *documentStore) Save(ctx context.Context, root *domain.Node) error {
	data, err := domain.EncodeDocument(root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", ErrPersistenceUnavailable, s.key, err)
	}
	return nil
}

func (s *documentStore) Reset(ctx context.Context) error {
	if err := s.kv.Set(ctx, s.key, s.seed); err != nil {
		return fmt.Errorf("%w: failed to reset %s: %w", ErrPersistenceUnavailable, s.key, err)
	}
	log.Warnf("♻️ Catalog document %s reset to the original taxonomy", s.key)
	return nil
}

func (s *documentStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("%w: failed to clear %s: %w", ErrPersistenceUnavailable, s.key, err)
	}
	return nil
}

func (s *documentStore) Original() *domain.Node {
	return s.original.Clone()
}
