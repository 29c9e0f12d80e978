package formfiles

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"lifeway-backend/internal/shared/storage/object"
	"lifeway-backend/internal/shared/telemetry"
	"lifeway-backend/internal/shared/util"
)

const keyPrefix = "forms/"

var (
	ErrInvalidEmail = errors.New("invalid email")
	ErrNotFound     = errors.New("form file not found")
)

// Document is the JSON stored per user.
type Document struct {
	Email     string         `json:"email"`
	FormData  map[string]any `json:"formData"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Store keeps one JSON document per email in an object store.
type Store struct {
	Objects object.ObjectStore
	locks   keyedMutex
}

// NewStore constructs a Store.
func NewStore(objects object.ObjectStore) *Store {
	return &Store{Objects: objects}
}

// Key returns the object key for email.
func Key(email string) (string, error) {
	name, err := util.SanitizeEmailKey(email)
	if err != nil {
		return "", ErrInvalidEmail
	}
	return keyPrefix + name + ".json", nil
}

// Save replaces the document for email. Writes to the same key are serialised.
func (s *Store) Save(ctx context.Context, email string, formData map[string]any) (string, error) {
	key, err := Key(email)
	if err != nil {
		return "", err
	}
	if formData == nil {
		formData = map[string]any{}
	}

	payload, err := json.MarshalIndent(Document{Email: email, FormData: formData, UpdatedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode form file: %w", err)
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	n, err := s.Objects.Put(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("store form file: %w", err)
	}
	telemetry.Info("formfiles.saved", map[string]any{"key": key, "bytes": n})
	return key, nil
}

// Get loads the document for email.
func (s *Store) Get(ctx context.Context, email string) (Document, error) {
	key, err := Key(email)
	if err != nil {
		return Document{}, err
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	rc, err := s.Objects.Get(ctx, key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	defer rc.Close()

	var doc Document
	if err := json.NewDecoder(rc).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode form file: %w", err)
	}
	return doc, nil
}

// keyedMutex hands out one mutex per key and drops it once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = map[string]*refMutex{}
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
