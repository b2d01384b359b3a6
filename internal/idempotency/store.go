// Package idempotency records the outcome of requests carrying an Idempotency-Key,
// so that a retried request replays the first response instead of running twice.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// ErrRecordNotFound is returned when a record to update does not exist or has expired.
var ErrRecordNotFound = errors.New("idempotency record not found")

// Record is the state kept for one idempotency key.
type Record[T any] struct {
	Key       string
	Status    string
	Response  T
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// Store keeps idempotency records in memory until their TTL runs out.
type Store[T any] struct {
	mu        sync.Mutex
	records   map[string]*Record[T]
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

// NewStore returns a Store whose records expire ttlWindow after creation.
func NewStore[T any](ttlWindow time.Duration) *Store[T] {
	return &Store[T]{
		records:   make(map[string]*Record[T]),
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// CreateIfNotExists creates a record with status IN_PROGRESS if the key is free.
// A key is free when it has no record, its record expired, or its last attempt failed.
// Returns false if a live record already exists; the caller should Get it to inspect.
func (s *Store[T]) CreateIfNotExists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("idempotency key must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	s.evictExpired(now)
	if rec, ok := s.records[key]; ok && rec.Status != StatusFailed {
		return false, nil
	}
	s.records[key] = &Record[T]{
		Key:       key,
		Status:    StatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttlWindow),
	}
	return true, nil
}

// Get retrieves a copy of the record for key. If not found or expired, returns nil.
func (s *Store[T]) Get(_ context.Context, key string) *Record[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok || !s.nowFunc().Before(rec.ExpiresAt) {
		return nil
	}
	cp := *rec
	return &cp
}

// MarkDone stores the response and sets the status to DONE.
func (s *Store[T]) MarkDone(_ context.Context, key string, response T) error {
	return s.update(key, func(rec *Record[T]) {
		rec.Status = StatusDone
		rec.Response = response
	})
}

// MarkFailed sets the status to FAILED so the key may be retried.
func (s *Store[T]) MarkFailed(_ context.Context, key, note string) error {
	return s.update(key, func(rec *Record[T]) {
		rec.Status = StatusFailed
		rec.Note = note
	})
}

func (s *Store[T]) update(key string, fn func(*Record[T])) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	rec, ok := s.records[key]
	if !ok || !now.Before(rec.ExpiresAt) {
		return fmt.Errorf("key %q: %w", key, ErrRecordNotFound)
	}
	fn(rec)
	rec.UpdatedAt = now
	return nil
}

// evictExpired drops every record past its expiry. Callers hold s.mu.
func (s *Store[T]) evictExpired(now time.Time) {
	for key, rec := range s.records {
		if !now.Before(rec.ExpiresAt) {
			delete(s.records, key)
		}
	}
}
