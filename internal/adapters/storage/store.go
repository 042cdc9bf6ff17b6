// Package storage persists the serialized application state under a key.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/AVSAkash/interview-assistant/pkg/logger"
	"github.com/AVSAkash/interview-assistant/pkg/metrics"
)

// Sentinel kinds for storage errors.
var (
	ErrNotFound       = errors.New("key not found")
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// RootKey is the fixed key the application state lives under.
const RootKey = "root"

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendS3     = "s3"
)

// Store reads and writes opaque blobs by key.
type Store interface {
	// Load returns ErrNotFound when nothing was saved under key.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Instrumented wraps a Store with latency metrics and error logging.
type Instrumented struct {
	next    Store
	backend string
	log     logger.Logger
}

// NewInstrumented wraps next, labelling metrics with backend.
func NewInstrumented(next Store, backend string, log logger.Logger) *Instrumented {
	if log == nil {
		log = logger.NewNop()
	}
	return &Instrumented{next: next, backend: backend, log: log}
}

// Close releases the wrapped store when it holds resources, such as the
// Redis connection pool. Backends without any are a no-op.
func (s *Instrumented) Close() error {
	if c, ok := s.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Load implements Store.
func (s *Instrumented) Load(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := s.next.Load(ctx, key)
	s.observe(ctx, "load", key, start, err)
	return data, err
}

// Save implements Store.
func (s *Instrumented) Save(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	err := s.next.Save(ctx, key, data)
	s.observe(ctx, "save", key, start, err)
	return err
}

func (s *Instrumented) observe(ctx context.Context, op, key string, start time.Time, err error) {
	latency := float64(time.Since(start).Microseconds()) / 1000
	switch {
	case err == nil:
		metrics.RecordStorageOperation(s.backend, op, "ok", latency)
	case errors.Is(err, ErrNotFound):
		metrics.RecordStorageOperation(s.backend, op, "not_found", latency)
	default:
		metrics.RecordStorageOperation(s.backend, op, "error", latency)
		metrics.RecordErrorByComponent("storage", op)
		s.log.Error(ctx, "storage operation failed",
			logger.String("backend", s.backend),
			logger.String("op", op),
			logger.String("key", key),
			logger.Error(err))
	}
}
