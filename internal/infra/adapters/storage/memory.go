package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"dreambees-video-pipeline/internal/domain"
	"dreambees-video-pipeline/internal/domain/ports/adapter"
)

var _ adapter.ObjectStorage = (*MemoryStorage)(nil)

type object struct {
	body         []byte
	contentType  string
	lastModified time.Time
}

// MemoryStorage is a map-backed ObjectStorage for dev runs and tests.
// Signed URLs are fake but carry the key so flows remain traceable.
type MemoryStorage struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]object
}

func NewMemoryStorage(bucket string) *MemoryStorage {
	return &MemoryStorage{bucket: bucket, objects: make(map[string]object)}
}

func (s *MemoryStorage) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(body))
	copy(cp, body)
	s.objects[key] = object{body: cp, contentType: contentType, lastModified: time.Now()}
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := make([]byte, len(o.body))
	copy(cp, o.body)
	return cp, nil
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MemoryStorage) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *MemoryStorage) List(ctx context.Context, prefix string) ([]adapter.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []adapter.ObjectInfo
	for k, o := range s.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, adapter.ObjectInfo{Key: k, Size: int64(len(o.body)), LastModified: o.lastModified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MemoryStorage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[key]; !ok {
		return "", domain.ErrNotFound
	}
	expires := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s?expires=%d&signature=dev", s.bucket, key, expires), nil
}
