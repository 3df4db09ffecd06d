package storage

import (
	"context"
	"net/url"
	"sort"
	"sync"
	"time"

	quotationapp "github.com/rental/backoffice/internal/application/quotation"
)

var _ quotationapp.ArchiveStorage = (*MemoryArchive)(nil)

// Object is an archived document held by MemoryArchive
type Object struct {
	ContentType string
	Body        []byte
}

// MemoryArchive keeps archived documents in the process. Meant for local
// development and tests; nothing is ever evicted.
type MemoryArchive struct {
	mu      sync.RWMutex
	objects map[string]Object
	baseURL string
}

// NewMemoryArchive creates an empty archive whose URLs start with baseURL
func NewMemoryArchive(baseURL string) *MemoryArchive {
	if baseURL == "" {
		baseURL = "memory://archive"
	}
	return &MemoryArchive{objects: make(map[string]Object), baseURL: baseURL}
}

// PutObject stores a copy of body
func (a *MemoryArchive) PutObject(_ context.Context, key, contentType string, body []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[key] = Object{ContentType: contentType, Body: append([]byte(nil), body...)}
	return nil
}

// GenerateDownloadURL returns a fake URL carrying the expiry
func (a *MemoryArchive) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrEmptyKey
	}
	expiresAt := time.Now().Add(expiresIn)
	q := url.Values{"expires": {expiresAt.UTC().Format(time.RFC3339)}}
	return a.baseURL + "/" + key + "?" + q.Encode(), expiresAt, nil
}

// Get returns an archived object
func (a *MemoryArchive) Get(key string) (Object, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	o, ok := a.objects[key]
	return o, ok
}

// Keys returns the archived keys in order
func (a *MemoryArchive) Keys() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	keys := make([]string, 0, len(a.objects))
	for k := range a.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
