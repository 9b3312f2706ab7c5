package inmemblob

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/kistconnect/portal/core"
)

// Store hands out fake pre-signed URLs under baseURL.
// An object exists once an upload was presigned for it, or after Put.
type Store struct {
	baseURL  string
	mutex    sync.RWMutex
	objects  map[string]bool
	policies map[string]core.UploadPolicy
}

var _ core.BlobStore = (*Store)(nil) // interface compliance check

func New(baseURL string) *Store {
	return &Store{
		baseURL:  baseURL,
		objects:  make(map[string]bool),
		policies: make(map[string]core.UploadPolicy),
	}
}

// Put marks key as uploaded.
func (s *Store) Put(key string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.objects[key] = true
}

// Policy returns the upload policy presigned for key.
func (s *Store) Policy(key string) (core.UploadPolicy, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	p, ok := s.policies[key]
	return p, ok
}

func (s *Store) PresignedUpload(
	_ context.Context,
	key string,
	policy core.UploadPolicy,
	expiry time.Duration,
) (core.PresignedUpload, error) {
	s.mutex.Lock()
	s.objects[key] = true
	s.policies[key] = policy
	s.mutex.Unlock()

	return core.PresignedUpload{
		URL: s.url("POST", "", expiry),
		FormData: map[string]string{
			"key":          key,
			"Content-Type": policy.ContentType,
			"max-size":     strconv.FormatInt(policy.MaxSize, 10),
		},
	}, nil
}

func (s *Store) PresignedGetURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.objects[key] {
		return "", core.ErrObjectNotFound
	}
	return s.url("GET", key, expiry), nil
}

func (s *Store) url(method, key string, expiry time.Duration) string {
	q := make(url.Values)
	q.Set("method", method)
	q.Set("expires", fmt.Sprintf("%d", int64(expiry.Seconds())))
	return fmt.Sprintf("%s/%s?%s", s.baseURL, url.PathEscape(key), q.Encode())
}
