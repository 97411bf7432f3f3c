package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/file_drive/internal/db"
	"github.com/Skotchmaster/file_drive/internal/es"
	"github.com/Skotchmaster/file_drive/internal/hash"
	"github.com/Skotchmaster/file_drive/internal/repo"
	"github.com/Skotchmaster/file_drive/internal/tokens"
)

var fastParams = hash.Params{N: 1024, R: 8, P: 1, KeyLen: 64, SaltLen: 9}

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	gdb, err := db.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	return &repo.GormRepo{DB: gdb}
}

func newTestHasher(t *testing.T) *hash.Pool {
	t.Helper()
	s, err := hash.NewScrypt(fastParams)
	require.NoError(t, err)
	return hash.NewPool(s, 4)
}

func newTestIssuer(t *testing.T, secret string, ttl time.Duration) *tokens.Issuer {
	t.Helper()
	iss, err := tokens.New(tokens.Config{
		Secret:   []byte(secret),
		TTL:      ttl,
		Issuer:   "file_drive",
		Audience: "file_drive",
	})
	require.NoError(t, err)
	return iss
}

func newTestAuth(t *testing.T, store CredentialStore) (*AuthService, *recordingPublisher) {
	t.Helper()
	events := &recordingPublisher{}
	return &AuthService{
		Users:         store,
		Hasher:        newTestHasher(t),
		AccessTokens:  newTestIssuer(t, "access-secret", 15*time.Minute),
		RefreshTokens: newTestIssuer(t, "refresh-secret", 7*24*time.Hour),
		Events:        events,
	}, events
}

type published struct {
	Topic string
	Key   string
	Event any
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) events() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.sent...)
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string]string
	lists   int
	failAll error
	gate    chan struct{}
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string]string{}}
}

func (f *fakeObjects) PresignPut(_ context.Context, key, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return "", f.failAll
	}
	f.objects[key] = contentType
	return "https://s3.test/files/" + key + "?X-Amz-Signature=put", nil
}

func (f *fakeObjects) PresignGet(_ context.Context, key string) (string, error) {
	if f.failAll != nil {
		return "", f.failAll
	}
	return "https://s3.test/files/" + key + "?X-Amz-Signature=get", nil
}

func (f *fakeObjects) List(ctx context.Context) ([]string, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.failAll != nil {
		return nil, f.failAll
	}
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	delete(f.objects, key)
	return nil
}

type fakeIndex struct {
	mu   sync.Mutex
	docs map[string]es.FileDoc
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[string]es.FileDoc{}}
}

func (f *fakeIndex) IndexFile(_ context.Context, doc es.FileDoc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeIndex) DeleteFile(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, query string, from, size int) (int64, []es.FileDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []es.FileDoc
	for _, d := range f.docs {
		if d.Filename == query {
			out = append(out, d)
		}
	}
	return int64(len(out)), out, nil
}

var errBackend = errors.New("backend down")
