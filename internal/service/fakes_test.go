package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"blogcore/internal/kvstore"
	"blogcore/internal/messaging"
	"blogcore/internal/models"
	"blogcore/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

var errUnavailable = errors.New("object store unavailable")

type storedObject struct {
	data        []byte
	contentType string
	metadata    map[string]string
}

// memoryStorage is an in-memory storage.Storage.
type memoryStorage struct {
	mu       sync.Mutex
	objects  map[string]storedObject
	failPut  bool
	failSign bool
	removed  []string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string]storedObject{}}
}

func (m *memoryStorage) EnsureBucket(context.Context) error { return nil }

func (m *memoryStorage) PutObject(_ context.Context, name string, data []byte, contentType string, metadata map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return errUnavailable
	}
	m.objects[name] = storedObject{data: data, contentType: contentType, metadata: metadata}
	return nil
}

func (m *memoryStorage) SignedURL(_ context.Context, name string, expiry time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSign {
		return "", errUnavailable
	}
	if _, ok := m.objects[name]; !ok {
		return "", errors.New("object not found")
	}
	return "https://media.test/" + name + "?expires=" + expiry.String(), nil
}

func (m *memoryStorage) RemoveObject(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, name)
	m.removed = append(m.removed, name)
	return nil
}

func (m *memoryStorage) has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[name]
	return ok
}

func (m *memoryStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type recordingPublisher struct {
	messaging.NoopPublisher
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) record(subject string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) PostCreated(context.Context, *models.Post) error {
	return p.record(messaging.SubjectPostCreated)
}

func (p *recordingPublisher) PostDeleted(context.Context, string) error {
	return p.record(messaging.SubjectPostDeleted)
}

func (p *recordingPublisher) CommentAdded(context.Context, string, *models.Comment) error {
	return p.record(messaging.SubjectCommentAdded)
}

func (p *recordingPublisher) ReplyAdded(context.Context, string, string, *models.Reply) error {
	return p.record(messaging.SubjectReplyAdded)
}

type testEnv struct {
	repo    *repository.Repository
	storage *memoryStorage
	media   MediaService
	events  *recordingPublisher
	mr      *miniredis.Miniredis
	logger  *log.Logger
}

func setupEnv(t *testing.T) *testEnv {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := log.New(io.Discard)
	storage := newMemoryStorage()

	return &testEnv{
		repo:    repository.NewRepository(kvstore.NewRedisStore(client), logger),
		storage: storage,
		media:   NewMediaService(storage, time.Hour, logger),
		events:  &recordingPublisher{},
		mr:      mr,
		logger:  logger,
	}
}

func mustParseDataURI(t *testing.T, payload string) *DataURI {
	t.Helper()
	uri, err := ParseDataURI(payload)
	if err != nil {
		t.Fatalf("parse data uri: %v", err)
	}
	return uri
}

// pngDataURI is a 1x1 PNG.
const pngDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="
