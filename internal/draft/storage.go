package draft

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mohamadtout/therapy-platform-sub003/pkg/kv"
)

// FileStorage keeps each cart as a JSON file under dir, the portal's stand-in
// for browser local storage. Keys are hashed into file names so an email or
// session id never appears on disk.
type FileStorage struct {
	dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create draft dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (f *FileStorage) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (f *FileStorage) Write(_ context.Context, key string, data []byte) error {
	return os.WriteFile(f.path(key), data, 0o644)
}

func (f *FileStorage) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(f.dir, fmt.Sprintf("cart-%x.json", sum[:8]))
}

// MemoryStorage is the in-memory implementation tests substitute in.
type MemoryStorage struct {
	mu    sync.Mutex
	carts map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: make(map[string][]byte)}
}

func (m *MemoryStorage) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.carts[key], nil
}

func (m *MemoryStorage) Write(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[key] = append([]byte(nil), data...)
	return nil
}

// KVStorage stores carts in the shared kv store, used when Redis is
// configured so carts survive portal restarts.
type KVStorage struct {
	store kv.Store
	ttl   time.Duration
}

func NewKVStorage(store kv.Store) *KVStorage {
	return &KVStorage{store: store}
}

func (k *KVStorage) Read(ctx context.Context, key string) ([]byte, error) {
	value, err := k.store.Get(ctx, "draft:"+key)
	if err == kv.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (k *KVStorage) Write(ctx context.Context, key string, data []byte) error {
	return k.store.Set(ctx, "draft:"+key, string(data), k.ttl)
}
