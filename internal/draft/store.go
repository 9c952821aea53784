package draft

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mohamadtout/therapy-platform-sub003/pkg/logger"
)

// Item is one locally-cached selection in the advisory cart. Nothing here is
// validated against the server; the authoritative order lives upstream.
type Item struct {
	Type  string    `json:"type"`
	Name  string    `json:"name"`
	Price float64   `json:"price"`
	Date  time.Time `json:"date"`
}

// Storage is the persistence port for draft carts. Read returns (nil, nil)
// when no cart exists under the key.
type Storage interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

// Store keeps a best-effort local record of in-progress selections. It is
// deliberately forgiving: no dedup, no size bound, no expiry.
type Store struct {
	storage Storage
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Load reads the cart under the given key. A missing cart is an empty cart;
// a corrupt one is logged and treated as empty. Load never fails the caller.
func (s *Store) Load(ctx context.Context, key string) []Item {
	data, err := s.storage.Read(ctx, key)
	if err != nil {
		logger.WarnContext(ctx, "Failed to read draft cart", "error", err, "key", key)
		return []Item{}
	}
	if len(data) == 0 {
		return []Item{}
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		logger.WarnContext(ctx, "Discarding corrupt draft cart", "error", err, "key", key)
		return []Item{}
	}
	return items
}

// Append reads the full list, adds the item and writes the list back.
func (s *Store) Append(ctx context.Context, key string, item Item) ([]Item, error) {
	items := append(s.Load(ctx, key), item)

	data, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Write(ctx, key, data); err != nil {
		return nil, err
	}
	return items, nil
}
