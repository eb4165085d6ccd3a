package favorites

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Sternrassler/catalog-client/pkg/catalog"
	"github.com/shopspring/decimal"
)

// fakeCatalog answers from a fixed map; ids in failing return an error.
type fakeCatalog struct {
	mu      sync.Mutex
	items   map[int]catalog.Item
	failing map[int]error
	calls   map[int]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		items:   make(map[int]catalog.Item),
		failing: make(map[int]error),
		calls:   make(map[int]int),
	}
}

func (f *fakeCatalog) add(id int, title string) {
	f.items[id] = catalog.Item{ID: id, Title: title, Price: decimal.NewFromInt(int64(id))}
}

func (f *fakeCatalog) GetByID(_ context.Context, id int) (*catalog.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++

	if err, ok := f.failing[id]; ok {
		return nil, err
	}
	item, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (f *fakeCatalog) Exists(ctx context.Context, id int) bool {
	item, err := f.GetByID(ctx, id)
	return err == nil && item != nil
}

type key struct {
	user    int64
	product int
}

// memoryStore is an in-memory Store.
type memoryStore struct {
	mu        sync.Mutex
	records   []Record
	deleteErr error
	deleted   []key
}

func (s *memoryStore) List(_ context.Context, userID int64) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Record
	for _, r := range s.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memoryStore) Add(_ context.Context, userID int64, productID int) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.UserID == userID && r.ProductID == productID {
			return Record{}, ErrAlreadyFavorite
		}
	}
	r := Record{UserID: userID, ProductID: productID, CreatedAt: time.Now()}
	s.records = append(s.records, r)
	return r, nil
}

func (s *memoryStore) Delete(_ context.Context, userID int64, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, key{userID, productID})
	for i, r := range s.records {
		if r.UserID == userID && r.ProductID == productID {
			s.records = append(s.records[:i], s.records[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memoryStore) Exists(_ context.Context, userID int64, productID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.UserID == userID && r.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) productIDs(userID int64) []int {
	records, _ := s.List(context.Background(), userID)
	ids := make([]int, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ProductID)
	}
	return ids
}

var errUpstream = errors.New("upstream unavailable")
