package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Zenoooe/ai-crm/internal/sales"
)

// ErrCustomerNotFound indicates the customer id does not exist.
var ErrCustomerNotFound = errors.New("customer not found")

// CustomerStore supplies the customer context the AI service reads. The
// schema belongs to the CRM; this package only queries it.
type CustomerStore interface {
	Customer(ctx context.Context, id int64) (sales.CustomerSnapshot, error)
	// RecentInteractions returns at most limit interactions in chronological
	// order, ending with the newest.
	RecentInteractions(ctx context.Context, customerID int64, limit int) ([]sales.Interaction, error)
}

// MemoryStore is an in-process CustomerStore used when no database is
// configured and in tests.
type MemoryStore struct {
	mu           sync.RWMutex
	customers    map[int64]sales.CustomerSnapshot
	interactions map[int64][]sales.Interaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers:    make(map[int64]sales.CustomerSnapshot),
		interactions: make(map[int64][]sales.Interaction),
	}
}

// PutCustomer inserts or replaces a customer.
func (s *MemoryStore) PutCustomer(c sales.CustomerSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
}

// AddInteraction records an interaction for a customer.
func (s *MemoryStore) AddInteraction(customerID int64, in sales.Interaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.interactions[customerID], in)
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	s.interactions[customerID] = list
}

func (s *MemoryStore) Customer(_ context.Context, id int64) (sales.CustomerSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return sales.CustomerSnapshot{}, ErrCustomerNotFound
	}
	return c, nil
}

func (s *MemoryStore) RecentInteractions(_ context.Context, customerID int64, limit int) ([]sales.Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.customers[customerID]; !ok {
		return nil, ErrCustomerNotFound
	}

	list := s.interactions[customerID]
	if limit > 0 && len(list) > limit {
		list = list[len(list)-limit:]
	}
	out := make([]sales.Interaction, len(list))
	copy(out, list)
	return out, nil
}
