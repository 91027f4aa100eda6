package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zenoooe/ai-crm/internal/sales"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	s.PutCustomer(sales.CustomerSnapshot{ID: 7, Name: "王总", Company: "华信科技"})

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 5; i >= 0; i-- {
		s.AddInteraction(7, sales.Interaction{CreatedAt: base.Add(time.Duration(i) * time.Hour), Content: string(rune('a' + i))})
	}

	c, err := s.Customer(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "华信科技", c.Company)

	recent, err := s.RecentInteractions(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "d", recent[0].Content)
	assert.Equal(t, "f", recent[2].Content)

	all, err := s.RecentInteractions(context.Background(), 7, 0)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestMemoryStoreUnknownCustomer(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Customer(context.Background(), 1)
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	_, err = s.RecentInteractions(context.Background(), 1, 5)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}
