// Package memory keeps properties and bookings in process memory. The store
// applies the same no-overlap rule as the Postgres exclusion constraint,
// checked and written under one lock.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/property_booking/internal/core/domain"
)

type Store struct {
	mu         sync.RWMutex
	properties map[uuid.UUID]domain.Property
	bookings   map[uuid.UUID]domain.Booking
}

func NewStore() *Store {
	return &Store{
		properties: make(map[uuid.UUID]domain.Property),
		bookings:   make(map[uuid.UUID]domain.Booking),
	}
}

// PutProperty adds or replaces a property in the catalog.
func (s *Store) PutProperty(p domain.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.properties[p.ID] = p
}
