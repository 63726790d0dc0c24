package domain

import (
	"time"

	"github.com/google/uuid"
)

type Property struct {
	ID        uuid.UUID
	Title     string
	Location  string
	Address   string
	Available bool
	CreatedAt time.Time
}

func (p *Property) IsAvailable() bool {
	return p.Available
}
