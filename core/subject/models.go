package subject

import (
	"strings"
	"time"
)

const DefaultColor = "#6B46C1"

// Subject is the academic topic a question belongs to.
type Subject struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Position    int       `json:"position"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

type QueryFilter struct {
	Search   string `query:"search"`
	IsActive string `query:"is_active"` // "", "true" or "false"
}

func (qf *QueryFilter) Clean() {
	qf.Search = strings.TrimSpace(qf.Search)
	qf.IsActive = strings.ToLower(strings.TrimSpace(qf.IsActive))
}
