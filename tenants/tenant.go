package tenants

import (
	"strings"
	"time"
)

// Tenant is an isolated data silo. Every domain resource belongs to exactly one tenant.
type Tenant struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Normalise trims surrounding whitespace from the tenant name.
func (t *Tenant) Normalise() {
	t.Name = strings.TrimSpace(t.Name)
	t.Description = strings.TrimSpace(t.Description)
}
