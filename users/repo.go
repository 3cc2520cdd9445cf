package users

import "context"

// Repo persists users. Lookups of unknown ids or usernames return errors.ErrUserNotFound,
// duplicate usernames or emails return errors.ErrConflict.
type Repo interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	// ListByTenants returns the distinct users that are members of at least one of tenantIDs.
	ListByTenants(ctx context.Context, tenantIDs []string) ([]*User, error)
	SetActive(ctx context.Context, id string, active bool) error
	Count(ctx context.Context) (int, error)
}
