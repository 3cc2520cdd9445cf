package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
	"github.com/jrsteele09/casnet-auth/users"
)

var _ users.Repo = (*userRepo)(nil)

type userRepo struct {
	s *Store
}

func (ur *userRepo) Create(_ context.Context, user *users.User) error {
	ur.s.lock.Lock()
	defer ur.s.lock.Unlock()

	if _, ok := ur.s.usernames[user.Username]; ok {
		return apperrors.Wrapf(apperrors.ErrConflict, "username %q", user.Username)
	}
	if _, ok := ur.s.emails[user.Email]; ok {
		return apperrors.Wrapf(apperrors.ErrConflict, "email %q", user.Email)
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := ur.s.nowFunc()
	user.CreatedAt, user.UpdatedAt = now, now

	stored := *user
	ur.s.users[user.ID] = &stored
	ur.s.usernames[user.Username] = user.ID
	ur.s.emails[user.Email] = user.ID
	return nil
}

func (ur *userRepo) Update(_ context.Context, user *users.User) error {
	ur.s.lock.Lock()
	defer ur.s.lock.Unlock()

	existing, ok := ur.s.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if id, ok := ur.s.usernames[user.Username]; ok && id != user.ID {
		return apperrors.Wrapf(apperrors.ErrConflict, "username %q", user.Username)
	}
	if id, ok := ur.s.emails[user.Email]; ok && id != user.ID {
		return apperrors.Wrapf(apperrors.ErrConflict, "email %q", user.Email)
	}

	delete(ur.s.usernames, existing.Username)
	delete(ur.s.emails, existing.Email)

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = ur.s.nowFunc()
	stored := *user
	ur.s.users[user.ID] = &stored
	ur.s.usernames[user.Username] = user.ID
	ur.s.emails[user.Email] = user.ID
	return nil
}

func (ur *userRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.s.lock.RLock()
	defer ur.s.lock.RUnlock()

	user, ok := ur.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	found := *user
	return &found, nil
}

func (ur *userRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	ur.s.lock.RLock()
	defer ur.s.lock.RUnlock()

	id, ok := ur.s.usernames[username]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	found := *ur.s.users[id]
	return &found, nil
}

func (ur *userRepo) List(_ context.Context) ([]*users.User, error) {
	ur.s.lock.RLock()
	defer ur.s.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.s.users))
	for _, u := range ur.s.users {
		found := *u
		userList = append(userList, &found)
	}
	sortUsers(userList)
	return userList, nil
}

func (ur *userRepo) ListByTenants(_ context.Context, tenantIDs []string) ([]*users.User, error) {
	ur.s.lock.RLock()
	defer ur.s.lock.RUnlock()

	userList := make([]*users.User, 0)
	for userID, tenantSet := range ur.s.members {
		for _, tenantID := range tenantIDs {
			if _, ok := tenantSet[tenantID]; ok {
				found := *ur.s.users[userID]
				userList = append(userList, &found)
				break
			}
		}
	}
	sortUsers(userList)
	return userList, nil
}

func (ur *userRepo) SetActive(_ context.Context, id string, active bool) error {
	ur.s.lock.Lock()
	defer ur.s.lock.Unlock()

	user, ok := ur.s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.IsActive = active
	user.UpdatedAt = ur.s.nowFunc()
	return nil
}

func (ur *userRepo) Count(_ context.Context) (int, error) {
	ur.s.lock.RLock()
	defer ur.s.lock.RUnlock()
	return len(ur.s.users), nil
}

func sortUsers(userList []*users.User) {
	sort.Slice(userList, func(i, j int) bool {
		return userList[i].Username < userList[j].Username
	})
}
