package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/user"
)

type userRepository struct {
	db *table[user.User]
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedUsers ...user.User) error {
	excluded := make(map[string]struct{}, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = struct{}{}
	}
	n := repo.db.count(func(u user.User) bool {
		_, skip := excluded[u.ID]
		return !skip && strings.EqualFold(u.Email, email)
	})
	if n > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	if err := repo.db.insert(usr); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	usr, err := repo.db.get(id)
	if err != nil {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	usr, err := repo.db.first(func(u user.User) bool { return strings.EqualFold(u.Email, email) })
	if err != nil {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) FilterUsers(_ context.Context, filter user.QueryFilter, orderings ...core.DBOrdering) ([]user.User, error) {
	search := strings.ToLower(filter.Search)
	roles := make(map[string]struct{}, len(filter.Roles))
	for _, r := range filter.Roles {
		roles[r] = struct{}{}
	}

	users := repo.db.filter(func(u user.User) bool {
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) && !strings.Contains(strings.ToLower(u.Email), search) {
			return false
		}
		if len(roles) > 0 {
			if _, ok := roles[u.Role]; !ok {
				return false
			}
		}
		if filter.Status != "" && u.Status != filter.Status {
			return false
		}
		if !matches(filter.BranchID, u.BranchID) {
			return false
		}
		if !filter.CreatedFrom.IsZero() && u.CreatedAt.Before(filter.CreatedFrom) {
			return false
		}
		if !filter.CreatedTo.IsZero() && u.CreatedAt.After(filter.CreatedTo) {
			return false
		}
		return true
	})

	if len(orderings) > 0 {
		sort.SliceStable(users, func(i, j int) bool {
			for _, ord := range orderings {
				a, b := userField(users[i], ord.Field), userField(users[j], ord.Field)
				if a == b {
					continue
				}
				if ord.Ascending {
					return a < b
				}
				return a > b
			}
			return false
		})
	}
	return users, nil
}

// userField returns the sortable value of the column col.
func userField(u user.User, col string) string {
	switch col {
	case "name":
		return strings.ToLower(u.Name)
	case "email":
		return u.Email
	case "role":
		return u.Role
	case "status":
		return string(u.Status)
	default:
		return u.CreatedAt.Format("2006-01-02T15:04:05.000000000")
	}
}

func (repo *userRepository) CountUsers(_ context.Context) (int, error) {
	return repo.db.count(nil), nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	if err := repo.db.replace(usr); err != nil {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...string) error {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	repo.db.deleteWhere(func(u user.User) bool {
		_, ok := set[u.ID]
		return ok
	})
	return nil
}
