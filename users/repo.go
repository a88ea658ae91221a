package users

import "context"

// Repo is the identity store. Implementations return ErrUserNotFound for
// missing users and ErrUsernameTaken when a username is reused.
type Repo interface {
	Create(ctx context.Context, user *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) (bool, error)
}
