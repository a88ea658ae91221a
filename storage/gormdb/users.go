package gormdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/jrsteele09/go-enquiry-service/users"
)

var _ users.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return users.ErrUsernameTaken
		}
		return errors.Wrap(err, "[UserRepo.Create]")
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, id string) (*users.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepo) first(ctx context.Context, query string, arg string) (*users.User, error) {
	var user users.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, users.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "[UserRepo.first]")
	}
	return &user, nil
}

func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]*users.User, error) {
	list := []*users.User{}
	if err := page(r.db.WithContext(ctx).Order("created_at, id"), offset, limit).Find(&list).Error; err != nil {
		return nil, errors.Wrap(err, "[UserRepo.List]")
	}
	return list, nil
}

// Update writes every mutable column of an existing user.
func (r *UserRepo) Update(ctx context.Context, user *users.User) error {
	res := r.db.WithContext(ctx).Model(user).Select("*").Omit("id", "created_at").Updates(user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return users.ErrUsernameTaken
		}
		return errors.Wrap(res.Error, "[UserRepo.Update]")
	}
	if res.RowsAffected == 0 {
		return users.ErrUserNotFound
	}
	stored, err := r.Get(ctx, user.ID)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&users.User{}, "id = ?", id)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "[UserRepo.Delete]")
	}
	return res.RowsAffected > 0, nil
}
