package gormdb

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jrsteele09/go-enquiry-service/clients"
)

var _ clients.Repo = (*ClientRepo)(nil)

type ClientRepo struct {
	db *gorm.DB
}

func NewClientRepo(db *gorm.DB) *ClientRepo {
	return &ClientRepo{db: db}
}

// Upsert inserts the client or replaces the registration with the same id.
func (r *ClientRepo) Upsert(ctx context.Context, client *clients.Client) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(client).Error
	return errors.Wrap(err, "[ClientRepo.Upsert]")
}

func (r *ClientRepo) Get(ctx context.Context, clientID string) (*clients.Client, error) {
	var client clients.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clients.ErrClientNotFound
		}
		return nil, errors.Wrap(err, "[ClientRepo.Get]")
	}
	return &client, nil
}

func (r *ClientRepo) List(ctx context.Context) ([]*clients.Client, error) {
	list := []*clients.Client{}
	if err := r.db.WithContext(ctx).Order("id").Find(&list).Error; err != nil {
		return nil, errors.Wrap(err, "[ClientRepo.List]")
	}
	return list, nil
}

func (r *ClientRepo) Delete(ctx context.Context, clientID string) error {
	err := r.db.WithContext(ctx).Delete(&clients.Client{}, "id = ?", clientID).Error
	return errors.Wrap(err, "[ClientRepo.Delete]")
}
