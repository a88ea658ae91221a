package gormdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/jrsteele09/go-enquiry-service/enquiries"
)

var _ enquiries.Repo = (*EnquiryRepo)(nil)

type EnquiryRepo struct {
	db *gorm.DB
}

func NewEnquiryRepo(db *gorm.DB) *EnquiryRepo {
	return &EnquiryRepo{db: db}
}

func (r *EnquiryRepo) Create(ctx context.Context, enquiry *enquiries.Enquiry) error {
	if enquiry.ID == "" {
		enquiry.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(enquiry).Error; err != nil {
		return errors.Wrap(err, "[EnquiryRepo.Create]")
	}
	return nil
}

func (r *EnquiryRepo) Get(ctx context.Context, id string) (*enquiries.Enquiry, error) {
	var enquiry enquiries.Enquiry
	if err := r.db.WithContext(ctx).First(&enquiry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, enquiries.ErrEnquiryNotFound
		}
		return nil, errors.Wrap(err, "[EnquiryRepo.Get]")
	}
	return &enquiry, nil
}

func (r *EnquiryRepo) List(ctx context.Context, offset, limit int) ([]*enquiries.Enquiry, error) {
	list := []*enquiries.Enquiry{}
	if err := page(r.db.WithContext(ctx).Order("created_at, id"), offset, limit).Find(&list).Error; err != nil {
		return nil, errors.Wrap(err, "[EnquiryRepo.List]")
	}
	return list, nil
}

func (r *EnquiryRepo) Update(ctx context.Context, enquiry *enquiries.Enquiry) error {
	res := r.db.WithContext(ctx).Model(enquiry).Select("*").Omit("id", "created_at").Updates(enquiry)
	if res.Error != nil {
		return errors.Wrap(res.Error, "[EnquiryRepo.Update]")
	}
	if res.RowsAffected == 0 {
		return enquiries.ErrEnquiryNotFound
	}
	stored, err := r.Get(ctx, enquiry.ID)
	if err != nil {
		return err
	}
	*enquiry = *stored
	return nil
}

func (r *EnquiryRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&enquiries.Enquiry{}, "id = ?", id)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "[EnquiryRepo.Delete]")
	}
	return res.RowsAffected > 0, nil
}
