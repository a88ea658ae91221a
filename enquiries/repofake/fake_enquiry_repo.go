package fakeenquiryrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jrsteele09/go-enquiry-service/enquiries"
)

var _ enquiries.Repo = (*FakeEnquiryRepo)(nil)

type FakeEnquiryRepo struct {
	enquiries map[string]*enquiries.Enquiry
	lock      sync.RWMutex
}

func NewFakeEnquiryRepo() *FakeEnquiryRepo {
	return &FakeEnquiryRepo{enquiries: make(map[string]*enquiries.Enquiry)}
}

func (r *FakeEnquiryRepo) Create(_ context.Context, e *enquiries.Enquiry) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	stored := *e
	r.enquiries[e.ID] = &stored
	return nil
}

func (r *FakeEnquiryRepo) Get(_ context.Context, id string) (*enquiries.Enquiry, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	e, ok := r.enquiries[id]
	if !ok {
		return nil, enquiries.ErrEnquiryNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *FakeEnquiryRepo) List(_ context.Context, offset, limit int) ([]*enquiries.Enquiry, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]*enquiries.Enquiry, 0, len(r.enquiries))
	for _, e := range r.enquiries {
		cp := *e
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt) ||
			(list[i].CreatedAt.Equal(list[j].CreatedAt) && list[i].ID < list[j].ID)
	})
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []*enquiries.Enquiry{}, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r *FakeEnquiryRepo) Update(_ context.Context, e *enquiries.Enquiry) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	existing, ok := r.enquiries[e.ID]
	if !ok {
		return enquiries.ErrEnquiryNotFound
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	stored := *e
	r.enquiries[e.ID] = &stored
	return nil
}

func (r *FakeEnquiryRepo) Delete(_ context.Context, id string) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.enquiries[id]; !ok {
		return false, nil
	}
	delete(r.enquiries, id)
	return true, nil
}
