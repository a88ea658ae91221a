package enquiries

import "context"

type Repo interface {
	Create(ctx context.Context, enquiry *Enquiry) error
	Get(ctx context.Context, id string) (*Enquiry, error)
	List(ctx context.Context, offset, limit int) ([]*Enquiry, error)
	Update(ctx context.Context, enquiry *Enquiry) error
	Delete(ctx context.Context, id string) (bool, error)
}
