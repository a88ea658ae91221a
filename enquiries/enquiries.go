package enquiries

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
	"github.com/jrsteele09/go-enquiry-service/internal/utils"
)

var ErrEnquiryNotFound = apperrors.Wrapf(apperrors.ErrNotFound, "enquiry")

// Column limits.
const (
	MaxNameLength    = 100
	MaxCountryLength = 100
	MaxEmailLength   = 100
	MaxSubjectLength = 200
	MaxBodyLength    = 400
)

// Enquiry is a contact request submitted through the public site.
type Enquiry struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Country   string    `json:"country" gorm:"size:100;not null"`
	Email     string    `json:"email" gorm:"size:100;not null"`
	Subject   string    `json:"subject" gorm:"size:200;not null"`
	Body      string    `json:"body" gorm:"size:400;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Update struct {
	Name    *string `json:"name"`
	Country *string `json:"country"`
	Email   *string `json:"email"`
	Subject *string `json:"subject"`
	Body    *string `json:"body"`
}

func (e *Enquiry) Validate() error {
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"name", e.Name, MaxNameLength},
		{"country", e.Country, MaxCountryLength},
		{"email", e.Email, MaxEmailLength},
		{"subject", e.Subject, MaxSubjectLength},
		{"body", e.Body, MaxBodyLength},
	}
	for _, c := range checks {
		if strings.TrimSpace(c.value) == "" {
			return invalid("%s is required", c.field)
		}
		if len(c.value) > c.max {
			return invalid("%s must be at most %d characters", c.field, c.max)
		}
	}
	return nil
}

// Apply merges a partial update and validates the result. On failure the
// enquiry is left unchanged.
func (e *Enquiry) Apply(upd Update) error {
	next := *e
	utils.Apply(&next.Name, upd.Name)
	utils.Apply(&next.Country, upd.Country)
	utils.Apply(&next.Email, upd.Email)
	utils.Apply(&next.Subject, upd.Subject)
	utils.Apply(&next.Body, upd.Body)
	if err := next.Validate(); err != nil {
		return err
	}
	*e = next
	return nil
}

func invalid(format string, args ...any) error {
	return apperrors.Mark(fmt.Errorf(format, args...), apperrors.ErrInvalidRequest)
}
