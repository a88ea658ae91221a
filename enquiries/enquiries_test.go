package enquiries_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-enquiry-service/enquiries"
	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
	"github.com/jrsteele09/go-enquiry-service/internal/utils"
)

func validEnquiry() enquiries.Enquiry {
	return enquiries.Enquiry{
		Name:    "Bob",
		Country: "NZ",
		Email:   "bob@example.com",
		Subject: "Opening hours",
		Body:    "When are you open on Sundays?",
	}
}

func TestValidate(t *testing.T) {
	e := validEnquiry()
	require.NoError(t, e.Validate())

	tests := []struct {
		name   string
		mutate func(*enquiries.Enquiry)
		want   string
	}{
		{"missing subject", func(e *enquiries.Enquiry) { e.Subject = "" }, "subject is required"},
		{"missing email", func(e *enquiries.Enquiry) { e.Email = "" }, "email is required"},
		{"long subject", func(e *enquiries.Enquiry) { e.Subject = strings.Repeat("s", 201) }, "subject must be at most 200"},
		{"long body", func(e *enquiries.Enquiry) { e.Body = strings.Repeat("b", 401) }, "body must be at most 400"},
		{"body at limit", func(e *enquiries.Enquiry) { e.Body = strings.Repeat("b", 400) }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEnquiry()
			tt.mutate(&e)
			err := e.Validate()
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			require.True(t, apperrors.Is(err, apperrors.ErrInvalidRequest))
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApply(t *testing.T) {
	e := validEnquiry()
	require.NoError(t, e.Apply(enquiries.Update{Subject: utils.Ptr("Prices")}))
	require.Equal(t, "Prices", e.Subject)

	require.Error(t, e.Apply(enquiries.Update{Body: utils.Ptr("")}))
	require.Equal(t, "When are you open on Sundays?", e.Body)
}
