package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-enquiry-service/enquiries"
	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
	"github.com/jrsteele09/go-enquiry-service/users"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

type userEnvelope struct {
	User *users.User `json:"user"`
}

type enquiryEnvelope struct {
	Enquiry *enquiries.Enquiry `json:"enquiry"`
}

type statusEnvelope struct {
	Status bool `json:"status"`
}

type enquiryInput struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// pagination reads ?offset= and ?limit=.
func pagination(r *http.Request) (offset, limit int, err error) {
	limit = defaultPageLimit
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, apperrors.Wrapf(apperrors.ErrInvalidRequest, "offset must be a non-negative integer")
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 1 || limit > maxPageLimit {
			return 0, 0, apperrors.Wrapf(apperrors.ErrInvalidRequest, "limit must be between 1 and %d", maxPageLimit)
		}
	}
	return offset, limit, nil
}

func (s *Server) ListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit, err := pagination(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		list, err := s.repos.Users.List(r.Context(), offset, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) GetUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.repos.Users.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// CreateUser goes through the same path as /register so the password is hashed.
func (s *Server) CreateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg users.Registration
		if err := decodeJSON(w, r, &reg); err != nil {
			writeError(w, r, err)
			return
		}
		user, err := s.auth.Register(r.Context(), reg)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, userEnvelope{User: user})
	}
}

func (s *Server) UpdateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd users.Update
		if err := decodeJSON(w, r, &upd); err != nil {
			writeError(w, r, err)
			return
		}
		user, err := s.repos.Users.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := user.Apply(upd); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.repos.Users.Update(r.Context(), user); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, userEnvelope{User: user})
	}
}

func (s *Server) DeleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := s.repos.Users.Delete(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, statusEnvelope{Status: deleted})
	}
}

func (s *Server) ListEnquiries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit, err := pagination(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		list, err := s.repos.Enquiries.List(r.Context(), offset, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) GetEnquiry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enquiry, err := s.repos.Enquiries.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, enquiry)
	}
}

func (s *Server) CreateEnquiry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in enquiryInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		enquiry := &enquiries.Enquiry{
			Name:    in.Name,
			Country: in.Country,
			Email:   in.Email,
			Subject: in.Subject,
			Body:    in.Body,
		}
		if err := enquiry.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.repos.Enquiries.Create(r.Context(), enquiry); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, enquiryEnvelope{Enquiry: enquiry})
	}
}

func (s *Server) UpdateEnquiry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd enquiries.Update
		if err := decodeJSON(w, r, &upd); err != nil {
			writeError(w, r, err)
			return
		}
		enquiry, err := s.repos.Enquiries.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := enquiry.Apply(upd); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.repos.Enquiries.Update(r.Context(), enquiry); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, enquiryEnvelope{Enquiry: enquiry})
	}
}

func (s *Server) DeleteEnquiry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := s.repos.Enquiries.Delete(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, statusEnvelope{Status: deleted})
	}
}
