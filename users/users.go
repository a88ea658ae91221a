package users

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
	"github.com/jrsteele09/go-enquiry-service/internal/utils"
)

const (
	maxFieldLength = 100
	// bcrypt only hashes the first 72 bytes and rejects anything longer.
	maxPasswordBytes = 72
)

var (
	ErrUserNotFound  = apperrors.Wrapf(apperrors.ErrNotFound, "user")
	ErrUsernameTaken = apperrors.Wrapf(apperrors.ErrConflict, "username already taken")
)

type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:100;not null"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	Email        string    `json:"email" gorm:"size:100;not null"`
	Country      string    `json:"country" gorm:"size:100;not null"`
	PasswordHash string    `json:"-" gorm:"not null"` // never serialize
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Registration is the input accepted by /register and POST /v1/users.
// Username falls back to Email when omitted.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Country  string `json:"country"`
}

// Update carries the fields of a partial update; nil fields are left alone.
type Update struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
	Country  *string `json:"country"`
}

// NewUser validates a registration and hashes its password.
func NewUser(reg Registration) (*User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Username == "" {
		reg.Username = reg.Email
	}
	if err := required(map[string]string{
		"email":    reg.Email,
		"password": reg.Password,
		"name":     reg.Name,
		"country":  reg.Country,
	}, "email", "password", "name", "country"); err != nil {
		return nil, err
	}

	u := &User{
		Username: reg.Username,
		Name:     reg.Name,
		Email:    reg.Email,
		Country:  reg.Country,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := validatePassword(reg.Password); err != nil {
		return nil, err
	}
	hash, err := HashPassword(reg.Password)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInternal, "hash password: %v", err)
	}
	u.PasswordHash = hash
	return u, nil
}

// Apply merges a partial update into the user. The password is re-hashed.
func (u *User) Apply(upd Update) error {
	next := *u
	utils.Apply(&next.Username, upd.Username)
	utils.Apply(&next.Email, upd.Email)
	utils.Apply(&next.Name, upd.Name)
	utils.Apply(&next.Country, upd.Country)
	if err := next.Validate(); err != nil {
		return err
	}
	if upd.Password != nil {
		if err := validatePassword(*upd.Password); err != nil {
			return err
		}
		hash, err := HashPassword(*upd.Password)
		if err != nil {
			return apperrors.Wrapf(apperrors.ErrInternal, "hash password: %v", err)
		}
		next.PasswordHash = hash
	}
	*u = next
	return nil
}

// Validate checks required fields and column limits.
func (u *User) Validate() error {
	fields := map[string]string{
		"username": u.Username,
		"name":     u.Name,
		"email":    u.Email,
		"country":  u.Country,
	}
	if err := required(fields, "username", "name", "email", "country"); err != nil {
		return err
	}
	for _, name := range []string{"username", "name", "email", "country"} {
		if len(fields[name]) > maxFieldLength {
			return invalid("%s must be at most %d characters", name, maxFieldLength)
		}
	}
	if !strings.Contains(u.Email, "@") {
		return invalid("email is not valid")
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares in constant time via bcrypt.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func validatePassword(password string) error {
	if password == "" {
		return invalid("password must not be empty")
	}
	if len(password) > maxPasswordBytes {
		return invalid("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

func required(fields map[string]string, order ...string) error {
	for _, name := range order {
		if strings.TrimSpace(fields[name]) == "" {
			return invalid("%s is required", name)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return apperrors.Mark(fmt.Errorf(format, args...), apperrors.ErrInvalidRequest)
}
