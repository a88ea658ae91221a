package users_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
	"github.com/jrsteele09/go-enquiry-service/internal/utils"
	"github.com/jrsteele09/go-enquiry-service/users"
)

func validRegistration() users.Registration {
	return users.Registration{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw1",
		Name:     "Alice",
		Country:  "UK",
	}
}

func TestNewUser(t *testing.T) {
	u, err := users.NewUser(validRegistration())
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.NotEqual(t, "pw1", u.PasswordHash)
	require.True(t, users.CheckPasswordHash("pw1", u.PasswordHash))
	require.False(t, users.CheckPasswordHash("pw2", u.PasswordHash))
}

func TestNewUser_UsernameDefaultsToEmail(t *testing.T) {
	reg := validRegistration()
	reg.Username = ""
	u, err := users.NewUser(reg)
	require.NoError(t, err)
	require.Equal(t, reg.Email, u.Username)
}

func TestNewUser_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*users.Registration)
		want   string
	}{
		{"missing email", func(r *users.Registration) { r.Email = "" }, "email is required"},
		{"missing password", func(r *users.Registration) { r.Password = "" }, "password is required"},
		{"missing name", func(r *users.Registration) { r.Name = " " }, "name is required"},
		{"missing country", func(r *users.Registration) { r.Country = "" }, "country is required"},
		{"long name", func(r *users.Registration) { r.Name = strings.Repeat("n", 101) }, "name must be at most 100"},
		{"bad email", func(r *users.Registration) { r.Email = "alice" }, "email is not valid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := validRegistration()
			tt.mutate(&reg)
			_, err := users.NewUser(reg)
			require.Error(t, err)
			require.True(t, apperrors.Is(err, apperrors.ErrInvalidRequest))
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApply(t *testing.T) {
	u, err := users.NewUser(validRegistration())
	require.NoError(t, err)
	oldHash := u.PasswordHash

	require.NoError(t, u.Apply(users.Update{Country: utils.Ptr("FR"), Password: utils.Ptr("pw2")}))
	require.Equal(t, "FR", u.Country)
	require.Equal(t, "Alice", u.Name)
	require.NotEqual(t, oldHash, u.PasswordHash)
	require.True(t, users.CheckPasswordHash("pw2", u.PasswordHash))

	err = u.Apply(users.Update{Name: utils.Ptr("")})
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidRequest))
	require.Equal(t, "Alice", u.Name, "failed update must not modify the user")
}

func TestPasswordLengthLimit(t *testing.T) {
	t.Run("72 bytes is accepted", func(t *testing.T) {
		reg := validRegistration()
		reg.Password = strings.Repeat("p", 72)
		u, err := users.NewUser(reg)
		require.NoError(t, err)
		require.True(t, users.CheckPasswordHash(reg.Password, u.PasswordHash))
	})

	t.Run("73 bytes is invalid on register", func(t *testing.T) {
		reg := validRegistration()
		reg.Password = strings.Repeat("p", 73)
		_, err := users.NewUser(reg)
		require.True(t, apperrors.Is(err, apperrors.ErrInvalidRequest))
		require.False(t, apperrors.Is(err, apperrors.ErrInternal))
	})

	t.Run("73 bytes is invalid on update", func(t *testing.T) {
		u, err := users.NewUser(validRegistration())
		require.NoError(t, err)
		oldHash := u.PasswordHash
		err = u.Apply(users.Update{Password: utils.Ptr(strings.Repeat("p", 73))})
		require.True(t, apperrors.Is(err, apperrors.ErrInvalidRequest))
		require.Equal(t, oldHash, u.PasswordHash)
	})
}
