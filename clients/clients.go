package clients

import (
	"context"
	"slices"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/jrsteele09/go-enquiry-service/internal/config"
	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
)

// maxSecretBytes is the longest input bcrypt accepts.
const maxSecretBytes = 72

var ErrClientNotFound = apperrors.Wrapf(apperrors.ErrNotFound, "client")

// Client is a registered relying party. Authorization requests are only
// honoured for a known client and one of its exact redirect URIs.
type Client struct {
	ID           string   `json:"id" gorm:"primaryKey;size:100"`
	Description  string   `json:"description"`
	SecretHash   string   `json:"-"`
	RedirectURIs []string `json:"redirect_uris" gorm:"serializer:json"`
	Scopes       []string `json:"scopes" gorm:"serializer:json"`
}

// IsPublic reports whether the client was registered without a secret.
func (c *Client) IsPublic() bool {
	return c.SecretHash == ""
}

// HasRedirectURI checks for an exact, byte for byte registered match.
func (c *Client) HasRedirectURI(uri string) bool {
	return slices.Contains(c.RedirectURIs, uri)
}

// SetSecret stores a bcrypt hash of the secret. An empty secret makes the
// client public.
func (c *Client) SetSecret(secret string) error {
	if secret == "" {
		c.SecretHash = ""
		return nil
	}
	if len(secret) > maxSecretBytes {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "client secret must be at most %d bytes", maxSecretBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash client secret")
	}
	c.SecretHash = string(hash)
	return nil
}

func (c *Client) ValidateSecret(secret string) bool {
	if c.IsPublic() || secret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.SecretHash), []byte(secret)) == nil
}

// Seed registers (or re-registers) the clients from a clients file.
func Seed(ctx context.Context, repo Repo, seeds []config.ClientSeed) error {
	for _, s := range seeds {
		c := &Client{
			ID:           s.ID,
			Description:  s.Description,
			RedirectURIs: s.RedirectURIs,
			Scopes:       s.Scopes,
		}
		if err := c.SetSecret(s.Secret); err != nil {
			return errors.Wrapf(err, "seed client %s", s.ID)
		}
		if err := repo.Upsert(ctx, c); err != nil {
			return errors.Wrapf(err, "seed client %s", s.ID)
		}
	}
	return nil
}
