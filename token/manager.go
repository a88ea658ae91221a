package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
)

// Claims carried by an access token.
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// AccessToken is a freshly signed token and its lifetime.
type AccessToken struct {
	Raw       string
	ExpiresIn time.Duration
	ExpiresAt time.Time
}

// Manager creates and verifies self-contained bearer tokens. Nothing is
// persisted; validity is the signature plus exp.
type Manager struct {
	signer            Signer
	issuer            string
	accessTokenExpiry time.Duration
	nowFunc           func() time.Time
}

type ManagerOption func(*Manager)

func WithAccessTokenExpiry(expiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = expiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func New(signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer:            signer,
		accessTokenExpiry: time.Hour,
		nowFunc:           time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// CreateAccessToken signs {sub, scope} with a fixed expiry.
func (m *Manager) CreateAccessToken(subject, scope string) (*AccessToken, error) {
	if subject == "" {
		return nil, errors.New("[CreateAccessToken] subject is required")
	}
	now := m.nowFunc()
	expiresAt := now.Add(m.accessTokenExpiry)
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}
	raw, err := m.signer.Sign(claims)
	if err != nil {
		return nil, errors.Wrap(err, "[CreateAccessToken] sign")
	}
	return &AccessToken{Raw: raw, ExpiresIn: m.accessTokenExpiry, ExpiresAt: expiresAt}, nil
}

// Verify checks signature, algorithm, expiry and issuer and requires a
// subject. Every failure is reported as ErrInvalidToken.
func (m *Manager) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "empty token")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.signer.GetSigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.nowFunc),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(raw, claims, m.signer.GetVerificationKey, opts...); err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "token has no subject")
	}
	return claims, nil
}
