package auth

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-enquiry-service/authcodes"
	"github.com/jrsteele09/go-enquiry-service/clients"
	"github.com/jrsteele09/go-enquiry-service/internal/config"
	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
	"github.com/jrsteele09/go-enquiry-service/internal/obs"
	"github.com/jrsteele09/go-enquiry-service/oauthmodel"
	"github.com/jrsteele09/go-enquiry-service/sessions"
	"github.com/jrsteele09/go-enquiry-service/token"
	"github.com/jrsteele09/go-enquiry-service/users"
)

const (
	defaultCodeGenerationLength = 32
	defaultAuthCodeTimeout      = 5 * time.Minute
	defaultMaxSessionAge        = 30 * time.Minute
)

// Repos holds all repository dependencies for the AuthorizationService
type Repos struct {
	Users    users.Repo     // Identity store
	Clients  clients.Repo   // Registered OAuth2 clients
	Sessions sessions.Repo  // Login sessions
	Codes    authcodes.Repo // Issued authorization codes
}

// AuthorizationService runs the authorization code flow: login, code
// issuance, code exchange and token verification.
type AuthorizationService struct {
	repos               Repos
	tokens              *token.Manager
	metrics             *obs.Metrics
	nowTime             func() time.Time
	codeTTL             time.Duration
	codeLength          int
	maxSessionAge       time.Duration
	defaultScope        string
	requireClientSecret bool
}

// AuthorizationServiceOption defines a function type to modify the AuthorizationService instance.
type AuthorizationServiceOption func(*AuthorizationService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.nowTime = nowFunc
	}
}

// WithCodeTTL sets how long an issued authorization code stays redeemable
func WithCodeTTL(ttl time.Duration) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.codeTTL = ttl
	}
}

// WithMaxSessionAge sets the lifetime of a login session
func WithMaxSessionAge(age time.Duration) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.maxSessionAge = age
	}
}

// WithRequireClientSecret makes /token demand a secret from confidential clients
func WithRequireClientSecret(required bool) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.requireClientSecret = required
	}
}

// WithMetrics records logins, exchanges and userinfo calls on m
func WithMetrics(m *obs.Metrics) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.metrics = m
	}
}

// WithConfig applies the OAuth and security settings from configuration.
func WithConfig(c config.Config) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.codeTTL = c.GetAuthCodeTimeout()
		as.codeLength = c.GetCodeGenerationLength()
		as.maxSessionAge = c.GetMaxSessionAge()
		as.defaultScope = c.GetDefaultScope()
		as.requireClientSecret = c.GetRequireClientSecret()
	}
}

// NewAuthorizationService initializes a new AuthorizationService with required dependencies.
func NewAuthorizationService(repos Repos, tokens *token.Manager, options ...AuthorizationServiceOption) (*AuthorizationService, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewAuthorizationService] Users repo is required")
	}
	if repos.Clients == nil {
		return nil, errors.New("[NewAuthorizationService] Clients repo is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewAuthorizationService] Sessions repo is required")
	}
	if repos.Codes == nil {
		return nil, errors.New("[NewAuthorizationService] Codes repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewAuthorizationService] token manager is required")
	}

	as := &AuthorizationService{
		repos:         repos,
		tokens:        tokens,
		nowTime:       time.Now,
		codeTTL:       defaultAuthCodeTimeout,
		codeLength:    defaultCodeGenerationLength,
		maxSessionAge: defaultMaxSessionAge,
		defaultScope:  config.DefaultScope,
	}
	for _, opt := range options {
		opt(as)
	}
	if as.codeTTL <= 0 {
		return nil, errors.New("[NewAuthorizationService] code TTL must be positive")
	}
	return as, nil
}

// Register creates a new identity. The username defaults to the email.
func (as *AuthorizationService) Register(ctx context.Context, reg users.Registration) (*users.User, error) {
	user, err := users.NewUser(reg)
	if err != nil {
		return nil, err
	}
	if err := as.repos.Users.Create(ctx, user); err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		return nil, errors.Wrap(err, "[Register] users.Create")
	}
	log.Info().Str("username", user.Username).Msg("user registered")
	return user, nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// equaliseTiming burns a bcrypt comparison so unknown usernames take as
// long to reject as wrong passwords.
func equaliseTiming(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = users.HashPassword("not-a-real-password")
	})
	users.CheckPasswordHash(password, dummyHash)
}

// Login checks the credentials and creates a session bound to the username.
func (as *AuthorizationService) Login(ctx context.Context, username, password string) (*sessions.Session, error) {
	result := obs.ResultRejected
	defer func() { as.countLogin(result) }()

	user, err := as.repos.Users.GetByUsername(ctx, username)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			result = obs.ResultError
			return nil, errors.Wrap(err, "[Login] users.GetByUsername")
		}
		equaliseTiming(password)
		return nil, ErrInvalidCredentials
	}
	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	id, err := sessions.NewID()
	if err != nil {
		result = obs.ResultError
		return nil, errors.Wrap(err, "[Login]")
	}
	now := as.nowTime()
	session := &sessions.Session{
		ID:        id,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(as.maxSessionAge),
	}
	if err := as.repos.Sessions.Upsert(ctx, session); err != nil {
		result = obs.ResultError
		return nil, errors.Wrap(err, "[Login] sessions.Upsert")
	}
	result = obs.ResultOK
	log.Info().Str("username", user.Username).Msg("login succeeded")
	return session, nil
}

// Session resolves a session id to a live session. Expired sessions are
// removed on access.
func (as *AuthorizationService) Session(ctx context.Context, sessionID string) (*sessions.Session, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	session, err := as.repos.Sessions.Get(ctx, sessionID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthenticated) {
			return nil, err
		}
		return nil, errors.Wrap(err, "[Session] sessions.Get")
	}
	if session.Expired(as.nowTime()) {
		if err := as.repos.Sessions.Delete(ctx, sessionID); err != nil {
			log.Warn().Err(err).Msg("failed to delete expired session")
		}
		return nil, ErrSessionExpired
	}
	return session, nil
}

// Logout destroys the session.
func (as *AuthorizationService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := as.repos.Sessions.Delete(ctx, sessionID); err != nil {
		return errors.Wrap(err, "[Logout] sessions.Delete")
	}
	return nil
}

// Authorize issues a single use authorization code for the session's
// subject and returns the URL to redirect the user agent to. The session is
// checked before any parameter so a missing login is always 401.
func (as *AuthorizationService) Authorize(ctx context.Context, session *sessions.Session, params *oauthmodel.AuthorizationParameters) (string, error) {
	now := as.nowTime()
	if session == nil || session.Username == "" {
		return "", ErrNoSession
	}
	if session.Expired(now) {
		return "", ErrSessionExpired
	}
	if err := params.Validate(); err != nil {
		return "", err
	}

	client, err := as.repos.Clients.Get(ctx, params.ClientID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return "", ErrUnknownClient
		}
		return "", errors.Wrap(err, "[Authorize] clients.Get")
	}
	if !client.HasRedirectURI(params.RedirectURI) {
		return "", ErrRedirectNotAllowed
	}

	code, err := authcodes.NewCode(as.codeLength)
	if err != nil {
		return "", errors.Wrap(err, "[Authorize]")
	}
	entry := &authcodes.Entry{
		ClientID:    client.ID,
		RedirectURI: params.RedirectURI,
		Subject:     session.Username,
		Scope:       as.defaultScope,
		IssuedAt:    now,
		ExpiresAt:   now.Add(as.codeTTL),
	}
	if err := as.repos.Codes.Insert(ctx, code, entry); err != nil {
		if errors.Is(err, authcodes.ErrCodeExists) {
			log.Error().Str("client_id", client.ID).Msg("authorization code collision")
		}
		return "", errors.Wrap(err, "[Authorize] codes.Insert")
	}

	redirect, err := redirectWithCode(params.RedirectURI, code, params.State)
	if err != nil {
		return "", err
	}
	if as.metrics != nil {
		as.metrics.CodesIssued.Inc()
	}
	log.Info().Str("client_id", client.ID).Str("username", session.Username).Msg("authorization code issued")
	return redirect, nil
}

// redirectWithCode appends code and, when present, state to the redirect
// URI, keeping any query it already has.
func redirectWithCode(redirectURI, code, state string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", apperrors.Mark(errors.Wrap(err, "parse redirect_uri"), apperrors.ErrInvalidRequest)
	}
	q := u.Query()
	q.Set("code", code)
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Token exchanges an authorization code for a bearer token. The code is
// consumed atomically by the store, so a replay or a concurrent second
// exchange gets ErrInvalidGrant.
func (as *AuthorizationService) Token(ctx context.Context, req oauthmodel.TokenRequest) (resp *oauthmodel.TokenResponse, err error) {
	defer func() { as.countExchange(err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	client, err := as.repos.Clients.Get(ctx, req.ClientID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrClientAuthFailed
		}
		return nil, errors.Wrap(err, "[Token] clients.Get")
	}
	if !client.IsPublic() && (as.requireClientSecret || req.ClientSecret != "") {
		if !client.ValidateSecret(req.ClientSecret) {
			return nil, ErrClientAuthFailed
		}
	}

	entry, err := as.repos.Codes.Redeem(ctx, req.Code, req.ClientID, req.RedirectURI, as.nowTime())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidGrant) {
			return nil, err
		}
		return nil, errors.Wrap(err, "[Token] codes.Redeem")
	}

	accessToken, err := as.tokens.CreateAccessToken(entry.Subject, entry.Scope)
	if err != nil {
		return nil, errors.Wrap(err, "[Token]")
	}
	log.Info().Str("client_id", client.ID).Str("username", entry.Subject).Msg("access token issued")
	return &oauthmodel.TokenResponse{
		AccessToken: accessToken.Raw,
		TokenType:   oauthmodel.BearerTokenType,
		ExpiresIn:   int(accessToken.ExpiresIn / time.Second),
	}, nil
}

// UserInfo verifies a bearer token and returns the subject's public profile.
func (as *AuthorizationService) UserInfo(ctx context.Context, rawToken string) (info *oauthmodel.UserInfo, err error) {
	defer func() { as.countUserInfo(err) }()

	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrMissingToken
	}
	claims, err := as.tokens.Verify(rawToken)
	if err != nil {
		return nil, err
	}
	user, err := as.repos.Users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, errors.Wrap(err, "[UserInfo] users.GetByUsername")
	}
	return &oauthmodel.UserInfo{
		Sub:      claims.Subject,
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Email:    user.Email,
		Country:  user.Country,
	}, nil
}

// CleanupExpired removes expired authorization codes and sessions.
func (as *AuthorizationService) CleanupExpired(ctx context.Context) (codes int, sessionCount int, err error) {
	now := as.nowTime()
	codes, err = as.repos.Codes.DeleteExpired(ctx, now)
	if err != nil {
		return 0, 0, errors.Wrap(err, "[CleanupExpired] codes.DeleteExpired")
	}
	sessionCount, err = as.repos.Sessions.DeleteExpired(ctx, now)
	if err != nil {
		return codes, 0, errors.Wrap(err, "[CleanupExpired] sessions.DeleteExpired")
	}
	if as.metrics != nil {
		as.metrics.CodesSwept.Add(float64(codes))
	}
	return codes, sessionCount, nil
}

// RunSweeper calls CleanupExpired every interval until ctx is done.
func (as *AuthorizationService) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("[RunSweeper] interval must be positive")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			codes, sessionCount, err := as.CleanupExpired(ctx)
			if err != nil {
				log.Error().Err(err).Msg("expiry sweep failed")
				continue
			}
			if codes > 0 || sessionCount > 0 {
				log.Debug().Int("codes", codes).Int("sessions", sessionCount).Msg("expiry sweep")
			}
		}
	}
}

func (as *AuthorizationService) countLogin(result string) {
	if as.metrics != nil {
		as.metrics.Logins.WithLabelValues(result).Inc()
	}
}

func (as *AuthorizationService) countExchange(err error) {
	if as.metrics != nil {
		as.metrics.TokenExchanges.WithLabelValues(resultOf(err)).Inc()
	}
}

func (as *AuthorizationService) countUserInfo(err error) {
	if as.metrics != nil {
		as.metrics.UserInfo.WithLabelValues(resultOf(err)).Inc()
	}
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return obs.ResultOK
	case apperrors.StatusCode(err) >= 500:
		return obs.ResultError
	default:
		return obs.ResultRejected
	}
}
