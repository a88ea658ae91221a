// Package flowclient drives the authorization code flow from the relying
// party side: log in, obtain a code, exchange it and call /userinfo.
package flowclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-enquiry-service/oauthmodel"
	"github.com/jrsteele09/go-enquiry-service/users"
)

// StatusError is returned when the server answers with an unexpected status.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Status, e.Body)
}

type Client struct {
	baseURL    string
	oauth      *oauth2.Config
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client. Its jar, if any, is kept;
// redirects are never followed.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL, clientID, clientSecret, redirectURL string, options ...Option) (*Client, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, errors.Wrap(err, "[flowclient.New] invalid base URL")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "[flowclient.New] cookie jar")
	}
	c := &Client{
		baseURL: baseURL,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   baseURL + "/authorize",
				TokenURL:  baseURL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{Jar: jar, Timeout: 10 * time.Second},
	}
	for _, opt := range options {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		c.httpClient.Jar = jar
	}
	c.httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return c, nil
}

// Register creates an identity. A 409 is reported as a StatusError so
// callers can treat "already registered" as success.
func (c *Client) Register(ctx context.Context, reg users.Registration) error {
	resp, err := c.postJSON(ctx, "/register", reg)
	if err != nil {
		return err
	}
	return expectStatus("register", resp, http.StatusCreated)
}

// Login establishes a session; the cookie is kept in the client's jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	resp, err := c.postJSON(ctx, "/login", map[string]string{"username": username, "password": password})
	if err != nil {
		return err
	}
	return expectStatus("login", resp, http.StatusOK)
}

// Authorize requests a code for the logged-in user and returns it. The
// returned state must match the one sent.
func (c *Client) Authorize(ctx context.Context, state string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.oauth.AuthCodeURL(state), nil)
	if err != nil {
		return "", errors.Wrap(err, "[Authorize]")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "[Authorize]")
	}
	if err := expectStatus("authorize", resp, http.StatusFound); err != nil {
		return "", err
	}

	location, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		return "", errors.Wrap(err, "[Authorize] parse Location")
	}
	if got := location.Query().Get("state"); got != state {
		return "", errors.Errorf("[Authorize] state mismatch: sent %q, got %q", state, got)
	}
	code := location.Query().Get("code")
	if code == "" {
		return "", errors.New("[Authorize] redirect carried no code")
	}
	return code, nil
}

// Exchange redeems the code. A rejected code surfaces as *oauth2.RetrieveError
// with ErrorCode "invalid_grant".
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

func (c *Client) UserInfo(ctx context.Context, tok *oauth2.Token) (*oauthmodel.UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/userinfo", nil)
	if err != nil {
		return nil, errors.Wrap(err, "[UserInfo]")
	}
	tok.SetAuthHeader(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[UserInfo]")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("userinfo", resp)
	}

	var info oauthmodel.UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.Wrap(err, "[UserInfo] decode")
	}
	return &info, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "encode body")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "POST %s", path)
	}
	return resp, nil
}

func expectStatus(op string, resp *http.Response, want int) error {
	defer resp.Body.Close()
	if resp.StatusCode != want {
		return statusError(op, resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
