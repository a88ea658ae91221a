package oauthmodel

// BearerTokenType is the only token type issued.
const BearerTokenType = "Bearer"

// TokenResponse represents the response from the /token endpoint.
// The body has exactly these three fields.
type TokenResponse struct {
	// AccessToken is the signed JWT used to access protected resources.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// TokenType indicates how to use the access token.
	// Always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Example: 3600
	ExpiresIn int `json:"expires_in"`
}

// UserInfo is the public profile served from /userinfo. It never carries
// the password hash.
type UserInfo struct {
	Sub      string `json:"sub"`
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Country  string `json:"country"`
}
