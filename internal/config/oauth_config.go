package config

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	oauthSecretVar    = "OAUTH_SECRET"
	oauthIssuerVar    = "OAUTH_ISSUER"
	authCodeTTLVar    = "AUTH_CODE_TTL"
	accessTokenTTLVar = "ACCESS_TOKEN_TTL"

	MinAuthCodeTTL = 60 * time.Second
	MaxAuthCodeTTL = 600 * time.Second

	DefaultScope = "openid profile"
)

type OAuthConfig interface {
	GetAuthCodeTimeout() time.Duration
	GetCodeGenerationLength() int
	GetDefaultAccessTokenExpiry() time.Duration
	GetDefaultScope() string
	GetIssuer() string
	GetSigningSecret() (string, error)
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

// GetAuthCodeTimeout is clamped so a misconfigured value can't produce
// codes that live for hours.
func (OAuth) GetAuthCodeTimeout() time.Duration {
	ttl := GetDuration(authCodeTTLVar, 5*time.Minute)
	if ttl < MinAuthCodeTTL {
		return MinAuthCodeTTL
	}
	if ttl > MaxAuthCodeTTL {
		return MaxAuthCodeTTL
	}
	return ttl
}

func (OAuth) GetCodeGenerationLength() int {
	return 32 // 256 bits
}

func (OAuth) GetDefaultAccessTokenExpiry() time.Duration {
	return GetDuration(accessTokenTTLVar, time.Hour)
}

func (OAuth) GetDefaultScope() string {
	return DefaultScope
}

func (OAuth) GetIssuer() string {
	return GetEnv(oauthIssuerVar, EnvVars{}.GetBaseURL())
}

var (
	devSecretOnce sync.Once
	devSecret     string
)

// GetSigningSecret returns OAUTH_SECRET. Outside DEV the secret is required;
// in DEV a random one is generated once per process.
func (OAuth) GetSigningSecret() (string, error) {
	if secret := GetEnv(oauthSecretVar, ""); secret != "" {
		return secret, nil
	}
	if (EnvVars{}).GetEnv() != EnvDev {
		return "", errors.Errorf("%s must be set outside %s", oauthSecretVar, EnvDev)
	}
	devSecretOnce.Do(func() {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return
		}
		devSecret = hex.EncodeToString(b)
		log.Warn().Msgf("%s not set, using a random signing secret; tokens won't survive a restart", oauthSecretVar)
	})
	if devSecret == "" {
		return "", errors.New("failed to generate a development signing secret")
	}
	return devSecret, nil
}
