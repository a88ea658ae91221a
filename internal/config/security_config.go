package config

import "time"

const (
	sessionMaxAgeVar       = "SESSION_MAX_AGE"
	requireClientSecretVar = "REQUIRE_CLIENT_SECRET"
	codeSweepIntervalVar   = "CODE_SWEEP_INTERVAL"
)

type SecurityConfig interface {
	GetMaxSessionAge() time.Duration
	GetRequireClientSecret() bool
	GetSweepInterval() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetMaxSessionAge() time.Duration {
	return GetDuration(sessionMaxAgeVar, 30*time.Minute)
}

// GetRequireClientSecret makes /token reject requests without a valid
// client_secret for the client.
func (Security) GetRequireClientSecret() bool {
	return GetBool(requireClientSecretVar, false)
}

func (Security) GetSweepInterval() time.Duration {
	return GetDuration(codeSweepIntervalVar, time.Minute)
}
