// Package domain holds shared value types used across service boundaries.
package domain

// Role classifies an authenticated caller. The identity provider is an
// external collaborator; we only interpret the claims it issues.
type Role string

const (
	RoleClinician Role = "clinician"
	RoleAuditor   Role = "auditor"
	RoleAdmin     Role = "admin"
)

// ScopeExactScores is the capability that allows a caller to see exact
// compatibility scores alongside noisy ones. Exposure is audited.
const ScopeExactScores = "matches:exact"

// Caller is the authenticated identity attached to a request.
type Caller struct {
	Subject string
	Role    Role
	Scopes  []string
}

// IsZero reports whether no identity was attached.
func (c Caller) IsZero() bool {
	return c.Subject == ""
}

// HasScope reports whether the caller was granted the named scope.
func (c Caller) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
