package core

// Scope restricts queries to the churches a user may see.
// Superusers get an unrestricted scope (All); everyone else only sees the
// churches where they appear as gestor or agente. A Scope is computed per
// request and never cached.
type Scope struct {
	All       bool
	IgrejaIDs []string
}

// UnrestrictedScope is the superuser scope.
func UnrestrictedScope() Scope { return Scope{All: true} }

// ScopeOf builds a restricted scope over the given church IDs.
func ScopeOf(igrejaIDs ...string) Scope { return Scope{IgrejaIDs: igrejaIDs} }

// Contains reports whether the given church is visible in this scope.
func (s Scope) Contains(igrejaID string) bool {
	if s.All {
		return true
	}
	for _, id := range s.IgrejaIDs {
		if id == igrejaID {
			return true
		}
	}
	return false
}

// IsEmpty reports whether this scope grants no access at all.
func (s Scope) IsEmpty() bool { return !s.All && len(s.IgrejaIDs) == 0 }
