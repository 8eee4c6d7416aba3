package service

import "strings"

// AdminPolicy answers whether an email belongs to an administrator. The set
// is fixed at startup.
type AdminPolicy struct {
	emails map[string]struct{}
}

// NewAdminPolicy creates a policy from an allow-list. Entries are matched
// case-insensitively.
func NewAdminPolicy(emails map[string]struct{}) *AdminPolicy {
	set := make(map[string]struct{}, len(emails))
	for e := range emails {
		if e = normalizeEmail(e); e != "" {
			set[e] = struct{}{}
		}
	}
	return &AdminPolicy{emails: set}
}

// IsAdmin reports whether email is on the allow-list.
func (p *AdminPolicy) IsAdmin(email string) bool {
	if p == nil {
		return false
	}
	email = normalizeEmail(email)
	if email == "" {
		return false
	}
	_, ok := p.emails[email]
	return ok
}

// Configured reports whether any administrator is configured.
func (p *AdminPolicy) Configured() bool {
	return p != nil && len(p.emails) > 0
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
