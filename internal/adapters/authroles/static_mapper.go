package authroles

import (
	"strings"

	domainauth "github.com/target/storyweb/internal/domain/auth"
)

// StaticRoleMapper promotes an IdP identity to admin when it belongs to
// AdminGroup or its email is listed in AdminEmails. Everyone else is a user.
type StaticRoleMapper struct {
	AdminGroup  string
	AdminEmails []string
}

// Map implements ports.RoleMapper.
func (m StaticRoleMapper) Map(id domainauth.Identity) domainauth.Role {
	if m.AdminGroup != "" {
		for _, g := range id.Groups {
			if g == m.AdminGroup {
				return domainauth.RoleAdmin
			}
		}
	}
	for _, e := range m.AdminEmails {
		if e != "" && strings.EqualFold(strings.TrimSpace(e), id.Email) {
			return domainauth.RoleAdmin
		}
	}
	return domainauth.RoleUser
}
