package policy

import (
	"fmt"
	"strings"
)

// Role is a user role, ordered from least to most privileged.
type Role int

const (
	RoleResearcher Role = iota + 1
	RoleReviewer
	RoleCoordinator
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleResearcher:  "researcher",
	RoleReviewer:    "reviewer",
	RoleCoordinator: "coordinator",
	RoleAdmin:       "admin",
}

// legacyRoleIDs maps the numeric role ids still sent by older clients.
var legacyRoleIDs = map[string]Role{
	"10":  RoleResearcher,
	"70":  RoleReviewer,
	"150": RoleCoordinator,
	"250": RoleAdmin,
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole accepts a role name (any case) or a legacy numeric id.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if r, ok := legacyRoleIDs[s]; ok {
		return r, nil
	}
	for r, n := range roleNames {
		if n == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// ParseRoles parses a comma separated role list. Empty items are skipped.
func ParseRoles(list string) ([]Role, error) {
	var out []Role
	for _, item := range strings.Split(list, ",") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		r, err := ParseRole(item)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
