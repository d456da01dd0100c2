package domain

import (
	"encoding/json"
	"strings"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
)

// ParseRole lower-cases and trims s. Unknown roles are kept as-is so that a
// newer backend role never silently becomes admin or worker.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseRole(s)
	return nil
}

type PermissionLevel string

const (
	PermissionViewOnly   PermissionLevel = "view_only"
	PermissionFullAccess PermissionLevel = "full_access"
)

// ParsePermissionLevel accepts the canonical values in any case. Anything else,
// including the empty string, is treated as view_only.
func ParsePermissionLevel(s string) PermissionLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(PermissionFullAccess):
		return PermissionFullAccess
	default:
		return PermissionViewOnly
	}
}

func (p PermissionLevel) Valid() bool {
	return p == PermissionViewOnly || p == PermissionFullAccess
}

func (p *PermissionLevel) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*p = PermissionViewOnly
		return nil
	}
	*p = ParsePermissionLevel(*s)
	return nil
}
