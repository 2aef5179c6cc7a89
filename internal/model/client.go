package model

import "fmt"

// Role is the functional category of a connected client.
type Role string

const (
	RoleUnknown  Role = "UNKNOWN"
	RoleHardware Role = "HARDWARE"
	RoleDesktop  Role = "DESKTOP"
	RoleMobile   Role = "MOBILE"
)

// ParseRole maps the wire-level register value ("hardware", "desktop",
// "mobile") to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "hardware":
		return RoleHardware, nil
	case "desktop":
		return RoleDesktop, nil
	case "mobile":
		return RoleMobile, nil
	}
	return RoleUnknown, fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// Prefix is the lowercase form used when generating client ids.
func (r Role) Prefix() string {
	switch r {
	case RoleHardware:
		return "hardware"
	case RoleDesktop:
		return "desktop"
	case RoleMobile:
		return "mobile"
	}
	return "unknown"
}
