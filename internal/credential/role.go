// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package credential

import (
	"strings"

	"github.com/ManuGH/tokbridge/internal/sdkerr"
)

// Role is the capability set granted by a token. Each role includes every
// privilege of the roles ranked below it.
type Role string

const (
	// RoleSubscriber can only subscribe to streams.
	RoleSubscriber Role = "subscriber"
	// RolePublisher can publish, subscribe and signal.
	RolePublisher Role = "publisher"
	// RoleModerator can additionally force participants to unpublish or disconnect.
	RoleModerator Role = "moderator"
)

// DefaultRole is applied when no role is requested.
const DefaultRole = RolePublisher

var roleRank = map[Role]int{
	RoleSubscriber: 1,
	RolePublisher:  2,
	RoleModerator:  3,
}

// ParseRole accepts a role name in any case. The empty string yields DefaultRole.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultRole, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", sdkerr.InvalidArgument(sdkerr.OpGenerateToken, "unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Includes reports whether r grants every privilege of other.
func (r Role) Includes(other Role) bool {
	return r.Valid() && other.Valid() && roleRank[r] >= roleRank[other]
}

func (r Role) String() string { return string(r) }
