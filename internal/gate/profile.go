package gate

import "context"

// Profile is a named set of permissions (a role, in this application).
type Profile interface {
	Name() string
	HasPermission(permission Permission) bool
	Permissions() []Permission
}

// ProfileResolver resolves a subject to its profile.
// U is the subject type (here: the principal carried through a request).
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, subject U) (Profile, error)
}

// StaticProfile is an in-memory profile. The application's roles are fixed
// at compile time, so every live profile is one of these.
type StaticProfile struct {
	name        string
	permissions map[Permission]bool
}

// NewStaticProfile creates a profile with the given permissions.
func NewStaticProfile(name string, permissions ...Permission) *StaticProfile {
	p := &StaticProfile{name: name, permissions: make(map[Permission]bool, len(permissions))}
	for _, perm := range permissions {
		p.permissions[perm] = true
	}
	return p
}

func (p *StaticProfile) Name() string { return p.name }

// Permissions returns all permissions in this profile.
func (p *StaticProfile) Permissions() []Permission {
	perms := make([]Permission, 0, len(p.permissions))
	for perm := range p.permissions {
		perms = append(perms, perm)
	}
	return perms
}

// HasPermission checks the requested permission against the profile,
// honoring wildcard entries.
func (p *StaticProfile) HasPermission(requested Permission) bool {
	if p.permissions[requested] {
		return true
	}
	for perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}
