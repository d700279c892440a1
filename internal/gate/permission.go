package gate

import "strings"

// Permission represents an allowed action on a resource type.
// Format: "resource:action" (e.g., "partner:create", "supply:list").
type Permission string

// NewPermission creates a permission from resource type and action.
func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// Parse splits a permission into resource type and action.
func (p Permission) Parse() (resourceType string, action Action) {
	res, act, found := strings.Cut(string(p), ":")
	if !found {
		return "", ""
	}
	return res, Action(act)
}

// Wildcards for super permissions.
const (
	WildcardAll              = "*"
	PermissionAll Permission = "*:*"
)

// Matches checks if this permission covers a requested permission.
// Supports wildcards: "*:*" matches all, "partner:*" matches all partner actions.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionAll {
		return true
	}
	if p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, _ := requested.Parse()
	return res == reqRes && string(act) == WildcardAll
}
