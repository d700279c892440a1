// Package gate provides a small Gate/Policy authorization core. A Gate
// resolves a subject to a Profile (a set of "resource:action" permissions)
// and answers authorization questions against it. The package has no
// dependency on domain models or storage, which keeps the guarantee that a
// denied request never touches the database.
package gate

import "context"

// Gate is the central authorization checkpoint.
// U is the subject type; the zero value of U is treated as anonymous.
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
}

// New creates a gate backed by the given profile resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{resolver: resolver}
}

// Authorize checks that the subject's profile grants resource:action.
// Returns ErrUnauthenticated for the zero subject, ErrForbidden when the
// profile is missing or lacks the permission.
func (g *Gate[U]) Authorize(ctx context.Context, subject U, action Action, resourceType string) error {
	var zero U
	if subject == zero {
		return ErrUnauthenticated
	}
	profile, err := g.resolver.Resolve(ctx, subject)
	if err != nil || profile == nil {
		return ErrForbidden
	}
	if !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrForbidden
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[U]) Can(ctx context.Context, subject U, action Action, resourceType string) bool {
	return g.Authorize(ctx, subject, action, resourceType) == nil
}
