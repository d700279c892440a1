package policy

import (
	"context"
	"net/http"

	"github.com/diewo77/partner-admin/internal/auth"
	"github.com/diewo77/partner-admin/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type principalKey struct{}

// WithPrincipal stores the resolved user in the context.
func WithPrincipal(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, principalKey{}, u)
}

// PrincipalFrom extracts the principal resolved by PrincipalMiddleware.
// ok is false for anonymous requests.
func PrincipalFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(principalKey{}).(*models.User)
	return u, ok && u != nil
}

// PrincipalMiddleware resolves the session's user id to a full user row,
// once per request, no caching. An unknown id or an unreachable store
// resolves to anonymous; it never fails the request itself.
func PrincipalMiddleware(db *gorm.DB, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if uid, ok := auth.UserIDFromContext(r.Context()); ok {
				var user models.User
				err := db.WithContext(r.Context()).First(&user, uid).Error
				switch {
				case err == nil:
					r = r.WithContext(WithPrincipal(r.Context(), &user))
				case err != gorm.ErrRecordNotFound:
					log.Warnw("principal lookup failed, continuing as anonymous", "user_id", uid, "error", err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
