package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/potentiacredential-cmd/listentbh/pkg/utils"
)

// BearerAuth enforces a static bearer token at the boundary when one is
// configured. An empty token disables the check entirely; the core services
// never look at caller identity.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			presented, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				utils.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
